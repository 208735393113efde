package services

import (
	"context"
	"testing"

	"MediCall/apperror"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newPatients(s *stores, dialer Dialer) *PatientService {
	return NewPatientService(s.patients, s.users, s.logs, dialer, nil)
}

func TestCreatePatientRecordsOwner(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	caller := agent(t, s, "agent@medicall.test")

	payload := patientPayload("ana@x.io")
	payload["createdBy"] = "ffffffffffffffffffffffff"
	view, err := svc.Create(context.Background(), caller, payload)
	require.NoError(t, err)

	assert.Equal(t, caller.ID, view.Patient.CreatedBy)
	require.NotNil(t, view.CreatedBy)
	assert.Equal(t, "agent@medicall.test", view.CreatedBy.Email)
	assert.Equal(t, models.PatientActive, view.Status)
	assert.Equal(t, models.DefaultReminderPreferences(), view.ReminderPreferences)
	assert.True(t, view.Medications[0].IsActive)
}

func TestCreatePatientEmailConflict(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	caller := agent(t, s, "agent@medicall.test")

	_, err := svc.Create(context.Background(), caller, patientPayload("ana@x.io"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), caller, patientPayload("ANA@x.io"))
	assert.True(t, apperror.IsConflict(err))

	list, err := svc.List(context.Background(), models.PatientQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePatientRejectsEmptyMedications(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	payload := patientPayload("ana@x.io")
	payload["medications"] = []interface{}{}

	_, err := svc.Create(context.Background(), agent(t, s, "a@x.io"), payload)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	list, _ := s.patients.List(context.Background(), models.PatientQuery{})
	assert.Empty(t, list)
}

func TestUpdatePatientPartialAndConflict(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	caller := agent(t, s, "a@x.io")
	first, err := svc.Create(context.Background(), caller, patientPayload("ana@x.io"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), caller, patientPayload("bob@x.io"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), first.ID.Hex(), validation.Payload{
		"notes":               "prefers mornings",
		"reminderPreferences": map[string]interface{}{"email": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "prefers mornings", updated.Notes)
	assert.True(t, updated.ReminderPreferences.Email)
	assert.True(t, updated.ReminderPreferences.SMS)
	assert.Equal(t, "Metformin", updated.Medications[0].Name)

	_, err = svc.Update(context.Background(), first.ID.Hex(), validation.Payload{"email": "bob@x.io"})
	assert.True(t, apperror.IsConflict(err))

	_, err = svc.Update(context.Background(), first.ID.Hex(), validation.Payload{"email": "ana@x.io"})
	assert.NoError(t, err)
}

func TestPatientStatusTransitions(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	p, err := svc.Create(context.Background(), agent(t, s, "a@x.io"), patientPayload("ana@x.io"))
	require.NoError(t, err)

	for _, status := range []string{models.PatientPaused, models.PatientActive, models.PatientCompleted} {
		got, err := svc.SetStatus(context.Background(), p.ID.Hex(), validation.Payload{"status": status})
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
	}

	_, err = svc.SetStatus(context.Background(), p.ID.Hex(), validation.Payload{"status": "archived"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestGetAndDeletePatient(t *testing.T) {
	s := newStores()
	svc := newPatients(s, nil)
	p, err := svc.Create(context.Background(), agent(t, s, "a@x.io"), patientPayload("ana@x.io"))
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", got.Name)

	require.NoError(t, svc.Delete(context.Background(), p.ID.Hex()))
	_, err = svc.Get(context.Background(), p.ID.Hex())
	assert.True(t, apperror.IsNotFound(err))
}

func TestRemindPlacesCallWithRoutingMetadata(t *testing.T) {
	s := newStores()
	dialer := &fakeDialer{}
	svc := newPatients(s, dialer)
	caller := agent(t, s, "a@x.io")
	p, err := svc.Create(context.Background(), caller, patientPayload("ana@x.io"))
	require.NoError(t, err)

	entry, err := svc.Remind(context.Background(), caller, p.ID.Hex(), nil)
	require.NoError(t, err)

	require.Len(t, dialer.calls, 1)
	call := dialer.calls[0]
	assert.Equal(t, "+15550001111", call.PhoneNumber)
	assert.Contains(t, call.Task, "Metformin")
	assert.Equal(t, map[string]string{
		MetaPatientID: p.ID.Hex(),
		MetaAgentID:   caller.ID.Hex(),
		MetaCallType:  models.CallTypeReminder,
	}, call.Metadata)

	assert.Equal(t, "call-1", entry.BlandAICallID)
	assert.Equal(t, caller.ID, entry.Agent)
	require.NotNil(t, entry.ReminderDetails)
	assert.Equal(t, "500mg", entry.ReminderDetails.Dosage)

	stored, err := s.patients.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastReminderSent)
}

func TestRemindWithoutActiveMedication(t *testing.T) {
	s := newStores()
	dialer := &fakeDialer{}
	svc := newPatients(s, dialer)
	caller := agent(t, s, "a@x.io")
	p, err := svc.Create(context.Background(), caller, patientPayload("ana@x.io"))
	require.NoError(t, err)
	_, err = s.patients.Update(context.Background(), p.ID, bson.M{"medications": []models.Medication{
		{Name: "Metformin", Dosage: "500mg", Times: []string{"08:00"}, IsActive: false},
	}})
	require.NoError(t, err)

	_, err = svc.Remind(context.Background(), caller, p.ID.Hex(), nil)
	assert.Equal(t, util.NO_ACTIVE_MEDICATION, apperror.PublicMessage(err))
	assert.Empty(t, dialer.calls)
}

func TestRemindProviderFailure(t *testing.T) {
	s := newStores()
	svc := newPatients(s, &fakeDialer{err: errProvider})
	caller := agent(t, s, "a@x.io")
	p, err := svc.Create(context.Background(), caller, patientPayload("ana@x.io"))
	require.NoError(t, err)

	_, err = svc.Remind(context.Background(), caller, p.ID.Hex(), nil)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	logs, _ := s.logs.List(context.Background(), models.CallLogQuery{})
	assert.Empty(t, logs)

	_, err = newPatients(s, nil).Remind(context.Background(), caller, p.ID.Hex(), nil)
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
}
