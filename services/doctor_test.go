package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"MediCall/apperror"
	"MediCall/integrations/elevenlabs"
	"MediCall/models"
	"MediCall/util"
	"MediCall/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() elevenlabs.Sample {
	return elevenlabs.Sample{Filename: "voice.mp3", Data: strings.NewReader("audio")}
}

func createDoctor(t *testing.T, svc *DoctorService, caller models.Caller, email, license string) *models.Doctor {
	t.Helper()
	d, err := svc.Create(context.Background(), caller, doctorPayload(email, license))
	require.NoError(t, err)
	return d
}

func TestCreateDoctorDefaultsAndOwner(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	caller := agent(t, s, "a@x.io")

	d := createDoctor(t, svc, caller, "grey@x.io", "LIC-1")
	assert.Equal(t, caller.ID, d.CreatedBy)
	assert.Equal(t, models.DoctorOffline, d.AvailabilityStatus)
	assert.Equal(t, 12.0, d.Experience)
	assert.True(t, d.IsActive)
	assert.Empty(t, d.VoiceCloneStatus)
}

func TestCreateDoctorConflicts(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	caller := agent(t, s, "a@x.io")
	createDoctor(t, svc, caller, "grey@x.io", "LIC-1")

	_, err := svc.Create(context.Background(), caller, doctorPayload("grey@x.io", "LIC-2"))
	assert.Equal(t, util.EMAIL_ALREADY_EXISTS, apperror.PublicMessage(err))
	assert.True(t, apperror.IsConflict(err))

	_, err = svc.Create(context.Background(), caller, doctorPayload("other@x.io", "LIC-1"))
	assert.Equal(t, util.LICENSE_ALREADY_EXISTS, apperror.PublicMessage(err))
	assert.True(t, apperror.IsConflict(err))

	page, err := svc.List(context.Background(), models.DoctorQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestListDoctorsPagination(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	caller := agent(t, s, "a@x.io")
	for i := 0; i < 23; i++ {
		createDoctor(t, svc, caller, fmt.Sprintf("d%d@x.io", i), fmt.Sprintf("LIC-%d", i))
	}

	page, err := svc.List(context.Background(), models.DoctorQuery{Page: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 23, page.Total)
	assert.Equal(t, DefaultPageLimit, page.Limit)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Doctors, 3)

	page, err = svc.List(context.Background(), models.DoctorQuery{Page: -1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageLimit, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Doctors, 23)

	page, err = svc.List(context.Background(), models.DoctorQuery{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalPages)
	assert.Empty(t, page.Doctors)

	page, err = svc.List(context.Background(), models.DoctorQuery{Page: math.MaxInt, Limit: MaxPageLimit})
	require.NoError(t, err)
	assert.Equal(t, MaxPage, page.Page)
	assert.Empty(t, page.Doctors)
}

func TestDeactivateHidesDoctor(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")

	off, err := svc.Deactivate(context.Background(), d.ID.Hex())
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = svc.Get(context.Background(), d.ID.Hex())
	assert.True(t, apperror.IsNotFound(err))
	_, err = svc.Update(context.Background(), d.ID.Hex(), validation.Payload{"bio": "x"})
	assert.True(t, apperror.IsNotFound(err))

	page, err := svc.List(context.Background(), models.DoctorQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Doctors)

	page, err = svc.List(context.Background(), models.DoctorQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, page.Doctors, 1)

	require.NoError(t, svc.Delete(context.Background(), d.ID.Hex()))
	_, err = s.doctors.FindByID(context.Background(), d.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateDoctorAndStatus(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	caller := agent(t, s, "a@x.io")
	d := createDoctor(t, svc, caller, "grey@x.io", "LIC-1")
	createDoctor(t, svc, caller, "shepherd@x.io", "LIC-2")

	updated, err := svc.Update(context.Background(), d.ID.Hex(), validation.Payload{"consultationFee": "150", "voiceId": "hijack"})
	require.NoError(t, err)
	require.NotNil(t, updated.ConsultationFee)
	assert.Equal(t, 150.0, *updated.ConsultationFee)
	assert.Empty(t, updated.VoiceID)

	_, err = svc.Update(context.Background(), d.ID.Hex(), validation.Payload{"licenseNumber": "LIC-2"})
	assert.True(t, apperror.IsConflict(err))

	online, err := svc.SetStatus(context.Background(), d.ID.Hex(), validation.Payload{"availabilityStatus": "online"})
	require.NoError(t, err)
	assert.Equal(t, models.DoctorOnline, online.AvailabilityStatus)

	_, err = svc.SetStatus(context.Background(), d.ID.Hex(), validation.Payload{"availabilityStatus": "busy"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCloneVoicePendingThenCompleted(t *testing.T) {
	s := newStores()
	cloner := &fakeCloner{doctors: s.doctors, voiceID: "voice-1"}
	svc := NewDoctorService(s.doctors, cloner, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")
	cloner.doctorID = d.ID

	got, err := svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	require.NoError(t, err)
	assert.Equal(t, models.VoiceClonePending, cloner.seenStatus)
	assert.Equal(t, models.VoiceCloneCompleted, got.VoiceCloneStatus)
	assert.Equal(t, "voice-1", got.VoiceID)
	assert.Empty(t, cloner.deleted)
}

func TestCloneVoiceFailureMarksFailed(t *testing.T) {
	s := newStores()
	cloner := &fakeCloner{doctors: s.doctors, err: errProvider}
	svc := NewDoctorService(s.doctors, cloner, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")
	cloner.doctorID = d.ID

	_, err := svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	assert.Equal(t, models.VoiceClonePending, cloner.seenStatus)

	stored, err := s.doctors.FindByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VoiceCloneFailed, stored.VoiceCloneStatus)
	assert.Empty(t, stored.VoiceID)
}

func TestCloneVoiceRetryReplacesVoice(t *testing.T) {
	s := newStores()
	cloner := &fakeCloner{voiceID: "voice-1"}
	svc := NewDoctorService(s.doctors, cloner, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")

	_, err := svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	require.NoError(t, err)
	cloner.voiceID = "voice-2"
	got, err := svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	require.NoError(t, err)
	assert.Equal(t, "voice-2", got.VoiceID)
	assert.Equal(t, []string{"voice-1"}, cloner.deleted)
}

func TestDeleteVoiceClearsFields(t *testing.T) {
	s := newStores()
	cloner := &fakeCloner{voiceID: "voice-1"}
	svc := NewDoctorService(s.doctors, cloner, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")

	_, err := svc.DeleteVoice(context.Background(), d.ID.Hex())
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	require.NoError(t, err)
	got, err := svc.DeleteVoice(context.Background(), d.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.VoiceID)
	assert.Empty(t, got.VoiceCloneStatus)
	assert.Equal(t, []string{"voice-1"}, cloner.deleted)
}

func TestCloneVoiceWithoutProvider(t *testing.T) {
	s := newStores()
	svc := NewDoctorService(s.doctors, nil, nil)
	d := createDoctor(t, svc, agent(t, s, "a@x.io"), "grey@x.io", "LIC-1")

	_, err := svc.CloneVoice(context.Background(), d.ID.Hex(), sample())
	assert.Equal(t, apperror.KindUpstream, apperror.KindOf(err))
	stored, _ := s.doctors.FindByID(context.Background(), d.ID)
	assert.Empty(t, stored.VoiceCloneStatus)
}
