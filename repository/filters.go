package repository

import (
	"regexp"
	"time"

	"MediCall/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// all is the list filter value meaning "no filter".
const all = "all"

// Given reports whether a list filter value restricts results.
func Given(v string) bool {
	return v != "" && v != all
}

// search builds a case-insensitive substring match over fields.
func search(term string, fields ...string) bson.A {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return or
}

func UserFilter(q models.UserQuery) bson.M {
	filter := bson.M{}
	if Given(q.Role) {
		filter["role"] = q.Role
	}
	if Given(q.Department) {
		filter["department"] = q.Department
	}
	if q.Search != "" {
		filter["$or"] = search(q.Search, "name", "email")
	}
	return filter
}

func PatientFilter(q models.PatientQuery) bson.M {
	filter := bson.M{}
	if Given(q.Status) {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		filter["$or"] = search(q.Search, "name", "email", "mobileNumber")
	}
	return filter
}

func DoctorFilter(q models.DoctorQuery) bson.M {
	filter := bson.M{}
	if !q.IncludeInactive {
		filter["isActive"] = true
	}
	if Given(q.Specialty) {
		filter["specialty"] = q.Specialty
	}
	if Given(q.Department) {
		filter["department"] = q.Department
	}
	if Given(q.Status) {
		filter["availabilityStatus"] = q.Status
	}
	if q.Search != "" {
		filter["$or"] = search(q.Search, "name", "specialty", "department", "email")
	}
	return filter
}

// DayRange returns the UTC calendar day containing t.
func DayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func BookingFilter(q models.BookingQuery) bson.M {
	filter := bson.M{}
	if Given(q.Status) {
		filter["status"] = q.Status
	}
	if q.Date != nil {
		start, end := DayRange(*q.Date)
		filter["appointmentDate"] = bson.M{"$gte": start, "$lt": end}
	}
	if !q.PatientID.IsZero() {
		filter["patient"] = q.PatientID
	}
	if !q.DoctorID.IsZero() {
		filter["doctor"] = q.DoctorID
	}
	return filter
}

func CallLogFilter(q models.CallLogQuery) bson.M {
	filter := bson.M{}
	if Given(q.Outcome) {
		filter["outcome"] = q.Outcome
	}
	if Given(q.CallType) {
		filter["callType"] = q.CallType
	}
	if !q.PatientID.IsZero() {
		filter["patient"] = q.PatientID
	}
	if q.StartDate != nil || q.EndDate != nil {
		window := bson.M{}
		if q.StartDate != nil {
			window["$gte"] = *q.StartDate
		}
		if q.EndDate != nil {
			window["$lte"] = *q.EndDate
		}
		filter["callDateTime"] = window
	}
	return filter
}

// DueFilter matches active patients with an active medication at clock.
func DueFilter(clock string) bson.M {
	return bson.M{
		"status": models.PatientActive,
		"medications": bson.M{"$elemMatch": bson.M{
			"isActive": true,
			"times":    clock,
		}},
	}
}
