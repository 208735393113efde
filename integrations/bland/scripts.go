package bland

import (
	"fmt"
	"strings"
)

func MedicationReminderScript(patientName, medication, dosage, at string) string {
	return strings.Join([]string{
		fmt.Sprintf("Hello %s, this is a friendly reminder from your healthcare provider.", patientName),
		fmt.Sprintf("It's time to take your %s medication, %s.", medication, dosage),
		fmt.Sprintf("The current time is %s.", at),
		"Please take your medication as prescribed by your doctor.",
		"If you have any questions or concerns, please contact your healthcare provider.",
		"If this is an emergency, please hang up and dial 911 immediately.",
		"Thank you and have a great day!",
	}, " ")
}

func AppointmentReminderScript(patientName, doctorName, date, at string) string {
	return strings.Join([]string{
		fmt.Sprintf("Hello %s, this is a reminder about your upcoming appointment with Dr. %s", patientName, doctorName),
		fmt.Sprintf("scheduled for %s at %s.", date, at),
		"Please make sure to arrive 15 minutes early and bring your insurance card and ID.",
		"If you need to reschedule or cancel, please call our office as soon as possible.",
		"If this is an emergency, please hang up and dial 911 immediately.",
		"Thank you!",
	}, " ")
}

// MedicationReminderSMS is the short text variant of the medication script.
func MedicationReminderSMS(patientName, medication, dosage string) string {
	return fmt.Sprintf("Hi %s, it's time to take your %s (%s). Reply STOP to opt out.", patientName, medication, dosage)
}
