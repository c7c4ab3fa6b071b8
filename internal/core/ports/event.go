package ports

import (
	"context"
)

const AppointmentBookedEvent = "appointment.booked"

type AppointmentBooked struct {
	AppointmentID string `json:"appointment_id"`
	DoctorID      string `json:"doctor_id"`
	PatientID     string `json:"patient_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

type AppointmentEventPublisher interface {
	PublishAppointmentBooked(ctx context.Context, evt AppointmentBooked) error
}
