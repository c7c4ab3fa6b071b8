package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

type AppointmentRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.AppointmentLedger = (*AppointmentRepository)(nil)

func NewAppointmentRepository(db *sql.DB, cb *gobreaker.CircuitBreaker) *AppointmentRepository {
	return &AppointmentRepository{db: db, cb: cb}
}

func (r *AppointmentRepository) FindAppointments(ctx context.Context, doctorID, date string) ([]domain.Appointment, error) {
	return guarded(r.cb, func() ([]domain.Appointment, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT id, doctor_id, patient_id, to_char(date, 'YYYY-MM-DD'), time, reason, status, created_at
			FROM appointments
			WHERE doctor_id = $1 AND date = $2
			ORDER BY time`, doctorID, date)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		appointments := make([]domain.Appointment, 0)
		for rows.Next() {
			var a domain.Appointment
			if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.Date, &a.Time, &a.Reason, &a.Status, &a.CreatedAt); err != nil {
				return nil, err
			}
			appointments = append(appointments, a)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return appointments, nil
	})
}

// InsertAppointment writes the appointment and its outbox event in one
// transaction. The appointments_doctor_slot_key constraint decides races.
func (r *AppointmentRepository) InsertAppointment(ctx context.Context, appt domain.Appointment, outboxPayload []byte) error {
	_, err := guarded(r.cb, func() (struct{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return struct{}{}, err
		}
		defer tx.Rollback()

		_, err = tx.ExecContext(ctx,
			"INSERT INTO appointments (id, doctor_id, patient_id, date, time, reason, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			appt.ID,
			appt.DoctorID,
			appt.PatientID,
			appt.Date,
			appt.Time,
			appt.Reason,
			appt.Status,
			appt.CreatedAt,
		)
		if isUniqueViolation(err) {
			return struct{}{}, domain.ErrSlotTaken
		}
		if err != nil {
			return struct{}{}, err
		}

		if outboxPayload != nil {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)",
				uuid.NewString(),
				ports.AppointmentBookedEvent,
				string(outboxPayload),
			)
			if err != nil {
				return struct{}{}, err
			}
		}

		return struct{}{}, tx.Commit()
	})
	return err
}
