package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/domain"
	"github.com/AchilleasB/hospital-kliniek/access-service/internal/core/ports"
	"github.com/sony/gobreaker"
)

type TemplateRepository struct {
	db *sql.DB
	cb *gobreaker.CircuitBreaker
}

var _ ports.TemplateStore = (*TemplateRepository)(nil)

func NewTemplateRepository(db *sql.DB, cb *gobreaker.CircuitBreaker) *TemplateRepository {
	return &TemplateRepository{db: db, cb: cb}
}

func (r *TemplateRepository) FindTemplate(ctx context.Context, doctorID string) (*domain.DaySlotTemplate, error) {
	return guarded(r.cb, func() (*domain.DaySlotTemplate, error) {
		tmpl := domain.DaySlotTemplate{DoctorID: doctorID}
		err := r.db.QueryRowContext(ctx,
			"SELECT start_minute, end_minute, granularity_minutes FROM doctor_slot_templates WHERE doctor_id = $1",
			doctorID,
		).Scan(&tmpl.Start, &tmpl.End, &tmpl.Granularity)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &tmpl, nil
	})
}

func (r *TemplateRepository) SaveTemplate(ctx context.Context, tmpl domain.DaySlotTemplate) error {
	_, err := guarded(r.cb, func() (struct{}, error) {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO doctor_slot_templates (doctor_id, start_minute, end_minute, granularity_minutes, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (doctor_id) DO UPDATE
			SET start_minute = EXCLUDED.start_minute,
			    end_minute = EXCLUDED.end_minute,
			    granularity_minutes = EXCLUDED.granularity_minutes,
			    updated_at = NOW()`,
			tmpl.DoctorID,
			int(tmpl.Start),
			int(tmpl.End),
			tmpl.Granularity,
		)
		return struct{}{}, err
	})
	return err
}
