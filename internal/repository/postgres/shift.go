package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hopewell-clinic/booking-api/internal/model"
)

func (r *shiftRepository) GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.ShiftDay, error) {
	query := `
		SELECT id, doctor_id, day_of_week, is_active,
			   start_time, end_time, break_start, break_end,
			   created_at, updated_at
		FROM shift_days
		WHERE doctor_id = $1
		ORDER BY day_of_week ASC
	`
	var days []*model.ShiftDay
	if err := r.db.SelectContext(ctx, &days, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get shift schedule: %w", err)
	}
	return days, nil
}

// ReplaceSchedule swaps the doctor's whole weekly schedule in one
// transaction so readers never observe a half-written week.
func (r *shiftRepository) ReplaceSchedule(ctx context.Context, doctorID uuid.UUID, days []*model.ShiftDay) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_days WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("failed to clear shift schedule: %w", err)
	}

	insert := `
		INSERT INTO shift_days (
			id, doctor_id, day_of_week, is_active,
			start_time, end_time, break_start, break_end,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now()
	for _, day := range days {
		if day.ID == uuid.Nil {
			day.ID = uuid.New()
		}
		day.DoctorID = doctorID
		day.CreatedAt = now
		day.UpdatedAt = now

		_, err := tx.ExecContext(ctx, insert,
			day.ID,
			day.DoctorID,
			day.DayOfWeek,
			day.IsActive,
			day.StartTime,
			day.EndTime,
			day.BreakStart,
			day.BreakEnd,
			day.CreatedAt,
			day.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert shift day: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shift schedule: %w", err)
	}
	return nil
}
