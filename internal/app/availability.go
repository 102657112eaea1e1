package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Availability is stored one row per doctor with put-replace semantics.

func (a *App) GetAvailability(ctx context.Context, doctorID string) (*Availability, error) {
	av := &Availability{}
	err := a.DB.QueryRow(ctx,
		`SELECT doctor_id, start_time, end_time, days, updated_at
		 FROM doctor_availability WHERE doctor_id=$1`, doctorID,
	).Scan(&av.DoctorID, &av.StartTime, &av.EndTime, &av.Days, &av.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: availability", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return av, nil
}

func (a *App) PutAvailability(ctx context.Context, av *Availability) error {
	start, err := parseHHMM(av.StartTime)
	if err != nil {
		return err
	}
	end, err := parseHHMM(av.EndTime)
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}
	for _, d := range av.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: day of week %d", ErrValidation, d)
		}
	}
	av.UpdatedAt = time.Now().UTC()
	_, err = a.DB.Exec(ctx,
		`INSERT INTO doctor_availability (doctor_id, start_time, end_time, days, updated_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (doctor_id) DO UPDATE
		 SET start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time,
		     days=EXCLUDED.days, updated_at=EXCLUDED.updated_at`,
		av.DoctorID, av.StartTime, av.EndTime, av.Days, av.UpdatedAt)
	return err
}
