// This file defines the Screening model and repository. A Screening is a
// scheduled showing of a movie in a room on a date at a start time. The
// derived week fields are computed by the handler from the date and stored
// alongside it so list endpoints can filter by ISO week cheaply.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Screening represents a row in the `screenings` table. Date is stored as a
// DATE column and StartTime as a "HH:MM" string; the pair, together with
// RoomID, forms the scheduling key.
type Screening struct {
	ID         uint64    // screenings.id
	MovieID    uint64    // screenings.movie_id
	RoomID     uint64    // screenings.room_id
	Date       time.Time // screenings.date (midnight UTC)
	StartTime  string    // screenings.start_time ("HH:MM", 24h)
	WeekNumber int       // screenings.week_number (ISO week of year)
	WeekDay    int       // screenings.week_day (ISO weekday 1-7)
	CreatedAt  time.Time // screenings.created_at
	UpdatedAt  time.Time // screenings.updated_at
}

// ErrScreeningNotFound indicates that a screening was not located in the DB.
var ErrScreeningNotFound = errors.New("screening not found")

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo constructs a ScreeningRepo with the given DB handle.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo {
	return &ScreeningRepo{db: db}
}

const screeningCols = `id, movie_id, room_id, date, start_time, week_number, week_day, created_at, updated_at`

func scanScreening(row interface{ Scan(...any) error }, s *Screening) error {
	return row.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.Date, &s.StartTime,
		&s.WeekNumber, &s.WeekDay, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a screening after verifying, inside the same transaction,
// that no other screening occupies the same (room, date, start_time) slot.
// The conflict scan locks matching rows with FOR UPDATE so two concurrent
// conflicting writes serialize instead of both passing the check; the
// schema-level unique key on the triple is the backstop. On conflict it
// returns ErrSchedulingConflict and nothing is written.
func (r *ScreeningRepo) Create(ctx context.Context, s *Screening) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = conflictLocked(ctx, tx, s.RoomID, s.Date, s.StartTime, 0); err != nil {
		return err
	}
	const q = `INSERT INTO screenings (movie_id, room_id, date, start_time, week_number, week_day)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.RoomID, s.Date, s.StartTime, s.WeekNumber, s.WeekDay)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + screeningCols + ` FROM screenings WHERE id = ?`
	return scanScreening(tx.QueryRowContext(ctx, sel, s.ID), s)
}

// Update persists new values for an existing screening under the same
// transactional conflict check as Create, excluding the screening itself
// from the scan. ErrScreeningNotFound is returned when the row is gone.
func (r *ScreeningRepo) Update(ctx context.Context, s *Screening) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if err = conflictLocked(ctx, tx, s.RoomID, s.Date, s.StartTime, s.ID); err != nil {
		return err
	}
	const q = `UPDATE screenings
	           SET movie_id = ?, room_id = ?, date = ?, start_time = ?, week_number = ?, week_day = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, s.MovieID, s.RoomID, s.Date, s.StartTime, s.WeekNumber, s.WeekDay, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err = tx.QueryRowContext(ctx, `SELECT 1 FROM screenings WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				err = ErrScreeningNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + screeningCols + ` FROM screenings WHERE id = ?`
	return scanScreening(tx.QueryRowContext(ctx, sel, s.ID), s)
}

// conflictLocked checks for another screening in the same room on the same
// date at the same start time, locking any matching row for the duration of
// the caller's transaction. excludeID skips the screening being updated.
func conflictLocked(ctx context.Context, tx *sql.Tx, roomID uint64, date time.Time, startTime string, excludeID uint64) error {
	const q = `SELECT id FROM screenings
	           WHERE room_id = ? AND date = ? AND start_time = ? AND id <> ?
	           LIMIT 1 FOR UPDATE`
	var id uint64
	err := tx.QueryRowContext(ctx, q, roomID, date, startTime, excludeID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	return ErrSchedulingConflict
}

// GetByID retrieves a screening by its ID. It returns ErrScreeningNotFound
// when no row matches.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*Screening, error) {
	const q = `SELECT ` + screeningCols + ` FROM screenings WHERE id = ?`
	var s Screening
	if err := scanScreening(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListAll returns every screening ordered by date then start time.
func (r *ScreeningRepo) ListAll(ctx context.Context) ([]Screening, error) {
	const q = `SELECT ` + screeningCols + ` FROM screenings ORDER BY date ASC, start_time ASC`
	return r.list(ctx, q)
}

// ListByMovie returns the screenings owned by a movie, optionally restricted
// to a single ISO week. Pass nil to include every week. Results are ordered
// by date then start time.
func (r *ScreeningRepo) ListByMovie(ctx context.Context, movieID uint64, weekNumber *int) ([]Screening, error) {
	if weekNumber != nil {
		const q = `SELECT ` + screeningCols + ` FROM screenings
		           WHERE movie_id = ? AND week_number = ?
		           ORDER BY date ASC, start_time ASC`
		return r.list(ctx, q, movieID, *weekNumber)
	}
	const q = `SELECT ` + screeningCols + ` FROM screenings
	           WHERE movie_id = ?
	           ORDER BY date ASC, start_time ASC`
	return r.list(ctx, q, movieID)
}

func (r *ScreeningRepo) list(ctx context.Context, q string, args ...any) ([]Screening, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Screening
	for rows.Next() {
		var s Screening
		if err := scanScreening(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a screening and its bookings within one transaction.
// ErrScreeningNotFound is returned when the screening does not exist.
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM screenings WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrScreeningNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE screening_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM screenings WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
