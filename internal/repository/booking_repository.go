// This file defines the Booking model and read-side repository. Bookings are
// created and cancelled by collaborators outside this service; the booking
// core only reads them to derive seat availability. Seat lists are stored as
// JSON text in the bookings row and decoded exactly once, here at the
// repository edge, into a strongly typed slice.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Booking statuses as stored in bookings.status. Only StatusCancelled has
// special meaning to availability; the rest count as seat-occupying.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Seat identifies a single seat by its row and position within the row.
type Seat struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// Booking represents a reservation of a seat set against one screening.
type Booking struct {
	ID          uint64    // bookings.id
	ScreeningID uint64    // bookings.screening_id
	Status      string    // bookings.status
	Seats       []Seat    // bookings.seats decoded from JSON text
	CreatedAt   time.Time // bookings.created_at
}

// decodeSeats turns the raw seats column into a typed slice. A NULL or empty
// column means no seats. Undecodable JSON wraps ErrMalformedSeatData so the
// corruption surfaces as an internal failure rather than being skipped.
func decodeSeats(raw sql.NullString) ([]Seat, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var seats []Seat
	if err := json.Unmarshal([]byte(raw.String), &seats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSeatData, err)
	}
	return seats, nil
}

// BookingRepo reads bookings for availability aggregation.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// ListByScreening returns the bookings attached to a screening in insertion
// order, with seat lists already decoded. It fails with a wrapped
// ErrMalformedSeatData when any row carries corrupt seat JSON.
func (r *BookingRepo) ListByScreening(ctx context.Context, screeningID uint64) ([]Booking, error) {
	const q = `SELECT id, screening_id, status, seats, created_at
	           FROM bookings WHERE screening_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Booking
	for rows.Next() {
		var (
			b   Booking
			raw sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.ScreeningID, &b.Status, &raw, &b.CreatedAt); err != nil {
			return nil, err
		}
		if b.Seats, err = decodeSeats(raw); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
