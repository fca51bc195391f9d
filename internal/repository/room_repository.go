package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Room describes the static seating geometry of a screening room: a grid of
// Rows x SeatsPerRow seats. Rooms carry no behavior of their own; screenings
// reference them and availability is computed against their dimensions.
type Room struct {
	ID          uint64    // rooms.id
	Rows        uint32    // rooms.rows
	SeatsPerRow uint32    // rooms.seats_per_row
	CreatedAt   time.Time // rooms.created_at
	UpdatedAt   time.Time // rooms.updated_at
}

// ErrRoomNotFound indicates that a room was not located in the DB.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo manages persistence for rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// Create inserts a new room and assigns the generated ID back to the struct.
func (r *RoomRepo) Create(ctx context.Context, room *Room) error {
	const q = `INSERT INTO rooms (` + "`rows`" + `, seats_per_row) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Rows, room.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	const sel = `SELECT id, ` + "`rows`" + `, seats_per_row, created_at, updated_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, room.ID).Scan(
		&room.ID, &room.Rows, &room.SeatsPerRow, &room.CreatedAt, &room.UpdatedAt,
	)
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound if there
// is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*Room, error) {
	const q = `SELECT id, ` + "`rows`" + `, seats_per_row, created_at, updated_at FROM rooms WHERE id = ?`
	var room Room
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&room.ID, &room.Rows, &room.SeatsPerRow, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// Exists reports whether a room with the given ID is present. It is used
// by screening writes to validate the room foreign key up front.
func (r *RoomRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListAll returns every room ordered by ID. An empty slice and nil error
// are returned when no rooms exist.
func (r *RoomRepo) ListAll(ctx context.Context) ([]Room, error) {
	const q = `SELECT id, ` + "`rows`" + `, seats_per_row, created_at, updated_at FROM rooms ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Room
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Rows, &room.SeatsPerRow, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
