package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func screeningRows(s Screening) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "movie_id", "room_id", "date", "start_time",
		"week_number", "week_day", "created_at", "updated_at",
	}).AddRow(s.ID, s.MovieID, s.RoomID, s.Date, s.StartTime,
		s.WeekNumber, s.WeekDay, s.CreatedAt, s.UpdatedAt)
}

func TestScreeningCreate_RejectsOccupiedSlot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(3), date, "20:00", uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uint64(9)))
	mock.ExpectRollback()

	repo := NewScreeningRepo(db)
	s := Screening{MovieID: 1, RoomID: 3, Date: date, StartTime: "20:00", WeekNumber: 24, WeekDay: 6}
	err = repo.Create(context.Background(), &s)

	assert.ErrorIs(t, err, ErrSchedulingConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScreeningCreate_SameRoomAndTimeOnAnotherDateIsAccepted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// The conflict scan carries the date, so an occupied slot on another
	// date never matches.
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(3), date, "20:00", uint64(0)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO screenings").
		WithArgs(uint64(1), uint64(3), date, "20:00", 24, 7).
		WillReturnResult(sqlmock.NewResult(5, 1))
	stored := Screening{ID: 5, MovieID: 1, RoomID: 3, Date: date, StartTime: "20:00",
		WeekNumber: 24, WeekDay: 7, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery("FROM screenings WHERE id").
		WithArgs(uint64(5)).
		WillReturnRows(screeningRows(stored))
	mock.ExpectCommit()

	repo := NewScreeningRepo(db)
	s := Screening{MovieID: 1, RoomID: 3, Date: date, StartTime: "20:00", WeekNumber: 24, WeekDay: 7}
	err = repo.Create(context.Background(), &s)

	require.NoError(t, err)
	assert.Equal(t, uint64(5), s.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScreeningUpdate_ConflictScanExcludesItself(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(3), date, "20:00", uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE screenings").
		WithArgs(uint64(1), uint64(3), date, "20:00", 24, 6, uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	stored := Screening{ID: 7, MovieID: 1, RoomID: 3, Date: date, StartTime: "20:00",
		WeekNumber: 24, WeekDay: 6, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery("FROM screenings WHERE id").
		WithArgs(uint64(7)).
		WillReturnRows(screeningRows(stored))
	mock.ExpectCommit()

	repo := NewScreeningRepo(db)
	s := stored
	err = repo.Update(context.Background(), &s)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
