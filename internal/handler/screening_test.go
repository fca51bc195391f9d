package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/booking-api/internal/config"
	"github.com/cinemahub/booking-api/internal/repository"
)

func TestScreeningUpdate_CommittedChangeSurvivesShapeFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "movie_id", "room_id", "date", "start_time",
		"week_number", "week_day", "created_at", "updated_at",
	}
	row := func(startTime string) *sqlmock.Rows {
		return sqlmock.NewRows(cols).
			AddRow(uint64(7), uint64(1), uint64(3), date, startTime, 24, 6, now, now)
	}

	// Load, then the transactional conflict-check + update, then commit.
	mock.ExpectQuery("FROM screenings WHERE id").
		WithArgs(uint64(7)).
		WillReturnRows(row("20:00"))
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(3), date, "21:30", uint64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("UPDATE screenings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM screenings WHERE id").
		WithArgs(uint64(7)).
		WillReturnRows(row("21:30"))
	mock.ExpectCommit()

	// Decoration fails after the commit.
	mock.ExpectQuery("FROM movies WHERE id").
		WithArgs(uint64(1)).
		WillReturnError(sql.ErrConnDone)

	movieRepo := repository.NewMovieRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	screeningRepo := repository.NewScreeningRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	h := NewScreeningHandler(movieRepo, roomRepo, screeningRepo, bookingRepo, config.CacheConfig{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/screenings/7",
		strings.NewReader(`{"start_time":"21:30"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	require.NoError(t, h.Update(c))

	// The row changed and committed, so the response must report success
	// even though the read decoration could not be built.
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}
