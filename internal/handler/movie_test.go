package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cases below exercise request validation paths that reject before any
// repository is touched, so bare handler values are safe.

func TestMovieByWeek_RequiresWeekNumber(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies/by-week", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &MovieHandler{}
	require.NoError(t, h.ByWeek(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Week number is required", body["message"])
	assert.Equal(t, "error", body["status"])
}

func TestMovieList_RejectsNonIntegerWeekNumber(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies?week_number=five", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &MovieHandler{}
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovieGetByID_RejectsNonNumericID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	h := &MovieHandler{}
	require.NoError(t, h.GetByID(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRoomCreate_ValidatesGeometry(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/rooms",
		strings.NewReader(`{"rows":0,"seats_per_row":-2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &RoomHandler{}
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "rows")
	assert.Contains(t, body.Errors, "seats_per_row")
}
