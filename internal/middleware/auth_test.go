package middleware

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/booking-api/internal/repository"
	"github.com/cinemahub/booking-api/internal/utils"
)

// These tests only exercise the paths that reject before touching the
// session store, so a nil repository is safe to pass.

func performAuth(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := SessionAuth("test-secret", nil)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec
}

func TestSessionAuth_MissingHeader(t *testing.T) {
	rec := performAuth(t, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You need to be authenticated to access this route", body["message"])
	assert.EqualValues(t, http.StatusUnauthorized, body["status"])
}

func TestSessionAuth_NonBearerScheme(t *testing.T) {
	rec := performAuth(t, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuth_InvalidToken(t *testing.T) {
	rec := performAuth(t, "Bearer not.a.real.token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, http.StatusUnauthorized, body["status"])
}

// performAuthWithStore runs the middleware against a stubbed session store
// so the revocation lookup itself can be exercised.
func performAuthWithStore(t *testing.T, db *sql.DB) *httptest.ResponseRecorder {
	t.Helper()
	tok, err := utils.NewSessionToken("test-secret", 7, 30)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := SessionAuth("test-secret", repository.NewSessionTokenRepo(db))
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec
}

func TestSessionAuth_RevokedSessionIsUnauthorized(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM session_tokens").WillReturnError(sql.ErrNoRows)

	rec := performAuthWithStore(t, db)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionAuth_StoreFailureIsNotUnauthorized(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM session_tokens").WillReturnError(sql.ErrConnDone)

	rec := performAuthWithStore(t, db)

	// An unreachable session store is an internal failure; it must not
	// masquerade as a revoked session.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	require.NoError(t, mock.ExpectationsWereMet())
}
