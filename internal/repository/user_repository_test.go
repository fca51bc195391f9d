package repository

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinemahub/booking-api/internal/utils"
)

func TestUserCreate_StoresVerifiableHashAndNormalizedEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var storedHash string
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ada", "ada@example.com", hashCapture{&storedHash}).
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := NewUserRepo(db).Create(context.Background(), "Ada", "  Ada@Example.COM ", "s3cret", 4)

	require.NoError(t, err)
	assert.Equal(t, uint64(3), id)
	assert.True(t, utils.VerifyPassword(storedHash, "s3cret"))
	assert.False(t, utils.VerifyPassword(storedHash, "wrong"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// hashCapture matches any string argument and records it so the test can
// verify the stored hash out of band.
type hashCapture struct{ dst *string }

func (h hashCapture) Match(v driver.Value) bool {
	s, ok := v.(string)
	if ok {
		*h.dst = s
	}
	return ok
}
