package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resetCols = []string{"user_id", "expires_at", "used_at"}

func TestPasswordResetRepo_ConsumeLive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPasswordResetRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM password_resets WHERE token_hash=\\? FOR UPDATE").WithArgs("h").
		WillReturnRows(sqlmock.NewRows(resetCols).AddRow("u-1", time.Now().UTC().Add(time.Hour), nil))
	mock.ExpectExec("UPDATE password_resets SET used_at").WithArgs("h").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	uid, err := repo.Consume(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepo_ConsumeUsedOrExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPasswordResetRepo(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM password_resets").WithArgs("used").
		WillReturnRows(sqlmock.NewRows(resetCols).AddRow("u-1", now.Add(time.Hour), now))
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectQuery("FROM password_resets").WithArgs("old").
		WillReturnRows(sqlmock.NewRows(resetCols).AddRow("u-1", now.Add(-time.Hour), nil))
	mock.ExpectRollback()

	_, err := repo.Consume(context.Background(), "used")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = repo.Consume(context.Background(), "old")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepo_Store(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPasswordResetRepo(db)

	mock.ExpectExec("INSERT INTO password_resets").
		WithArgs("h", "u-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Store(context.Background(), "u-1", "h", time.Now().Add(time.Hour)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
