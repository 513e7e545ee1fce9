package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQL_ExecContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQL(db, StoreConfig("test"))
	mock.ExpectExec("INSERT INTO news_records").WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := store.ExecContext(context.Background(), "INSERT INTO news_records (key) VALUES (?)", "k")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Same(t, db, store.DB())
}

func TestSQL_QueryContext(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQL(db, StoreConfig("test"))
	mock.ExpectQuery("SELECT 1 FROM news_records").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	rows, err := store.QueryContext(context.Background(), "SELECT 1 FROM news_records WHERE key = ?", "k")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()
	assert.True(t, rows.Next())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQL_OpensWhenEveryCallFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewSQL(db, Config{
		Name:             "test-db",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 1.0,
		MinRequests:      3,
	})

	dbErr := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		mock.ExpectExec("UPDATE").WillReturnError(dbErr)
		_, err := store.ExecContext(context.Background(), "UPDATE news_records SET body = ?", "b")
		assert.ErrorIs(t, err, dbErr)
	}

	assert.True(t, store.IsOpen())
	_, err = store.ExecContext(context.Background(), "UPDATE news_records SET body = ?", "b")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsRejected(err))
	assert.Equal(t, gobreaker.StateOpen, store.State())
	assert.NoError(t, mock.ExpectationsWereMet())
}
