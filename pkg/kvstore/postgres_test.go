package kvstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM kv_slots").
		WithArgs("slot").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"a":1}`)))

	got, err := store.Get(context.Background(), "slot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM kv_slots").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO kv_slots").
		WithArgs("slot", []byte(`{"a":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "slot", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM kv_slots").
		WithArgs("slot").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Delete(context.Background(), "slot")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_slots").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.EnsureSchema(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
