package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_HappyPath(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cfg := UpsertConfig{
		Table:        "founders",
		Columns:      []string{"id", "startup_id", "name_key", "email"},
		ConflictKeys: []string{"startup_id", "name_key"},
		UpdateCols:   []string{"email"},
	}
	rows := [][]any{
		{"f1", "s1", "jane doe", "jane@acme.io"},
		{"f2", "s1", "john roe", ""},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_founders"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_founders"}, cfg.Columns).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "founders" (.+) ON CONFLICT \("startup_id", "name_key"\) DO UPDATE SET "email" = EXCLUDED."email"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, cfg, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRowsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "founders",
		Columns:      []string{"id"},
		ConflictKeys: []string{"id"},
	}, nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_MissingConfig(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{Table: "founders"}, [][]any{{"x"}})
	assert.Error(t, err)
}
