package postgres

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "graphdoc/pkg/errors"
)

func TestMapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, mapError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		err := mapError(pgx.ErrNoRows)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unique violation becomes conflict with metadata", func(t *testing.T) {
		err := mapError(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: "parent_hist_index",
			TableName:      "document_event",
			ColumnName:     "parent",
		})
		require.True(t, apperrors.IsConflict(err))

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "unique_violation", appErr.Message)
		assert.Equal(t, "parent_hist_index", appErr.Constraint)
		assert.Equal(t, "document_event", appErr.Table)
		assert.Equal(t, "parent", appErr.Column)
	})

	t.Run("unknown class 23 code falls back to generic name", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "23999"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "integrity_constraint_violation", appErr.Message)
	})

	t.Run("raised exception becomes validation with its message", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "P0001", Message: "empty_update"})
		require.True(t, apperrors.IsValidation(err))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "empty_update", appErr.Message)
	})

	t.Run("integrity trigger raises keep their error name", func(t *testing.T) {
		for _, name := range []string{"already_published", "unpublished_parent", "parent_cycle"} {
			err := mapError(&pgconn.PgError{Code: "P0001", Message: name})
			require.True(t, apperrors.IsValidation(err), name)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, name, appErr.Message)
		}
	})

	t.Run("datatype error becomes validation", func(t *testing.T) {
		err := mapError(&pgconn.PgError{Code: "22P02"})
		require.True(t, apperrors.IsValidation(err))
	})

	t.Run("anything else is internal", func(t *testing.T) {
		err := mapError(errors.New("connection refused"))
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
	})
}

// The database enforces publication and acyclicity rules through triggers;
// make sure the embedded schema actually ships them and the digest trigger
// that backs snapshot deduplication.
func TestMigrations_ShipIntegrityTriggers(t *testing.T) {
	sql, err := migrationFS.ReadFile("migrations/0005_integrity_triggers.sql")
	require.NoError(t, err)
	for _, fn := range []string{"check_unpublished", "check_parent_published", "check_document_cycle"} {
		assert.Contains(t, string(sql), "CREATE FUNCTION "+fn)
	}
	assert.Contains(t, string(sql), "RAISE EXCEPTION 'parent_cycle'")

	sql, err = migrationFS.ReadFile("migrations/0003_snapshot_digest.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "CREATE TRIGGER trigger_snapshot_hash")
	assert.Contains(t, string(sql), "ALTER TABLE snapshot ALTER COLUMN digest SET NOT NULL")
	assert.Contains(t, string(sql), "ADD PRIMARY KEY (digest, source, tstamp)")
}

func TestEdgeWhere(t *testing.T) {
	hist := uuid.New()

	where, args := edgeWhere(nil, hist, 1)
	assert.Equal(t, "parent IS NULL AND hist = $1", where)
	assert.Equal(t, []interface{}{hist}, args)

	parent := uuid.New()
	where, args = edgeWhere(&parent, hist, 3)
	assert.Equal(t, "parent = $3 AND hist = $4", where)
	assert.Equal(t, []interface{}{parent, hist}, args)
}

func TestNodeFieldsColumns(t *testing.T) {
	pid := "42"
	published := true
	cols, args := NodeFields{Pid: &pid, Published: &published}.columns()
	assert.Equal(t, []string{"pid", "published"}, cols)
	assert.Equal(t, []interface{}{"42", true}, args)

	cols, args = NodeFields{}.columns()
	assert.Empty(t, cols)
	assert.Empty(t, args)
}

func TestSQLBuilders(t *testing.T) {
	assert.Equal(t, "pid, title", joinColumns([]string{"pid", "title"}))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
	assert.Equal(t, "pid = $1, title = $2", assignments([]string{"pid", "title"}))
}
