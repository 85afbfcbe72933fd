package progress_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // driver for "sqlite"

	"github.com/pacewise/pacewise-progress/internal/db"
	"github.com/pacewise/pacewise-progress/internal/progress"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "progress.db")
	dbh, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), dbh, db.DriverSQLite))
	return dbh
}

func TestSQLStoreEndToEnd(t *testing.T) {
	dbh := openTestDB(t)
	store := progress.NewSQLStore(dbh, "sqlite")
	ini := progress.NewInitializer(store, 0, nil)
	engine := progress.NewEngine(store, nil)
	ctx := context.Background()

	_, err := ini.Initialize(ctx, course, []string{student}, twoModuleTree())
	require.NoError(t, err)

	st, err := store.GetSectionItemProgress(ctx, course, student, "I1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, st)

	// Out of order is rejected by the predecessor lookup.
	_, err = engine.AdvanceSectionItem(ctx, course, student, "I2", true)
	assert.ErrorIs(t, err, progress.ErrSequenceViolation)

	touched, err := engine.AdvanceSectionItem(ctx, course, student, "I1", true)
	require.NoError(t, err)
	require.Len(t, touched.SectionItems, 2)

	_, err = engine.AdvanceSectionItem(ctx, course, student, "I2", true)
	require.NoError(t, err)

	// The cascade crossed the module boundary: M1 complete, M2 primed.
	m1, err := store.GetModuleProgress(ctx, course, student, "M1")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusComplete, m1)
	i3, err := store.GetSectionItemProgress(ctx, course, student, "I3")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, i3)

	_, err = engine.AdvanceSectionItem(ctx, course, student, "I3", true)
	require.NoError(t, err)
	c, err := store.GetCourseProgress(ctx, course, student)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusComplete, c)
}

func TestSQLStoreIndexWritesAreIdempotent(t *testing.T) {
	dbh := openTestDB(t)
	store := progress.NewSQLStore(dbh, "sqlite")
	ctx := context.Background()

	idx, err := progress.BuildIndex(twoModuleTree())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err := store.InTx(ctx, func(tx progress.Tx) error {
			return tx.PutIndex(ctx, course, idx)
		})
		require.NoError(t, err, "write %d", i)
	}

	var n int
	require.NoError(t, dbh.QueryRow(`SELECT COUNT(*) FROM section_item_next WHERE course_instance_id=$1`, course).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestSQLStoreGetterForUnknownStudent(t *testing.T) {
	dbh := openTestDB(t)
	store := progress.NewSQLStore(dbh, "sqlite")

	_, err := store.GetCourseProgress(context.Background(), course, "nobody")
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
}
