package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacewise/pacewise-progress/internal/progress"
)

func TestInitializeSeedsHeadEntitiesOnly(t *testing.T) {
	store := newFakeStore()
	ini := progress.NewInitializer(store, 0, nil)
	ctx := context.Background()

	res, err := ini.Initialize(ctx, course, []string{student}, twoModuleTree())
	require.NoError(t, err)
	assert.Equal(t, 1, res.StudentCount)
	// 2 modules + 2 sections + 3 items + 1 course row
	assert.Equal(t, 8, res.TotalRecords)

	// Exactly one module, one section and one item IN_PROGRESS.
	wantModules := map[string]progress.Status{"M1": progress.StatusInProgress, "M2": progress.StatusIncomplete}
	for id, want := range wantModules {
		st, err := store.GetModuleProgress(ctx, course, student, id)
		require.NoError(t, err)
		assert.Equal(t, want, st, id)
	}
	wantSections := map[string]progress.Status{"S1": progress.StatusInProgress, "S2": progress.StatusIncomplete}
	for id, want := range wantSections {
		st, err := store.GetSectionProgress(ctx, course, student, id)
		require.NoError(t, err)
		assert.Equal(t, want, st, id)
	}
	wantItems := map[string]progress.Status{
		"I1": progress.StatusInProgress,
		"I2": progress.StatusIncomplete,
		"I3": progress.StatusIncomplete,
	}
	for id, want := range wantItems {
		st, err := store.GetSectionItemProgress(ctx, course, student, id)
		require.NoError(t, err)
		assert.Equal(t, want, st, id)
	}

	c, err := store.GetCourseProgress(ctx, course, student)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusInProgress, c)
}

func TestInitializeKeepsExistingCourseRow(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	_, err := store.EnsureCourseProgress(ctx, course, student, progress.StatusComplete)
	require.NoError(t, err)

	ini := progress.NewInitializer(store, 0, nil)
	res, err := ini.Initialize(ctx, course, []string{student}, twoModuleTree())
	require.NoError(t, err)

	// Course row already existed, so only 7 rows were written.
	assert.Equal(t, 7, res.TotalRecords)
	c, err := store.GetCourseProgress(ctx, course, student)
	require.NoError(t, err)
	assert.Equal(t, progress.StatusComplete, c)
}

func TestInitializeChunksStudentBatches(t *testing.T) {
	store := newFakeStore()
	ini := progress.NewInitializer(store, 2, nil)
	ctx := context.Background()

	res, err := ini.Initialize(ctx, course, []string{"a", "b", "c", "d", "e"}, twoModuleTree())
	require.NoError(t, err)
	assert.Equal(t, 5, res.StudentCount)
	assert.Equal(t, 5*8, res.TotalRecords)
	// 5 students at chunk size 2 -> 3 transactions.
	assert.Equal(t, 3, store.txCount)

	// Every student got the same head invariant.
	for _, sid := range []string{"a", "b", "c", "d", "e"} {
		st, err := store.GetSectionItemProgress(ctx, course, sid, "I1")
		require.NoError(t, err)
		assert.Equal(t, progress.StatusInProgress, st, sid)
	}
}

func TestInitializeRejectsEmptyTree(t *testing.T) {
	store := newFakeStore()
	ini := progress.NewInitializer(store, 0, nil)
	_, err := ini.Initialize(context.Background(), course, []string{student}, nil)
	assert.ErrorIs(t, err, progress.ErrEmptyTree)
	assert.Zero(t, store.txCount)
}
