package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryState_OpenAndIsVisible(t *testing.T) {
	s := NewMemoryState()
	assert.False(t, s.IsVisible("/profile"))

	s.Open("/profile")
	assert.True(t, s.IsVisible("/profile"))
	assert.False(t, s.IsVisible("/contacts"))
}

func TestMemoryState_Visible_DescendantOfExplicitlyOpened(t *testing.T) {
	s := NewMemoryState()
	schema := testSchema()
	s.Open("/profile")

	assert.True(t, s.Visible(schema, "/profile/name"))
	assert.False(t, s.Visible(schema, "/contacts"))
}

func TestMemoryState_Visible_ImpliedThroughOpenedFields(t *testing.T) {
	schema := testSchema()
	schema.Fields["profile"].Opened = true
	schema.Fields["profile"].Properties["name"].Opened = true

	s := NewMemoryState()
	assert.True(t, s.Visible(schema, "/profile/name"))
	assert.False(t, s.Visible(schema, "/profile/age"))
}

func TestMemoryState_OpenChildren(t *testing.T) {
	s := NewMemoryState()
	s.OpenChildren("/contacts", []string{"Ana", "Bob"})

	assert.True(t, s.IsVisible("/contacts/Ana"))
	assert.True(t, s.IsVisible("/contacts/Bob"))
	assert.False(t, s.IsVisible("/contacts"))
}

func TestMemoryState_CloseDescendants(t *testing.T) {
	s := NewMemoryState()
	s.Open("/contacts")
	s.Open("/contacts/Ana")
	s.SetPagination("/contacts/Ana", Pagination{Offset: 0, Limit: 5})

	s.CloseDescendants("/contacts")

	assert.False(t, s.IsVisible("/contacts"))
	assert.False(t, s.IsVisible("/contacts/Ana"))
	assert.Equal(t, Pagination{}, s.GetPagination("/contacts/Ana"))
}

func TestMemoryState_Close_OnlyAffectsExactPath(t *testing.T) {
	s := NewMemoryState()
	s.Open("/contacts")
	s.Open("/contacts/Ana")

	s.Close("/contacts")

	assert.False(t, s.IsVisible("/contacts"))
	assert.True(t, s.IsVisible("/contacts/Ana"))
}

func TestMemoryState_PaginationRoundTrip(t *testing.T) {
	s := NewMemoryState()
	s.SetPagination("/contacts", Pagination{Offset: 10, Limit: 20})

	assert.Equal(t, Pagination{Offset: 10, Limit: 20}, s.GetPagination("/contacts"))
	assert.Equal(t, Pagination{}, s.GetPagination("/unset"))
}

func TestMemoryState_VisiblePathsSnapshotRestore(t *testing.T) {
	s := NewMemoryState()
	s.Open("/profile")
	s.Open("/contacts")

	paths := s.VisiblePaths()
	assert.ElementsMatch(t, []string{"/profile", "/contacts"}, paths)

	restored := NewMemoryState()
	restored.RestoreVisible(paths)
	assert.True(t, restored.IsVisible("/profile"))
	assert.True(t, restored.IsVisible("/contacts"))
}

func TestMemoryState_SnapshotRestorePagination(t *testing.T) {
	s := NewMemoryState()
	s.SetPagination("/contacts", Pagination{Offset: 5, Limit: 10})

	snap := s.SnapshotPagination()
	restored := NewMemoryState()
	restored.RestorePagination(snap)

	assert.Equal(t, Pagination{Offset: 5, Limit: 10}, restored.GetPagination("/contacts"))
}

func TestMemoryState_LoadStateLifecycle(t *testing.T) {
	orig := nowFunc
	defer func() { nowFunc = orig }()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }

	s := NewMemoryState()
	_, ok := s.GetLoadState("/contacts")
	assert.False(t, ok)

	s.MarkLoaded("/contacts")
	s.SetTotal("/contacts", 42)

	ls, ok := s.GetLoadState("/contacts")
	require.True(t, ok)
	assert.True(t, ls.Loaded)
	assert.False(t, ls.Stale)
	assert.Equal(t, 42, ls.Total)
	assert.Equal(t, fixed, ls.LoadedAt)

	s.MarkStale("/contacts")
	ls, _ = s.GetLoadState("/contacts")
	assert.True(t, ls.Stale)
}

func TestMemoryState_SnapshotRestoreLoadState(t *testing.T) {
	s := NewMemoryState()
	s.MarkLoaded("/contacts")
	s.SetTotal("/contacts", 7)

	snap := s.SnapshotLoadState()
	restored := NewMemoryState()
	restored.RestoreLoadState(snap)

	ls, ok := restored.GetLoadState("/contacts")
	require.True(t, ok)
	assert.Equal(t, 7, ls.Total)
}

func TestMemoryState_VisibleNoSchema(t *testing.T) {
	s := NewMemoryState()
	s.Open("/topics/AI")

	assert.True(t, s.VisibleNoSchema("/topics/AI"))
	assert.True(t, s.VisibleNoSchema("/topics/AI/subtopics/ML"))
	assert.False(t, s.VisibleNoSchema("/topics/Biology"))
}
