package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ts []Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Name)
	}
	return out
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(Template{ID: "2", Name: "b"}))
	require.NoError(t, s.Add(Template{ID: "1", Name: "a"}))
	require.NoError(t, s.Add(Template{ID: "3", Name: "c"}))
	assert.Equal(t, []string{"b", "a", "c"}, names(s.List()))

	require.True(t, s.Remove("1"))
	assert.Equal(t, []string{"b", "c"}, names(s.List()))
	got, err := s.Get("3")
	require.NoError(t, err)
	assert.Equal(t, "c", got.Name)
}

func TestStore_DuplicateIDConflicts(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(Template{ID: "x", Name: "first"}))
	err := s.Add(Template{ID: "x", Name: "second"})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "x", conflict.ID)
	assert.Equal(t, 1, s.Len())
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(Template{ID: "a"}))
	assert.False(t, s.Remove("zzz"))
	assert.Equal(t, 1, s.Len())
}

func TestStore_ListIsACopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(Template{ID: "a", Name: "orig"}))
	l := s.List()
	l[0].Name = "mutated"
	got, _ := s.Get("a")
	assert.Equal(t, "orig", got.Name)
}

func TestSession_UploadAutoSelects(t *testing.T) {
	s := NewSession()
	tpl := New("notes.txt", "Hello world", "")
	require.NoError(t, s.AddAndSelect(tpl))
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, tpl, sel)
	assert.False(t, sel.HasMarkup())
}

func TestSession_RemoveSelectedClearsSelection(t *testing.T) {
	s := NewSession()
	a, b := New("a.txt", "A", ""), New("b.txt", "B", "")
	require.NoError(t, s.Add(a))
	require.NoError(t, s.AddAndSelect(b))

	s.Remove(a.ID)
	sel, ok := s.Selected()
	require.True(t, ok, "removing a non-selected template keeps the selection")
	assert.Equal(t, b.ID, sel.ID)

	s.Remove(b.ID)
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Empty(t, s.List())

	// idempotent
	s.Remove(b.ID)
}

func TestSession_SelectUnknown(t *testing.T) {
	s := NewSession()
	a := New("a.txt", "A", "")
	require.NoError(t, s.AddAndSelect(a))
	_, err := s.Select("missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, a.ID, sel.ID, "failed select leaves selection untouched")
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
