package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const original = "# Title\n\nOriginal body with\ttabs and trailing space \n"

func TestSessionViewing(t *testing.T) {
	s := NewSession(original)
	assert.False(t, s.Editing())
	assert.Equal(t, original, s.CurrentText())
}

func TestSessionStartEditSeedsBuffer(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()

	assert.True(t, s.Editing())
	assert.Equal(t, original, s.CurrentText())
}

func TestSessionStartEditIdempotent(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()
	require.NoError(t, s.SetBuffer("changed"))

	// A second StartEdit while editing must not reseed the buffer.
	s.StartEdit()
	assert.Equal(t, "changed", s.CurrentText())
}

func TestSessionSaveEdit(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()
	require.NoError(t, s.SetBuffer("# Edited\n\nNew body"))

	saved, err := s.SaveEdit()
	require.NoError(t, err)
	assert.Equal(t, "# Edited\n\nNew body", saved)
	assert.False(t, s.Editing())
	assert.Equal(t, "# Edited\n\nNew body", s.CurrentText())
}

// TestSessionCancelEditRoundTrip verifies the byte-for-byte restore:
// whatever happened in the buffer, cancel returns the exact original.
func TestSessionCancelEditRoundTrip(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()
	require.NoError(t, s.SetBuffer("totally different content"))

	s.CancelEdit()

	assert.False(t, s.Editing())
	assert.Equal(t, []byte(original), []byte(s.CurrentText()))
}

func TestSessionCancelAfterSaveKeepsCommit(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()
	require.NoError(t, s.SetBuffer("committed"))
	_, err := s.SaveEdit()
	require.NoError(t, err)

	// Cancel outside editing is a no-op on the committed text.
	s.CancelEdit()
	assert.Equal(t, "committed", s.CurrentText())

	// A later edit cycle cancels back to the saved text, not the
	// original generation.
	s.StartEdit()
	require.NoError(t, s.SetBuffer("scratch"))
	s.CancelEdit()
	assert.Equal(t, "committed", s.CurrentText())
}

func TestSessionSetBufferOutsideEdit(t *testing.T) {
	s := NewSession(original)
	err := s.SetBuffer("nope")
	assert.Error(t, err)
	assert.Equal(t, original, s.CurrentText())
}

func TestSessionSaveOutsideEdit(t *testing.T) {
	s := NewSession(original)
	_, err := s.SaveEdit()
	assert.Error(t, err)
}

func TestSessionReplaceDropsEdit(t *testing.T) {
	s := NewSession(original)
	s.StartEdit()
	require.NoError(t, s.SetBuffer("in progress"))

	s.Replace("# Regenerated")

	assert.False(t, s.Editing())
	assert.Equal(t, "# Regenerated", s.CurrentText())
}
