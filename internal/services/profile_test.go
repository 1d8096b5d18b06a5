package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createUser(t, db, "alice")

	summary, err := svc.Summary(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, summary.ID)
	assert.Equal(t, "alice", summary.DisplayName)
	assert.Equal(t, "alice school", summary.Workplace)

	_, err = svc.Summary(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileSummaries(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	summaries, err := svc.Summaries([]uint{alice.ID, bob.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "bob", summaries[bob.ID].DisplayName)

	// Empty input short-circuits without touching the store.
	summaries, err = svc.Summaries(nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
