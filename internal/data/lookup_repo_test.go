package data

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/leadforge/leadscreen/internal/errors"
	"github.com/leadforge/leadscreen/internal/testutil"
)

func TestLookupRepo_MatchedKeys(t *testing.T) {
	db := testutil.SetupTestLookupDB(t, "dnc_numbers", "15125550100", "15125550101", "15125550199")
	repo := NewLookupRepo(db, LookupRepoConfig{Table: "dnc_numbers"})

	matched, err := repo.MatchedKeys(context.Background(), []string{
		"15125550100",
		"15125550101",
		"15125550102", // not in the store
	})
	require.NoError(t, err)

	assert.Len(t, matched, 2)
	assert.Contains(t, matched, "15125550100")
	assert.Contains(t, matched, "15125550101")
	assert.NotContains(t, matched, "15125550102")
}

func TestLookupRepo_MatchedKeysEmptyInput(t *testing.T) {
	repo := NewLookupRepo(nil, LookupRepoConfig{})
	_, err := repo.MatchedKeys(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLookupNotConfigured)

	db := testutil.SetupTestLookupDB(t, "dnc_numbers")
	repo = NewLookupRepo(db, LookupRepoConfig{})
	matched, err := repo.MatchedKeys(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, matched)
}

func TestLookupRepo_MatchedKeysDeduplicates(t *testing.T) {
	db := testutil.SetupTestLookupDB(t, "dnc_numbers", "15125550100")
	repo := NewLookupRepo(db, LookupRepoConfig{})

	matched, err := repo.MatchedKeys(context.Background(), []string{
		"15125550100", "15125550100", "", "15125550100",
	})
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}

func TestLookupRepo_MatchedKeysChunksLargeSets(t *testing.T) {
	seeded := make([]string, 0, 10)
	for i := range 10 {
		seeded = append(seeded, fmt.Sprintf("1512555%04d", i))
	}
	db := testutil.SetupTestLookupDB(t, "dnc_numbers", seeded...)
	repo := NewLookupRepo(db, LookupRepoConfig{MaxParams: 3})

	// 25 keys across chunks of 3; only the seeded 10 match.
	keys := make([]string, 0, 25)
	for i := range 25 {
		keys = append(keys, fmt.Sprintf("1512555%04d", i))
	}

	matched, err := repo.MatchedKeys(context.Background(), keys)
	require.NoError(t, err)
	assert.Len(t, matched, 10)
	for _, key := range seeded {
		assert.Contains(t, matched, key)
	}
}

func TestLookupRepo_MissingTableIsSchemaMismatch(t *testing.T) {
	db := testutil.SetupTestLookupDB(t, "other_table")
	repo := NewLookupRepo(db, LookupRepoConfig{Table: "dnc_numbers"})

	_, err := repo.MatchedKeys(context.Background(), []string{"15125550100"})
	require.Error(t, err)
	assert.True(t, apperrors.IsSchemaMismatch(err))
}

func TestLookupRepo_ConfigDefaults(t *testing.T) {
	repo := NewLookupRepo(nil, LookupRepoConfig{MaxParams: 5000})
	assert.Equal(t, "dnc_numbers", repo.cfg.Table)
	assert.Equal(t, "phone", repo.cfg.KeyColumn)
	assert.Equal(t, sqliteMaxBindParams, repo.cfg.MaxParams)
}
