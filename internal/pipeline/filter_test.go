package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spends-pipeline/internal/model"
)

func TestMatchesFilter(t *testing.T) {
	rec := GenericRecord{"dept": "Health Canada", "amount": 100}

	t.Run("nil spec passes", func(t *testing.T) {
		require.True(t, MatchesFilter(rec, nil))
	})

	t.Run("empty spec passes", func(t *testing.T) {
		require.True(t, MatchesFilter(rec, &model.FilterSpec{Field: "dept"}))
	})

	t.Run("include exact match", func(t *testing.T) {
		f := &model.FilterSpec{Field: "dept", Include: []string{"Health Canada", "Defence"}}
		require.True(t, MatchesFilter(rec, f))
	})

	t.Run("include is case sensitive", func(t *testing.T) {
		f := &model.FilterSpec{Field: "dept", Include: []string{"health canada"}}
		require.False(t, MatchesFilter(rec, f))
	})

	t.Run("empty include set rejects everything", func(t *testing.T) {
		f := &model.FilterSpec{Field: "dept", Include: []string{}}
		require.False(t, MatchesFilter(rec, f))
	})

	t.Run("contains is case insensitive", func(t *testing.T) {
		f := &model.FilterSpec{Field: "dept", Contains: []string{"HEALTH"}}
		require.True(t, MatchesFilter(rec, f))
	})

	t.Run("contains needs one match", func(t *testing.T) {
		f := &model.FilterSpec{Field: "dept", Contains: []string{"defence", "canada"}}
		require.True(t, MatchesFilter(rec, f))
		f = &model.FilterSpec{Field: "dept", Contains: []string{"defence", "transport"}}
		require.False(t, MatchesFilter(rec, f))
	})

	t.Run("include and contains are ANDed", func(t *testing.T) {
		f := &model.FilterSpec{
			Field:    "dept",
			Include:  []string{"Health Canada"},
			Contains: []string{"defence"},
		}
		require.False(t, MatchesFilter(rec, f))

		f.Contains = []string{"health"}
		require.True(t, MatchesFilter(rec, f))
	})

	t.Run("missing field reads as empty", func(t *testing.T) {
		f := &model.FilterSpec{Field: "region", Include: []string{"West"}}
		require.False(t, MatchesFilter(rec, f))

		f = &model.FilterSpec{Field: "region", Include: []string{""}}
		require.True(t, MatchesFilter(rec, f))
	})

	t.Run("non-string field values compare by string form", func(t *testing.T) {
		f := &model.FilterSpec{Field: "amount", Include: []string{"100"}}
		require.True(t, MatchesFilter(rec, f))
	})
}
