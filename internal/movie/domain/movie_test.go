package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestMovie_ToggleReaction(t *testing.T) {
	tests := []struct {
		name         string
		current      *bool
		isLike       bool
		expected     *bool
		likeCount    int
		dislikeCount int
	}{
		{name: "sin reacción previa, like", current: nil, isLike: true, expected: boolPtr(true), likeCount: 3, dislikeCount: 1},
		{name: "sin reacción previa, dislike", current: nil, isLike: false, expected: boolPtr(false), likeCount: 2, dislikeCount: 2},
		{name: "mismo like se retira", current: boolPtr(true), isLike: true, expected: nil, likeCount: 1, dislikeCount: 1},
		{name: "mismo dislike se retira", current: boolPtr(false), isLike: false, expected: nil, likeCount: 2, dislikeCount: 0},
		{name: "dislike pasa a like", current: boolPtr(false), isLike: true, expected: boolPtr(true), likeCount: 3, dislikeCount: 0},
		{name: "like pasa a dislike", current: boolPtr(true), isLike: false, expected: boolPtr(false), likeCount: 1, dislikeCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Movie{LikeCount: 2, DislikeCount: 1}

			got := m.ToggleReaction(tt.current, tt.isLike)

			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.likeCount, m.LikeCount)
			assert.Equal(t, tt.dislikeCount, m.DislikeCount)
		})
	}
}

func TestMovie_CursorValue(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	m := Movie{ID: 9, Title: "Alien", LikeCount: 4, DislikeCount: 1, Director: DirectorRef{ID: 3}, CreatedAt: created}

	for column, expected := range map[string]any{
		"id":            int64(9),
		"title":         "Alien",
		"like_count":    int64(4),
		"dislike_count": int64(1),
		"director_id":   int64(3),
		"created_at":    created,
	} {
		v, ok := m.CursorValue(column)
		require.True(t, ok, column)
		assert.Equal(t, expected, v, column)
	}

	_, ok := m.CursorValue("detail")
	assert.False(t, ok)
}

func TestMovieFilter_Criteria(t *testing.T) {
	assert.Empty(t, MovieFilter{}.Criteria().ToConditions())

	conds := MovieFilter{Title: "ali", DirectorID: 3}.Criteria().ToConditions()
	require.Len(t, conds, 2)
	assert.Equal(t, "title", conds[0].Field)
	assert.Equal(t, "%ali%", conds[0].Value)
	assert.Equal(t, "director_id", conds[1].Field)
	assert.Equal(t, int64(3), conds[1].Value)
}

func TestReaction(t *testing.T) {
	assert.Equal(t, ReactionNone, Reaction(nil))
	assert.Equal(t, ReactionLike, Reaction(boolPtr(true)))
	assert.Equal(t, ReactionDislike, Reaction(boolPtr(false)))
}
