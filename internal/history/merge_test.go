package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RuleBadge/internal/model"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestMerge_EmptySeries(t *testing.T) {
	out, appended := Merge(model.Series{}, 7, base)
	assert.True(t, appended)
	assert.Equal(t, model.Series{{Date: base, Count: 7}}, out)
}

func TestMerge_SameValueUnchanged(t *testing.T) {
	in := model.Series{{Date: base, Count: 3}, {Date: base.Add(time.Hour), Count: 5}}
	out, appended := Merge(in, 5, base.Add(30*24*time.Hour))
	assert.False(t, appended)
	assert.Equal(t, in, out)
}

func TestMerge_DifferentValueAppends(t *testing.T) {
	in := model.Series{{Date: base, Count: 3}}
	now := base.Add(time.Second)
	out, appended := Merge(in, 4, now)
	require.True(t, appended)
	require.Len(t, out, 2)
	assert.Equal(t, model.Observation{Date: now, Count: 4}, out[1])
	assert.Len(t, in, 1, "input must not be modified")
}

func TestMerge_Idempotent(t *testing.T) {
	in := model.Series{{Date: base, Count: 1}}
	first, appended := Merge(in, 9, base.Add(time.Minute))
	require.True(t, appended)
	second, appended := Merge(first, 9, base.Add(2*time.Minute))
	assert.False(t, appended)
	assert.Equal(t, first, second)
}

func TestMerge_ReturnToEarlierValueAppends(t *testing.T) {
	in := model.Series{{Date: base, Count: 2}, {Date: base.Add(time.Hour), Count: 3}}
	out, appended := Merge(in, 2, base.Add(2*time.Hour))
	assert.True(t, appended)
	assert.Len(t, out, 3)
}

func TestMergeWithPolicy(t *testing.T) {
	in := model.Series{{Date: base, Count: 5}}
	tests := []struct {
		name     string
		policy   DedupPolicy
		now      time.Time
		appended bool
	}{
		{"value ignores elapsed time", DedupValue, base.Add(72 * time.Hour), false},
		{"day collapses same day", DedupDay, base.Add(3 * time.Hour), false},
		{"day keeps next day", DedupDay, base.Add(24 * time.Hour), true},
		{"none keeps everything", DedupNone, base.Add(time.Second), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appended := MergeWithPolicy(in, 5, tt.now, tt.policy)
			assert.Equal(t, tt.appended, appended)
		})
	}
}

func TestParseDedupPolicy(t *testing.T) {
	p, err := ParseDedupPolicy("")
	require.NoError(t, err)
	assert.Equal(t, DedupValue, p)

	p, err = ParseDedupPolicy("day")
	require.NoError(t, err)
	assert.Equal(t, DedupDay, p)

	_, err = ParseDedupPolicy("hourly")
	assert.Error(t, err)
}
