package config

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnknownKey_TopLevel(t *testing.T) {
	path := writeTestConfig(t, "[sync]\nunknown_field = \"value\"")
	_, err := Load(path, testLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoad_UnknownKey_TypoSuggestion(t *testing.T) {
	path := writeTestConfig(t, "[sync]\npoll_intervl = \"10m\"")
	_, err := Load(path, testLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean")
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestLoad_UnknownKey_NoSuggestion(t *testing.T) {
	path := writeTestConfig(t, "completely_unrelated_key = true")
	_, err := Load(path, testLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"poll_intervl", "poll_interval", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b))
		})
	}
}

func TestClosestMatch_Found(t *testing.T) {
	known := []string{"poll_interval", "log_level", "log_format"}
	assert.Equal(t, "poll_interval", closestMatch("poll_intervl", known))
}

func TestClosestMatch_NotFound(t *testing.T) {
	known := []string{"poll_interval", "log_level"}
	assert.Equal(t, "", closestMatch("completely_unrelated", known))
}

func TestKnownGlobalKeysList_Sorted(t *testing.T) {
	assert.True(t, sort.StringsAreSorted(knownGlobalKeysList),
		"knownGlobalKeysList must be sorted")
}
