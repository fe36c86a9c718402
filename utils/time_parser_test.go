package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	assert := assert.New(t)

	testCases := []struct {
		input string
		want  time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"2h", 2 * time.Hour},
		{"90m", 90 * time.Minute},
		{"1d", 24 * time.Hour},
		{"3d", 72 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
	}

	for _, c := range testCases {
		got, err := ParseDuration(c.input)
		require.NoError(t, err, c.input)
		assert.Equal(c.want, got, c.input)
	}

	for _, bad := range []string{"", "abc", "xd", "1.5w"} {
		_, err := ParseDuration(bad)
		assert.Error(err, bad)
	}
}

func TestFormatDuration(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("2d", FormatDuration(48*time.Hour))
	assert.Equal("3h", FormatDuration(3*time.Hour))
	assert.Equal("90m", FormatDuration(90*time.Minute))
	assert.Equal("45m", FormatDuration(45*time.Minute))
}
