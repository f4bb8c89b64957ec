package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	for _, in := range []string{"2024-03-14", "14.03.2024", " 14.03.2024 "} {
		got, err := ParseTargetDate(in, berlin)
		require.NoError(t, err, in)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, time.March, got.Month())
		assert.Equal(t, 14, got.Day())
		assert.Equal(t, berlin, got.Location())
	}

	for _, in := range []string{"", "14/03/2024", "2024-13-01", "31.02.2024"} {
		_, err := ParseTargetDate(in, berlin)
		assert.Error(t, err, in)
	}
}

func TestFormatTargetDate(t *testing.T) {
	assert.Equal(t, "05.01.2024", FormatTargetDate(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)))
}

func TestChunk(t *testing.T) {
	items := make([]int, 185)
	chunks := Chunk(items, 90)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 90)
	assert.Len(t, chunks[1], 90)
	assert.Len(t, chunks[2], 5)

	assert.Empty(t, Chunk([]int{}, 90))
	assert.Len(t, Chunk([]int{1, 2}, 0), 1)
}
