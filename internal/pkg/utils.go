package pkg

import (
	"fmt"
	"strings"
	"time"
)

const (
	DATE_LAYOUT_DISPLAY = "02.01.2006"
	DATE_LAYOUT_ISO     = "2006-01-02"
)

// ParseTargetDate accepts YYYY-MM-DD or DD.MM.YYYY and returns midnight of that day in loc.
func ParseTargetDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{DATE_LAYOUT_ISO, DATE_LAYOUT_DISPLAY} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or DD.MM.YYYY", value)
}

func FormatTargetDate(t time.Time) string {
	return t.Format(DATE_LAYOUT_DISPLAY)
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = len(items)
	}

	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
