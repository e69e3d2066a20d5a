package utils

import (
	"testing"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func window(startHour, endHour int) domain.TimeWindow {
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	return domain.TimeWindow{
		Start: day.Add(time.Duration(startHour) * time.Hour),
		End:   day.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestNormalizeWindowsMergesOverlaps(t *testing.T) {
	got := NormalizeWindows([]domain.TimeWindow{
		window(14, 16),
		window(9, 11),
		window(10, 12),
	})

	assert.Equal(t, []domain.TimeWindow{window(9, 12), window(14, 16)}, got)
}

func TestNormalizeWindowsMergesTouchingWindows(t *testing.T) {
	got := NormalizeWindows([]domain.TimeWindow{
		window(9, 11),
		window(11, 13),
	})

	assert.Equal(t, []domain.TimeWindow{window(9, 13)}, got)
}

func TestNormalizeWindowsKeepsDisjointWindows(t *testing.T) {
	got := NormalizeWindows([]domain.TimeWindow{
		window(9, 10),
		window(12, 13),
	})

	assert.Equal(t, []domain.TimeWindow{window(9, 10), window(12, 13)}, got)
}
