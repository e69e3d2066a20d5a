package utils

import (
	"sort"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

// NormalizeWindows sorts time windows by start and merges the ones that
// overlap or touch, so the stored unavailabilities stay canonical.
func NormalizeWindows(windows []domain.TimeWindow) []domain.TimeWindow {
	if len(windows) <= 1 {
		return windows
	}

	sorted := append([]domain.TimeWindow(nil), windows...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	merged := sorted[:1]
	for _, w := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}
