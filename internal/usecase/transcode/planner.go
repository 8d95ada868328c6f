package transcode

import (
	"sort"

	"github.com/edmetrics/lessons-media-go/internal/model"
)

// PlanRenditions selects the ladder tiers worth producing for a source:
// every tier whose target height does not exceed the source height,
// ordered ascending. Upscaling is never planned. A source below the
// lowest tier yields ErrNoViableRendition.
func PlanRenditions(ladder []model.QualityTier, srcWidth, srcHeight int) ([]model.QualityTier, error) {
	plan := make([]model.QualityTier, 0, len(ladder))
	for _, tier := range ladder {
		if tier.Height <= srcHeight {
			plan = append(plan, tier)
		}
	}
	if len(plan) == 0 {
		return nil, ErrNoViableRendition
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Height < plan[j].Height })
	return plan, nil
}
