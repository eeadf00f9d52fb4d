package cleanup

import (
	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/utils"
)

// baseUnreadQuery is the safety predicate: category filters never touch read
// mail while the unread-only policy is on.
const baseUnreadQuery = "is:unread"

var categoryNames = []string{"promotions", "social", "updates"}

// BuildPlan turns raw form selections into an immutable cleanup plan. It is
// pure and deterministic: same selection, same ordered query list. Queries
// are deduplicated preserving first-seen order, and an empty selection falls
// back to a single bare unread query.
func BuildPlan(sel models.FilterSelection, cfg *config.CleanupConfig) *models.CleanupPlan {
	var queries []string

	if sel.Unread {
		queries = append(queries, baseUnreadQuery)
	}

	selected := map[string]bool{
		"promotions": sel.Promotions,
		"social":     sel.Social,
		"updates":    sel.Updates,
	}
	for _, name := range categoryNames {
		if !selected[name] {
			continue
		}
		q := "category:" + name
		if cfg.UnreadOnlyCategories {
			q = baseUnreadQuery + " " + q
		}
		queries = append(queries, q)
	}

	if sel.Age != "" {
		for i := range queries {
			queries[i] += " older_than:" + sel.Age
		}
	}

	queries = utils.DedupeStrings(queries)

	if len(queries) == 0 {
		q := baseUnreadQuery
		if sel.Age != "" {
			q += " older_than:" + sel.Age
		}
		queries = []string{q}
	}

	return &models.CleanupPlan{
		Queries:              queries,
		RestoreEnabled:       sel.Restore,
		SpamDetectionEnabled: sel.SpamDetect,
		SafetyCap:            cfg.SafetyCap,
	}
}
