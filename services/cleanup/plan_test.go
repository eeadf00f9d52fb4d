package cleanup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/internal/models"
)

func planConfig() *config.CleanupConfig {
	return &config.CleanupConfig{
		SafetyCap:            2000,
		UnreadOnlyCategories: true,
	}
}

func TestBuildPlan_AllFiltersWithAge(t *testing.T) {
	// Arrange
	sel := models.FilterSelection{
		Unread:     true,
		Promotions: true,
		Social:     true,
		Updates:    true,
		Age:        "30d",
		Restore:    true,
		SpamDetect: true,
	}

	// Act
	plan := BuildPlan(sel, planConfig())

	// Assert
	assert.Equal(t, []string{
		"is:unread older_than:30d",
		"is:unread category:promotions older_than:30d",
		"is:unread category:social older_than:30d",
		"is:unread category:updates older_than:30d",
	}, plan.Queries)
	assert.True(t, plan.RestoreEnabled)
	assert.True(t, plan.SpamDetectionEnabled)
	assert.Equal(t, 2000, plan.SafetyCap)
}

func TestBuildPlan_CategoriesCarryUnreadPredicate(t *testing.T) {
	// Arrange
	sel := models.FilterSelection{Promotions: true}

	// Act
	plan := BuildPlan(sel, planConfig())

	// Assert
	assert.Equal(t, []string{"is:unread category:promotions"}, plan.Queries)
}

func TestBuildPlan_UnreadOnlyPolicyOff(t *testing.T) {
	// Arrange
	cfg := planConfig()
	cfg.UnreadOnlyCategories = false
	sel := models.FilterSelection{Promotions: true, Social: true}

	// Act
	plan := BuildPlan(sel, cfg)

	// Assert
	assert.Equal(t, []string{"category:promotions", "category:social"}, plan.Queries)
}

func TestBuildPlan_EmptySelectionFallsBackToUnread(t *testing.T) {
	// Act
	plan := BuildPlan(models.FilterSelection{}, planConfig())

	// Assert
	assert.Equal(t, []string{"is:unread"}, plan.Queries)
}

func TestBuildPlan_EmptySelectionKeepsAge(t *testing.T) {
	// Act
	plan := BuildPlan(models.FilterSelection{Age: "1y"}, planConfig())

	// Assert
	assert.Equal(t, []string{"is:unread older_than:1y"}, plan.Queries)
}

func TestBuildPlan_EveryQueryEmbedsUnreadPredicate(t *testing.T) {
	// every category combination, with and without age
	for mask := 0; mask < 8; mask++ {
		for _, age := range []string{"", "30d"} {
			sel := models.FilterSelection{
				Promotions: mask&1 != 0,
				Social:     mask&2 != 0,
				Updates:    mask&4 != 0,
				Age:        age,
			}

			plan := BuildPlan(sel, planConfig())

			for _, q := range plan.Queries {
				assert.Contains(t, q, "is:unread", "selection %+v produced %q", sel, q)
			}
		}
	}
}

func TestBuildPlan_Deterministic(t *testing.T) {
	// Arrange
	sel := models.FilterSelection{Unread: true, Updates: true, Social: true, Age: "6m"}

	// Act
	first := BuildPlan(sel, planConfig())
	second := BuildPlan(sel, planConfig())

	// Assert
	assert.Equal(t, first.Queries, second.Queries)
}
