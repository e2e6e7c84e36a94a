package achievements

import "log/slog"

// DefaultCatalog returns the built-in achievement definitions. Seeding is
// keyed on (name, tier) so redeploys never duplicate entries.
func DefaultCatalog() []Achievement {
	return []Achievement{
		// reporter track
		{Name: "First Report", Description: "Submit your first environmental report", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 1, Icon: "🌱", Points: 10},
		{Name: "Getting Started", Description: "Submit 3 environmental reports", Category: CategoryReporter, Tier: TierBronze, Metric: MetricReportCount, TargetValue: 3, Icon: "🌟", Points: 15},
		{Name: "Environmental Activist", Description: "Submit 5 environmental reports", Category: CategoryReporter, Tier: TierSilver, Metric: MetricReportCount, TargetValue: 5, Icon: "🌿", Points: 25},
		{Name: "Dedicated Reporter", Description: "Submit 10 environmental reports", Category: CategoryReporter, Tier: TierSilver, Metric: MetricReportCount, TargetValue: 10, Icon: "📋", Points: 50},
		{Name: "Eco Warrior", Description: "Submit 25 environmental reports", Category: CategoryReporter, Tier: TierGold, Metric: MetricReportCount, TargetValue: 25, Icon: "🌳", Points: 100},
		{Name: "Environmental Champion", Description: "Submit 50 environmental reports", Category: CategoryReporter, Tier: TierGold, Metric: MetricReportCount, TargetValue: 50, Icon: "🏆", Points: 250},
		{Name: "Super Reporter", Description: "Submit 75 environmental reports", Category: CategoryReporter, Tier: TierPlatinum, Metric: MetricReportCount, TargetValue: 75, Icon: "⭐", Points: 400},
		{Name: "Environmental Guardian", Description: "Submit 100 environmental reports", Category: CategoryReporter, Tier: TierPlatinum, Metric: MetricReportCount, TargetValue: 100, Icon: "🌲", Points: 500},
		{Name: "Environmental Legend", Description: "Submit 200 environmental reports", Category: CategoryReporter, Tier: TierLegendary, Metric: MetricReportCount, TargetValue: 200, Icon: "🌟", Points: 1000},
		{Name: "Marathon Reporter", Description: "Submit 500 environmental reports", Category: CategoryReporter, Tier: TierLegendary, Metric: MetricReportCount, TargetValue: 500, Icon: "🏃‍♂️", Points: 2500},

		// validator track
		{Name: "Fact Checker", Description: "Validate your first report", Category: CategoryValidator, Tier: TierBronze, Metric: MetricValidationCount, TargetValue: 1, Icon: "✅", Points: 15},
		{Name: "Quality Controller", Description: "Validate 10 reports", Category: CategoryValidator, Tier: TierSilver, Metric: MetricValidationCount, TargetValue: 10, Icon: "🔍", Points: 50},
		{Name: "Expert Validator", Description: "Validate 50 reports", Category: CategoryValidator, Tier: TierGold, Metric: MetricValidationCount, TargetValue: 50, Icon: "🎯", Points: 200},

		// streak track
		{Name: "Consistent Reporter", Description: "Stay active for 3 consecutive days", Category: CategoryStreak, Tier: TierBronze, Metric: MetricStreakDays, TargetValue: 3, Icon: "🔥", Points: 20},
		{Name: "Weekly Champion", Description: "Stay active for 7 consecutive days", Category: CategoryStreak, Tier: TierSilver, Metric: MetricStreakDays, TargetValue: 7, Icon: "🔥", Points: 75},
		{Name: "Unstoppable Force", Description: "Stay active for 30 consecutive days", Category: CategoryStreak, Tier: TierGold, Metric: MetricStreakDays, TargetValue: 30, Icon: "🔥", Points: 300},

		// explorer track
		{Name: "Map Explorer", Description: "View the environmental heatmap 5 times", Category: CategoryExplorer, Tier: TierBronze, Metric: MetricMapUsage, TargetValue: 5, Icon: "🗺️", Points: 15},
		{Name: "Area Scout", Description: "Report from 10 different locations", Category: CategoryExplorer, Tier: TierSilver, Metric: MetricLocationVariety, TargetValue: 10, Icon: "📍", Points: 50},
		{Name: "Regional Expert", Description: "Report from 25 different locations", Category: CategoryExplorer, Tier: TierGold, Metric: MetricLocationVariety, TargetValue: 25, Icon: "🌍", Points: 150},

		// impact track
		{Name: "Alert Citizen", Description: "Report 3 high severity incidents", Category: CategoryImpact, Tier: TierBronze, Metric: MetricHighSeverity, TargetValue: 3, Icon: "⚠️", Points: 30},
		{Name: "Crisis Spotter", Description: "Report 10 high severity incidents", Category: CategoryImpact, Tier: TierSilver, Metric: MetricHighSeverity, TargetValue: 10, Icon: "🚨", Points: 100},

		// expert track
		{Name: "Versatile Reporter", Description: "Use 5 different report types", Category: CategoryExpert, Tier: TierBronze, Metric: MetricReportTypes, TargetValue: 5, Icon: "🎓", Points: 40},
		{Name: "Environmental Specialist", Description: "Use all available report types", Category: CategoryExpert, Tier: TierGold, Metric: MetricReportTypes, TargetValue: 8, Icon: "👨‍🔬", Points: 200},

		// community track
		{Name: "Quick Responder", Description: "Validate 5 reports within 24 hours of submission", Category: CategoryCommunity, Tier: TierSilver, Metric: MetricQuickResponse, TargetValue: 5, Icon: "⚡", Points: 75},
	}
}

// SeedDefaults inserts any missing catalog entries and reports how many were
// created.
func SeedDefaults(store Store) (int, error) {
	created, err := store.SeedAchievements(DefaultCatalog())
	if err != nil {
		return 0, err
	}
	if created > 0 {
		slog.Info("achievement catalog seeded", "created", created)
	}
	return created, nil
}
