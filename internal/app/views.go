package service

import (
	"github.com/okian/rake/internal/domain/engine"
)

// Leaderboard metrics selectable via LeaderboardParams.Metric.
const (
	MetricTotalWager = "total_wager"
	MetricNetProfit  = "net_profit"
)

// LeaderboardParams carries the user-tunable knobs of the leaderboard view.
// Zero values mean "use the configured default".
type LeaderboardParams struct {
	WindowDays int
	TopN       int
	Metric     string
}

// FraudParams carries the two quantile thresholds of the fraud view.
// Zero values mean "use the configured default".
type FraudParams struct {
	FrequencyQuantile float64
	StakeQuantile     float64
}

// OverviewResult is the landing view: dataset shape plus headline series.
type OverviewResult struct {
	TableRows map[string]int      `json:"table_rows"`
	DailyBets []engine.DailyCount `json:"daily_bets"`
	TopWagers []engine.Entry      `json:"top_wagers"`
}

// LeaderboardResult is the ranked player list plus the window it covers.
type LeaderboardResult struct {
	Metric     string         `json:"metric"`
	WindowDays int            `json:"window_days"`
	Entries    []engine.Entry `json:"entries"`
}

// RetentionResult is the engagement view: DAU plus the cohort matrix.
type RetentionResult struct {
	DAU     []engine.DailyCount    `json:"dau"`
	Cohorts []engine.RetentionCell `json:"cohorts"`
}

// FraudResult holds both two-stage outlier lists of the fraud view.
type FraudResult struct {
	HighFrequency []engine.Outlier `json:"high_frequency"`
	ExtremeStakes []engine.Outlier `json:"extreme_stakes"`
}
