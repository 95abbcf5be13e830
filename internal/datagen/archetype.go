package datagen

// archetype describes one behavioral profile. Stakes are drawn uniformly
// from [stakeMin, stakeMax); activity and session counts scale the per-day
// event volume.
type archetype struct {
	name            string
	weight          float64 // selection probability, weights sum to 1
	activeDays      float64 // fraction of the window the player shows up
	betsPerDay      float64 // mean bets on an active day
	stakeMin        float64
	stakeMax        float64
	depositsPerWeek float64
	sessionsPerDay  float64
}

// Archetype mix: mostly casuals, a solid regular base, a thin tail of
// high rollers, and a few bot-like accounts that hammer the tables with
// tiny stakes (what the fraud view's frequency quantile should catch).
var archetypes = []archetype{
	{
		name:            "casual",
		weight:          0.55,
		activeDays:      0.15,
		betsPerDay:      4,
		stakeMin:        0.5,
		stakeMax:        10,
		depositsPerWeek: 0.5,
		sessionsPerDay:  1,
	},
	{
		name:            "regular",
		weight:          0.35,
		activeDays:      0.5,
		betsPerDay:      12,
		stakeMin:        2,
		stakeMax:        50,
		depositsPerWeek: 2,
		sessionsPerDay:  1.5,
	},
	{
		name:            "high_roller",
		weight:          0.06,
		activeDays:      0.4,
		betsPerDay:      8,
		stakeMin:        100,
		stakeMax:        5000,
		depositsPerWeek: 3,
		sessionsPerDay:  1.2,
	},
	{
		name:            "bot_like",
		weight:          0.04,
		activeDays:      0.95,
		betsPerDay:      400,
		stakeMin:        0.1,
		stakeMax:        1,
		depositsPerWeek: 7,
		sessionsPerDay:  6,
	},
}

// pickArchetype maps a uniform draw in [0,1) onto the weighted mix.
func pickArchetype(u float64) archetype {
	acc := 0.0
	for _, a := range archetypes {
		acc += a.weight
		if u < acc {
			return a
		}
	}
	return archetypes[len(archetypes)-1]
}
