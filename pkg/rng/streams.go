package rng

// Named streams used by the payment generator. Keeping each decision on its
// own stream means changing one distribution does not reshuffle the others.
const (
	UserPick  = "gen.user_pick"
	TimeStep  = "gen.time_step"
	LateShift = "gen.late_shift"
	Names     = "gen.names"
)
