package event

// Payment is the unit fed into the window controller.
// Ts is Unix seconds (avoid time.Time on the hot path).
type Payment struct {
	Actor  string
	Target string
	Ts     int64
}
