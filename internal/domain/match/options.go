package match

// Option configures a Match.
type Option func(*Match)

// WithTargetScore sets the countdown start. Non-positive values are ignored.
func WithTargetScore(target int) Option {
	return func(m *Match) {
		if target > 0 {
			m.target = target
		}
	}
}

// WithThrowsPerTurn sets how many darts a player throws before the turn
// passes. Non-positive values are ignored.
func WithThrowsPerTurn(n int) Option {
	return func(m *Match) {
		if n > 0 {
			m.perTurn = n
		}
	}
}

// WithNames sets player names by seat. Missing or blank names fall back to
// "Player N".
func WithNames(names ...string) Option {
	return func(m *Match) {
		m.names = append([]string(nil), names...)
	}
}

// WithColors sets player colors by seat. Missing or blank colors fall back
// to the default palette.
func WithColors(colors ...string) Option {
	return func(m *Match) {
		m.colors = append([]string(nil), colors...)
	}
}
