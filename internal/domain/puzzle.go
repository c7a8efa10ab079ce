package domain

// Puzzle is the fixed lateral-thinking puzzle every room plays. It is loaded
// once from configuration at startup and never mutated.
type Puzzle struct {
	Question   string
	FullAnswer string
}
