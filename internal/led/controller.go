// Package led drives board status LEDs. The manager mirrors the exposure lock
// on the "system" LED; the API can also set any LED directly.
package led

// Patterns understood by every controller.
const (
	PatternSolid     = "solid"
	PatternBlink     = "blink"
	PatternHeartbeat = "heartbeat"
)

// Controller sets LEDs by board-neutral name ("system", "user").
type Controller interface {
	// Set switches ledType on or off. A non-empty pattern also changes how
	// it lights; an empty pattern leaves the current one.
	Set(ledType string, enabled bool, pattern string) error

	// Available lists the LED names this board has, sorted.
	Available() []string

	// Patterns lists the accepted patterns.
	Patterns() []string
}
