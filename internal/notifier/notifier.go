// Package notifier
package notifier

// Notifier sends best-effort outbound text notifications. Notify must
// never block the trade-execution path and never surfaces failures.
type Notifier interface {
	Notify(msg string)
}

// Noop discards every notification. Used when no destination is
// configured and in tests.
type Noop struct{}

func (Noop) Notify(string) {}
