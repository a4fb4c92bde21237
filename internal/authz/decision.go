package authz

import (
	"github.com/materiku/materiku-backend/internal/model"
	"github.com/rs/zerolog"
)

// Decision is the outcome of a single authorization check, handed to the
// observer hook. ActorID is 0 for anonymous callers.
type Decision struct {
	ActorID    int
	Action     string
	Capability model.Capability
	OwnerID    int
	Allowed    bool
	Reason     string
}

// Observer receives every decision the permission service makes. The default
// observer logs denials; swap in a different implementation to feed an audit
// pipeline. Observe must be safe for concurrent use.
type Observer interface {
	Observe(d Decision)
}

// LogObserver logs decisions with zerolog: denials at warn, grants at debug.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates the default decision observer.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "authz").Logger()}
}

// Observe implements Observer.
func (o *LogObserver) Observe(d Decision) {
	ev := o.log.Debug()
	if !d.Allowed {
		ev = o.log.Warn()
	}
	ev.Int("actor_id", d.ActorID).
		Str("action", d.Action).
		Str("capability", string(d.Capability)).
		Int("owner_id", d.OwnerID).
		Bool("allowed", d.Allowed).
		Str("reason", d.Reason).
		Msg("Authorization decision")
}

// NopObserver discards all decisions. Used in tests.
type NopObserver struct{}

// Observe implements Observer.
func (NopObserver) Observe(Decision) {}
