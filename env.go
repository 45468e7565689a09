package tabletop

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// ComponentID identifies a component within the Env that created it.
type ComponentID uint64

// Env is the explicitly passed context every component is created with. It
// replaces process-wide state: it hands out component IDs and carries the
// debug flag and logger used by tree operations. One Env may serve several
// scenes; IDs are unique per Env.
type Env struct {
	// Debug enables tree depth and child count warnings on container
	// mutations.
	Debug bool

	// Logger receives debug warnings. NewEnv installs a discarding logger.
	Logger *slog.Logger

	nextID atomic.Uint64
}

// NewEnv creates an Env with a discarding logger and debug checks off.
func NewEnv() *Env {
	return &Env{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// NextID returns a fresh, non-zero component ID.
func (e *Env) NextID() ComponentID {
	return ComponentID(e.nextID.Add(1))
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
