package application

import (
	"context"
	"time"

	"siren-node/internal/domain"
)

// Player drives the physical audio output. Play blocks until the clip (and
// all requested loops) finishes, a stop is issued, or ctx is cancelled.
// loops of domain.LoopForever plays until Stop is called from another
// goroutine.
type Player interface {
	Play(ctx context.Context, wav []byte, loops int) error
	Stop() error
}

// Mixer concatenates segments in the given order, inserting gap of silence
// between consecutive usable segments. It fails only when zero segments are
// usable.
type Mixer interface {
	Merge(segments []domain.AudioSegment, gap time.Duration) ([]byte, error)
}
