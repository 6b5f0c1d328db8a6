package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/epochbits/pkg/epochbits"
	"github.com/bft-labs/epochbits/pkg/log"
	"github.com/bft-labs/epochbits/pkg/state"
)

// ErrEmptyParticipant is returned for an empty participant identifier.
var ErrEmptyParticipant = errors.New("ledger: empty participant")

// Ledger holds the epoch flags of every participant at one width.
// It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	width   int
	entries map[string]epochbits.Bitfield
	updated time.Time

	repo   state.Repository
	logger log.Logger
	now    func() time.Time
}

// New creates an empty ledger for bitfields of the given width.
func New(width int, opts ...Option) (*Ledger, error) {
	if _, err := epochbits.Empty(width); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Ledger{
		width:   width,
		entries: make(map[string]epochbits.Bitfield),
		repo:    o.repo,
		logger:  o.logger,
		now:     o.now,
	}, nil
}

// Open creates a ledger and loads any state already saved in its
// repository.
func Open(ctx context.Context, width int, opts ...Option) (*Ledger, error) {
	l, err := New(width, opts...)
	if err != nil {
		return nil, err
	}
	if l.repo == nil {
		return l, nil
	}
	st, err := l.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if st.Width != width {
		return nil, fmt.Errorf("%w: stored width %d, want %d", state.ErrWidthMismatch, st.Width, width)
	}
	for id, b := range st.Participants {
		l.entries[id] = b
	}
	l.updated = st.UpdatedAt
	l.logger.Debug("ledger loaded", log.Int("participants", len(l.entries)), log.Int("width", width))
	return l, nil
}

// Width returns the bit width of every tracked bitfield.
func (l *Ledger) Width() int { return l.width }

// Get returns the participant's bitfield. Unknown participants read as
// empty, with ok false.
func (l *Ledger) Get(participant string) (b epochbits.Bitfield, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok = l.entries[participant]; ok {
		return b, true
	}
	b, _ = epochbits.Empty(l.width)
	return b, false
}

// ActivateFrom sets every epoch from epoch onward for the participant and
// returns the new bitfield.
func (l *Ledger) ActivateFrom(ctx context.Context, participant string, epoch int) (epochbits.Bitfield, error) {
	return l.update(ctx, "activate", participant, epoch, epochbits.Bitfield.ActivateFrom)
}

// DeactivateFrom clears every epoch from epoch onward for the participant
// and returns the new bitfield.
func (l *Ledger) DeactivateFrom(ctx context.Context, participant string, epoch int) (epochbits.Bitfield, error) {
	return l.update(ctx, "deactivate", participant, epoch, epochbits.Bitfield.DeactivateFrom)
}

// Reset forgets the participant. It reports whether the participant was
// tracked.
func (l *Ledger) Reset(ctx context.Context, participant string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.entries[participant]
	if !ok {
		l.logger.Debug("participant reset", log.Participant(participant), log.Bool("tracked", false))
		return false, nil
	}
	delete(l.entries, participant)
	if err := l.persistLocked(ctx); err != nil {
		l.entries[participant] = prev
		return false, err
	}
	l.logger.Info("participant reset", log.Participant(participant), log.Bool("tracked", true))
	return true, nil
}

// Participants returns the tracked participant identifiers in sorted order.
func (l *Ledger) Participants() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of the ledger as a State.
func (l *Ledger) Snapshot() state.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) update(ctx context.Context, op, participant string, epoch int, apply func(epochbits.Bitfield, int) (epochbits.Bitfield, error)) (epochbits.Bitfield, error) {
	if participant == "" {
		return epochbits.Bitfield{}, ErrEmptyParticipant
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, existed := l.entries[participant]
	cur := prev
	if !existed {
		cur, _ = epochbits.Empty(l.width)
	}
	next, err := apply(cur, epoch)
	if err != nil {
		l.logger.Warn("ledger update rejected", log.String("op", op), log.Participant(participant), log.Epoch(epoch), log.Err(err))
		return epochbits.Bitfield{}, err
	}

	l.entries[participant] = next
	if err := l.persistLocked(ctx); err != nil {
		if existed {
			l.entries[participant] = prev
		} else {
			delete(l.entries, participant)
		}
		return epochbits.Bitfield{}, err
	}

	l.logger.Info("ledger updated",
		log.String("op", op),
		log.Participant(participant),
		log.Epoch(epoch),
		log.Int("active", next.Count()),
		log.Stringer("bits", next),
	)
	return next, nil
}

func (l *Ledger) persistLocked(ctx context.Context) error {
	now := l.now()
	if l.repo != nil {
		st := l.snapshotLocked()
		st.UpdatedAt = now
		if err := l.repo.Save(ctx, st); err != nil {
			l.logger.Error("ledger save failed", log.Err(err))
			return fmt.Errorf("save ledger: %w", err)
		}
	}
	l.updated = now
	return nil
}

func (l *Ledger) snapshotLocked() state.State {
	st := state.New(l.width)
	for id, b := range l.entries {
		st.Participants[id] = b
	}
	st.UpdatedAt = l.updated
	return st
}
