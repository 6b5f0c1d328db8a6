package ledger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/epochbits/pkg/epochbits"
	"github.com/bft-labs/epochbits/pkg/state"
)

type memRepo struct {
	mu      sync.Mutex
	st      state.State
	saves   int
	saveErr error
}

func (r *memRepo) Load(ctx context.Context) (state.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st.Clone(), nil
}

func (r *memRepo) Save(ctx context.Context, st state.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.st = st.Clone()
	return nil
}

func TestNew_InvalidWidth(t *testing.T) {
	if _, err := New(0); !errors.Is(err, epochbits.ErrInvalidWidth) {
		t.Errorf("New(0) error = %v, want ErrInvalidWidth", err)
	}
}

func TestLedger_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	l, err := New(32)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if b, ok := l.Get("alice"); ok || !b.IsZero() || b.Width() != 32 {
		t.Errorf("Get(unknown) = %v, %v; want empty, false", b, ok)
	}

	steps := []struct {
		activate bool
		epoch    int
		want     uint64
	}{
		{true, 5, 0xFFFFFFE0},
		{false, 10, 0x3E0},
		{false, 10, 0x3E0},
		{true, 15, 0xFFFF83E0},
		{false, 7, 0x60},
	}
	for _, s := range steps {
		var b epochbits.Bitfield
		if s.activate {
			b, err = l.ActivateFrom(ctx, "alice", s.epoch)
		} else {
			b, err = l.DeactivateFrom(ctx, "alice", s.epoch)
		}
		if err != nil {
			t.Fatalf("update(%v, %d): %v", s.activate, s.epoch, err)
		}
		if b.Uint64() != s.want {
			t.Fatalf("update(%v, %d) = %#x, want %#x", s.activate, s.epoch, b.Uint64(), s.want)
		}
	}

	got, ok := l.Get("alice")
	if !ok || got.Uint64() != 0x60 {
		t.Errorf("Get(alice) = %v, %v", got, ok)
	}
}

func TestLedger_InvalidEpochLeavesState(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{st: state.New(32)}
	l, err := New(32, WithRepository(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := l.ActivateFrom(ctx, "alice", 3); err != nil {
		t.Fatalf("ActivateFrom: %v", err)
	}

	if _, err := l.DeactivateFrom(ctx, "alice", 33); !errors.Is(err, epochbits.ErrInvalidEpoch) {
		t.Fatalf("DeactivateFrom(33) error = %v, want ErrInvalidEpoch", err)
	}
	if _, err := l.ActivateFrom(ctx, "bob", -1); !errors.Is(err, epochbits.ErrInvalidEpoch) {
		t.Fatalf("ActivateFrom(-1) error = %v, want ErrInvalidEpoch", err)
	}
	if _, err := l.ActivateFrom(ctx, "", 1); !errors.Is(err, ErrEmptyParticipant) {
		t.Fatalf("ActivateFrom(\"\") error = %v, want ErrEmptyParticipant", err)
	}

	if got := l.Participants(); !reflect.DeepEqual(got, []string{"alice"}) {
		t.Errorf("Participants() = %v, want [alice]", got)
	}
	if repo.saves != 1 {
		t.Errorf("saves = %d, want 1", repo.saves)
	}
}

func TestLedger_SaveFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{st: state.New(32)}
	l, err := New(32, WithRepository(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := l.ActivateFrom(ctx, "alice", 5); err != nil {
		t.Fatalf("ActivateFrom: %v", err)
	}

	boom := errors.New("disk full")
	repo.saveErr = boom

	if _, err := l.DeactivateFrom(ctx, "alice", 0); !errors.Is(err, boom) {
		t.Fatalf("DeactivateFrom error = %v, want %v", err, boom)
	}
	if b, _ := l.Get("alice"); b.Uint64() != 0xFFFFFFE0 {
		t.Errorf("alice after failed save = %#x, want 0xffffffe0", b.Uint64())
	}

	if _, err := l.ActivateFrom(ctx, "bob", 1); !errors.Is(err, boom) {
		t.Fatalf("ActivateFrom(bob) error = %v, want %v", err, boom)
	}
	if _, ok := l.Get("bob"); ok {
		t.Error("bob tracked after failed save")
	}

	if ok, err := l.Reset(ctx, "alice"); !errors.Is(err, boom) || ok {
		t.Fatalf("Reset = %v, %v; want false, %v", ok, err, boom)
	}
	if _, ok := l.Get("alice"); !ok {
		t.Error("alice dropped after failed reset")
	}
}

func TestLedger_SavedStateCarriesWriteTime(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{st: state.New(32)}
	l, err := New(32, WithRepository(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	times := []time.Time{
		time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC),
	}
	for i, now := range times {
		now := now
		l.now = func() time.Time { return now }
		if _, err := l.ActivateFrom(ctx, "alice", i); err != nil {
			t.Fatalf("ActivateFrom: %v", err)
		}
		if !repo.st.UpdatedAt.Equal(now) {
			t.Errorf("save %d: saved UpdatedAt = %v, want %v", i, repo.st.UpdatedAt, now)
		}
		if got := l.Snapshot().UpdatedAt; !got.Equal(now) {
			t.Errorf("save %d: Snapshot().UpdatedAt = %v, want %v", i, got, now)
		}
	}

	repo.saveErr = errors.New("disk full")
	l.now = func() time.Time { return times[1].Add(time.Minute) }
	if _, err := l.DeactivateFrom(ctx, "alice", 0); err == nil {
		t.Fatal("DeactivateFrom expected save error")
	}
	if got := l.Snapshot().UpdatedAt; !got.Equal(times[1]) {
		t.Errorf("UpdatedAt after failed save = %v, want %v", got, times[1])
	}
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	l, err := New(16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := l.ActivateFrom(ctx, "alice", 0); err != nil {
		t.Fatalf("ActivateFrom: %v", err)
	}

	if ok, err := l.Reset(ctx, "alice"); err != nil || !ok {
		t.Fatalf("Reset(alice) = %v, %v; want true, nil", ok, err)
	}
	if ok, err := l.Reset(ctx, "alice"); err != nil || ok {
		t.Fatalf("Reset(alice) again = %v, %v; want false, nil", ok, err)
	}
	if len(l.Participants()) != 0 {
		t.Errorf("Participants() = %v, want none", l.Participants())
	}
}

func TestOpen_LoadsRepository(t *testing.T) {
	ctx := context.Background()
	repo := state.NewFileRepository(t.TempDir(), 64)

	first, err := Open(ctx, 64, WithRepository(repo))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := first.ActivateFrom(ctx, "validator-1", 40); err != nil {
		t.Fatalf("ActivateFrom: %v", err)
	}
	if _, err := first.ActivateFrom(ctx, "validator-2", 0); err != nil {
		t.Fatalf("ActivateFrom: %v", err)
	}

	second, err := Open(ctx, 64, WithRepository(repo))
	if err != nil {
		t.Fatalf("Open again: %v", err)
	}
	if got := second.Participants(); !reflect.DeepEqual(got, []string{"validator-1", "validator-2"}) {
		t.Errorf("Participants() = %v", got)
	}
	b, _ := second.Get("validator-1")
	if b.Count() != 24 {
		t.Errorf("validator-1 Count() = %d, want 24", b.Count())
	}
	if second.Snapshot().UpdatedAt.IsZero() {
		t.Error("Snapshot().UpdatedAt is zero after load")
	}

	if _, err := Open(ctx, 32, WithRepository(state.NewFileRepository(repo.Dir(), 32))); !errors.Is(err, state.ErrWidthMismatch) {
		t.Errorf("Open(32) error = %v, want ErrWidthMismatch", err)
	}
}

func TestLedger_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{st: state.New(testWidth)}
	l, err := New(testWidth, WithRepository(repo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("p-%02d", i%4)
			if i%2 == 0 {
				_, _ = l.ActivateFrom(ctx, id, i)
			} else {
				_, _ = l.DeactivateFrom(ctx, id, i)
			}
			_ = l.Snapshot()
		}(i)
	}
	wg.Wait()

	if got := len(l.Participants()); got != 4 {
		t.Errorf("len(Participants()) = %d, want 4", got)
	}
	if repo.saves != 16 {
		t.Errorf("saves = %d, want 16", repo.saves)
	}
	if !reflect.DeepEqual(repo.st.Participants, l.Snapshot().Participants) {
		t.Error("repository state diverged from ledger")
	}
}

const testWidth = epochbits.MaxWidth
