// Package ledger tracks one epoch bitfield per participant.
//
// A [Ledger] is the mutable slot that [epochbits.Bitfield] values leave to
// their caller: it serializes updates behind a lock, persists each change
// through a [state.Repository] when one is attached, and reports changes
// through a [log.Logger].
//
// Two updates to the same participant are applied in lock order, so the
// last writer wins on any overlapping suffix.
//
//	repo := state.NewFileRepository(dir, 256)
//	l, err := ledger.Open(ctx, 256, ledger.WithRepository(repo))
//	if err != nil {
//	    return err
//	}
//	if _, err := l.ActivateFrom(ctx, "validator-1", 12); err != nil {
//	    return err
//	}
package ledger
