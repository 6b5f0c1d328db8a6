// Package state persists epoch bitfields between runs.
//
// A [State] maps participant identifiers to their bitfield at one fixed
// width. [FileRepository] stores it as JSON in <dir>/epochs.json and
// replaces the file atomically on every save.
//
// # Usage
//
//	repo := state.NewFileRepository("/path/to/state/dir", 256)
//
//	s, err := repo.Load(ctx)
//	if err != nil {
//	    return err
//	}
//
//	// ... update s.Participants ...
//
//	if err := repo.Save(ctx, s); err != nil {
//	    return err
//	}
//
// Bitfields are encoded as "<width>:<hex>" strings so the file stays
// readable and diffable.
package state
