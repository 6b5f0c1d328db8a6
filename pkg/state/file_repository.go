package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the name of the state file inside the state directory.
const FileName = "epochs.json"

// FileRepository implements Repository using a JSON file.
type FileRepository struct {
	dir   string
	width int
	now   func() time.Time
}

// NewFileRepository creates a new FileRepository for the given directory.
// Loaded state must have the given width.
func NewFileRepository(dir string, width int) *FileRepository {
	return &FileRepository{dir: dir, width: width, now: time.Now}
}

// Load retrieves the last saved state from disk.
// Returns an empty state and nil error if no state file exists.
func (r *FileRepository) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}

	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return New(r.width), nil
		}
		return State{}, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode %s: %w", r.Path(), err)
	}
	if st.Participants == nil {
		st.Participants = New(st.Width).Participants
	}
	if st.Width != r.width {
		return State{}, fmt.Errorf("%w: %s has width %d, want %d", ErrWidthMismatch, r.Path(), st.Width, r.width)
	}
	if err := st.Validate(); err != nil {
		return State{}, err
	}
	return st, nil
}

// Save persists the state atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (r *FileRepository) Save(ctx context.Context, st State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st.Width != r.width {
		return fmt.Errorf("%w: saving width %d, want %d", ErrWidthMismatch, st.Width, r.width)
	}
	if err := st.Validate(); err != nil {
		return err
	}
	st.UpdatedAt = r.now().UTC()

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path())
}

// Path returns the full path to the state file.
func (r *FileRepository) Path() string {
	return filepath.Join(r.dir, FileName)
}

// Dir returns the state directory.
func (r *FileRepository) Dir() string {
	return r.dir
}

var _ Repository = (*FileRepository)(nil)
