package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/narravid/narravid-api/internal/job/id"
)

// ErrJobNotFound is returned when a job cannot be found by ID.
var ErrJobNotFound = errors.New("job not found")

// Fixed artifact filenames inside a job's directory. Download endpoints and
// re-entrancy checks rely on these names staying stable.
const (
	// PreviewFile is the stage-1 remote generation output.
	PreviewFile = "preview.mp4"
	// FinalVideoFile is the merged narrated output.
	FinalVideoFile = "final_video.mp4"
	// AudioFile is the synthesized narration track.
	AudioFile = "commentary.mp3"
	// ScriptFile is the narration script text.
	ScriptFile = "script.txt"
	// StateFile is the persisted job record.
	StateFile = "state.json"
)

// Store defines the interface for job persistence.
// It acts as a port: the Orchestrator owns all mutation, the store only
// persists and reloads what it is given.
type Store interface {
	// Create persists a brand-new job and prepares its directory.
	Create(ctx context.Context, job *Job) error

	// Save persists the current state of an existing job.
	Save(ctx context.Context, job *Job) error

	// FindByID retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	FindByID(ctx context.Context, id string) (*Job, error)

	// List returns all jobs ordered by creation time.
	List(ctx context.Context) ([]*Job, error)

	// Dir returns the directory that holds the job's artifacts.
	Dir(jobID string) string

	// ArtifactPath returns the full path of a fixed-name artifact for a job.
	ArtifactPath(jobID, name string) string

	// ArtifactExists reports whether the named artifact is already on disk
	// and non-empty. This is the sole caching layer: stages whose artifact
	// exists are skipped on re-entry.
	ArtifactExists(jobID, name string) bool
}

// Compile-time check that FileStore implements Store.
var _ Store = (*FileStore)(nil)

// FileStore is a durable Store backed by one directory per job under a
// root work directory. The job record is written atomically
// (temp file + rename) so a concurrent reader never observes a partial
// state.json.
type FileStore struct {
	root string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "narravid")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the store's work directory.
func (s *FileStore) Root() string {
	return s.root
}

// Dir returns the directory that holds the job's artifacts.
func (s *FileStore) Dir(jobID string) string {
	return filepath.Join(s.root, jobID)
}

// ArtifactPath returns the full path of a fixed-name artifact for a job.
func (s *FileStore) ArtifactPath(jobID, name string) string {
	return filepath.Join(s.Dir(jobID), name)
}

// ArtifactExists reports whether the named artifact exists and is non-empty.
func (s *FileStore) ArtifactExists(jobID, name string) bool {
	info, err := os.Stat(s.ArtifactPath(jobID, name))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Create prepares the job's directory and persists its initial record.
func (s *FileStore) Create(ctx context.Context, job *Job) error {
	if err := os.MkdirAll(s.Dir(job.ID), 0750); err != nil {
		return fmt.Errorf("create job directory: %w", err)
	}
	return s.Save(ctx, job)
}

// Save persists the job record atomically via write-temp-then-rename.
func (s *FileStore) Save(ctx context.Context, job *Job) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	data, err := json.MarshalIndent(job.Clone(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job state: %w", err)
	}

	dir := s.Dir(job.ID)
	tmp, err := os.CreateTemp(dir, StateFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, StateFile)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// FindByID loads a job record from disk.
// Returns ErrJobNotFound if the job directory or record does not exist.
func (s *FileStore) FindByID(ctx context.Context, jobID string) (*Job, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	if !id.Valid(jobID) {
		return nil, ErrJobNotFound
	}

	data, err := os.ReadFile(s.ArtifactPath(jobID, StateFile)) // #nosec G304 - jobID is validated above
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("unmarshal job state: %w", err)
	}
	return &job, nil
}

// List returns all jobs found under the work directory, ordered by
// creation time. Directories without a readable record are skipped.
func (s *FileStore) List(ctx context.Context) ([]*Job, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read work directory: %w", err)
	}

	jobs := make([]*Job, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !id.Valid(entry.Name()) {
			continue
		}
		job, err := s.FindByID(ctx, entry.Name())
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.Before(jobs[k].CreatedAt)
	})
	return jobs, nil
}
