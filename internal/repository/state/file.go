package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/drowsiness-alarm/internal/config"
	"github.com/oshokin/drowsiness-alarm/internal/domain/alert"
	pb "github.com/oshokin/drowsiness-alarm/internal/pb/v1"
)

// FileRepository persists alert states to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) so the file
// has the same shape as the ListAlerts response.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads all states from disk.
func (r *FileRepository) Load(_ context.Context) ([]*alert.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Save upserts the state of one subject and rewrites the file.
func (r *FileRepository) Save(_ context.Context, state *alert.State) error {
	if state == nil || state.SubjectID == "" {
		return errSubjectRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	states, err := r.load()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	states = upsert(states, state)

	list := make([]*pb.AlertState, 0, len(states))
	for _, s := range states {
		list = append(list, toProto(s))
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(pb.AlertListToStruct(list))
	if err != nil {
		return fmt.Errorf("encode states: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// load reads the file without locking.
func (r *FileRepository) load() ([]*alert.State, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw structpb.Struct
	if err = protojson.Unmarshal(contents, &raw); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	list, err := pb.AlertListFromStruct(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	states := make([]*alert.State, 0, len(list))
	for _, item := range list {
		states = append(states, fromProto(item))
	}

	return states, nil
}

// upsert replaces the state with the same subject or appends a new one.
func upsert(states []*alert.State, state *alert.State) []*alert.State {
	for i, existing := range states {
		if existing.SubjectID == state.SubjectID {
			states[i] = state.Clone()

			return states
		}
	}

	states = append(states, state.Clone())
	alert.SortBySubject(states)

	return states
}
