package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/blob"
)

// DefaultKey is the document key used when none is configured.
const DefaultKey = "projects.json"

// Store reads and rewrites the whole project document on every call.
//
// Writes from one Store are serialized, but there is no version check on
// the document: a writer in another process that read before our write
// completes will overwrite it when it finishes (last writer wins).
type Store struct {
	blobs blob.Store
	key   string
	now   func() time.Time

	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the time source used to derive new ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(blobs blob.Store, key string, opts ...Option) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{blobs: blobs, key: key, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every project in storage order. A document that was never
// written reads as an empty list.
func (s *Store) List(ctx context.Context) ([]Project, error) {
	return s.load(ctx)
}

// Get returns the project with the given id.
func (s *Store) Get(ctx context.Context, id string) (Project, error) {
	list, err := s.load(ctx)
	if err != nil {
		return Project{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return Project{}, &NotFoundError{ID: id}
	}
	return list[i], nil
}

// Create appends a new project with a generated id.
func (s *Store) Create(ctx context.Context, f Fields) (Project, error) {
	f = normalize(f)
	if err := Validate(f); err != nil {
		return Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return Project{}, err
	}
	p := f.withID(s.newID(list))
	list = append(list, p)
	if err := s.save(ctx, list); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Update replaces every field of the project except its id and position.
func (s *Store) Update(ctx context.Context, id string, f Fields) (Project, error) {
	f = normalize(f)
	if err := Validate(f); err != nil {
		return Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return Project{}, err
	}
	i := indexOf(list, id)
	if i < 0 {
		return Project{}, &NotFoundError{ID: id}
	}
	list[i] = f.withID(id)
	if err := s.save(ctx, list); err != nil {
		return Project{}, err
	}
	return list[i], nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(list, id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}
	return s.save(ctx, slices.Delete(list, i, i+1))
}

func (s *Store) load(ctx context.Context) ([]Project, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotExist) {
		return []Project{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Project{}, nil
	}

	var list []Project
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &StorageError{Op: "decode", Err: err}
	}
	if list == nil {
		list = []Project{}
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, list []Project) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

// newID derives an id from the current time in milliseconds, stepping
// forward past any id already in use.
func (s *Store) newID(list []Project) string {
	ms := s.now().UnixMilli()
	for {
		id := fmt.Sprintf("project-%d", ms)
		if indexOf(list, id) < 0 {
			return id
		}
		ms++
	}
}

func indexOf(list []Project, id string) int {
	return slices.IndexFunc(list, func(p Project) bool { return p.ID == id })
}
