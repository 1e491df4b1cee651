// Package taskstore owns the ordered task collection and persists it as a
// single serialized value in a key-value backend.
//
// Every mutation builds the next collection, writes it through the backend
// and only then swaps it in, so a failed write leaves memory as it was.
// Corrupt or missing persisted data loads as an empty collection. Import
// replaces the whole collection or, on a parse failure, nothing at all.
package taskstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pdxmph/parastrom/internal/logging"
	"github.com/pdxmph/parastrom/internal/task"
	"github.com/pdxmph/parastrom/internal/timecode"
)

// DefaultKey is the backend key holding the collection
const DefaultKey = "parastrom_tasks"

// ErrDuplicateID is returned when adding a task whose id is already present
var ErrDuplicateID = errors.New("task id already exists")

// KV is the persistence backend
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Store holds the collection. It is safe for concurrent use.
type Store struct {
	kv     KV
	key    string
	logger *logging.Logger

	mu    sync.Mutex
	tasks []task.Task
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides DefaultKey
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the store's logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store over kv. Call Load to read the persisted collection.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted collection into memory and returns a copy. Absent
// and unreadable data both load as an empty collection.
func (s *Store) Load() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = s.read()
	return clone(s.tasks)
}

func (s *Store) read() []task.Task {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("reading persisted tasks failed, starting empty", "key", s.key, "error", err.Error())
		return []task.Task{}
	}
	if !ok || len(data) == 0 {
		return []task.Task{}
	}

	tasks, err := decode(data, FormatJSON)
	if err != nil {
		s.logger.Warn("persisted tasks are corrupt, starting empty", "key", s.key, "error", err.Error())
		return []task.Task{}
	}
	return tasks
}

// Save writes tasks as the whole persisted collection and adopts them as
// the in-memory collection.
func (s *Store) Save(tasks []task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(clone(tasks))
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *Store) commit(next []task.Task) error {
	data, err := encode(next, FormatJSON)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	s.tasks = next
	return nil
}

// Tasks returns a copy of the collection in order
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.tasks)
}

// Get looks up a task by id
func (s *Store) Get(id string) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return task.Task{}, false
}

// Counts returns how many tasks are active and how many are done
func (s *Store) Counts() (active, done int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.Done {
			done++
		} else {
			active++
		}
	}
	return active, done
}

// Add appends t and persists
func (s *Store) Add(t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(t.ID) >= 0 {
		return fmt.Errorf("adding %s: %w", t.ID, ErrDuplicateID)
	}

	next := make([]task.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, t)
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Info("task added", "task_id", t.ID, "title", t.Title)
	return nil
}

// Create validates a task built by task.New and adds it. If its id is
// already taken (two tasks in the same second), the id token is advanced a
// second at a time until it is free; the start time keeps the real
// creation instant.
func (s *Store) Create(t task.Task) (task.Task, error) {
	if err := task.Validate(t); err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(t.ID) >= 0 {
		id, err := s.freeID(t.ID)
		if err != nil {
			return task.Task{}, err
		}
		t.ID = id
	}

	next := make([]task.Task, 0, len(s.tasks)+1)
	next = append(next, s.tasks...)
	next = append(next, t)
	if err := s.commit(next); err != nil {
		return task.Task{}, err
	}
	s.logger.Info("task created", "task_id", t.ID, "title", t.Title, "duration_ms", t.DurationMs)
	return t, nil
}

func (s *Store) freeID(id string) (string, error) {
	at, err := timecode.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("adding %s: %w", id, ErrDuplicateID)
	}
	for {
		at = at.Add(time.Second)
		candidate := timecode.Encode(at)
		if s.index(candidate) < 0 {
			return candidate, nil
		}
	}
}

// Toggle flips done on the task with the given id and persists. It
// reports whether a task matched; an unknown id still persists the
// unchanged collection.
func (s *Store) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := clone(s.tasks)
	i := s.index(id)
	if i >= 0 {
		next[i] = next[i].Toggled()
	}
	if err := s.commit(next); err != nil {
		return false, err
	}
	if i >= 0 {
		s.logger.Info("task toggled", "task_id", id, "done", next[i].Done)
	}
	return i >= 0, nil
}

// Delete removes the task with the given id and persists. It reports
// whether a task matched.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	removed := len(next) < len(s.tasks)
	if err := s.commit(next); err != nil {
		return false, err
	}
	if removed {
		s.logger.Info("task deleted", "task_id", id)
	}
	return removed, nil
}

// index returns the position of id or -1. Callers hold s.mu.
func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}
