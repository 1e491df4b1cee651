package taskstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pdxmph/parastrom/internal/task"
)

// Format selects the export/import serialization
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultExportFile is the suggested export file name
const DefaultExportFile = "parastrom-tasks.json"

// ParseFormat accepts json, yaml and yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ErrImportParse is wrapped by every ImportError
var ErrImportParse = errors.New("import failed")

// ImportError reports a blob that could not be imported. The collection is
// untouched when it is returned.
type ImportError struct {
	Format Format
	Err    error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrImportParse, e.Format, e.Err)
}

func (e *ImportError) Unwrap() []error {
	return []error{ErrImportParse, e.Err}
}

// Export serializes the current collection, pretty-printed
func (s *Store) Export(format Format) ([]byte, error) {
	s.mu.Lock()
	tasks := clone(s.tasks)
	s.mu.Unlock()

	data, err := encode(tasks, format)
	if err != nil {
		return nil, fmt.Errorf("exporting tasks: %w", err)
	}
	return data, nil
}

// ExportJSON is Export(FormatJSON)
func (s *Store) ExportJSON() ([]byte, error) {
	return s.Export(FormatJSON)
}

// Import parses blob and, on success, replaces the whole collection with
// it and persists. On failure it returns an *ImportError and changes
// nothing.
func (s *Store) Import(blob []byte, format Format) error {
	tasks, err := decode(blob, format)
	if err != nil {
		return &ImportError{Format: format, Err: err}
	}
	if err := checkUnique(tasks); err != nil {
		return &ImportError{Format: format, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(tasks); err != nil {
		return err
	}
	s.logger.Info("tasks imported", "count", len(tasks), "format", string(format))
	return nil
}

func checkUnique(tasks []task.Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if seen[t.ID] {
			return fmt.Errorf("task %d: %w: %q", i, ErrDuplicateID, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func encode(tasks []task.Task, format Format) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		return json.MarshalIndent(tasks, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// decode requires a top-level sequence; null, objects and scalars fail.
func decode(data []byte, format Format) ([]task.Task, error) {
	var tasks []task.Task

	switch format {
	case FormatYAML:
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		if len(root.Content) == 0 || root.Content[0].Kind != yaml.SequenceNode {
			return nil, errors.New("expected a list of tasks")
		}
		if err := root.Content[0].Decode(&tasks); err != nil {
			return nil, err
		}
	case FormatJSON, "":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, errors.New("expected a JSON array of tasks")
		}
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if err := dec.Decode(&tasks); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, errors.New("unexpected data after task array")
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	if err := normalize(tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// normalize fills the default priority in place and rejects elements that
// lack an id or a start time, including null entries.
func normalize(tasks []task.Task) error {
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			return fmt.Errorf("task %d: missing id", i)
		}
		if t.StartTime.IsZero() {
			return fmt.Errorf("task %d (%s): missing start time", i, t.ID)
		}
		if t.Priority == "" {
			t.Priority = task.PriorityLow
		}
	}
	return nil
}
