package nvm

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/histonode/internal/logging"
)

// document is the on-disk layout of the settings file.
type document struct {
	Version int              `toml:"version"`
	Values  map[string]int32 `toml:"values"`
}

// TOMLStore is a Store persisted to a TOML file. The file is rewritten only
// when a Set actually changes a value.
type TOMLStore struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values [Size]int32
	err    error

	// saveMu orders snapshot and write, so the file ends with the newest block.
	saveMu sync.Mutex
}

// NewTOML creates a TOML-backed store holding the factory defaults. Call Load
// to read the file.
func NewTOML(path string) *TOMLStore {
	if path == "" {
		path = "settings.toml"
	}
	return &TOMLStore{
		path:   path,
		logger: logging.GetLogger("nvm"),
		values: Defaults(),
	}
}

// Path returns the backing file.
func (s *TOMLStore) Path() string {
	return s.path
}

// ReadFile parses a settings file into named values. A missing file yields an
// empty map.
func ReadFile(path string) (map[string]int32, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]int32{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var doc document
	if unmarshalErr := toml.Unmarshal(data, &doc); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", unmarshalErr)
	}
	if doc.Values == nil {
		doc.Values = map[string]int32{}
	}
	return doc.Values, nil
}

// Load reads the settings file. Fields absent from the file keep their
// current values.
func (s *TOMLStore) Load() error {
	values, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	s.Apply(values)
	return nil
}

// Apply merges named values into the store without touching the file and
// returns the indices that changed. Unknown names are ignored.
func (s *TOMLStore) Apply(values map[string]int32) []Index {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []Index
	for name, v := range values {
		i, ok := Lookup(name)
		if !ok {
			s.logger.Warn("Ignoring unknown settings field", "field", name)
			continue
		}
		if s.values[i] != v {
			s.values[i] = v
			changed = append(changed, i)
		}
	}
	return changed
}

// Save writes every named field to the settings file.
func (s *TOMLStore) Save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	doc := document{Version: 1, Values: make(map[string]int32, len(names))}
	for i, n := range names {
		doc.Values[n] = s.values[i]
	}
	s.mu.RUnlock()

	return s.write(doc)
}

func (s *TOMLStore) write(doc document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if writeErr := os.WriteFile(s.path, data, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write settings: %w", writeErr)
	}
	return nil
}

// Get returns word i, or 0 for an index outside the block.
func (s *TOMLStore) Get(i Index) int32 {
	if !i.Valid() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[i]
}

// Set writes word i and persists the block if the value changed. A failed
// write is logged and kept for Err; the in-memory value still changes.
func (s *TOMLStore) Set(i Index, v int32) bool {
	if !i.Valid() {
		return false
	}

	s.mu.Lock()
	if s.values[i] == v {
		s.mu.Unlock()
		return false
	}
	s.values[i] = v
	s.mu.Unlock()

	err := s.Save()
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("Failed to persist settings", "field", i.String(), "error", err)
	} else {
		s.logger.Debug("Settings field updated", "field", i.String(), "value", v)
	}
	return true
}

// Err returns the error of the most recent write, if any.
func (s *TOMLStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}
