// Package storage reads and writes HMM parameter files and the observation
// sequences that go with them.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/happyhackingspace/hmm"
)

// sequencesSuffix marks the sequence file belonging to a model:
// weather.yaml pairs with weather_sequences.yaml.
const sequencesSuffix = "_sequences"

var extensions = []string{".yaml", ".yml", ".json"}

// Storage wraps a folder of model and sequence files.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// Fixture is a model together with its sequences.
type Fixture struct {
	Name      string
	Model     *hmm.Model
	Sequences []Sequence
}

// ListModels returns the names of the model files in the folder, sorted.
func (s *Storage) ListModels() ([]string, error) {
	entries, err := os.ReadDir(s.Folder)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := formatOf(e.Name())
		if !isSupported(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if strings.HasSuffix(name, sequencesSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ModelPath finds the model file with the given name.
func (s *Storage) ModelPath(name string) (string, error) {
	return s.find(name)
}

// SequencesPath finds the sequence file for the named model.
func (s *Storage) SequencesPath(name string) (string, error) {
	return s.find(name + sequencesSuffix)
}

func (s *Storage) find(base string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.Folder, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("storage: %s not found in %s", base, s.Folder)
}

// LoadModel loads the named model from the folder.
func (s *Storage) LoadModel(name string) (*hmm.Model, error) {
	path, err := s.ModelPath(name)
	if err != nil {
		return nil, err
	}
	return LoadModel(path)
}

// IterFixtures loads every model in the folder that has a sequence file.
// Models without one are skipped.
func (s *Storage) IterFixtures() ([]Fixture, error) {
	names, err := s.ListModels()
	if err != nil {
		return nil, err
	}

	var fixtures []Fixture
	for _, name := range names {
		seqPath, err := s.SequencesPath(name)
		if err != nil {
			slog.Warn("No sequences for model", "model", name)
			continue
		}
		m, err := s.LoadModel(name)
		if err != nil {
			return nil, fmt.Errorf("storage: load model %s: %w", name, err)
		}
		seqs, err := LoadSequences(seqPath)
		if err != nil {
			return nil, fmt.Errorf("storage: load sequences %s: %w", name, err)
		}
		slog.Debug("Fixture loaded", "model", name, "states", m.NumStates(), "sequences", len(seqs.Sequences))
		fixtures = append(fixtures, Fixture{Name: name, Model: m, Sequences: seqs.Sequences})
	}
	return fixtures, nil
}

func isSupported(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
