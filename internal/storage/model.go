package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/hmm"
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var validate = validator.New()

// ModelFile is the on-disk form of an HMM.
type ModelFile struct {
	Observations []string    `json:"observations" yaml:"observations" validate:"required,min=1,unique,dive,required"`
	States       []string    `json:"states" yaml:"states" validate:"required,min=1,unique,dive,required"`
	Prior        []float64   `json:"prior" yaml:"prior" validate:"required,min=1,dive,gte=0"`
	Transition   [][]float64 `json:"transition" yaml:"transition" validate:"required,min=1,dive,min=1,dive,gte=0"`
	Emission     [][]float64 `json:"emission" yaml:"emission" validate:"required,min=1,dive,min=1,dive,gte=0"`
}

// Model builds the HMM described by the file.
func (f *ModelFile) Model() (*hmm.Model, error) {
	return hmm.New(f.Observations, f.States, f.Prior, f.Transition, f.Emission)
}

// FromModel captures the normalised tables of m.
func FromModel(m *hmm.Model) *ModelFile {
	return &ModelFile{
		Observations: m.Symbols(),
		States:       m.States(),
		Prior:        m.Prior(),
		Transition:   m.Transition(),
		Emission:     m.Emission(),
	}
}

// ReadModelFile reads and validates a model file. The format follows the
// extension: .json, .yaml or .yml.
func ReadModelFile(path string) (*ModelFile, error) {
	var f ModelFile
	if err := readFile(path, &f); err != nil {
		return nil, err
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("storage: invalid model %s: %w", path, err)
	}
	return &f, nil
}

// LoadModel reads a model file and builds the HMM.
func LoadModel(path string) (*hmm.Model, error) {
	f, err := ReadModelFile(path)
	if err != nil {
		return nil, err
	}
	m, err := f.Model()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", path, err)
	}
	return m, nil
}

// SaveModelFile writes f to path in the format given by its extension.
func SaveModelFile(path string, f *ModelFile) error {
	data, err := marshal(path, f)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}

func readFile(path string, v any) error {
	ext := formatOf(path)
	if !isSupported(ext) {
		return fmt.Errorf("storage: %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if ext == ".json" {
		err = json.Unmarshal(data, v)
	} else {
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("storage: parse %s: %w", path, err)
	}
	return nil
}

func marshal(path string, v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch ext := formatOf(path); ext {
	case ".json":
		data, err = json.MarshalIndent(v, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("storage: %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: encode %s: %w", path, err)
	}
	return data, nil
}

func formatOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
