package storage

import "fmt"

// Sequence is a named observation sequence, optionally with the answers a
// model is expected to give for it.
type Sequence struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Observations []string `json:"observations" yaml:"observations" validate:"required,min=1"`
	BestPath     []string `json:"best_path,omitempty" yaml:"best_path,omitempty"`
	// Likelihood is compared with a relative tolerance.
	Likelihood *float64 `json:"likelihood,omitempty" yaml:"likelihood,omitempty"`
}

// SequenceFile is the on-disk list of sequences for one model.
type SequenceFile struct {
	Sequences []Sequence `json:"sequences" yaml:"sequences" validate:"required,min=1,dive"`
}

// Observations returns the observation lists in file order.
func (f *SequenceFile) Observations() [][]string {
	out := make([][]string, len(f.Sequences))
	for i, s := range f.Sequences {
		out[i] = s.Observations
	}
	return out
}

// LoadSequences reads and validates a sequence file.
func LoadSequences(path string) (*SequenceFile, error) {
	var f SequenceFile
	if err := readFile(path, &f); err != nil {
		return nil, err
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("storage: invalid sequences %s: %w", path, err)
	}
	return &f, nil
}
