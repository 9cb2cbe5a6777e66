package export

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/jb-miles/castscout/internal/util"
)

// Checkpoint is the export tool's own resumption state. It is separate from
// the lookup engine's ledger and never shared with it.
type Checkpoint struct {
	Counts            map[string]int `json:"counts"`
	SectionOffsets    map[string]int `json:"section_offsets"`
	CompletedSections []string       `json:"completed_sections"`
}

func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		Counts:         make(map[string]int),
		SectionOffsets: make(map[string]int),
	}
}

// LoadCheckpoint reads state from path; a missing file yields a fresh state.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewCheckpoint(), nil
	}
	if err != nil {
		return nil, err
	}
	cp := NewCheckpoint()
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, err
	}
	if cp.Counts == nil {
		cp.Counts = make(map[string]int)
	}
	if cp.SectionOffsets == nil {
		cp.SectionOffsets = make(map[string]int)
	}
	return cp, nil
}

// Save persists the state with a temp-file-plus-rename write so an
// interrupted export never truncates its own resume point.
func (cp *Checkpoint) Save(path string) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data)
}

// SectionDone reports whether key was fully exported in a previous run.
func (cp *Checkpoint) SectionDone(key string) bool {
	for _, k := range cp.CompletedSections {
		if k == key {
			return true
		}
	}
	return false
}
