package domain

import (
	"time"

	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

// LUTType selects black/white or black/white/red refresh tables.
type LUTType int

const (
	LUTTypeBW LUTType = iota
	LUTTypeBWR
)

func (t LUTType) Valid() bool { return t == LUTTypeBW || t == LUTTypeBWR }

// Project is one editable LUT configuration. It is storage-agnostic and
// its JSON shape is also the export/import file format.
type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ChipModel   string         `json:"chipModel"`
	CreatedTime time.Time      `json:"createdTime"`
	UpdatedTime time.Time      `json:"updatedTime"`
	Config      *ProjectConfig `json:"config,omitempty"`
}

// ProjectConfig is owned by exactly one Project.
type ProjectConfig struct {
	VoltageSettings *drivers.VoltageSettings `json:"voltageSettings,omitempty"`
	LUTData         *waveform.Matrix         `json:"lutData,omitempty"`
	LUTType         LUTType                  `json:"lutType"`
}

// NewProject carries the caller-supplied fields of a project to create.
type NewProject struct {
	Name      string
	ChipModel string
	Config    *ProjectConfig
}

// ProjectPatch lists the fields Update may change. Nil means unchanged.
type ProjectPatch struct {
	Name      *string        `json:"name,omitempty"`
	ChipModel *string        `json:"chipModel,omitempty"`
	Config    *ProjectConfig `json:"config,omitempty"`
}

func (c *ProjectConfig) Clone() *ProjectConfig {
	if c == nil {
		return nil
	}
	out := &ProjectConfig{LUTType: c.LUTType, LUTData: c.LUTData.Clone()}
	if c.VoltageSettings != nil {
		v := *c.VoltageSettings
		out.VoltageSettings = &v
	}
	return out
}

// Clone returns a deep copy so callers never alias stored state.
func (p Project) Clone() Project {
	p.Config = p.Config.Clone()
	return p
}
