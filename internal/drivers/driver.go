// Package drivers describes the e-paper driver ICs the editor can target:
// their LUT geometry and the discrete voltages each supply rail accepts.
package drivers

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownChip     = errors.New("unknown driver ic")
	ErrInvalidVoltage  = errors.New("voltage code not supported by chip")
	ErrInvalidDriverIC = errors.New("invalid driver ic definition")
)

// Rail names one of the analog supplies the driver generates.
type Rail string

const (
	RailVGH  Rail = "vgh"
	RailVGL  Rail = "vgl"
	RailVSH  Rail = "vsh"
	RailVSHR Rail = "vshr"
	RailVSL  Rail = "vsl"
	RailVCOM Rail = "vcom"
)

// Rails lists every rail in register order.
var Rails = []Rail{RailVGH, RailVGL, RailVSH, RailVSHR, RailVSL, RailVCOM}

// Progression maps register codes First..Last (every IndexStep) to
// StartMV + StepMV*(code-First)/IndexStep millivolts.
type Progression struct {
	First     int `yaml:"first" json:"first"`
	Last      int `yaml:"last" json:"last"`
	IndexStep int `yaml:"index_step" json:"indexStep"`
	StartMV   int `yaml:"start_mv" json:"startMV"`
	StepMV    int `yaml:"step_mv" json:"stepMV"`
}

// VoltageOption is one selectable register code and the voltage it yields.
type VoltageOption struct {
	Code       int `json:"code"`
	MilliVolts int `json:"millivolts"`
}

func (p Progression) step() int {
	if p.IndexStep <= 0 {
		return 1
	}
	return p.IndexStep
}

func (p Progression) validate() error {
	if p.First < 0 || p.Last > 0xFF || p.First > p.Last {
		return fmt.Errorf("%w: code range 0x%02X..0x%02X", ErrInvalidDriverIC, p.First, p.Last)
	}
	if p.IndexStep < 0 {
		return fmt.Errorf("%w: negative index step", ErrInvalidDriverIC)
	}
	return nil
}

// Values evaluates the progression.
func (p Progression) Values() []VoltageOption {
	step := p.step()
	out := make([]VoltageOption, 0, (p.Last-p.First)/step+1)
	for code := p.First; code <= p.Last; code += step {
		out = append(out, VoltageOption{
			Code:       code,
			MilliVolts: p.StartMV + p.StepMV*(code-p.First)/step,
		})
	}
	return out
}

// PhaseSpec describes the phases inside one LUT group.
type PhaseSpec struct {
	Count          int  `yaml:"count" json:"count"`
	HasTwoStages   bool `yaml:"has_two_stages" json:"hasTwoStages"`
	StageRepeatMax int  `yaml:"stage_repeat_max" json:"stageRepeatMax"`
	FrameMax       int  `yaml:"frame_max" json:"frameMax"`
}

// GroupSpec describes the LUT group layout of a chip.
type GroupSpec struct {
	Phase     PhaseSpec `yaml:"phase" json:"phase"`
	Count     int       `yaml:"count" json:"count"`
	RepeatMax int       `yaml:"repeat_max" json:"repeatMax"`
}

// TempRange is the LUT timing correction applied while the panel is
// between MinC (inclusive) and MaxC (exclusive) degrees Celsius.
type TempRange struct {
	MinC          int     `yaml:"min_c" json:"min"`
	MaxC          int     `yaml:"max_c" json:"max"`
	LUTAdjustment float64 `yaml:"lut_adjustment" json:"lutAdjustment"`
}

// DriverICConfig is the read-only description of one chip.
//
// Rails missing from Voltages have no selectable values, except VGL which
// mirrors VGH (same code, negated voltage) when MirrorVGL is set.
type DriverICConfig struct {
	ID          string                 `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	LUTType     string                 `yaml:"lut_type" json:"lutType"`
	Group       GroupSpec              `yaml:"group" json:"group"`
	Voltages    map[Rail][]Progression `yaml:"voltages" json:"-"`
	Defaults    map[Rail]int           `yaml:"defaults" json:"defaults"`
	MirrorVGL   bool                   `yaml:"mirror_vgl" json:"mirrorVGL"`
	Temperature []TempRange            `yaml:"temperature" json:"temperature"`
}

// TemperatureAdjustment returns the LUT correction for a panel at celsius.
// ok is false outside every declared range.
func (d DriverICConfig) TemperatureAdjustment(celsius int) (adj float64, ok bool) {
	for _, r := range d.Temperature {
		if celsius >= r.MinC && celsius < r.MaxC {
			return r.LUTAdjustment, true
		}
	}
	return 0, false
}

// VoltageList enumerates the legal values for rail, ordered by code.
func (d DriverICConfig) VoltageList(rail Rail) []VoltageOption {
	if rail == RailVGL && d.MirrorVGL {
		vgh := d.VoltageList(RailVGH)
		out := make([]VoltageOption, len(vgh))
		for i, o := range vgh {
			out[i] = VoltageOption{Code: o.Code, MilliVolts: -o.MilliVolts}
		}
		return out
	}

	var out []VoltageOption
	for _, p := range d.Voltages[rail] {
		out = append(out, p.Values()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// VoltageTables evaluates every rail.
func (d DriverICConfig) VoltageTables() map[Rail][]VoltageOption {
	out := make(map[Rail][]VoltageOption, len(Rails))
	for _, r := range Rails {
		out[r] = d.VoltageList(r)
	}
	return out
}

// VoltageAt resolves a register code to millivolts.
func (d DriverICConfig) VoltageAt(rail Rail, code int) (int, bool) {
	for _, o := range d.VoltageList(rail) {
		if o.Code == code {
			return o.MilliVolts, true
		}
	}
	return 0, false
}

// IndexOf finds the register code producing exactly mv.
func (d DriverICConfig) IndexOf(rail Rail, mv int) (int, bool) {
	for _, o := range d.VoltageList(rail) {
		if o.MilliVolts == mv {
			return o.Code, true
		}
	}
	return 0, false
}

// DefaultVoltageSettings returns the chip defaults with VGL following VGH.
func (d DriverICConfig) DefaultVoltageSettings() VoltageSettings {
	s := VoltageSettings{
		VGH:  d.Defaults[RailVGH],
		VGL:  d.Defaults[RailVGL],
		VSH:  d.Defaults[RailVSH],
		VSHR: d.Defaults[RailVSHR],
		VSL:  d.Defaults[RailVSL],
		VCOM: d.Defaults[RailVCOM],
	}
	if d.MirrorVGL {
		s.VGL = s.VGH
	}
	return s
}

// ValidateSettings checks every code against the chip's tables.
func (d DriverICConfig) ValidateSettings(s VoltageSettings) error {
	for _, r := range Rails {
		code := s.Get(r)
		if _, ok := d.VoltageAt(r, code); !ok {
			return fmt.Errorf("%w: %s=0x%02X on %s", ErrInvalidVoltage, r, code, d.ID)
		}
	}
	if d.MirrorVGL && s.VGL != s.VGH {
		return fmt.Errorf("%w: vgl must mirror vgh on %s", ErrInvalidVoltage, d.ID)
	}
	return nil
}

func (d DriverICConfig) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidDriverIC)
	}
	if d.Group.Count <= 0 || d.Group.Phase.Count <= 0 || d.Group.Phase.FrameMax <= 0 {
		return fmt.Errorf("%w: %s: group geometry must be positive", ErrInvalidDriverIC, d.ID)
	}
	for rail, progs := range d.Voltages {
		if !knownRail(rail) {
			return fmt.Errorf("%w: %s: unknown rail %q", ErrInvalidDriverIC, d.ID, rail)
		}
		for _, p := range progs {
			if err := p.validate(); err != nil {
				return fmt.Errorf("%s/%s: %w", d.ID, rail, err)
			}
		}
	}
	for rail, code := range d.Defaults {
		if rail == RailVGL && d.MirrorVGL {
			continue
		}
		if _, ok := d.VoltageAt(rail, code); !ok {
			return fmt.Errorf("%w: %s: default %s=0x%02X not in table", ErrInvalidDriverIC, d.ID, rail, code)
		}
	}
	for i, r := range d.Temperature {
		if r.MinC >= r.MaxC {
			return fmt.Errorf("%w: %s: temperature range %d..%d is empty", ErrInvalidDriverIC, d.ID, r.MinC, r.MaxC)
		}
		if i > 0 && r.MinC < d.Temperature[i-1].MaxC {
			return fmt.Errorf("%w: %s: temperature ranges must ascend without overlap", ErrInvalidDriverIC, d.ID)
		}
	}
	return nil
}

func knownRail(r Rail) bool {
	for _, k := range Rails {
		if k == r {
			return true
		}
	}
	return false
}
