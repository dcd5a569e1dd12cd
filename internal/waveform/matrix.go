// Package waveform holds the LUT waveform matrix: ten groups, each with
// four waveform kinds split into four sub-phases of per-frame level codes.
package waveform

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	GroupCount    = 10
	KindCount     = 4
	SubPhaseCount = 4

	MinFrames = 1
	MaxFrames = 255
	MinFreq   = 1
	MaxFreq   = 1000

	// LevelCount is the number of voltage level codes a cell can hold.
	LevelCount = 4
)

var (
	ErrOutOfRange    = errors.New("waveform: index out of range")
	ErrInvalidLevel  = errors.New("waveform: level must be 0..3")
	ErrInvalidFrames = errors.New("waveform: frame count must be 1..255")
	ErrInvalidFreq   = errors.New("waveform: frequency must be 1..1000 Hz")
	ErrInvalidShape  = errors.New("waveform: malformed matrix")
)

// Level is a 2-bit voltage level code.
type Level int

// Next cycles 0→1→2→3→0.
func (l Level) Next() Level { return (l + 1) % LevelCount }

func (l Level) Valid() bool { return l >= 0 && l < LevelCount }

// Kind selects one of the four waveform rows.
type Kind int

const (
	LUTW Kind = iota
	LUTB
	LUTW2
	VCOM
)

var kindNames = [KindCount]string{"LUTW", "LUTB", "LUTW2", "VCOM"}

// Kinds lists every kind in output order.
var Kinds = [KindCount]Kind{LUTW, LUTB, LUTW2, VCOM}

func (k Kind) String() string {
	if k < 0 || int(k) >= KindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind accepts the names used in JSON and generated code.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: kind %q", ErrOutOfRange, s)
}

func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SubPhase selects one of the timing slots S1.1, S1.2, S2.1, S2.2.
type SubPhase int

const (
	S1_1 SubPhase = iota
	S1_2
	S2_1
	S2_2
)

var subPhaseNames = [SubPhaseCount]string{"S1_1", "S1_2", "S2_1", "S2_2"}

var SubPhases = [SubPhaseCount]SubPhase{S1_1, S1_2, S2_1, S2_2}

func (s SubPhase) String() string {
	if s < 0 || int(s) >= SubPhaseCount {
		return fmt.Sprintf("SubPhase(%d)", int(s))
	}
	return subPhaseNames[s]
}

// ParseSubPhase accepts both "S1_1" and the dotted "S1.1" form.
func ParseSubPhase(s string) (SubPhase, error) {
	for i, n := range subPhaseNames {
		if n == s || dotted(n) == s {
			return SubPhase(i), nil
		}
	}
	return 0, fmt.Errorf("%w: sub-phase %q", ErrOutOfRange, s)
}

func dotted(n string) string {
	b := []byte(n)
	for i, c := range b {
		if c == '_' {
			b[i] = '.'
		}
	}
	return string(b)
}

func (s SubPhase) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *SubPhase) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseSubPhase(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Waveforms is indexed [kind][sub-phase][frame].
type Waveforms [KindCount][SubPhaseCount][]Level

// MarshalJSON writes {"LUTW": {"S1_1": [...], ...}, ...}.
func (w Waveforms) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string][]Level, KindCount)
	for _, k := range Kinds {
		phases := make(map[string][]Level, SubPhaseCount)
		for _, s := range SubPhases {
			levels := w[k][s]
			if levels == nil {
				levels = []Level{}
			}
			phases[s.String()] = levels
		}
		out[k.String()] = phases
	}
	return json.Marshal(out)
}

func (w *Waveforms) UnmarshalJSON(b []byte) error {
	var in map[string]map[string][]Level
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var out Waveforms
	for kn, phases := range in {
		k, err := ParseKind(kn)
		if err != nil {
			return err
		}
		for sn, levels := range phases {
			s, err := ParseSubPhase(sn)
			if err != nil {
				return err
			}
			out[k][s] = levels
		}
	}
	*w = out
	return nil
}

// Group is one independently timed waveform segment.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Frames    int       `json:"frames"`
	Repeat    int       `json:"grp"`
	Freq      int       `json:"freq"`
	Waveforms Waveforms `json:"waveforms"`
}

// Levels returns the frame levels for one kind and sub-phase.
func (g *Group) Levels(k Kind, s SubPhase) []Level {
	return g.Waveforms[k][s]
}

// Matrix is the full LUT of one project.
type Matrix struct {
	Groups []Group `json:"groups"`
}

// Cell addresses one frame of one sub-phase. Group is the 1-based group id.
type Cell struct {
	Group    int      `json:"group"`
	Kind     Kind     `json:"kind"`
	SubPhase SubPhase `json:"subPhase"`
	Frame    int      `json:"frame"`
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return nil
	}
	out := &Matrix{Groups: make([]Group, len(m.Groups))}
	for i, g := range m.Groups {
		for _, k := range Kinds {
			for _, s := range SubPhases {
				if g.Waveforms[k][s] != nil {
					g.Waveforms[k][s] = append([]Level(nil), g.Waveforms[k][s]...)
				}
			}
		}
		out.Groups[i] = g
	}
	return out
}

func (m *Matrix) group(id int) (*Group, error) {
	if id < 1 || id > len(m.Groups) {
		return nil, fmt.Errorf("%w: group %d", ErrOutOfRange, id)
	}
	return &m.Groups[id-1], nil
}

// Group returns a copy of the group with the given 1-based id.
func (m *Matrix) Group(id int) (Group, error) {
	g, err := m.group(id)
	if err != nil {
		return Group{}, err
	}
	return *g, nil
}

func (m *Matrix) cell(c Cell) (*Group, error) {
	g, err := m.group(c.Group)
	if err != nil {
		return nil, err
	}
	if c.Kind < 0 || int(c.Kind) >= KindCount || c.SubPhase < 0 || int(c.SubPhase) >= SubPhaseCount {
		return nil, fmt.Errorf("%w: kind %d sub-phase %d", ErrOutOfRange, c.Kind, c.SubPhase)
	}
	if c.Frame < 0 || c.Frame >= len(g.Waveforms[c.Kind][c.SubPhase]) {
		return nil, fmt.Errorf("%w: frame %d of group %d", ErrOutOfRange, c.Frame, c.Group)
	}
	return g, nil
}

// Get reads one cell.
func (m *Matrix) Get(c Cell) (Level, error) {
	g, err := m.cell(c)
	if err != nil {
		return 0, err
	}
	return g.Waveforms[c.Kind][c.SubPhase][c.Frame], nil
}

// SetCell replaces exactly one level.
func (m *Matrix) SetCell(c Cell, l Level) error {
	if !l.Valid() {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, l)
	}
	g, err := m.cell(c)
	if err != nil {
		return err
	}
	g.Waveforms[c.Kind][c.SubPhase][c.Frame] = l
	return nil
}

// CycleCell advances one cell to its next level and returns it.
func (m *Matrix) CycleCell(c Cell) (Level, error) {
	g, err := m.cell(c)
	if err != nil {
		return 0, err
	}
	next := g.Waveforms[c.Kind][c.SubPhase][c.Frame].Next()
	g.Waveforms[c.Kind][c.SubPhase][c.Frame] = next
	return next, nil
}

// SetFrames resizes every sub-phase of a group to n frames, keeping the
// first min(old, n) levels and zero-filling the rest.
func (m *Matrix) SetFrames(groupID, n int) error {
	if n < MinFrames || n > MaxFrames {
		return fmt.Errorf("%w: got %d", ErrInvalidFrames, n)
	}
	g, err := m.group(groupID)
	if err != nil {
		return err
	}
	for _, k := range Kinds {
		for _, s := range SubPhases {
			resized := make([]Level, n)
			copy(resized, g.Waveforms[k][s])
			g.Waveforms[k][s] = resized
		}
	}
	g.Frames = n
	return nil
}

func (m *Matrix) SetFreq(groupID, hz int) error {
	if hz < MinFreq || hz > MaxFreq {
		return fmt.Errorf("%w: got %d", ErrInvalidFreq, hz)
	}
	g, err := m.group(groupID)
	if err != nil {
		return err
	}
	g.Freq = hz
	return nil
}

// Validate checks the shape invariants: ten groups with sequential ids,
// frame counts in range, every sub-phase exactly Frames long and every
// level in 0..3.
func (m *Matrix) Validate() error {
	if len(m.Groups) != GroupCount {
		return fmt.Errorf("%w: %d groups, want %d", ErrInvalidShape, len(m.Groups), GroupCount)
	}
	for i, g := range m.Groups {
		if g.ID != i+1 {
			return fmt.Errorf("%w: group %d has id %d", ErrInvalidShape, i+1, g.ID)
		}
		if g.Frames < MinFrames || g.Frames > MaxFrames {
			return fmt.Errorf("%w: group %d: %w", ErrInvalidShape, g.ID, ErrInvalidFrames)
		}
		if g.Freq < MinFreq || g.Freq > MaxFreq {
			return fmt.Errorf("%w: group %d: %w", ErrInvalidShape, g.ID, ErrInvalidFreq)
		}
		for _, k := range Kinds {
			for _, s := range SubPhases {
				levels := g.Waveforms[k][s]
				if len(levels) != g.Frames {
					return fmt.Errorf("%w: group %d %s %s has %d frames, want %d",
						ErrInvalidShape, g.ID, k, s, len(levels), g.Frames)
				}
				for f, l := range levels {
					if !l.Valid() {
						return fmt.Errorf("%w: group %d %s %s frame %d: %w", ErrInvalidShape, g.ID, k, s, f, ErrInvalidLevel)
					}
				}
			}
		}
	}
	return nil
}
