package waveform

import "fmt"

// DefaultFreq is the frame rate every preset group starts with.
const DefaultFreq = 50

func defaultFrames(i int) int {
	switch i {
	case 0:
		return 12
	case 1:
		return 4
	case 2:
		return 2
	default:
		return 1
	}
}

// presetFill gives the fill level for group index i (0-based).
var presetFill = [KindCount][SubPhaseCount]func(i int) Level{
	LUTW:  {func(i int) Level { return Level(i % 2) }, func(i int) Level { return Level((i + 1) % 3) }, func(i int) Level { return Level(i % 4) }, func(i int) Level { return Level((i + 2) % 3) }},
	LUTB:  {func(i int) Level { return Level((i + 1) % 4) }, func(i int) Level { return Level(i % 3) }, func(i int) Level { return Level((i + 2) % 4) }, func(i int) Level { return Level((i + 3) % 3) }},
	LUTW2: {func(i int) Level { return Level(i % 3) }, func(i int) Level { return Level((i + 2) % 4) }, func(i int) Level { return Level((i + 1) % 3) }, func(i int) Level { return Level(i % 4) }},
	VCOM:  {func(int) Level { return 1 }, func(int) Level { return 1 }, func(int) Level { return 1 }, func(int) Level { return 1 }},
}

// Default returns the SSD1677 reference preset.
func Default() *Matrix {
	m := &Matrix{Groups: make([]Group, GroupCount)}
	for i := range m.Groups {
		frames := defaultFrames(i)
		g := Group{
			ID:     i + 1,
			Name:   fmt.Sprintf("Group%d", i+1),
			Frames: frames,
			Freq:   DefaultFreq,
		}
		for _, k := range Kinds {
			for _, s := range SubPhases {
				fill := presetFill[k][s](i)
				levels := make([]Level, frames)
				for f := range levels {
					levels[f] = fill
				}
				g.Waveforms[k][s] = levels
			}
		}
		m.Groups[i] = g
	}
	return m
}
