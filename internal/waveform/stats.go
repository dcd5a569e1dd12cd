package waveform

// Stats summarises a matrix the way the editor header shows it.
type Stats struct {
	TotalFrames     int     `json:"totalFrames"`
	TotalDurationMs float64 `json:"totalDurationMs"`
	ActiveGroups    int     `json:"activeGroups"`
	MaxFrames       int     `json:"maxFrames"`
	AverageFreq     float64 `json:"averageFreq"`
}

func (m *Matrix) Stats() Stats {
	var st Stats
	var freqSum int
	for _, g := range m.Groups {
		st.TotalFrames += g.Frames
		if g.Freq > 0 {
			st.TotalDurationMs += float64(g.Frames) / float64(g.Freq) * 1000
		}
		if g.Frames > 0 {
			st.ActiveGroups++
		}
		if g.Frames > st.MaxFrames {
			st.MaxFrames = g.Frames
		}
		freqSum += g.Freq
	}
	if len(m.Groups) > 0 {
		st.AverageFreq = float64(freqSum) / float64(len(m.Groups))
	}
	return st
}
