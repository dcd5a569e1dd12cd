package waveform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPreset(t *testing.T) {
	m := Default()
	require.NoError(t, m.Validate())
	require.Len(t, m.Groups, GroupCount)

	assert.Equal(t, 12, m.Groups[0].Frames)
	assert.Equal(t, 4, m.Groups[1].Frames)
	assert.Equal(t, 2, m.Groups[2].Frames)
	for _, g := range m.Groups[3:] {
		assert.Equal(t, 1, g.Frames)
	}

	g5 := m.Groups[5]
	assert.Equal(t, "Group6", g5.Name)
	assert.Equal(t, DefaultFreq, g5.Freq)
	assert.Equal(t, []Level{0}, g5.Levels(LUTW, S1_2))  // (5+1)%3
	assert.Equal(t, []Level{2}, g5.Levels(LUTB, S1_1))  // (5+1)%4
	assert.Equal(t, []Level{2}, g5.Levels(LUTW2, S1_1)) // 5%3
	assert.Equal(t, []Level{1}, g5.Levels(VCOM, S2_2))
}

func TestCycleCellFourTimesRestores(t *testing.T) {
	m := Default()
	c := Cell{Group: 1, Kind: LUTB, SubPhase: S2_1, Frame: 7}

	orig, err := m.Get(c)
	require.NoError(t, err)

	seen := make([]Level, 0, 4)
	for i := 0; i < 4; i++ {
		l, err := m.CycleCell(c)
		require.NoError(t, err)
		seen = append(seen, l)
	}
	assert.Equal(t, orig, seen[3])
	assert.ElementsMatch(t, []Level{0, 1, 2, 3}, seen)
}

func TestSetCellTouchesOneScalar(t *testing.T) {
	m := Default()
	before := m.Clone()

	c := Cell{Group: 2, Kind: VCOM, SubPhase: S1_2, Frame: 3}
	require.NoError(t, m.SetCell(c, 3))

	got, err := m.Get(c)
	require.NoError(t, err)
	assert.Equal(t, Level(3), got)

	require.NoError(t, before.SetCell(c, 3))
	assert.Equal(t, before, m)
}

func TestSetCellErrors(t *testing.T) {
	m := Default()

	assert.ErrorIs(t, m.SetCell(Cell{Group: 1, Frame: 0}, 4), ErrInvalidLevel)
	assert.ErrorIs(t, m.SetCell(Cell{Group: 1, Frame: 0}, -1), ErrInvalidLevel)
	assert.ErrorIs(t, m.SetCell(Cell{Group: 0, Frame: 0}, 1), ErrOutOfRange)
	assert.ErrorIs(t, m.SetCell(Cell{Group: 11, Frame: 0}, 1), ErrOutOfRange)
	assert.ErrorIs(t, m.SetCell(Cell{Group: 4, Frame: 1}, 1), ErrOutOfRange)
	assert.ErrorIs(t, m.SetCell(Cell{Group: 1, Kind: Kind(4)}, 1), ErrOutOfRange)

	_, err := m.CycleCell(Cell{Group: 1, Frame: 12})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestSetFramesGrowPreservesAndZeroFills(t *testing.T) {
	m := Default()
	// group 2 starts with 4 frames, LUTB S1_1 filled with (1+1)%4 = 2
	require.NoError(t, m.SetFrames(2, 9))

	g, err := m.Group(2)
	require.NoError(t, err)
	assert.Equal(t, 9, g.Frames)
	for _, k := range Kinds {
		for _, s := range SubPhases {
			assert.Len(t, g.Levels(k, s), 9)
			assert.Equal(t, []Level{0, 0, 0, 0, 0}, g.Levels(k, s)[4:])
		}
	}
	assert.Equal(t, []Level{2, 2, 2, 2}, g.Levels(LUTB, S1_1)[:4])
	require.NoError(t, m.Validate())
}

func TestSetFramesShrinkTruncates(t *testing.T) {
	m := Default()
	c := Cell{Group: 1, Kind: LUTW, SubPhase: S1_1, Frame: 1}
	require.NoError(t, m.SetCell(c, 3))
	require.NoError(t, m.SetCell(Cell{Group: 1, Kind: LUTW, SubPhase: S1_1, Frame: 4}, 2))

	require.NoError(t, m.SetFrames(1, 2))
	g, _ := m.Group(1)
	assert.Equal(t, []Level{0, 3}, g.Levels(LUTW, S1_1))
	assert.Len(t, g.Levels(VCOM, S2_2), 2)

	require.NoError(t, m.SetFrames(1, 5))
	g, _ = m.Group(1)
	assert.Equal(t, []Level{0, 3, 0, 0, 0}, g.Levels(LUTW, S1_1), "truncated values are gone")
}

func TestSetFramesErrors(t *testing.T) {
	m := Default()
	assert.ErrorIs(t, m.SetFrames(1, 0), ErrInvalidFrames)
	assert.ErrorIs(t, m.SetFrames(1, 256), ErrInvalidFrames)
	assert.ErrorIs(t, m.SetFrames(12, 3), ErrOutOfRange)
	assert.Equal(t, 12, m.Groups[0].Frames)
}

func TestSetFreq(t *testing.T) {
	m := Default()
	require.NoError(t, m.SetFreq(3, 85))
	assert.Equal(t, 85, m.Groups[2].Freq)
	assert.ErrorIs(t, m.SetFreq(3, 0), ErrInvalidFreq)
	assert.ErrorIs(t, m.SetFreq(3, 1001), ErrInvalidFreq)
}

func TestCloneIsDeep(t *testing.T) {
	m := Default()
	cp := m.Clone()
	require.NoError(t, cp.SetCell(Cell{Group: 1, Kind: LUTW, SubPhase: S1_1, Frame: 0}, 3))

	got, _ := m.Get(Cell{Group: 1, Kind: LUTW, SubPhase: S1_1, Frame: 0})
	assert.Equal(t, Level(0), got)

	var nilMatrix *Matrix
	assert.Nil(t, nilMatrix.Clone())
}

func TestValidateRejectsBadShapes(t *testing.T) {
	t.Run("wrong group count", func(t *testing.T) {
		m := Default()
		m.Groups = m.Groups[:9]
		assert.ErrorIs(t, m.Validate(), ErrInvalidShape)
	})
	t.Run("length mismatch", func(t *testing.T) {
		m := Default()
		m.Groups[0].Waveforms[LUTB][S2_2] = m.Groups[0].Waveforms[LUTB][S2_2][:3]
		assert.ErrorIs(t, m.Validate(), ErrInvalidShape)
	})
	t.Run("level out of domain", func(t *testing.T) {
		m := Default()
		m.Groups[9].Waveforms[VCOM][S1_1][0] = 7
		err := m.Validate()
		assert.ErrorIs(t, err, ErrInvalidShape)
		assert.ErrorIs(t, err, ErrInvalidLevel)
	})
	t.Run("bad ids", func(t *testing.T) {
		m := Default()
		m.Groups[4].ID = 9
		assert.ErrorIs(t, m.Validate(), ErrInvalidShape)
	})
}

func TestMatrixJSONShape(t *testing.T) {
	m := Default()
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var raw struct {
		Groups []struct {
			ID        int                         `json:"id"`
			Frames    int                         `json:"frames"`
			Grp       int                         `json:"grp"`
			Waveforms map[string]map[string][]int `json:"waveforms"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.Groups, 10)
	assert.Len(t, raw.Groups[0].Waveforms, 4)
	assert.Len(t, raw.Groups[0].Waveforms["LUTW2"], 4)
	assert.Len(t, raw.Groups[0].Waveforms["VCOM"]["S2_1"], 12)

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m, &back)
}

func TestWaveformsUnmarshalRejectsUnknownNames(t *testing.T) {
	var w Waveforms
	assert.Error(t, json.Unmarshal([]byte(`{"LUTR":{"S1_1":[0]}}`), &w))
	assert.Error(t, json.Unmarshal([]byte(`{"LUTW":{"S3_1":[0]}}`), &w))
}

func TestParseNames(t *testing.T) {
	s, err := ParseSubPhase("S2.1")
	require.NoError(t, err)
	assert.Equal(t, S2_1, s)

	k, err := ParseKind("LUTW2")
	require.NoError(t, err)
	assert.Equal(t, LUTW2, k)

	var c Cell
	require.NoError(t, json.Unmarshal([]byte(`{"group":3,"kind":"VCOM","subPhase":"S1.2","frame":0}`), &c))
	assert.Equal(t, Cell{Group: 3, Kind: VCOM, SubPhase: S1_2}, c)
}

func TestStats(t *testing.T) {
	st := Default().Stats()
	assert.Equal(t, 12+4+2+7, st.TotalFrames)
	assert.InDelta(t, 25.0/50*1000, st.TotalDurationMs, 1e-9)
	assert.Equal(t, 10, st.ActiveGroups)
	assert.Equal(t, 12, st.MaxFrames)
	assert.InDelta(t, 50, st.AverageFreq, 1e-9)
}
