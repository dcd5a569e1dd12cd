package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	chip, ok := r.Get(SSD1677ID)
	require.True(t, ok)
	assert.Equal(t, "SSD1677", chip.Name)
	assert.Equal(t, 10, chip.Group.Count)
	assert.Equal(t, 4, chip.Group.Phase.Count)

	_, ok = r.Get("il0373")
	assert.False(t, ok)

	_, err := r.Lookup("il0373")
	assert.ErrorIs(t, err, ErrUnknownChip)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Register(SSD1677()), ErrInvalidDriverIC)
}

func TestRegistryLoadYAML(t *testing.T) {
	r := NewRegistry()

	n, err := r.LoadYAML("testdata/drivers.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "ssd1677", all[0].ID)
	assert.Equal(t, "ssd1680", all[1].ID)

	chip := all[1]
	assert.Equal(t, 12, chip.Group.Count)
	mv, ok := chip.VoltageAt(RailVGH, 0x07)
	require.True(t, ok)
	assert.Equal(t, 12000, mv)
	assert.NoError(t, chip.ValidateSettings(chip.DefaultVoltageSettings()))
	assert.Equal(t, "full", chip.LUTType)
	assert.Equal(t, []TempRange{{MinC: 0, MaxC: 50}}, chip.Temperature)
}

func TestRegistryLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", "drivers: [::"},
		{"missing id", "drivers:\n  - name: X\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n"},
		{"builtin clash", "drivers:\n  - id: ssd1677\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n"},
		{"unknown rail", "drivers:\n  - id: x\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n    voltages:\n      vpp: [{first: 1, last: 2}]\n"},
		{"default outside table", "drivers:\n  - id: x\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n    voltages:\n      vgh: [{first: 1, last: 2}]\n    defaults:\n      vgh: 9\n"},
		{"empty temperature range", "drivers:\n  - id: x\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n    temperature:\n      - {min_c: 10, max_c: 10}\n"},
		{"overlapping temperature ranges", "drivers:\n  - id: x\n    group: {count: 1, phase: {count: 1, frame_max: 1}}\n    temperature:\n      - {min_c: 0, max_c: 30}\n      - {min_c: 20, max_c: 40}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			_, err := r.LoadYAMLBytes([]byte(tt.data))
			assert.Error(t, err)
			assert.Len(t, r.All(), 1)
		})
	}
}

func TestRegistryLoadYAMLMissingFile(t *testing.T) {
	_, err := NewRegistry().LoadYAML("testdata/nope.yaml")
	assert.Error(t, err)
}
