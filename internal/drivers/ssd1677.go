package drivers

// SSD1677ID is the chip every project defaults to.
const SSD1677ID = "ssd1677"

// SSD1677 register code tables. Codes outside these ranges are reserved.
func SSD1677() DriverICConfig {
	return DriverICConfig{
		ID:      SSD1677ID,
		Name:    "SSD1677",
		LUTType: "full",
		Group: GroupSpec{
			Phase: PhaseSpec{
				Count:          4,
				HasTwoStages:   true,
				StageRepeatMax: 255,
				FrameMax:       255,
			},
			Count:     10,
			RepeatMax: 255,
		},
		Voltages: map[Rail][]Progression{
			// 10.0 V .. 20.0 V in 0.5 V steps
			RailVGH: {{First: 0x03, Last: 0x17, IndexStep: 1, StartMV: 10000, StepMV: 500}},
			RailVSH: {
				{First: 0x23, Last: 0x4B, IndexStep: 1, StartMV: 9000, StepMV: 200},
				{First: 0x8E, Last: 0xCE, IndexStep: 1, StartMV: 2400, StepMV: 100},
			},
			RailVSHR: {
				{First: 0x23, Last: 0x4B, IndexStep: 1, StartMV: 9000, StepMV: 200},
				{First: 0x8E, Last: 0xCE, IndexStep: 1, StartMV: 2400, StepMV: 100},
			},
			// -9.0 V .. -17.0 V, even codes only
			RailVSL:  {{First: 0x1A, Last: 0x3A, IndexStep: 2, StartMV: -9000, StepMV: -500}},
			RailVCOM: {{First: 0x08, Last: 0x78, IndexStep: 4, StartMV: -200, StepMV: -100}},
		},
		Defaults: map[Rail]int{
			RailVGH:  0x17,
			RailVSH:  0x41,
			RailVSHR: 0x9E,
			RailVSL:  0x2C,
			RailVCOM: 0x34,
		},
		MirrorVGL: true,
		Temperature: []TempRange{
			{MinC: -10, MaxC: 0, LUTAdjustment: 0.1},
			{MinC: 0, MaxC: 25, LUTAdjustment: 0},
			{MinC: 25, MaxC: 40, LUTAdjustment: -0.1},
		},
	}
}
