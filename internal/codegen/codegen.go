// Package codegen renders a waveform matrix as C source: per-group
// defines, one byte array per kind and sub-phase, and the struct type that
// firmware uses to point at them.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hse-epd/lut-studio/internal/waveform"
)

const (
	DefaultChipName = "SSD1677"
	DefaultFilename = "ssd1677_lut.h"
	generatorName   = "HS EPD Magic"
	structName      = "lut_group_config_t"
)

var ErrNoMatrix = errors.New("codegen: matrix required")

// VoltageDefine is one rail setting emitted ahead of the LUT arrays.
type VoltageDefine struct {
	Rail       string
	Code       int
	MilliVolts int
}

type Options struct {
	ProjectName string
	ChipName    string
	Matrix      *waveform.Matrix
	Voltages    []VoltageDefine
}

// Generate is deterministic: identical options give identical text.
func Generate(opt Options) (string, error) {
	if opt.Matrix == nil {
		return "", ErrNoMatrix
	}
	chip := opt.ChipName
	if chip == "" {
		chip = DefaultChipName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// %s LUT Configuration for %s\n", chip, opt.ProjectName)
	fmt.Fprintf(&b, "// Generated by %s\n\n", generatorName)

	if len(opt.Voltages) > 0 {
		b.WriteString("// Voltage Settings\n")
		for _, v := range opt.Voltages {
			fmt.Fprintf(&b, "#define LUT_%s 0x%02X  /* %s V */\n",
				strings.ToUpper(v.Rail), v.Code, formatVolts(v.MilliVolts))
		}
		b.WriteString("\n")
	}

	for _, g := range opt.Matrix.Groups {
		writeGroup(&b, g)
	}

	writeStruct(&b)
	return b.String(), nil
}

func writeGroup(b *strings.Builder, g waveform.Group) {
	fmt.Fprintf(b, "// Group %d Configuration\n", g.ID)
	fmt.Fprintf(b, "#define GROUP%d_FRAMES %d\n", g.ID, g.Frames)
	fmt.Fprintf(b, "#define GROUP%d_FREQ %d\n\n", g.ID, g.Freq)

	for _, k := range waveform.Kinds {
		for _, s := range waveform.SubPhases {
			fmt.Fprintf(b, "static const uint8_t %s[%d] = {\n    ", ArrayName(g.ID, k, s), g.Frames)
			levels := g.Levels(k, s)
			for i, l := range levels {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(b, "0x%02X", int(l))
			}
			b.WriteString("\n};\n")
		}
	}
	b.WriteString("\n")
}

func writeStruct(b *strings.Builder) {
	b.WriteString("// LUT Configuration Structure\n")
	b.WriteString("typedef struct {\n")
	b.WriteString("    uint8_t frames;\n")
	b.WriteString("    uint16_t freq;\n")
	for _, k := range waveform.Kinds {
		for _, s := range waveform.SubPhases {
			fmt.Fprintf(b, "    const uint8_t* %s;\n", FieldName(k, s))
		}
	}
	fmt.Fprintf(b, "} %s;\n\n", structName)
}

// ArrayName is the C identifier for one group's kind/sub-phase array,
// e.g. group3_LUTW2_S1_2.
func ArrayName(group int, k waveform.Kind, s waveform.SubPhase) string {
	return fmt.Sprintf("group%d_%s_%s", group, k, s)
}

// FieldName is the struct member for a kind/sub-phase, e.g. lutw2_s1_2.
func FieldName(k waveform.Kind, s waveform.SubPhase) string {
	return strings.ToLower(k.String() + "_" + s.String())
}

func formatVolts(mv int) string {
	sign := ""
	if mv < 0 {
		sign = "-"
		mv = -mv
	}
	return fmt.Sprintf("%s%d.%02d", sign, mv/1000, mv%1000/10)
}

// Filename derives the download name for a project. ext is "c" or "h";
// anything else falls back to "h".
func Filename(projectName, ext string) string {
	if ext != "c" {
		ext = "h"
	}
	name := sanitize(projectName)
	if name == "" {
		if ext == "h" {
			return DefaultFilename
		}
		return strings.TrimSuffix(DefaultFilename, ".h") + ".c"
	}
	return name + "_lut_config." + ext
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		case r > 0x7F:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}
