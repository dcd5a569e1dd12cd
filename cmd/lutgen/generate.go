package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/projects/service"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

// runGenerate reads an exported project file and writes its C code.
func runGenerate(registry *drivers.Registry, args []string) error {
	if len(args) < 1 {
		return errors.New("generate needs a project file")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var p domain.Project
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidProjectFile, err)
	}
	return render(registry, &p, args[1:])
}

// runDefault writes the code for a fresh project with the preset matrix.
func runDefault(registry *drivers.Registry, args []string) error {
	if len(args) < 1 {
		return errors.New("default needs a project name")
	}
	chip, err := registry.Lookup(drivers.SSD1677ID)
	if err != nil {
		return err
	}
	vs := chip.DefaultVoltageSettings()
	p := &domain.Project{
		Name:      args[0],
		ChipModel: chip.ID,
		Config: &domain.ProjectConfig{
			VoltageSettings: &vs,
			LUTData:         waveform.Default(),
		},
	}
	return render(registry, p, args[1:])
}

func render(registry *drivers.Registry, p *domain.Project, rest []string) error {
	ext := "h"
	if len(rest) > 0 && strings.EqualFold(filepath.Ext(rest[0]), ".c") {
		ext = "c"
	}
	out, err := service.Render(registry, p, ext)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		_, err = io.WriteString(os.Stdout, out.Code)
		return err
	}
	return os.WriteFile(rest[0], []byte(out.Code), 0o644)
}

// runDrivers prints every known chip and the voltage span of each rail.
func runDrivers(registry *drivers.Registry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRAIL\tCODES\tRANGE (mV)")
	for _, d := range registry.All() {
		for _, r := range drivers.Rails {
			opts := d.VoltageList(r)
			if len(opts) == 0 {
				continue
			}
			lo, hi := opts[0].MilliVolts, opts[0].MilliVolts
			for _, o := range opts {
				lo, hi = min(lo, o.MilliVolts), max(hi, o.MilliVolts)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d..%d\n", d.ID, d.Name, r, len(opts), lo, hi)
		}
	}
	return tw.Flush()
}
