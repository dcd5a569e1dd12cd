package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hse-epd/lut-studio/internal/codegen"
	"github.com/hse-epd/lut-studio/internal/drivers"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/projects/repository"
	"github.com/hse-epd/lut-studio/internal/waveform"
)

// ProjectService applies editor operations to stored projects.
type ProjectService struct {
	repo     *repository.ProjectRepository
	registry *drivers.Registry
}

// NewProjectService creates a new project service
func NewProjectService(repo *repository.ProjectRepository, registry *drivers.Registry) *ProjectService {
	return &ProjectService{
		repo:     repo,
		registry: registry,
	}
}

// CreateInput is what a user submits to start a project.
type CreateInput struct {
	Name      string
	ChipModel string
	LUTType   domain.LUTType
}

// Create starts a project with the chip's default voltages and the
// reference waveform preset.
func (s *ProjectService) Create(ctx context.Context, in CreateInput) (*domain.Project, error) {
	chipID := strings.ToLower(strings.TrimSpace(in.ChipModel))
	if chipID == "" {
		chipID = drivers.SSD1677ID
	}
	chip, err := s.registry.Lookup(chipID)
	if err != nil {
		return nil, err
	}
	if !in.LUTType.Valid() {
		return nil, domain.ErrInvalidLUTType
	}

	vs := chip.DefaultVoltageSettings()
	return s.repo.Create(ctx, domain.NewProject{
		Name:      in.Name,
		ChipModel: chip.ID,
		Config: &domain.ProjectConfig{
			VoltageSettings: &vs,
			LUTData:         waveform.Default(),
			LUTType:         in.LUTType,
		},
	})
}

func (s *ProjectService) List(ctx context.Context) []domain.Project {
	return s.repo.List(ctx)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, id)
}

// Update merges a patch after checking chip, lut type and matrix shape.
func (s *ProjectService) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if patch.ChipModel != nil {
		chip, err := s.registry.Lookup(*patch.ChipModel)
		if err != nil {
			return nil, err
		}
		patch.ChipModel = &chip.ID
	}
	if patch.Config != nil {
		if !patch.Config.LUTType.Valid() {
			return nil, domain.ErrInvalidLUTType
		}
		if patch.Config.LUTData != nil {
			if err := patch.Config.LUTData.Validate(); err != nil {
				return nil, err
			}
		}
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ProjectService) Duplicate(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Duplicate(ctx, id)
}

func (s *ProjectService) Export(ctx context.Context, id string) ([]byte, string, error) {
	return s.repo.Export(ctx, id)
}

func (s *ProjectService) Import(ctx context.Context, payload []byte) (*domain.Project, error) {
	return s.repo.Import(ctx, payload)
}

func chipFor(registry *drivers.Registry, p *domain.Project) (drivers.DriverICConfig, error) {
	id := p.ChipModel
	if id == "" {
		id = drivers.SSD1677ID
	}
	return registry.Lookup(id)
}

// configOf returns the project's config, creating an empty one if needed.
func configOf(p *domain.Project) *domain.ProjectConfig {
	if p.Config == nil {
		p.Config = &domain.ProjectConfig{}
	}
	return p.Config
}

// VoltageSettings returns the stored settings, or the chip defaults for a
// project that never saved any.
func (s *ProjectService) VoltageSettings(ctx context.Context, id string) (drivers.VoltageSettings, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return drivers.VoltageSettings{}, err
	}
	if p.Config != nil && p.Config.VoltageSettings != nil {
		return *p.Config.VoltageSettings, nil
	}
	chip, err := chipFor(s.registry, p)
	if err != nil {
		return drivers.VoltageSettings{}, err
	}
	return chip.DefaultVoltageSettings(), nil
}

// SaveVoltageSettings stores new register codes. VGL is forced to VGH's
// code before validation.
func (s *ProjectService) SaveVoltageSettings(ctx context.Context, id string, vs drivers.VoltageSettings) (*domain.Project, error) {
	return s.repo.Mutate(ctx, id, func(p *domain.Project) error {
		chip, err := chipFor(s.registry, p)
		if err != nil {
			return err
		}
		if chip.MirrorVGL {
			vs = vs.MirrorGateLow()
		}
		if err := chip.ValidateSettings(vs); err != nil {
			return err
		}
		configOf(p).VoltageSettings = &vs
		return nil
	})
}

// ResetVoltageSettings restores the chip defaults.
func (s *ProjectService) ResetVoltageSettings(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Mutate(ctx, id, func(p *domain.Project) error {
		chip, err := chipFor(s.registry, p)
		if err != nil {
			return err
		}
		vs := chip.DefaultVoltageSettings()
		configOf(p).VoltageSettings = &vs
		return nil
	})
}

// Waveform returns the stored matrix, or the preset for a project that
// never saved one.
func (s *ProjectService) Waveform(ctx context.Context, id string) (*waveform.Matrix, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Config != nil && p.Config.LUTData != nil {
		return p.Config.LUTData, nil
	}
	return waveform.Default(), nil
}

// SaveWaveform replaces the whole matrix.
func (s *ProjectService) SaveWaveform(ctx context.Context, id string, m *waveform.Matrix) (*domain.Project, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: empty matrix", waveform.ErrInvalidShape)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Mutate(ctx, id, func(p *domain.Project) error {
		configOf(p).LUTData = m.Clone()
		return nil
	})
}

// editWaveform applies fn to the stored matrix, or to the preset when the
// project has none, and stores the result atomically.
func (s *ProjectService) editWaveform(ctx context.Context, id string, fn func(m *waveform.Matrix) error) (*waveform.Matrix, error) {
	updated, err := s.repo.Mutate(ctx, id, func(p *domain.Project) error {
		cfg := configOf(p)
		if cfg.LUTData == nil {
			cfg.LUTData = waveform.Default()
		}
		return fn(cfg.LUTData)
	})
	if err != nil {
		return nil, err
	}
	return updated.Config.LUTData, nil
}

// CycleCell advances one cell 0→1→2→3→0 and returns the new level.
func (s *ProjectService) CycleCell(ctx context.Context, id string, c waveform.Cell) (waveform.Level, error) {
	var level waveform.Level
	_, err := s.editWaveform(ctx, id, func(m *waveform.Matrix) error {
		var err error
		level, err = m.CycleCell(c)
		return err
	})
	return level, err
}

func (s *ProjectService) SetCell(ctx context.Context, id string, c waveform.Cell, l waveform.Level) (*waveform.Matrix, error) {
	return s.editWaveform(ctx, id, func(m *waveform.Matrix) error {
		return m.SetCell(c, l)
	})
}

func (s *ProjectService) SetFrames(ctx context.Context, id string, group, frames int) (*waveform.Matrix, error) {
	return s.editWaveform(ctx, id, func(m *waveform.Matrix) error {
		return m.SetFrames(group, frames)
	})
}

func (s *ProjectService) SetFreq(ctx context.Context, id string, group, hz int) (*waveform.Matrix, error) {
	return s.editWaveform(ctx, id, func(m *waveform.Matrix) error {
		return m.SetFreq(group, hz)
	})
}

// GeneratedCode is the C source for a project and its download name.
type GeneratedCode struct {
	Code     string `json:"code"`
	Filename string `json:"filename"`
}

// GenerateCode renders the project as C. ext is "c" or "h".
func (s *ProjectService) GenerateCode(ctx context.Context, id, ext string) (*GeneratedCode, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Render(s.registry, p, ext)
}

// Render generates code for a project that need not be stored. Imported
// projects are not validated on the way in, so the matrix shape and the
// voltage codes are checked here before any text is emitted.
func Render(registry *drivers.Registry, p *domain.Project, ext string) (*GeneratedCode, error) {
	chip, err := chipFor(registry, p)
	if err != nil {
		return nil, err
	}

	matrix := waveform.Default()
	var defines []codegen.VoltageDefine
	if p.Config != nil {
		if p.Config.LUTData != nil {
			matrix = p.Config.LUTData
		}
		if vs := p.Config.VoltageSettings; vs != nil {
			if err := chip.ValidateSettings(*vs); err != nil {
				return nil, err
			}
			for _, r := range drivers.Rails {
				code := vs.Get(r)
				mv, _ := chip.VoltageAt(r, code)
				defines = append(defines, codegen.VoltageDefine{Rail: string(r), Code: code, MilliVolts: mv})
			}
		}
	}
	if err := matrix.Validate(); err != nil {
		return nil, err
	}

	code, err := codegen.Generate(codegen.Options{
		ProjectName: p.Name,
		ChipName:    chip.Name,
		Matrix:      matrix,
		Voltages:    defines,
	})
	if err != nil {
		return nil, err
	}
	return &GeneratedCode{Code: code, Filename: codegen.Filename(p.Name, ext)}, nil
}
