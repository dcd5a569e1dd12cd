package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hse-epd/lut-studio/internal/kvstore"
	"github.com/hse-epd/lut-studio/internal/projects/domain"
	"github.com/hse-epd/lut-studio/internal/projects/utils"
	"github.com/hse-epd/lut-studio/internal/telemetry"
)

const (
	// StorageKey holds the JSON array of every project.
	StorageKey = "hse-pdm-magic-projects"

	CopySuffix   = " (copy)"
	ImportSuffix = " (imported)"
)

// ProjectRepository keeps the project list in memory, newest first, and
// mirrors it to a key/value store after every mutation. Mirroring is best
// effort: a failed save is logged and the in-memory change stands.
type ProjectRepository struct {
	mu       sync.RWMutex
	kv       kvstore.Store
	projects []domain.Project

	log       zerolog.Logger
	collector telemetry.Collector
	now       func() time.Time
	newID     func() string
}

type Option func(*ProjectRepository)

func WithLogger(l zerolog.Logger) Option {
	return func(r *ProjectRepository) { r.log = l }
}

func WithCollector(c telemetry.Collector) Option {
	return func(r *ProjectRepository) { r.collector = c }
}

func WithClock(now func() time.Time) Option {
	return func(r *ProjectRepository) { r.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(r *ProjectRepository) { r.newID = gen }
}

// Open loads the persisted list. A missing key starts an empty store; an
// unreadable or corrupt one is logged and also starts empty.
func Open(ctx context.Context, kv kvstore.Store, opts ...Option) *ProjectRepository {
	r := &ProjectRepository{
		kv:        kv,
		log:       zerolog.Nop(),
		collector: telemetry.Noop(),
		now:       time.Now,
		newID:     utils.NewProjectID,
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := kv.Load(ctx, StorageKey)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
		r.log.Info().Msg("no stored projects")
	case err != nil:
		r.log.Error().Err(err).Msg("failed to load projects")
	default:
		var loaded []domain.Project
		if err := json.Unmarshal(data, &loaded); err != nil {
			r.log.Error().Err(err).Msg("failed to parse stored projects")
			break
		}
		r.projects = loaded
		r.log.Info().Int("count", len(loaded)).Msg("projects loaded")
	}
	r.collector.SetProjectCount(len(r.projects))
	return r
}

// persist must be called with r.mu held.
func (r *ProjectRepository) persist(ctx context.Context) {
	r.collector.SetProjectCount(len(r.projects))

	list := r.projects
	if list == nil {
		list = []domain.Project{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		r.collector.IncStoreWrite(false)
		r.log.Error().Err(err).Msg("failed to encode projects")
		return
	}
	if err := r.kv.Save(ctx, StorageKey, data); err != nil {
		r.collector.IncStoreWrite(false)
		r.log.Error().Err(err).Int("count", len(list)).Msg("failed to save projects")
		return
	}
	r.collector.IncStoreWrite(true)
	r.log.Debug().Int("count", len(list)).Msg("projects saved")
}

func (r *ProjectRepository) indexOf(id string) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ProjectRepository) prepend(ctx context.Context, p domain.Project) domain.Project {
	r.projects = append([]domain.Project{p}, r.projects...)
	r.persist(ctx)
	return p.Clone()
}

// Create inserts a new project at the head of the list.
func (r *ProjectRepository) Create(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p := r.prepend(ctx, domain.Project{
		ID:          r.newID(),
		Name:        name,
		ChipModel:   in.ChipModel,
		CreatedTime: now,
		UpdatedTime: now,
		Config:      in.Config.Clone(),
	})
	r.log.Info().Str("project_id", p.ID).Str("name", p.Name).Msg("project created")
	return &p, nil
}

// List returns every project, newest first.
func (r *ProjectRepository) List(_ context.Context) []domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p.Clone())
	}
	return out
}

func (r *ProjectRepository) Get(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	p := r.projects[i].Clone()
	return &p, nil
}

// Update merges the non-nil patch fields and refreshes UpdatedTime.
func (r *ProjectRepository) Update(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	p := &r.projects[i]
	if patch.Name != nil {
		p.Name = name
	}
	if patch.ChipModel != nil {
		p.ChipModel = *patch.ChipModel
	}
	if patch.Config != nil {
		p.Config = patch.Config.Clone()
	}
	p.UpdatedTime = r.now().UTC()
	r.persist(ctx)

	out := p.Clone()
	return &out, nil
}

// Mutate applies fn to a copy of the project under the write lock and
// stores the result, so concurrent read-modify-write edits never overwrite
// each other. If fn fails nothing changes.
func (r *ProjectRepository) Mutate(ctx context.Context, id string, fn func(p *domain.Project) error) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	p := r.projects[i].Clone()
	if err := fn(&p); err != nil {
		return nil, err
	}
	p.ID = r.projects[i].ID
	p.CreatedTime = r.projects[i].CreatedTime
	p.UpdatedTime = r.now().UTC()
	r.projects[i] = p
	r.persist(ctx)

	out := p.Clone()
	return &out, nil
}

// Delete removes a project.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.projects = append(r.projects[:i:i], r.projects[i+1:]...)
	r.persist(ctx)
	r.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

// Duplicate copies a project under a new id with fresh timestamps.
func (r *ProjectRepository) Duplicate(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	now := r.now().UTC()
	cp := r.projects[i].Clone()
	cp.ID = r.newID()
	cp.Name += CopySuffix
	cp.CreatedTime = now
	cp.UpdatedTime = now

	p := r.prepend(ctx, cp)
	return &p, nil
}

// Export encodes a single project as an indented JSON document and
// suggests a filename for it.
func (r *ProjectRepository) Export(ctx context.Context, id string) ([]byte, string, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode project: %w", err)
	}
	return data, p.Name + ".json", nil
}

// Import decodes an exported project and stores it under a new id with
// fresh timestamps. Beyond parsing, the payload is not validated.
func (r *ProjectRepository) Import(ctx context.Context, payload []byte) (*domain.Project, error) {
	var in domain.Project
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProjectFile, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	in.ID = r.newID()
	in.Name += ImportSuffix
	in.CreatedTime = now
	in.UpdatedTime = now

	p := r.prepend(ctx, in)
	r.log.Info().Str("project_id", p.ID).Msg("project imported")
	return &p, nil
}
