package drivers

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry looks chips up by id. The zero value is empty; use NewRegistry
// for one preloaded with the built-in chips.
type Registry struct {
	mu    sync.RWMutex
	chips map[string]DriverICConfig
}

func NewRegistry() *Registry {
	r := &Registry{chips: make(map[string]DriverICConfig)}
	_ = r.Register(SSD1677())
	return r
}

// Register adds a chip; ids must be unique.
func (r *Registry) Register(cfg DriverICConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.chips == nil {
		r.chips = make(map[string]DriverICConfig)
	}
	if _, dup := r.chips[cfg.ID]; dup {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidDriverIC, cfg.ID)
	}
	r.chips[cfg.ID] = cfg
	return nil
}

func (r *Registry) Get(id string) (DriverICConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.chips[id]
	return cfg, ok
}

// Lookup is Get with ErrUnknownChip for missing ids.
func (r *Registry) Lookup(id string) (DriverICConfig, error) {
	cfg, ok := r.Get(id)
	if !ok {
		return DriverICConfig{}, fmt.Errorf("%w: %q", ErrUnknownChip, id)
	}
	return cfg, nil
}

// All returns every chip sorted by id.
func (r *Registry) All() []DriverICConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DriverICConfig, 0, len(r.chips))
	for _, c := range r.chips {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type driversFile struct {
	Drivers []DriverICConfig `yaml:"drivers"`
}

// LoadYAML registers every chip listed in a drivers file. Nothing is
// registered if any entry is invalid.
func (r *Registry) LoadYAML(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read drivers file: %w", err)
	}
	return r.LoadYAMLBytes(data)
}

func (r *Registry) LoadYAMLBytes(data []byte) (int, error) {
	var f driversFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse drivers file: %w", err)
	}

	seen := make(map[string]bool, len(f.Drivers))
	for _, d := range f.Drivers {
		if err := d.validate(); err != nil {
			return 0, err
		}
		if _, exists := r.Get(d.ID); exists || seen[d.ID] {
			return 0, fmt.Errorf("%w: duplicate id %q", ErrInvalidDriverIC, d.ID)
		}
		seen[d.ID] = true
	}
	for _, d := range f.Drivers {
		if err := r.Register(d); err != nil {
			return 0, err
		}
	}
	return len(f.Drivers), nil
}
