package data

import (
	"fmt"
	"os"
	"strings"

	"github.com/colonysim/colony/internal/world"
	"gopkg.in/yaml.v3"
)

// ObjectDef is one installed-object template as written in installed_objects.yaml.
type ObjectDef struct {
	Type             string  `yaml:"type"`
	MovementCost     float64 `yaml:"movement_cost"`
	LinksToNeighbour bool    `yaml:"links_to_neighbour"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	BuildTime        float64 `yaml:"build_time"`
}

// PrototypeTable holds the loaded templates in file order.
type PrototypeTable struct {
	protos []*world.Prototype
	byType map[world.ObjectType]*world.Prototype
}

// Prototypes returns the templates in the order they appear in the file.
func (t *PrototypeTable) Prototypes() []*world.Prototype {
	return t.protos
}

// Get returns the template for typ, or nil.
func (t *PrototypeTable) Get(typ world.ObjectType) *world.Prototype {
	return t.byType[typ]
}

func (t *PrototypeTable) Count() int {
	return len(t.protos)
}

// RegisterAll installs every template into w.
func (t *PrototypeTable) RegisterAll(w *world.World) error {
	for _, p := range t.protos {
		if err := w.RegisterPrototype(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Type, err)
		}
	}
	return nil
}

type prototypeFile struct {
	Objects []ObjectDef `yaml:"objects"`
}

// LoadPrototypeTable loads installed-object templates from YAML.
func LoadPrototypeTable(path string) (*PrototypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prototypes: read %s: %w", path, err)
	}

	var f prototypeFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("prototypes: parse %s: %w", path, err)
	}

	t := &PrototypeTable{
		protos: make([]*world.Prototype, 0, len(f.Objects)),
		byType: make(map[world.ObjectType]*world.Prototype, len(f.Objects)),
	}
	for i, def := range f.Objects {
		if strings.TrimSpace(def.Type) == "" {
			return nil, fmt.Errorf("prototypes: %s: entry %d has no type", path, i)
		}
		typ := world.ParseObjectType(def.Type)
		if _, dup := t.byType[typ]; dup {
			return nil, fmt.Errorf("prototypes: %s: %s: %w", path, typ, world.ErrDuplicatePrototype)
		}
		if def.MovementCost < 0 {
			return nil, fmt.Errorf("prototypes: %s: %s has negative movement_cost", path, typ)
		}
		if def.Width <= 0 {
			def.Width = 1
		}
		if def.Height <= 0 {
			def.Height = 1
		}
		p := world.NewPrototype(typ, def.MovementCost, def.LinksToNeighbour, def.Width, def.Height)
		p.BuildTime = def.BuildTime
		t.protos = append(t.protos, p)
		t.byType[typ] = p
	}
	return t, nil
}
