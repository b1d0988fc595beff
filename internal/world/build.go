package world

import (
	"fmt"

	"go.uber.org/zap"
)

// BuildMode selects what Builder.Build does to a tile.
type BuildMode uint8

const (
	BuildFoundation BuildMode = iota // lay Floor
	BuildBulldoze                    // strip back to Empty
	BuildObject                      // order an installed object
)

func (m BuildMode) String() string {
	switch m {
	case BuildFoundation:
		return "foundation"
	case BuildBulldoze:
		return "bulldoze"
	case BuildObject:
		return "object"
	}
	return "unknown"
}

// Builder turns build commands into tile changes and placement jobs.
type Builder struct {
	world      *World
	mode       BuildMode
	objectType ObjectType
	log        *zap.Logger
}

// NewBuilder starts in foundation mode.
func NewBuilder(w *World, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{world: w, mode: BuildFoundation, log: log}
}

func (b *Builder) Mode() BuildMode        { return b.mode }
func (b *Builder) ObjectType() ObjectType { return b.objectType }

func (b *Builder) SetModeFoundation() { b.mode = BuildFoundation }
func (b *Builder) SetModeBulldoze()   { b.mode = BuildBulldoze }

// SetModeObject switches to object mode for the named fixture type. The name is
// case-insensitive and must have a registered prototype.
func (b *Builder) SetModeObject(name string) error {
	typ := ParseObjectType(name)
	if _, err := b.world.Prototype(typ); err != nil {
		return err
	}
	b.mode = BuildObject
	b.objectType = typ
	return nil
}

// Build applies the current mode to t.
func (b *Builder) Build(t *Tile) (*Job, error) {
	if t == nil {
		return nil, ErrOutOfBounds
	}
	switch b.mode {
	case BuildFoundation:
		t.SetType(TileFloor)
		return nil, nil
	case BuildBulldoze:
		if t.object != nil || t.pendingJob != nil {
			return nil, ErrOccupied
		}
		t.SetType(TileEmpty)
		return nil, nil
	case BuildObject:
		if b.objectType == "" {
			return nil, ErrNoBuildType
		}
		return b.world.OrderInstalledObject(b.objectType, t)
	}
	return nil, fmt.Errorf("unknown build mode %d", b.mode)
}

// BuildRect applies Build to every in-bounds tile of the rectangle spanned by the
// two corners, in either order. Returns how many tiles accepted the command.
func (b *Builder) BuildRect(x1, y1, x2, y2 int) int {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	built := 0
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			t := b.world.tile(x, y)
			if t == nil {
				continue
			}
			if _, err := b.Build(t); err != nil {
				b.log.Debug("build rejected", zap.Stringer("tile", t),
					zap.Stringer("mode", b.mode), zap.Error(err))
				continue
			}
			built++
		}
	}
	return built
}

// OrderInstalledObject places a pending typ object on t and queues the job that
// installs it. The tile carries the job as its pending job until the job ends.
// Nothing is placed or queued if validation fails.
func (w *World) OrderInstalledObject(typ ObjectType, t *Tile) (*Job, error) {
	p, err := w.Prototype(typ)
	if err != nil {
		return nil, err
	}
	if err := CheckPlacementValidity(p, t); err != nil {
		return nil, fmt.Errorf("order %s at %s: %w", typ, t, err)
	}

	obj, err := w.PlaceInstalledObject(typ, t)
	if err != nil {
		return nil, err
	}

	duration := p.BuildTime
	if duration <= 0 && w.jobDurationFn != nil {
		duration = w.jobDurationFn(typ)
	}
	j := w.NewJob(t, func(*Job) {
		obj.SetInstalled(true)
	}, duration)
	j.objectType = typ
	t.pendingJob = j
	j.OnComplete(func(*Job) { t.pendingJob = nil })
	j.OnCancel(func(*Job) { t.pendingJob = nil })

	if err := w.jobs.Enqueue(j); err != nil {
		return nil, err
	}
	w.log.Debug("placement job queued", zap.String("type", string(typ)),
		zap.Stringer("tile", t), zap.Stringer("job", j.id))
	return j, nil
}
