package world

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/colonysim/colony/internal/core/ecs"
	"github.com/colonysim/colony/internal/core/event"
	"go.uber.org/zap"
)

const (
	DefaultWidth  = 100
	DefaultHeight = 100
)

// Config holds construction parameters. Zero values take the defaults.
type Config struct {
	Width          int
	Height         int
	JobDuration    float64 // default placement job duration
	CharacterSpeed float64 // tiles per second
}

// World owns the tile grid, the prototype table, the job queue and the characters.
// Accessed only from the tick goroutine; no locks.
type World struct {
	width, height int
	tiles         []Tile // flat array [x * height + y]

	prototypes map[ObjectType]*Prototype
	jobs       *JobQueue
	characters []*Character

	entities *ecs.World
	liveJobs *ecs.PtrComponentStore[Job]

	jobDuration    float64
	jobDurationFn  func(ObjectType) float64
	characterSpeed float64

	tileTypeChanged  event.Observers[*Tile]
	objectPlaced     event.Observers[*InstalledObject]
	objectChanged    event.Observers[*InstalledObject]
	jobCreated       event.Observers[*Job]
	jobCompleted     event.Observers[*Job]
	jobCancelled     event.Observers[*Job]
	characterSpawned event.Observers[*Character]
	characterMoved   event.Observers[*Character]

	log *zap.Logger
}

// New builds a width×height grid of Empty tiles.
func New(cfg Config, log *zap.Logger) *World {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.JobDuration <= 0 {
		cfg.JobDuration = DefaultJobDuration
	}
	if cfg.CharacterSpeed <= 0 {
		cfg.CharacterSpeed = DefaultCharacterSpeed
	}
	if log == nil {
		log = zap.NewNop()
	}

	w := &World{
		width:          cfg.Width,
		height:         cfg.Height,
		tiles:          make([]Tile, cfg.Width*cfg.Height),
		prototypes:     make(map[ObjectType]*Prototype),
		jobs:           NewJobQueue(),
		entities:       ecs.NewWorld(),
		liveJobs:       ecs.NewPtrComponentStore[Job](),
		jobDuration:    cfg.JobDuration,
		characterSpeed: cfg.CharacterSpeed,
		log:            log,
	}
	w.entities.Registry().Register(w.liveJobs)

	for x := 0; x < w.width; x++ {
		for y := 0; y < w.height; y++ {
			t := &w.tiles[x*w.height+y]
			t.world = w
			t.x = x
			t.y = y
		}
	}
	w.jobs.OnJobCreated(w.jobCreated.Notify)

	log.Info("world generated", zap.Int("width", w.width), zap.Int("height", w.height),
		zap.Int("tiles", len(w.tiles)))
	return w
}

func (w *World) Width() int           { return w.width }
func (w *World) Height() int          { return w.height }
func (w *World) JobQueue() *JobQueue  { return w.jobs }
func (w *World) Entities() *ecs.World { return w.entities }

// tile returns nil outside the grid.
func (w *World) tile(x, y int) *Tile {
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		return nil
	}
	return &w.tiles[x*w.height+y]
}

// TileAt returns the tile at (x, y), or ErrOutOfBounds unless 0 <= x < width and
// 0 <= y < height.
func (w *World) TileAt(x, y int) (*Tile, error) {
	t := w.tile(x, y)
	if t == nil {
		return nil, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, w.width, w.height)
	}
	return t, nil
}

// TileAtCoords maps a world-space position to the tile containing it.
func (w *World) TileAtCoords(fx, fy float64) (*Tile, error) {
	return w.TileAt(int(math.Floor(fx)), int(math.Floor(fy)))
}

// EachTile visits every tile column by column.
func (w *World) EachTile(fn func(*Tile)) {
	for i := range w.tiles {
		fn(&w.tiles[i])
	}
}

// GenerateTiles sets every tile's type from gen.
func (w *World) GenerateTiles(gen func(x, y int) TileType) {
	w.EachTile(func(t *Tile) {
		t.SetType(gen(t.x, t.y))
	})
}

// RandomizeTiles makes each tile Empty or Floor with equal odds.
func (w *World) RandomizeTiles(rng *rand.Rand) {
	w.log.Debug("randomizing tiles")
	w.GenerateTiles(func(_, _ int) TileType {
		if rng.Intn(2) == 0 {
			return TileEmpty
		}
		return TileFloor
	})
}

// RegisterPrototype adds p to the prototype table.
func (w *World) RegisterPrototype(p *Prototype) error {
	if _, ok := w.prototypes[p.Type]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePrototype, p.Type)
	}
	w.prototypes[p.Type] = p
	return nil
}

func (w *World) Prototype(typ ObjectType) (*Prototype, error) {
	p, ok := w.prototypes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrototype, typ)
	}
	return p, nil
}

// ValidatePrototypes fails on the first required type without a prototype.
// Run at startup; a missing prototype is a configuration error.
func (w *World) ValidatePrototypes(required ...ObjectType) error {
	for _, typ := range required {
		if _, err := w.Prototype(typ); err != nil {
			return err
		}
	}
	return nil
}

// CheckPlacementValidity checks typ is known and t accepts a new object.
func (w *World) CheckPlacementValidity(typ ObjectType, t *Tile) error {
	p, err := w.Prototype(typ)
	if err != nil {
		return err
	}
	return CheckPlacementValidity(p, t)
}

// PlaceInstalledObject stamps the typ prototype onto t and fires object-placed.
func (w *World) PlaceInstalledObject(typ ObjectType, t *Tile) (*InstalledObject, error) {
	p, err := w.Prototype(typ)
	if err != nil {
		return nil, err
	}
	obj, err := PlacePrototype(p, t)
	if err != nil {
		return nil, fmt.Errorf("place %s at %s: %w", typ, t, err)
	}
	w.objectPlaced.Notify(obj)
	return obj, nil
}

// NewJob creates a job on t, tracked by ID until it ends and cleanup runs.
// A non-positive duration uses the world default.
func (w *World) NewJob(t *Tile, onComplete func(*Job), duration float64) *Job {
	if duration <= 0 {
		duration = w.jobDuration
	}
	j := NewJob(t, onComplete, duration)
	j.id = w.entities.CreateEntity()
	w.liveJobs.Set(j.id, j)
	j.OnComplete(func(j *Job) {
		w.entities.MarkForDestruction(j.id)
		w.jobCompleted.Notify(j)
	})
	j.OnCancel(func(j *Job) {
		w.jobs.Remove(j)
		w.entities.MarkForDestruction(j.id)
		w.jobCancelled.Notify(j)
	})
	return j
}

// SetJobDurationFunc installs a per-type override for placement jobs whose
// prototype has no build time. Non-positive results use the world default.
func (w *World) SetJobDurationFunc(fn func(ObjectType) float64) {
	w.jobDurationFn = fn
}

// Job looks up a live job by ID.
func (w *World) Job(id ecs.EntityID) (*Job, bool) {
	return w.liveJobs.Get(id)
}

// LiveJobs visits jobs that have not been cleaned up, in ID order. That is creation
// order until finished job IDs get recycled.
func (w *World) LiveJobs(fn func(*Job)) {
	w.liveJobs.EachSorted(func(_ ecs.EntityID, j *Job) { fn(j) })
}

// CancelJob cancels a live job. Returns false if id is unknown or already finished.
func (w *World) CancelJob(id ecs.EntityID) bool {
	j, ok := w.liveJobs.Get(id)
	if !ok || j.Done() {
		return false
	}
	j.Cancel()
	return true
}

// SpawnCharacter creates a character on t. It joins the end of the update order.
func (w *World) SpawnCharacter(t *Tile) *Character {
	c := NewCharacter(t, w.jobs, w.characterSpeed, w.log)
	c.id = w.entities.CreateEntity()
	c.worldMoved = &w.characterMoved
	w.characters = append(w.characters, c)
	w.characterSpawned.Notify(c)
	return c
}

// Characters returns the live characters in update order.
func (w *World) Characters() []*Character {
	out := make([]*Character, len(w.characters))
	copy(out, w.characters)
	return out
}

// Simulate advances every character by dt seconds in spawn order.
func (w *World) Simulate(dt float64) {
	for _, c := range w.characters {
		c.Update(dt)
	}
}

// FlushFinishedJobs drops ended jobs from the ID lookup. Returns how many were dropped.
func (w *World) FlushFinishedJobs() int {
	return w.entities.FlushDestroyQueue()
}

func (w *World) OnTileTypeChanged(fn func(*Tile)) event.Handle {
	return w.tileTypeChanged.Add(fn)
}

func (w *World) OnObjectPlaced(fn func(*InstalledObject)) event.Handle {
	return w.objectPlaced.Add(fn)
}

func (w *World) OnObjectChanged(fn func(*InstalledObject)) event.Handle {
	return w.objectChanged.Add(fn)
}

func (w *World) OnJobCreated(fn func(*Job)) event.Handle   { return w.jobCreated.Add(fn) }
func (w *World) OnJobCompleted(fn func(*Job)) event.Handle { return w.jobCompleted.Add(fn) }
func (w *World) OnJobCancelled(fn func(*Job)) event.Handle { return w.jobCancelled.Add(fn) }

func (w *World) OnCharacterSpawned(fn func(*Character)) event.Handle {
	return w.characterSpawned.Add(fn)
}

func (w *World) OnCharacterMoved(fn func(*Character)) event.Handle {
	return w.characterMoved.Add(fn)
}
