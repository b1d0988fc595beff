package event

import "github.com/colonysim/colony/internal/core/ecs"

// Event records published by the simulation bridge. Fields are plain values so the
// journal and the feed can serialize them without touching live world state.

type TileTypeChanged struct {
	Tick uint64 `json:"tick"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Type string `json:"type"`
}

type ObjectPlaced struct {
	Tick     uint64       `json:"tick"`
	ObjectID ecs.EntityID `json:"object_id"`
	Type     string       `json:"type"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
}

type ObjectChanged struct {
	Tick      uint64       `json:"tick"`
	ObjectID  ecs.EntityID `json:"object_id"`
	Type      string       `json:"type"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Installed bool         `json:"installed"`
}

type JobCreated struct {
	Tick     uint64       `json:"tick"`
	JobID    ecs.EntityID `json:"job_id"`
	X        int          `json:"x"`
	Y        int          `json:"y"`
	Duration float64      `json:"duration"`
}

type JobCompleted struct {
	Tick  uint64       `json:"tick"`
	JobID ecs.EntityID `json:"job_id"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
}

type JobCancelled struct {
	Tick  uint64       `json:"tick"`
	JobID ecs.EntityID `json:"job_id"`
	X     int          `json:"x"`
	Y     int          `json:"y"`
}

type CharacterSpawned struct {
	Tick        uint64       `json:"tick"`
	CharacterID ecs.EntityID `json:"character_id"`
	X           int          `json:"x"`
	Y           int          `json:"y"`
}

type CharacterMoved struct {
	Tick        uint64       `json:"tick"`
	CharacterID ecs.EntityID `json:"character_id"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
}

func (TileTypeChanged) Kind() string  { return "tile_type_changed" }
func (ObjectPlaced) Kind() string     { return "object_placed" }
func (ObjectChanged) Kind() string    { return "object_changed" }
func (JobCreated) Kind() string       { return "job_created" }
func (JobCompleted) Kind() string     { return "job_completed" }
func (JobCancelled) Kind() string     { return "job_cancelled" }
func (CharacterSpawned) Kind() string { return "character_spawned" }
func (CharacterMoved) Kind() string   { return "character_moved" }

// Timed is implemented by every simulation event above.
type Timed interface {
	Event
	At() uint64
}

func (e TileTypeChanged) At() uint64  { return e.Tick }
func (e ObjectPlaced) At() uint64     { return e.Tick }
func (e ObjectChanged) At() uint64    { return e.Tick }
func (e JobCreated) At() uint64       { return e.Tick }
func (e JobCompleted) At() uint64     { return e.Tick }
func (e JobCancelled) At() uint64     { return e.Tick }
func (e CharacterSpawned) At() uint64 { return e.Tick }
func (e CharacterMoved) At() uint64   { return e.Tick }
