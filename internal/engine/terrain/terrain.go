package terrain

import (
	"fmt"
	"sync/atomic"
)

// snapshot pairs a heightfield with the mesh built from it.
type snapshot struct {
	field *Heightfield
	mesh  *Mesh
	gen   uint64
}

// Terrain owns the current heightfield and mesh. A load builds the new pair
// completely before publishing it, so queries see either the old terrain or
// the new one, never a partial build.
type Terrain struct {
	current atomic.Pointer[snapshot]
}

// New creates an empty terrain. Sample returns NoGround until Load succeeds.
func New() *Terrain {
	return &Terrain{}
}

// Load rebuilds the terrain from an image. On error the current terrain is
// left untouched.
func (t *Terrain) Load(img *Image, grid int, size, heightScale float32) error {
	field, err := BuildHeightfield(img, grid, size, heightScale)
	if err != nil {
		return fmt.Errorf("building heightfield: %w", err)
	}
	mesh := BuildMesh(field)

	var gen uint64 = 1
	if prev := t.current.Load(); prev != nil {
		gen = prev.gen + 1
	}
	t.current.Store(&snapshot{field: field, mesh: mesh, gen: gen})
	return nil
}

// Sample returns the ground elevation at a world position, or NoGround when
// nothing is loaded.
func (t *Terrain) Sample(worldX, worldZ float32) float32 {
	s := t.current.Load()
	if s == nil {
		return NoGround
	}
	return s.field.Sample(worldX, worldZ)
}

// Heightfield returns the current heightfield, or nil.
func (t *Terrain) Heightfield() *Heightfield {
	if s := t.current.Load(); s != nil {
		return s.field
	}
	return nil
}

// Mesh returns the current mesh, or nil.
func (t *Terrain) Mesh() *Mesh {
	if s := t.current.Load(); s != nil {
		return s.mesh
	}
	return nil
}

// Generation counts successful loads.
func (t *Terrain) Generation() uint64 {
	if s := t.current.Load(); s != nil {
		return s.gen
	}
	return 0
}

// Loaded reports whether a terrain is available.
func (t *Terrain) Loaded() bool {
	return t.current.Load() != nil
}
