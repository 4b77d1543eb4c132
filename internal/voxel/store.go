package voxel

import (
	"fmt"
	"sort"
)

// Store is a column-chunked voxel world. Cells in chunks that are not loaded,
// or outside [MinY, MinY+Height), are unknown to the planner.
type Store struct {
	MinY   int
	Height int

	fireImmune bool
	chunks     map[ChunkKey]*Chunk
}

func NewStore(minY, height int) *Store {
	if height <= 0 {
		height = 1
	}
	return &Store{
		MinY:   minY,
		Height: height,
		chunks: map[ChunkKey]*Chunk{},
	}
}

// SetFireImmune marks the agent the store answers for as immune to lava.
func (s *Store) SetFireImmune(v bool) { s.fireImmune = v }

func (s *Store) InHeight(y int) bool {
	return y >= s.MinY && y < s.MinY+s.Height
}

func (s *Store) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.chunks))
	for k := range s.chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func (s *Store) Chunk(k ChunkKey) *Chunk {
	return s.chunks[k]
}

// EnsureChunk returns the chunk at k, loading an all-air one if needed.
func (s *Store) EnsureChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.chunks[k]; ok {
		return ch
	}
	ch := newChunk(cx, cz, s.Height)
	_ = ch.Digest()
	s.chunks[k] = ch
	return ch
}

// LoadChunk installs a full column of blocks, replacing any previous chunk.
func (s *Store) LoadChunk(cx, cz int, blocks []uint16) error {
	if len(blocks) != ChunkSize*ChunkSize*s.Height {
		return fmt.Errorf("chunk %d,%d: blocks length mismatch: got %d want %d", cx, cz, len(blocks), ChunkSize*ChunkSize*s.Height)
	}
	ch := newChunk(cx, cz, s.Height)
	copy(ch.Blocks, blocks)
	_ = ch.Digest()
	s.chunks[ChunkKey{CX: cx, CZ: cz}] = ch
	return nil
}

func (s *Store) UnloadChunk(cx, cz int) {
	delete(s.chunks, ChunkKey{CX: cx, CZ: cz})
}

func (s *Store) locate(c Coord) (*Chunk, int, int, int, bool) {
	if !s.InHeight(c.Y) {
		return nil, 0, 0, 0, false
	}
	ch := s.chunks[ChunkKeyOf(c)]
	if ch == nil {
		return nil, 0, 0, 0, false
	}
	return ch, mod(c.X, ChunkSize), c.Y - s.MinY, mod(c.Z, ChunkSize), true
}

// GetBlock returns the block at c and whether c is known.
func (s *Store) GetBlock(c Coord) (Block, bool) {
	ch, lx, ly, lz, ok := s.locate(c)
	if !ok {
		return Air, false
	}
	return ch.Get(lx, ly, lz), true
}

// SetBlock writes into an already loaded chunk. It reports false when c is unknown.
func (s *Store) SetBlock(c Coord, b Block) bool {
	ch, lx, ly, lz, ok := s.locate(c)
	if !ok {
		return false
	}
	ch.Set(lx, ly, lz, b)
	return true
}

// Fill sets every cell of the inclusive box [from, to] to b, loading chunks as needed.
func (s *Store) Fill(from, to Coord, b Block) {
	if from.X > to.X {
		from.X, to.X = to.X, from.X
	}
	if from.Y > to.Y {
		from.Y, to.Y = to.Y, from.Y
	}
	if from.Z > to.Z {
		from.Z, to.Z = to.Z, from.Z
	}
	for cx := floorDiv(from.X, ChunkSize); cx <= floorDiv(to.X, ChunkSize); cx++ {
		for cz := floorDiv(from.Z, ChunkSize); cz <= floorDiv(to.Z, ChunkSize); cz++ {
			s.EnsureChunk(cx, cz)
		}
	}
	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				s.SetBlock(Coord{X: x, Y: y, Z: z}, b)
			}
		}
	}
}

// Occupancy classifies c for collision purposes.
func (s *Store) Occupancy(c Coord) Occupancy {
	b, ok := s.GetBlock(c)
	if !ok {
		return OccUnknown
	}
	if b.Solid() {
		return OccSolid
	}
	return OccEmpty
}

func (s *Store) Fluid(c Coord) Fluid {
	b, ok := s.GetBlock(c)
	if !ok {
		return FluidNone
	}
	return b.Fluid()
}

func (s *Store) passable(c Coord) bool {
	return s.Occupancy(c) == OccEmpty
}

// Standable reports solid footing below c with clear body and head space.
func (s *Store) Standable(c Coord) bool {
	return s.Occupancy(c.Down()) == OccSolid && s.passable(c) && s.passable(c.Up())
}

func (s *Store) Submerged(c Coord) bool {
	return s.Fluid(c) != FluidNone
}

func (s *Store) FireImmune() bool { return s.fireImmune }

// RaycastHitsAll reports whether every cell traced between the centers of
// from and to is solid.
func (s *Store) RaycastHitsAll(from, to Coord) bool {
	return Traverse(from, to, func(c Coord) bool {
		return s.Occupancy(c) == OccSolid
	})
}

// RaycastHitsAny reports whether any traced cell obstructs the line. Unknown
// cells count as obstructions.
func (s *Store) RaycastHitsAny(from, to Coord) bool {
	return !Traverse(from, to, func(c Coord) bool {
		return s.Occupancy(c) == OccEmpty
	})
}
