// Package gen builds deterministic voxel terrain from a seed.
package gen

import "wanderer.ai/internal/voxel"

type Params struct {
	Seed int64

	// BaseY is the surface height at relief zero; Relief is the maximum
	// deviation above it.
	BaseY  int
	Relief int
	// Cell is the lattice spacing of the height noise.
	Cell int

	SpawnClearRadius int

	PondPermille uint64
	LavaPermille uint64
	LogPermille  uint64
}

func DefaultParams(seed int64) Params {
	return Params{
		Seed:             seed,
		BaseY:            0,
		Relief:           4,
		Cell:             12,
		SpawnClearRadius: 6,
		PondPermille:     300,
		LavaPermille:     120,
		LogPermille:      8,
	}
}

func FloorDiv(a, b int) int {
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}

func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func Hash2(seed int64, x, z int) uint64 {
	ux := uint64(uint32(int32(x)))
	uz := uint64(uint32(int32(z)))
	return mix64(uint64(seed) ^ (ux * 0x9e3779b97f4a7c15) ^ (uz * 0xbf58476d1ce4e5b9))
}

// InCluster reports whether (x, z) lies within radius of a cluster center.
// Each grid cell holds at most one center, placed with probability probPermille.
func InCluster(seed int64, x, z, grid, radius int, probPermille uint64) bool {
	if grid <= 0 || radius <= 0 || probPermille == 0 {
		return false
	}
	gx := FloorDiv(x, grid)
	gz := FloorDiv(z, grid)
	r2 := radius * radius
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			cgx, cgz := gx+dx, gz+dz
			h := Hash2(seed, cgx, cgz)
			if h%1000 >= probPermille {
				continue
			}
			cx := cgx*grid + int((h>>10)%uint64(grid))
			cz := cgz*grid + int((h>>20)%uint64(grid))
			ddx, ddz := x-cx, z-cz
			if ddx*ddx+ddz*ddz <= r2 {
				return true
			}
		}
	}
	return false
}

func withinSpawnClear(x, z, radius int) bool {
	return radius > 0 && x*x+z*z <= radius*radius
}

// SurfaceY returns the y of the topmost solid block of column (x, z), before
// ponds and pits are carved.
func (p Params) SurfaceY(x, z int) int {
	if p.Relief <= 0 || withinSpawnClear(x, z, p.SpawnClearRadius) {
		return p.BaseY
	}
	cell := p.Cell
	if cell <= 0 {
		cell = 1
	}
	gx, gz := FloorDiv(x, cell), FloorDiv(z, cell)
	fx, fz := Mod(x, cell), Mod(z, cell)

	corner := func(cx, cz int) int {
		return int(Hash2(p.Seed, cx, cz) % uint64(p.Relief+1))
	}
	h00, h10 := corner(gx, gz), corner(gx+1, gz)
	h01, h11 := corner(gx, gz+1), corner(gx+1, gz+1)

	// bilinear in integer arithmetic, rounded to nearest
	top := h00*(cell-fx) + h10*fx
	bot := h01*(cell-fx) + h11*fx
	v := top*(cell-fz) + bot*fz
	den := cell * cell
	return p.BaseY + (v+den/2)/den
}

// Column describes one generated column.
type Column struct {
	Surface int
	Top     voxel.Block
	Fluid   voxel.Block // Air when the column is dry
	Log     int         // pillar height above the surface
}

func (p Params) ColumnAt(x, z int) Column {
	col := Column{Surface: p.SurfaceY(x, z), Top: voxel.Grass, Fluid: voxel.Air}
	if withinSpawnClear(x, z, p.SpawnClearRadius) {
		return col
	}
	switch {
	case InCluster(p.Seed+102, x, z, 96, 1, p.LavaPermille):
		col.Fluid = voxel.Lava
		col.Top = voxel.Gravel
	case InCluster(p.Seed+101, x, z, 48, 3, p.PondPermille):
		col.Fluid = voxel.Water
		col.Top = voxel.Sand
	default:
		if Hash2(p.Seed+999, x, z)%1000 < p.LogPermille {
			col.Log = 3
		}
	}
	return col
}

// Generate fills the chunk columns in [cx0, cx1] x [cz0, cz1].
func Generate(s *voxel.Store, p Params, cx0, cz0, cx1, cz1 int) {
	for cx := cx0; cx <= cx1; cx++ {
		for cz := cz0; cz <= cz1; cz++ {
			s.EnsureChunk(cx, cz)
			for lz := 0; lz < voxel.ChunkSize; lz++ {
				for lx := 0; lx < voxel.ChunkSize; lx++ {
					x := cx*voxel.ChunkSize + lx
					z := cz*voxel.ChunkSize + lz
					fillColumn(s, x, z, p.ColumnAt(x, z))
				}
			}
		}
	}
}

func fillColumn(s *voxel.Store, x, z int, col Column) {
	top := col.Surface
	if col.Fluid != voxel.Air {
		// the fluid occupies the cell that would have been the surface
		top--
	}
	for y := s.MinY; y <= top && y < s.MinY+s.Height; y++ {
		b := voxel.Stone
		switch {
		case y == top:
			b = col.Top
		case y >= top-2:
			b = voxel.Dirt
		}
		s.SetBlock(voxel.Coord{X: x, Y: y, Z: z}, b)
	}
	if col.Fluid != voxel.Air {
		s.SetBlock(voxel.Coord{X: x, Y: col.Surface, Z: z}, col.Fluid)
	}
	for i := 1; i <= col.Log; i++ {
		s.SetBlock(voxel.Coord{X: x, Y: col.Surface + i, Z: z}, voxel.Log)
	}
}
