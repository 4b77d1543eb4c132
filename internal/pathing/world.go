package pathing

import "wanderer.ai/internal/voxel"

// World answers the planner's terrain queries. Cells the world knows nothing
// about report voxel.OccUnknown and are never expanded.
type World interface {
	Occupancy(c voxel.Coord) voxel.Occupancy
	Fluid(c voxel.Coord) voxel.Fluid
	Standable(c voxel.Coord) bool
	Submerged(c voxel.Coord) bool
	FireImmune() bool

	// RaycastHitsAll reports whether every cell traced between the two cell
	// centers is solid.
	RaycastHitsAll(from, to voxel.Coord) bool
	// RaycastHitsAny reports whether anything obstructs the traced line.
	RaycastHitsAny(from, to voxel.Coord) bool
}
