package voxel

// Block is a palette index stored in chunks.
type Block uint16

const (
	Air Block = iota
	Stone
	Dirt
	Grass
	Sand
	Gravel
	Log
	Glass
	Water
	Lava
)

var blockNames = [...]string{
	Air:    "AIR",
	Stone:  "STONE",
	Dirt:   "DIRT",
	Grass:  "GRASS",
	Sand:   "SAND",
	Gravel: "GRAVEL",
	Log:    "LOG",
	Glass:  "GLASS",
	Water:  "WATER",
	Lava:   "LAVA",
}

func (b Block) String() string {
	if int(b) < len(blockNames) {
		return blockNames[b]
	}
	return "UNKNOWN"
}

// Solid reports whether the block has a collision shape. Fluids do not.
func (b Block) Solid() bool {
	switch b {
	case Air, Water, Lava:
		return false
	default:
		return int(b) < len(blockNames)
	}
}

// Fluid kinds a cell may hold.
type Fluid uint8

const (
	FluidNone Fluid = iota
	FluidWater
	FluidLava
)

func (b Block) Fluid() Fluid {
	switch b {
	case Water:
		return FluidWater
	case Lava:
		return FluidLava
	default:
		return FluidNone
	}
}

// Occupancy is the collision state of a cell as seen by the planner.
type Occupancy uint8

const (
	// OccUnknown covers unloaded chunks and cells outside the world height.
	OccUnknown Occupancy = iota
	OccEmpty
	OccSolid
)

func (o Occupancy) String() string {
	switch o {
	case OccEmpty:
		return "EMPTY"
	case OccSolid:
		return "SOLID"
	default:
		return "UNKNOWN"
	}
}
