package pathing

import "wanderer.ai/internal/voxel"

// Key packs a coordinate into 64 bits: x in the top 26 bits, z in the next
// 26, y in the low 12, each two's complement.
type Key uint64

const (
	KeyMinXZ = -1 << 25
	KeyMaxXZ = 1<<25 - 1
	KeyMinY  = -1 << 11
	KeyMaxY  = 1<<11 - 1

	xzBits = 26
	yBits  = 12
	xzMask = 1<<xzBits - 1
	yMask  = 1<<yBits - 1
)

// Pack is injective over KeyInRange coordinates. Outside that range the
// high bits are dropped and distinct cells may collide.
func Pack(c voxel.Coord) Key {
	x := uint64(c.X) & xzMask
	z := uint64(c.Z) & xzMask
	y := uint64(c.Y) & yMask
	return Key(x<<(xzBits+yBits) | z<<yBits | y)
}

func (k Key) Unpack() voxel.Coord {
	return voxel.Coord{
		X: int(int64(k) >> (xzBits + yBits)),
		Z: int(int64(k<<xzBits) >> (xzBits + yBits)),
		Y: int(int64(k<<(2*xzBits)) >> (2 * xzBits)),
	}
}

func KeyInRange(c voxel.Coord) bool {
	return c.X >= KeyMinXZ && c.X <= KeyMaxXZ &&
		c.Z >= KeyMinXZ && c.Z <= KeyMaxXZ &&
		c.Y >= KeyMinY && c.Y <= KeyMaxY
}
