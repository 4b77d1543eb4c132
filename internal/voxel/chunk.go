package voxel

import (
	"crypto/sha256"
	"encoding/binary"
)

const ChunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

// ChunkKeyOf returns the key of the chunk column holding c.
func ChunkKeyOf(c Coord) ChunkKey {
	return ChunkKey{CX: floorDiv(c.X, ChunkSize), CZ: floorDiv(c.Z, ChunkSize)}
}

type Chunk struct {
	CX, CZ int
	Height int
	Blocks []uint16 // len = 16*16*Height, y-major

	dirty bool
	hash  [32]byte
}

func newChunk(cx, cz, height int) *Chunk {
	return &Chunk{
		CX:     cx,
		CZ:     cz,
		Height: height,
		Blocks: make([]uint16, ChunkSize*ChunkSize*height),
		dirty:  true,
	}
}

func (c *Chunk) index(x, y, z int) int {
	return x + z*ChunkSize + y*ChunkSize*ChunkSize
}

// Get takes chunk-local coordinates; y is relative to the store's MinY.
func (c *Chunk) Get(x, y, z int) Block {
	return Block(c.Blocks[c.index(x, y, z)])
}

func (c *Chunk) Set(x, y, z int, b Block) {
	i := c.index(x, y, z)
	if c.Blocks[i] == uint16(b) {
		return
	}
	c.Blocks[i] = uint16(b)
	c.dirty = true
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}
