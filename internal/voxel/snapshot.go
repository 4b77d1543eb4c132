package voxel

import (
	"fmt"

	snapv1 "wanderer.ai/internal/persistence/snapshot"
)

// ExportChunks converts loaded chunk data into snapshot chunks, in key order.
func (s *Store) ExportChunks() []snapv1.ChunkV1 {
	keys := s.LoadedChunkKeys()
	out := make([]snapv1.ChunkV1, 0, len(keys))
	for _, k := range keys {
		ch := s.chunks[k]
		blocks := make([]uint16, len(ch.Blocks))
		copy(blocks, ch.Blocks)
		out = append(out, snapv1.ChunkV1{CX: k.CX, CZ: k.CZ, Blocks: blocks})
	}
	return out
}

// ImportWorld rebuilds a store from a world snapshot.
func ImportWorld(snap snapv1.WorldV1) (*Store, error) {
	s := NewStore(snap.MinY, snap.Height)
	s.SetFireImmune(snap.FireImmune)
	for _, ch := range snap.Chunks {
		if err := s.LoadChunk(ch.CX, ch.CZ, ch.Blocks); err != nil {
			return nil, fmt.Errorf("import snapshot: %w", err)
		}
	}
	return s, nil
}

// ExportWorld is the inverse of ImportWorld.
func (s *Store) ExportWorld(worldID string, seed int64, spawn Coord) snapv1.WorldV1 {
	return snapv1.WorldV1{
		Header:     snapv1.Header{Version: snapv1.Version, WorldID: worldID, Seed: seed},
		MinY:       s.MinY,
		Height:     s.Height,
		FireImmune: s.fireImmune,
		Spawn:      [3]int{spawn.X, spawn.Y, spawn.Z},
		Chunks:     s.ExportChunks(),
	}
}
