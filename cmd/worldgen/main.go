package main

import (
	"flag"
	"fmt"
	"os"

	"wanderer.ai/internal/persistence/snapshot"
	"wanderer.ai/internal/voxel"
	"wanderer.ai/internal/voxel/gen"
)

func main() {
	var (
		out        = flag.String("out", "./data/worlds/world_1.snap.zst", "snapshot output path")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "terrain seed")
		radius     = flag.Int("radius", 4, "chunk radius around the origin")
		minY       = flag.Int("min_y", -16, "lowest world y")
		height     = flag.Int("height", 64, "world height in blocks")
		baseY      = flag.Int("base_y", 0, "surface height at zero relief")
		relief     = flag.Int("relief", 4, "maximum surface deviation")
		fireImmune = flag.Bool("fire_immune", false, "record the agent as lava immune")
	)
	flag.Parse()

	if *radius < 0 || *height <= 0 {
		fmt.Fprintln(os.Stderr, "radius must be >= 0 and height > 0")
		os.Exit(2)
	}
	p := gen.DefaultParams(*seed)
	p.BaseY = *baseY
	p.Relief = *relief
	if p.BaseY-2 < *minY || p.BaseY+p.Relief+3 >= *minY+*height {
		fmt.Fprintln(os.Stderr, "terrain does not fit in [min_y, min_y+height)")
		os.Exit(2)
	}

	s := voxel.NewStore(*minY, *height)
	s.SetFireImmune(*fireImmune)
	gen.Generate(s, p, -*radius, -*radius, *radius-1, *radius-1)

	spawn := voxel.Coord{X: 0, Y: p.BaseY + 1, Z: 0}
	snap := s.ExportWorld(*worldID, *seed, spawn)
	if err := snapshot.WriteSnapshot(*out, snap); err != nil {
		fmt.Fprintln(os.Stderr, "write snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s world=%s seed=%d chunks=%d y=[%d,%d) spawn=%v\n",
		*out, *worldID, *seed, len(snap.Chunks), *minY, *minY+*height, snap.Spawn)
}
