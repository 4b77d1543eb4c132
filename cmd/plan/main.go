package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/persistence/indexdb"
	"wanderer.ai/internal/persistence/snapshot"
	"wanderer.ai/internal/sim/tuning"
	"wanderer.ai/internal/voxel"
)

type summary struct {
	Strategy string       `json:"strategy"`
	From     [3]int       `json:"from"`
	To       [3]int       `json:"to"`
	Outcome  string       `json:"outcome"`
	Expanded int          `json:"expanded"`
	Relaxed  int          `json:"relaxed"`
	LazyHits int          `json:"lazy_hits"`
	TookMS   float64      `json:"took_ms"`
	Raw      [][3]int     `json:"raw,omitempty"`
	Nodes    [][3]int     `json:"nodes,omitempty"`
	Samples  int          `json:"samples,omitempty"`
	Dense    [][3]float64 `json:"dense,omitempty"`
}

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to a world .snap.zst")
		from       = flag.String("from", "", "start cell x,y,z (default: snapshot spawn)")
		to         = flag.String("to", "", "goal cell x,y,z")
		strategy   = flag.String("strategy", "", "full or lazy (default: tuning)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional)")
		dense      = flag.Bool("dense", false, "include the dense samples")
		history    = flag.String("history", "", "plan index sqlite path; lists recent plans and exits")
		limit      = flag.Int("limit", 20, "plans to list with -history")
		info       = flag.Bool("info", false, "print the snapshot header and exit")
	)
	flag.Parse()

	if *info {
		h, err := snapshot.ReadHeader(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read header:", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(h)
		return
	}

	if *history != "" {
		if err := listHistory(*history, *limit); err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			os.Exit(1)
		}
		return
	}
	if *snapPath == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot or -to")
		os.Exit(2)
	}

	tune := tuning.Defaults()
	if *tuningPath != "" {
		t, err := tuning.Load(*tuningPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		tune = t
	}
	st := tune.Strategy()
	if *strategy != "" {
		s, err := tune.StrategyNamed(*strategy)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		st = s
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	world, err := voxel.ImportWorld(snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	start := voxel.Coord{X: snap.Spawn[0], Y: snap.Spawn[1], Z: snap.Spawn[2]}
	if *from != "" {
		if start, err = parseCoord(*from); err != nil {
			fmt.Fprintln(os.Stderr, "-from:", err)
			os.Exit(2)
		}
	}
	goal, err := parseCoord(*to)
	if err != nil {
		fmt.Fprintln(os.Stderr, "-to:", err)
		os.Exit(2)
	}

	raw, stats, err := pathing.Search(world, pathing.NewNode(start, pathing.ManoeuvreWalk), pathing.NewGoal(goal), st)
	out := summary{
		Strategy: st.Name,
		From:     [3]int{start.X, start.Y, start.Z},
		To:       [3]int{goal.X, goal.Y, goal.Z},
		Outcome:  pathing.Outcome(err),
		Expanded: stats.Expanded,
		Relaxed:  stats.Relaxed,
		LazyHits: stats.LazyHits,
		TookMS:   float64(stats.Duration.Microseconds()) / 1000,
	}
	if err == nil {
		nodes := pathing.Simplify(world, raw)
		out.Raw = cells(raw)
		out.Nodes = cells(nodes)
		if dp, derr := follow.Densify(world, nodes, tune.Follower.Resampling); derr == nil {
			out.Samples = len(dp.Flat)
			if *dense {
				for _, v := range dp.Flat {
					out.Dense = append(out.Dense, [3]float64{v.X, v.Y, v.Z})
				}
			}
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if err != nil {
		os.Exit(3)
	}
}

func parseCoord(s string) (voxel.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return voxel.Coord{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return voxel.Coord{}, err
		}
		v[i] = n
	}
	return voxel.Coord{X: v[0], Y: v[1], Z: v[2]}, nil
}

func cells(nodes []pathing.Node) [][3]int {
	out := make([][3]int, len(nodes))
	for i, n := range nodes {
		out[i] = [3]int{n.Pos.X, n.Pos.Y, n.Pos.Z}
	}
	return out
}

func listHistory(path string, limit int) error {
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	plans, err := idx.RecentPlans(ctx, limit)
	if err != nil {
		return err
	}
	for _, ps := range plans {
		p := ps.Plan
		outcome := ps.FollowOutcome
		if outcome == "" {
			outcome = "-"
		}
		fmt.Printf("%s %s %-5s %v -> %v %-9s nodes=%d/%d expanded=%d took=%s follow=%s\n",
			p.CreatedAt.Format(time.RFC3339), p.ID, p.Strategy, p.Start, p.Goal, p.Outcome,
			p.Nodes, p.RawNodes, p.Expanded, p.Duration, outcome)
	}
	return nil
}
