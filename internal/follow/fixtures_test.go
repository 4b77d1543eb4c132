package follow

import (
	"wanderer.ai/internal/pathing"
	"wanderer.ai/internal/voxel"
)

func c(x, y, z int) voxel.Coord { return voxel.Coord{X: x, Y: y, Z: z} }

// floorWorld is a stone plane at y=-1 wide enough that path nodes near the
// origin have no hazardous neighbors.
func floorWorld() *voxel.Store {
	s := voxel.NewStore(-8, 16)
	s.Fill(c(-8, -1, -8), c(15, -1, 15), voxel.Stone)
	return s
}

func nodes(m pathing.Manoeuvre, coords ...voxel.Coord) []pathing.Node {
	out := make([]pathing.Node, len(coords))
	for i, p := range coords {
		out[i] = pathing.NewNode(p, m)
	}
	return out
}

type fakeActuator struct {
	forward, jump, sprint bool
	yaw, pitch            float64
	yawSet, pitchSet      int
	stops                 int
}

func (f *fakeActuator) SetForward(v bool) { f.forward = v }
func (f *fakeActuator) SetJump(v bool)    { f.jump = v }
func (f *fakeActuator) SetSprint(v bool)  { f.sprint = v }
func (f *fakeActuator) SetYaw(v float64)  { f.yaw = v; f.yawSet++ }
func (f *fakeActuator) SetPitch(v float64) {
	f.pitch = v
	f.pitchSet++
}

func (f *fakeActuator) StopAll() {
	f.forward, f.jump, f.sprint = false, false, false
	f.stops++
}
