package follow

import (
	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/geom"
)

// Heading blends the current view direction with the direction from the eye
// to target. alpha is the weight of the new direction.
type Heading struct {
	Yaw   float64
	Pitch float64
	// Delta is target minus eye position, before blending.
	Delta r3.Vec
}

func headingTo(agent AgentState, target r3.Vec, eyeHeight, alpha float64) Heading {
	eye := r3.Add(agent.Pos, r3.Vec{Y: eyeHeight})
	delta := r3.Sub(target, eye)
	dir := geom.Normalize(delta)
	look := geom.LookVector(agent.Pitch, agent.Yaw)
	blended := r3.Add(r3.Scale(1-alpha, look), r3.Scale(alpha, dir))
	yaw, pitch := geom.YawPitch(blended)
	return Heading{Yaw: yaw, Pitch: pitch, Delta: delta}
}
