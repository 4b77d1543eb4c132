// Package body is a minimal kinematic stand-in for an agent: a point with a
// 1.8 block tall collision column, moved once per tick by the inputs a
// follow.Controller sets.
package body

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/geom"
	"wanderer.ai/internal/voxel"
)

// Terrain is the part of the world the body collides with.
type Terrain interface {
	Occupancy(c voxel.Coord) voxel.Occupancy
	Fluid(c voxel.Coord) voxel.Fluid
}

// Params are per-tick speeds in blocks.
type Params struct {
	WalkSpeed    float64
	SprintSpeed  float64
	SwimSpeed    float64
	SwimRise     float64
	SwimSink     float64
	Gravity      float64
	JumpVelocity float64
	MaxFall      float64
	Height       float64
}

func DefaultParams() Params {
	return Params{
		WalkSpeed:    0.13,
		SprintSpeed:  0.2,
		SwimSpeed:    0.1,
		SwimRise:     0.08,
		SwimSink:     0.02,
		Gravity:      0.08,
		JumpVelocity: 0.42,
		MaxFall:      3.0,
		Height:       1.8,
	}
}

type Body struct {
	terrain Terrain
	params  Params

	Pos      r3.Vec
	Vel      r3.Vec
	Yaw      float64
	Pitch    float64
	OnGround bool

	forward bool
	jump    bool
	sprint  bool
}

func New(t Terrain, p Params, pos r3.Vec, yaw float64) *Body {
	return &Body{terrain: t, params: p, Pos: pos, Yaw: yaw}
}

func (b *Body) SetForward(v bool) { b.forward = v }
func (b *Body) SetJump(v bool)    { b.jump = v }
func (b *Body) SetSprint(v bool)  { b.sprint = v }
func (b *Body) SetYaw(v float64)  { b.Yaw = v }
func (b *Body) SetPitch(v float64) {
	b.Pitch = math.Max(-90, math.Min(90, v))
}

func (b *Body) StopAll() {
	b.forward = false
	b.jump = false
	b.sprint = false
}

// Inputs reports the held forward, jump and sprint keys.
func (b *Body) Inputs() (forward, jump, sprint bool) {
	return b.forward, b.jump, b.sprint
}

func (b *Body) State() follow.AgentState {
	return follow.AgentState{Pos: b.Pos, Vel: b.Vel, Yaw: b.Yaw, Pitch: b.Pitch, OnGround: b.OnGround}
}

// InFluid reports whether the body's feet are in water or lava.
func (b *Body) InFluid() bool {
	return b.terrain.Fluid(voxel.Floor(b.Pos)) != voxel.FluidNone
}

// Step advances the body by one tick.
func (b *Body) Step() {
	p := b.params
	swimming := b.InFluid()

	var dir r3.Vec
	speed := p.WalkSpeed
	switch {
	case swimming:
		dir = geom.LookVector(b.Pitch, b.Yaw)
		speed = p.SwimSpeed
	default:
		dir = geom.LookVector(0, b.Yaw)
		if b.sprint {
			speed = p.SprintSpeed
		}
	}
	if b.forward {
		b.Vel.X, b.Vel.Z = dir.X*speed, dir.Z*speed
	} else {
		b.Vel.X, b.Vel.Z = 0, 0
	}

	switch {
	case swimming:
		b.Vel.Y = -p.SwimSink
		if b.forward {
			b.Vel.Y = dir.Y * speed
		}
		if b.jump {
			b.Vel.Y = math.Max(b.Vel.Y, p.SwimRise)
		}
	case b.jump && b.OnGround:
		b.Vel.Y = p.JumpVelocity
	default:
		b.Vel.Y = math.Max(b.Vel.Y-p.Gravity, -p.MaxFall)
	}

	b.moveHorizontal()
	b.moveVertical()
}

func (b *Body) moveHorizontal() {
	if nx := b.Pos.X + b.Vel.X; b.columnClear(nx, b.Pos.Y, b.Pos.Z) {
		b.Pos.X = nx
	} else {
		b.Vel.X = 0
	}
	if nz := b.Pos.Z + b.Vel.Z; b.columnClear(b.Pos.X, b.Pos.Y, nz) {
		b.Pos.Z = nz
	} else {
		b.Vel.Z = 0
	}
}

func (b *Body) moveVertical() {
	ny := b.Pos.Y + b.Vel.Y
	switch {
	case b.Vel.Y < 0:
		floor := math.Floor(ny)
		if b.blocked(voxel.Floor(r3.Vec{X: b.Pos.X, Y: ny, Z: b.Pos.Z})) {
			b.Pos.Y = floor + 1
			b.Vel.Y = 0
			b.OnGround = true
			return
		}
	case b.Vel.Y > 0:
		if b.blocked(voxel.Floor(r3.Vec{X: b.Pos.X, Y: ny + b.params.Height, Z: b.Pos.Z})) {
			b.Vel.Y = 0
			return
		}
	}
	b.Pos.Y = ny
	b.OnGround = false
}

// columnClear reports whether the collision column standing at (x, y, z) is
// free of obstructions.
func (b *Body) columnClear(x, y, z float64) bool {
	top := math.Floor(y + b.params.Height - geom.Epsilon)
	for cy := math.Floor(y); cy <= top; cy++ {
		if b.blocked(voxel.Floor(r3.Vec{X: x, Y: cy, Z: z})) {
			return false
		}
	}
	return true
}

func (b *Body) blocked(c voxel.Coord) bool {
	return b.terrain.Occupancy(c) != voxel.OccEmpty
}
