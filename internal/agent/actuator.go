package agent

import "wanderer.ai/internal/protocol"

// wireActuator collects the controller's commands for one tick so they can
// be sent as a single INPUT frame.
type wireActuator struct {
	forward bool
	jump    bool
	sprint  bool
	yaw     float64
	pitch   float64
	stop    bool
}

func (a *wireActuator) SetForward(v bool)  { a.forward = v }
func (a *wireActuator) SetJump(v bool)     { a.jump = v }
func (a *wireActuator) SetSprint(v bool)   { a.sprint = v }
func (a *wireActuator) SetYaw(v float64)   { a.yaw = v }
func (a *wireActuator) SetPitch(v float64) { a.pitch = v }

func (a *wireActuator) StopAll() {
	a.forward = false
	a.jump = false
	a.sprint = false
	a.stop = true
}

// hold resets the view to the observed one; untouched axes are echoed back.
func (a *wireActuator) hold(yaw, pitch float64) {
	a.yaw = yaw
	a.pitch = pitch
}

func (a *wireActuator) frame(tick uint64) protocol.InputMsg {
	m := protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Forward:         a.forward,
		Jump:            a.jump,
		Sprint:          a.sprint,
		Yaw:             a.yaw,
		Pitch:           a.pitch,
		Stop:            a.stop,
	}
	a.stop = false
	return m
}
