package pathing

import "fmt"

// Manoeuvre is the movement mode used to reach a node. It decides the node's
// nominal position and which control law the follower applies.
type Manoeuvre uint8

const (
	ManoeuvreNone Manoeuvre = iota
	ManoeuvreWalk
	ManoeuvreSwim
	ManoeuvreFall
	ManoeuvreBreak
	ManoeuvreClimb
	ManoeuvreParkour

	manoeuvreCount
)

// Adding a manoeuvre breaks this; revisit every switch over Manoeuvre
// (Classify, Simplify, follow.Controller, interpolation snapping) and then
// update the indices.
func _() {
	var x [1]struct{}
	_ = x[ManoeuvreParkour-6]
	_ = x[manoeuvreCount-7]
}

var manoeuvreNames = [...]string{
	ManoeuvreNone:    "NONE",
	ManoeuvreWalk:    "WALK",
	ManoeuvreSwim:    "SWIM",
	ManoeuvreFall:    "FALL",
	ManoeuvreBreak:   "BREAK",
	ManoeuvreClimb:   "CLIMB",
	ManoeuvreParkour: "PARKOUR",
}

func (m Manoeuvre) String() string {
	if m < manoeuvreCount {
		return manoeuvreNames[m]
	}
	return fmt.Sprintf("Manoeuvre(%d)", uint8(m))
}

func (m Manoeuvre) MarshalText() ([]byte, error) {
	if m >= manoeuvreCount {
		return nil, fmt.Errorf("invalid manoeuvre %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Manoeuvre) UnmarshalText(b []byte) error {
	v, err := ParseManoeuvre(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseManoeuvre(s string) (Manoeuvre, error) {
	for i, name := range manoeuvreNames {
		if name == s {
			return Manoeuvre(i), nil
		}
	}
	return ManoeuvreNone, fmt.Errorf("unknown manoeuvre %q", s)
}

// simplifiable reports whether runs of this manoeuvre may be shortcut.
func (m Manoeuvre) simplifiable() bool {
	switch m {
	case ManoeuvreWalk, ManoeuvreSwim, ManoeuvreClimb, ManoeuvreFall:
		return true
	case ManoeuvreNone, ManoeuvreBreak, ManoeuvreParkour:
		return false
	}
	return false
}
