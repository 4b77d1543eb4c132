package tuning

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wanderer.ai/internal/follow"
	"wanderer.ai/internal/pathing"
)

// Tuning holds the planner and controller constants. Zero fields in a file
// keep their defaults.
type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	World    World    `yaml:"world"`
	Planner  Planner  `yaml:"planner"`
	Follower Follower `yaml:"follower"`
}

type World struct {
	MinY       int  `yaml:"min_y"`
	Height     int  `yaml:"height"`
	FireImmune bool `yaml:"fire_immune"`
}

type Planner struct {
	Strategy         string  `yaml:"strategy"`
	LazyAcceleration float64 `yaml:"lazy_acceleration"`
	MaxExpanded      int     `yaml:"max_expanded"`
}

type Follower struct {
	EyeHeight         float64 `yaml:"eye_height"`
	EMAAlpha          float64 `yaml:"ema_alpha"`
	HeightWeight      float64 `yaml:"height_weight"`
	Resampling        float64 `yaml:"resampling"`
	CompletionRadius  float64 `yaml:"completion_radius"`
	InitialNodeRadius float64 `yaml:"initial_node_radius"`
	AdvanceFactor     float64 `yaml:"advance_factor"`
	SprintDistance    float64 `yaml:"sprint_distance"`
	JumpThreshold     float64 `yaml:"jump_threshold"`
}

func Defaults() Tuning {
	p := follow.DefaultParams()
	return Tuning{
		TickRateHz: 20,
		World:      World{MinY: -64, Height: 384},
		Planner: Planner{
			Strategy:         pathing.Lazy.Name,
			LazyAcceleration: pathing.Lazy.Acceleration,
			MaxExpanded:      200000,
		},
		Follower: Follower{
			EyeHeight:         p.EyeHeight,
			EMAAlpha:          p.Alpha,
			HeightWeight:      p.HeightWeight,
			Resampling:        p.Resampling,
			CompletionRadius:  p.CompletionRadius,
			InitialNodeRadius: p.InitialNodeRadius,
			AdvanceFactor:     p.AdvanceFactor,
			SprintDistance:    p.SprintDistance,
			JumpThreshold:     p.JumpThreshold,
		},
	}
}

// Load reads a yaml file over the defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.TickRateHz <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz))
	}
	if t.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world.height must be positive, got %d", t.World.Height))
	}
	if t.World.MinY < pathing.KeyMinY || t.World.MinY+t.World.Height-1 > pathing.KeyMaxY {
		errs = append(errs, fmt.Errorf("world y range [%d,%d) exceeds the packable range", t.World.MinY, t.World.MinY+t.World.Height))
	}
	if _, err := pathing.StrategyByName(t.Planner.Strategy); err != nil {
		errs = append(errs, err)
	}
	if t.Planner.LazyAcceleration < 0 {
		errs = append(errs, errors.New("planner.lazy_acceleration must not be negative"))
	}
	f := t.Follower
	if f.EMAAlpha <= 0 || f.EMAAlpha > 1 {
		errs = append(errs, fmt.Errorf("follower.ema_alpha must be in (0,1], got %v", f.EMAAlpha))
	}
	if f.Resampling <= 0 {
		errs = append(errs, errors.New("follower.resampling must be positive"))
	}
	if f.CompletionRadius <= 0 || f.InitialNodeRadius <= 0 || f.AdvanceFactor <= 0 {
		errs = append(errs, errors.New("follower radii must be positive"))
	}
	return errors.Join(errs...)
}

// Strategy resolves the configured search strategy.
func (t Tuning) Strategy() pathing.Strategy {
	st, err := t.StrategyNamed(t.Planner.Strategy)
	if err != nil {
		st, _ = t.StrategyNamed(pathing.Full.Name)
	}
	return st
}

// StrategyNamed resolves name with this tuning's acceleration and limit.
func (t Tuning) StrategyNamed(name string) (pathing.Strategy, error) {
	st, err := pathing.StrategyByName(name)
	if err != nil {
		return st, err
	}
	if st.Name == pathing.Lazy.Name {
		st = st.WithAcceleration(t.Planner.LazyAcceleration)
	}
	return st.WithLimit(t.Planner.MaxExpanded), nil
}

func (t Tuning) FollowParams() follow.Params {
	f := t.Follower
	return follow.Params{
		EyeHeight:         f.EyeHeight,
		Alpha:             f.EMAAlpha,
		HeightWeight:      f.HeightWeight,
		CompletionRadius:  f.CompletionRadius,
		InitialNodeRadius: f.InitialNodeRadius,
		AdvanceFactor:     f.AdvanceFactor,
		SprintDistance:    f.SprintDistance,
		JumpThreshold:     f.JumpThreshold,
		Resampling:        f.Resampling,
	}
}
