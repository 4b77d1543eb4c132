package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AgentName       string `json:"agent_name"`
	FireImmune      bool   `json:"fire_immune,omitempty"`
	// Strategy overrides the server's default search strategy.
	Strategy string `json:"strategy,omitempty"`
	MaxQueue int    `json:"max_queue,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	AgentName       string      `json:"agent_name"`
	TickRateHz      int         `json:"tick_rate_hz"`
	Strategy        string      `json:"strategy"`
	World           WorldParams `json:"world"`
}

type WorldParams struct {
	MinY      int `json:"min_y"`
	Height    int `json:"height"`
	ChunkSize int `json:"chunk_size"`
}

// CHUNK (client -> server): one full chunk column.
type ChunkMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CX              int    `json:"cx"`
	CZ              int    `json:"cz"`
	MinY            int    `json:"min_y"`
	Height          int    `json:"height"`
	Encoding        string `json:"encoding"`
	Data            string `json:"data"`
	Unload          bool   `json:"unload,omitempty"`
}

// OBS (client -> server): the agent's state at the start of a tick.
type ObsMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Tick            uint64       `json:"tick"`
	Pos             [3]float64   `json:"pos"`
	Vel             [3]float64   `json:"vel"`
	Yaw             float64      `json:"yaw"`
	Pitch           float64      `json:"pitch"`
	OnGround        bool         `json:"on_ground"`
	Blocks          []BlockDelta `json:"blocks,omitempty"`
}

type BlockDelta struct {
	Pos   [3]int `json:"pos"`
	Block uint16 `json:"block"`
}

// CMD (client -> server)
type CmdMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	ID              string  `json:"id,omitempty"`
	Cmd             string  `json:"cmd"`
	Target          *[3]int `json:"target,omitempty"`
	Strategy        string  `json:"strategy,omitempty"`
}

const (
	CmdPathTo = "PATH_TO"
	CmdToggle = "TOGGLE"
)

// INPUT (server -> client): control state to hold until the next INPUT.
type InputMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Forward         bool    `json:"forward"`
	Jump            bool    `json:"jump"`
	Sprint          bool    `json:"sprint"`
	Yaw             float64 `json:"yaw"`
	Pitch           float64 `json:"pitch"`
	Stop            bool    `json:"stop,omitempty"`
}

// EVENT (server -> client)
type EventMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Tick            uint64   `json:"tick"`
	Kind            string   `json:"kind"`
	CmdID           string   `json:"cmd_id,omitempty"`
	PlanID          string   `json:"plan_id,omitempty"`
	Code            string   `json:"code,omitempty"`
	Message         string   `json:"message,omitempty"`
	Enabled         *bool    `json:"enabled,omitempty"`
	Nodes           int      `json:"nodes,omitempty"`
	RawNodes        int      `json:"raw_nodes,omitempty"`
	Samples         int      `json:"samples,omitempty"`
	Expanded        int      `json:"expanded,omitempty"`
	Path            [][3]int `json:"path,omitempty"`
}

const (
	EventPathReady       = "PATH_READY"
	EventPathUnreachable = "PATH_UNREACHABLE"
	EventFollowDone      = "FOLLOW_DONE"
	EventFollowFail      = "FOLLOW_FAIL"
	EventExecution       = "EXECUTION"
	EventError           = "ERROR"
)
