package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// JSONLZstdWriter appends JSON lines to hourly zstd files named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst under baseDir. Every Write is flushed
// through to the encoder; a file is only a complete zstd stream once rotated
// or closed.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReadJSONL decodes every line of a closed .jsonl.zst file into fn.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if err := fn(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Files lists the writer's files in name (and so time) order.
func (w *JSONLZstdWriter) Files() ([]string, error) {
	return filepath.Glob(filepath.Join(w.baseDir, w.prefix+"-*.jsonl.zst"))
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// TraceEntry is one controller tick as seen by the agent session.
type TraceEntry struct {
	Tick      uint64     `json:"tick"`
	SessionID string     `json:"session_id"`
	PlanID    string     `json:"plan_id,omitempty"`
	State     string     `json:"state"`
	NodeIdx   int        `json:"node_idx"`
	SampleIdx int        `json:"sample_idx"`
	Manoeuvre string     `json:"manoeuvre,omitempty"`
	Pos       [3]float64 `json:"pos"`
	Target    [3]float64 `json:"target"`
	Yaw       float64    `json:"yaw"`
	Pitch     float64    `json:"pitch"`
	Forward   bool       `json:"forward"`
	Jump      bool       `json:"jump"`
	Sprint    bool       `json:"sprint"`
	Err       string     `json:"err,omitempty"`
}

// TraceLogger writes one JSONL entry per acted controller tick (compressed).
type TraceLogger struct{ w *JSONLZstdWriter }

func NewTraceLogger(dataDir string) *TraceLogger {
	return &TraceLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "trace"), "trace")}
}

func (l *TraceLogger) WriteTrace(v TraceEntry) error {
	if l == nil {
		return nil
	}
	return l.w.Write(v)
}

func (l *TraceLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.w.Close()
}

// PlanLogger writes the full node list of every prepared plan (compressed).
type PlanLogger struct{ w *JSONLZstdWriter }

type PlanEntry struct {
	PlanID    string   `json:"plan_id"`
	SessionID string   `json:"session_id"`
	Strategy  string   `json:"strategy"`
	Raw       [][3]int `json:"raw"`
	Nodes     [][3]int `json:"nodes"`
}

func NewPlanLogger(dataDir string) *PlanLogger {
	return &PlanLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "plans"), "plans")}
}

func (l *PlanLogger) WritePlan(v PlanEntry) error {
	if l == nil {
		return nil
	}
	return l.w.Write(v)
}

func (l *PlanLogger) Close() error {
	if l == nil {
		return nil
	}
	return l.w.Close()
}
