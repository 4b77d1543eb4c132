package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"wanderer.ai/internal/sim/tuning"
)

// SQLiteIndex is a secondary, queryable record of plans and follow outcomes.
// Writes are queued and applied by a single goroutine; when the queue is full
// they are dropped and counted.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// commitWait bounds how long a written row stays uncommitted.
	commitWait time.Duration

	closed atomic.Bool

	dropPlan   atomic.Uint64
	dropFollow atomic.Uint64
}

type reqKind int

const (
	reqPlan reqKind = iota + 1
	reqFollow
)

type req struct {
	kind   reqKind
	plan   PlanRecord
	follow FollowRecord
}

// PlanRecord is one PATH_TO request and what the search made of it.
type PlanRecord struct {
	ID        string
	SessionID string
	Agent     string
	Strategy  string
	Start     [3]int
	Goal      [3]int
	Outcome   string
	RawNodes  int
	Nodes     int
	Samples   int
	Expanded  int
	Relaxed   int
	LazyHits  int
	Duration  time.Duration
	CreatedAt time.Time
}

// FollowRecord closes out a plan: completed, failed, or abandoned.
type FollowRecord struct {
	PlanID    string
	SessionID string
	Outcome   string
	Code      string
	Ticks     int
	EndedAt   time.Time
}

// Timestamps are stored fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Stats struct {
	QueueDepth      int
	QueueCapacity   int
	DropPlanTotal   uint64
	DropFollowTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	return openSQLite(path, time.Second)
}

func openSQLite(path string, commitWait time.Duration) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db:         db,
		ch:         make(chan req, 4096),
		commitWait: commitWait,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			agent TEXT NOT NULL,
			strategy TEXT NOT NULL,
			sx INTEGER NOT NULL, sy INTEGER NOT NULL, sz INTEGER NOT NULL,
			gx INTEGER NOT NULL, gy INTEGER NOT NULL, gz INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			raw_nodes INTEGER NOT NULL,
			nodes INTEGER NOT NULL,
			samples INTEGER NOT NULL,
			expanded INTEGER NOT NULL,
			relaxed INTEGER NOT NULL,
			lazy_hits INTEGER NOT NULL,
			duration_us INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plans_created ON plans(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_plans_session ON plans(session_id, created_at);`,
		`CREATE TABLE IF NOT EXISTS follows (
			plan_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			code TEXT,
			ticks INTEGER NOT NULL,
			ended_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:      len(s.ch),
		QueueCapacity:   cap(s.ch),
		DropPlanTotal:   s.dropPlan.Load(),
		DropFollowTotal: s.dropFollow.Load(),
	}
}

func (s *SQLiteIndex) RecordPlan(p PlanRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	select {
	case s.ch <- req{kind: reqPlan, plan: p}:
	default:
		s.dropPlan.Add(1)
	}
}

func (s *SQLiteIndex) RecordFollow(f FollowRecord) {
	if s == nil || s.closed.Load() {
		return
	}
	if f.PlanID == "" {
		return
	}
	if f.EndedAt.IsZero() {
		f.EndedAt = time.Now()
	}
	select {
	case s.ch <- req{kind: reqFollow, follow: f}:
	default:
		s.dropFollow.Add(1)
	}
}

// UpsertTuning stores the tuning the server runs with, keyed by its digest.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows := [][2]string{
		{"schema_version", "1"},
		{"tuning", string(b)},
		{"tuning_digest", hex.EncodeToString(sum[:])},
	}
	for _, r := range rows {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, r[0], r[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentPlans returns up to limit plans, newest first, with their follow
// outcome when one has been recorded.
func (s *SQLiteIndex) RecentPlans(ctx context.Context, limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.session_id, p.agent, p.strategy,
			p.sx, p.sy, p.sz, p.gx, p.gy, p.gz,
			p.outcome, p.raw_nodes, p.nodes, p.samples, p.expanded, p.relaxed, p.lazy_hits,
			p.duration_us, p.created_at,
			COALESCE(f.outcome, ''), COALESCE(f.code, ''), COALESCE(f.ticks, 0)
		FROM plans p LEFT JOIN follows f ON f.plan_id = p.id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlanSummary
	for rows.Next() {
		var (
			ps      PlanSummary
			us      int64
			created string
		)
		p := &ps.Plan
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Agent, &p.Strategy,
			&p.Start[0], &p.Start[1], &p.Start[2], &p.Goal[0], &p.Goal[1], &p.Goal[2],
			&p.Outcome, &p.RawNodes, &p.Nodes, &p.Samples, &p.Expanded, &p.Relaxed, &p.LazyHits,
			&us, &created,
			&ps.FollowOutcome, &ps.FollowCode, &ps.FollowTicks); err != nil {
			return nil, err
		}
		p.Duration = time.Duration(us) * time.Microsecond
		p.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, ps)
	}
	return out, rows.Err()
}

type PlanSummary struct {
	Plan          PlanRecord
	FollowOutcome string
	FollowCode    string
	FollowTicks   int
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertPlan, _ := s.db.Prepare(`INSERT OR REPLACE INTO plans(id,session_id,agent,strategy,sx,sy,sz,gx,gy,gz,outcome,raw_nodes,nodes,samples,expanded,relaxed,lazy_hits,duration_us,created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertFollow, _ := s.db.Prepare(`INSERT OR REPLACE INTO follows(plan_id,session_id,outcome,code,ticks,ended_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertPlan != nil {
			_ = insertPlan.Close()
		}
		if insertFollow != nil {
			_ = insertFollow.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 256
		commitMaxWait = s.commitWait
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	apply := func(r req) {
		switch r.kind {
		case reqPlan:
			p := r.plan
			if insertPlan == nil {
				return
			}
			if _, err := tx.Stmt(insertPlan).Exec(
				p.ID, p.SessionID, p.Agent, p.Strategy,
				p.Start[0], p.Start[1], p.Start[2],
				p.Goal[0], p.Goal[1], p.Goal[2],
				p.Outcome, p.RawNodes, p.Nodes, p.Samples,
				p.Expanded, p.Relaxed, p.LazyHits,
				p.Duration.Microseconds(),
				p.CreatedAt.UTC().Format(timeLayout),
			); err != nil {
				rollback()
				return
			}
			opCount++

		case reqFollow:
			f := r.follow
			if insertFollow == nil {
				return
			}
			if _, err := tx.Stmt(insertFollow).Exec(
				f.PlanID, f.SessionID, f.Outcome, f.Code, f.Ticks,
				f.EndedAt.UTC().Format(timeLayout),
			); err != nil {
				rollback()
				return
			}
			opCount++
		}
	}

	// An idle queue still commits: rows become visible within commitMaxWait.
	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()
	for {
		select {
		case r, ok := <-s.ch:
			if !ok {
				commit()
				return
			}
			begin()
			if tx == nil {
				continue
			}
			apply(r)
			if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
		case <-ticker.C:
			commit()
		}
	}
}
