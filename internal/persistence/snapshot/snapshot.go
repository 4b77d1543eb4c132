// Package snapshot stores frozen voxel worlds: a JSON header line followed by
// a gob body, the whole file zstd compressed.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

// Header is readable without decoding the chunk body.
type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Seed    int64  `json:"seed"`
	MinY    int    `json:"min_y"`
	Height  int    `json:"height"`
	Chunks  int    `json:"chunks"`
}

// WorldV1 is enough to rebuild a planner-side store.
type WorldV1 struct {
	Header Header `json:"header"`

	MinY       int    `json:"min_y"`
	Height     int    `json:"height"`
	FireImmune bool   `json:"fire_immune,omitempty"`
	Spawn      [3]int `json:"spawn"`

	Chunks []ChunkV1 `json:"chunks"`
}

type ChunkV1 struct {
	CX     int      `json:"cx"`
	CZ     int      `json:"cz"`
	Blocks []uint16 `json:"blocks"`
}

var ErrCorrupt = errors.New("snapshot: corrupt")

// WriteSnapshot replaces path atomically: the snapshot is written to a
// sibling temp file and renamed into place.
func WriteSnapshot(path string, snap WorldV1) (err error) {
	snap.Header.Version = Version
	snap.Header.MinY = snap.MinY
	snap.Header.Height = snap.Height
	snap.Header.Chunks = len(snap.Chunks)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := encode(f, snap); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

func encode(w io.Writer, snap WorldV1) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return err
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	err := open(path, func(br *bufio.Reader) error {
		var err error
		h, err = readHeader(br)
		return err
	})
	return h, err
}

func ReadSnapshot(path string) (WorldV1, error) {
	var snap WorldV1
	err := open(path, func(br *bufio.Reader) error {
		h, err := readHeader(br)
		if err != nil {
			return err
		}
		if err := gob.NewDecoder(br).Decode(&snap); err != nil {
			return fmt.Errorf("gob decode: %w", err)
		}
		if h.Chunks != len(snap.Chunks) || h.MinY != snap.MinY || h.Height != snap.Height {
			return fmt.Errorf("%w: header says %d chunks in [%d,+%d), body has %d in [%d,+%d)",
				ErrCorrupt, h.Chunks, h.MinY, h.Height, len(snap.Chunks), snap.MinY, snap.Height)
		}
		return nil
	})
	return snap, err
}

func open(path string, fn func(*bufio.Reader) error) error {
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
	return fn(bufio.NewReaderSize(dec, 256*1024))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	hb, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(hb, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != Version {
		return h, fmt.Errorf("unsupported snapshot version %d", h.Version)
	}
	return h, nil
}
