// Package eventlog keeps a compressed per-game journal of accepted actions.
//
// Each game is written to <dir>/<game id>.jsonl.zst as one JSON object per
// line. Every line is its own complete zstd frame, so a file cut short by a
// crash loses at most the last entry. Reopening such a file first rewrites
// it to the entries that still decode.
package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const fileSuffix = ".jsonl.zst"

// Entry is one journaled action.
type Entry struct {
	Seq      int64           `json:"seq"`
	Time     time.Time       `json:"time"`
	GameID   string          `json:"game_id"`
	Round    int             `json:"round"`
	Phase    string          `json:"phase"`
	PlayerID string          `json:"player_id,omitempty"`
	Action   string          `json:"action"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// Journal writes entries for any number of games.
type Journal struct {
	dir string
	enc *zstd.Encoder

	mu    sync.Mutex
	games map[string]*writer
}

type writer struct {
	f   *os.File
	seq int64
}

// Open creates the journal directory if needed.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &Journal{dir: dir, enc: enc, games: make(map[string]*writer)}, nil
}

// Path returns the journal file for a game.
func (j *Journal) Path(gameID string) string {
	return filepath.Join(j.dir, gameID+fileSuffix)
}

// Append writes e to its game's journal and flushes it to disk. Seq and Time
// are filled in when zero.
func (j *Journal) Append(e Entry) error {
	if e.GameID == "" {
		return errors.New("eventlog: entry has no game id")
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	w, err := j.writerLocked(e.GameID)
	if err != nil {
		return err
	}
	w.seq++
	if e.Seq == 0 {
		e.Seq = w.seq
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = w.f.Write(j.enc.EncodeAll(append(b, '\n'), nil))
	return err
}

func (j *Journal) writerLocked(gameID string) (*writer, error) {
	if w, ok := j.games[gameID]; ok {
		return w, nil
	}
	path := j.Path(gameID)
	seq, err := j.recover(path)
	if err != nil {
		return nil, fmt.Errorf("recover journal %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := &writer{f: f, seq: seq}
	j.games[gameID] = w
	return w, nil
}

// recover returns the number of entries in path. When the file does not
// decode to the end it is replaced by the entries read before the damage.
func (j *Journal) recover(path string) (int64, error) {
	var good []Entry
	err := scan(path, true, func(e Entry) error {
		good = append(good, e)
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err == nil {
		return int64(len(good)), nil
	}

	var buf bytes.Buffer
	for _, e := range good {
		b, merr := json.Marshal(e)
		if merr != nil {
			return 0, merr
		}
		buf.Write(j.enc.EncodeAll(append(b, '\n'), nil))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, err
	}
	return int64(len(good)), nil
}

// CloseGame finishes a game's journal. Later appends reopen it.
func (j *Journal) CloseGame(gameID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	w, ok := j.games[gameID]
	if !ok {
		return nil
	}
	delete(j.games, gameID)
	return w.close()
}

// Close finishes every open journal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var errs []error
	for id, w := range j.games {
		if err := w.close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
		delete(j.games, id)
	}
	return errors.Join(errs...)
}

func (w *writer) close() error {
	return w.f.Close()
}

// ReadFile decodes every entry in a journal file.
func ReadFile(path string) ([]Entry, error) {
	var out []Entry
	err := Scan(path, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

// Scan calls fn for each entry in order, stopping at the first error. A
// final frame cut short by a crash ends the scan without an error.
func Scan(path string, fn func(Entry) error) error {
	return scan(path, false, fn)
}

// scan reads path entry by entry. Unless strict, a truncated last frame is
// treated as the end of the journal.
func scan(path string, strict bool, fn func(Entry) error) error {
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
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("%s:%d: %w", path, line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil && (strict || !errors.Is(err, io.ErrUnexpectedEOF)) {
		return err
	}
	return nil
}

// List returns the journal files in dir, sorted by name.
func List(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
