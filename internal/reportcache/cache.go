// Package reportcache keeps validation reports on disk, keyed by a digest
// of the module listing. Only diagnostics are cached, never IR.
package reportcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"irkit/internal/diag"
	"irkit/internal/ir"
	"irkit/internal/irvalid"
)

// schemaVersion changes whenever Payload or the key derivation changes.
const schemaVersion uint16 = 2

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Key digests everything validation depends on: a lossless encoding of the
// module (edges and tables included) and the diagnostic limit. It panics on
// a node kind it does not know, like ir.Walk.
func Key(m *ir.Module, maxDiagnostics int) Digest {
	h := sha256.New()
	fmt.Fprintf(h, "irkit-report/%d/%d\n", schemaVersion, maxDiagnostics)
	if err := encodeModule(h, m); err != nil {
		panic(err)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// NoteEntry is the stored form of a diag.Note.
type NoteEntry struct {
	Pos PosEntry
	Msg string
}

// PosEntry is the stored form of a diag.Position.
type PosEntry struct {
	Object   string
	Function string
	Block    string
	Instr    int
}

// Entry is the stored form of a diag.Diagnostic.
type Entry struct {
	Severity uint8
	Code     uint16
	Message  string
	Primary  PosEntry
	Notes    []NoteEntry
}

// Payload is one cached report.
type Payload struct {
	Schema      uint16
	Module      string
	Created     time.Time
	Diagnostics []Entry
}

// Cache stores payloads under dir. It is safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir is $XDG_CACHE_HOME/irkit, falling back to ~/.cache/irkit.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "irkit"), nil
}

// Open creates dir if needed and returns a cache rooted there. An empty dir
// means DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "reports", key.String()+".mp")
}

// Put stores the diagnostics of bag under key. The file is replaced
// atomically.
func (c *Cache) Put(key Digest, module string, bag *diag.Bag) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(toPayload(module, bag)); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the report stored under key. A missing file or a payload of
// another schema is a miss, not an error.
func (c *Cache) Get(key Digest) (*diag.Bag, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p Payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	if p.Schema != schemaVersion {
		return nil, false, nil
	}
	return fromPayload(&p), true, nil
}

// DropAll removes every cached report.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// Validate returns the cached report for m or validates m and stores the
// result. hit reports whether the cache answered.
func (c *Cache) Validate(m *ir.Module, opts irvalid.Options) (bag *diag.Bag, hit bool, err error) {
	key := Key(m, opts.MaxDiagnostics)
	if bag, ok, err := c.Get(key); err != nil || ok {
		return bag, ok, err
	}
	bag = irvalid.ValidateWith(m, opts)
	return bag, false, c.Put(key, m.Name, bag)
}

func toPos(p diag.Position) PosEntry {
	return PosEntry{Object: p.Object, Function: p.Function, Block: p.Block, Instr: p.Instr}
}

func (p PosEntry) position() diag.Position {
	return diag.Position{Object: p.Object, Function: p.Function, Block: p.Block, Instr: p.Instr}
}

func toPayload(module string, bag *diag.Bag) *Payload {
	p := &Payload{Schema: schemaVersion, Module: module, Created: time.Now().UTC()}
	if bag == nil {
		return p
	}
	for _, d := range bag.Items() {
		e := Entry{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Primary:  toPos(d.Primary),
		}
		for _, n := range d.Notes {
			e.Notes = append(e.Notes, NoteEntry{Pos: toPos(n.Pos), Msg: n.Msg})
		}
		p.Diagnostics = append(p.Diagnostics, e)
	}
	return p
}

func fromPayload(p *Payload) *diag.Bag {
	bag := diag.NewBag(len(p.Diagnostics))
	for _, e := range p.Diagnostics {
		d := diag.New(diag.Severity(e.Severity), diag.Code(e.Code), e.Primary.position(), e.Message)
		for _, n := range e.Notes {
			d = d.WithNote(n.Pos.position(), n.Msg)
		}
		bag.Add(d)
	}
	return bag
}
