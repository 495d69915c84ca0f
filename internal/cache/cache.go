// Package cache implements the on-disk result cache (SPEC_FULL.md's
// supplemented "Result cache" feature): it stores a compiled program's
// disassembly and Image3 PNG snapshots keyed by relation text and Config,
// and hands back a snapshot only if the run that stored it had finished.
// Programs are not rebuilt from the cache, and cmd/graphest does not use
// it, so each CLI invocation compiles and plots afresh.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
)

// Cache wraps a single-file SQLite database. It is safe for concurrent use;
// database/sql pools connections internally.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}
	return &Cache{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	key  TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	disassembly TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS images (
	key TEXT PRIMARY KEY,
	png BLOB NOT NULL,
	complete INTEGER NOT NULL
);
`

// Close closes the underlying database handle.
func (c *Cache) Close() error { return c.db.Close() }

// Key derives the cache key for a relation text under a given config
// fingerprint (the caller formats whatever Config fields affect the result
// — bounds, pixel grid, mode, max_level — into configFingerprint).
func Key(relationText, configFingerprint string) string {
	h := sha256.Sum256([]byte(relationText + "\x00" + configFingerprint))
	return hex.EncodeToString(h[:])
}

// PutProgram stores a compiled program's disassembly text, keyed by Key's
// output restricted to the relation text alone (a program does not depend
// on the pixel grid).
func (c *Cache) PutProgram(key, text, disassembly string) error {
	_, err := c.db.Exec(
		`INSERT INTO programs(key, text, disassembly) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET text=excluded.text, disassembly=excluded.disassembly`,
		key, text, disassembly,
	)
	return err
}

// GetProgramDisassembly returns a previously cached program's disassembly,
// or ok=false if absent. The engine does not reconstruct a program.Program
// from disassembly text (the compiler is cheap to re-run; the cache exists
// to skip replotting, not reparsing) — this is surfaced for --debug reuse
// and cache-hit reporting only.
func (c *Cache) GetProgramDisassembly(key string) (disassembly string, ok bool, err error) {
	row := c.db.QueryRow(`SELECT disassembly FROM programs WHERE key = ?`, key)
	if err := row.Scan(&disassembly); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return disassembly, true, nil
}

// PutImage stores a finished or in-progress PNG snapshot under key.
// complete marks whether the search had fully drained when the snapshot
// was taken (spec §4.5: an incomplete image is still meaningful, but must
// never be mistaken for a converged one on reuse).
func (c *Cache) PutImage(key string, png []byte, complete bool) error {
	completeInt := 0
	if complete {
		completeInt = 1
	}
	_, err := c.db.Exec(
		`INSERT INTO images(key, png, complete) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET png=excluded.png, complete=excluded.complete`,
		key, png, completeInt,
	)
	return err
}

// GetImage returns a cached PNG for key if one exists and was complete;
// an incomplete snapshot is never reused as if it were a finished plot.
func (c *Cache) GetImage(key string) (png []byte, ok bool, err error) {
	row := c.db.QueryRow(`SELECT png, complete FROM images WHERE key = ?`, key)
	var complete int
	if err := row.Scan(&png, &complete); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if complete == 0 {
		return nil, false, nil
	}
	return png, true, nil
}
