/*
Copyright The dictdump Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package store implements the block store's directory discipline:
// creating and opening a store, committing in-memory blocks to disk
// through the dictionary manager, and reading blocks and entries back
// by Ref. Ingestion is single-threaded; reads may run concurrently
// across distinct block files with no synchronization (see Gate for
// bounding that concurrency).
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dictdump.dev/pkg/block"
	"dictdump.dev/pkg/dict"
	"dictdump.dev/pkg/entry"
	"dictdump.dev/pkg/ref"
	"dictdump.dev/pkg/storeerr"
)

// Store is a directory holding a trained dictionary and a sequence of
// committed block files. The zero Store is not usable; use New.
type Store struct {
	Dir  string
	dict *dict.Manager
}

// New returns a Store rooted at dir. Neither Create nor Open has run
// yet.
func New(dir string, dictTargetSize int) *Store {
	return &Store{
		Dir:  dir,
		dict: dict.New(dir, dictTargetSize),
	}
}

// Create ensures the store directory exists.
func (s *Store) Create() error {
	if _, err := os.Stat(s.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("store: create %s: %w", s.Dir, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("store: create %s: %w", s.Dir, err)
	}
	return nil
}

// Open loads the store's dictionary into memory, readying it for
// ReadBlock/ReadEntry. It fails with storeerr.ErrNoDictionary if the
// store has never been committed to.
func (s *Store) Open() error {
	return s.dict.Load()
}

func (s *Store) filename(n uint32) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%d.zst", n))
}

// Blocks returns every committed block file path in the store
// directory, in no particular order.
func (s *Store) Blocks() ([]string, error) {
	ents, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("store: blocks: %w", err)
	}
	var paths []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".zst") {
			continue
		}
		paths = append(paths, filepath.Join(s.Dir, e.Name()))
	}
	return paths, nil
}

// Commit takes ownership of b's contents (b.Take), trains the
// dictionary from it if this is the store's first commit, and writes
// the finalized, dictionary-compressed block to "<n>.zst". b is left
// empty for the caller to keep filling. n is the caller-supplied
// sequence tag, the running entry count at commit time in the
// ingestion pipeline.
func (s *Store) Commit(b *block.Block, n uint32) error {
	taken := b.Take()

	if !s.dict.Ready() {
		if err := s.dict.TrainFromSamples(taken.Data, taken.SampleSizes()); err != nil {
			return fmt.Errorf("store: commit: %w", err)
		}
	}

	path := s.filename(n)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	defer f.Close()

	if err := s.dict.CompressTo(f, taken.Finalize()); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return f.Close()
}

// ReadBlock opens, decompresses, and parses the block at path,
// assigning its ID from the file stem. It fails with
// storeerr.ErrBadFilename if the stem is not a non-negative integer,
// storeerr.ErrStoreNotOpen if Open hasn't loaded the dictionary yet,
// and storeerr.ErrCorruptBlock if the decompressed bytes fail to
// parse.
func (s *Store) ReadBlock(path string) (*block.Block, error) {
	stem := strings.TrimSuffix(filepath.Base(path), ".zst")
	id, err := strconv.ParseUint(stem, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("store: read block %s: %w", path, storeerr.ErrBadFilename)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: read block %s: %w", path, err)
	}
	defer f.Close()

	raw, err := s.dict.Decompress(f)
	if err != nil {
		return nil, fmt.Errorf("store: read block %s: %w", path, err)
	}

	b, err := block.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("store: read block %s: %w", path, err)
	}
	b.ID = uint32(id)
	return b, nil
}

// ReadEntry reads the block named by r's BlockID and returns its
// r.EntryID-th entry. It is deliberately unbuffered and does no
// block-level caching; callers doing many reads from the same block
// should read the block once with ReadBlock and iterate it directly.
func (s *Store) ReadEntry(r ref.Ref) (entry.Entry, error) {
	b, err := s.ReadBlock(s.filename(r.BlockID))
	if err != nil {
		return entry.Entry{}, err
	}
	return b.Lookup(r.EntryID)
}
