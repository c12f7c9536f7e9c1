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

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"dictdump.dev/pkg/block"
	"dictdump.dev/pkg/dict"
	"dictdump.dev/pkg/ref"
	"dictdump.dev/pkg/storeerr"
)

// fill appends n entries with reasonably bulky, repetitive bodies, so
// the dictionary trainer on the first commit has enough to work with.
func fill(b *block.Block, start, n int) error {
	for i := start; i < start+n; i++ {
		title := fmt.Sprintf("title-%d", i)
		body := fmt.Sprintf("The quick brown fox jumps over the lazy dog, entry number %d of this synthetic dump body.", i)
		if err := b.Append([]byte(title), []byte(body)); err != nil {
			return err
		}
	}
	return nil
}

func TestS1ThreeEntryCommit(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}

	b := block.New()
	titles := []string{"a", "b", "c"}
	bodies := []string{"1", "22", "333"}
	// Pad with bulk so dictionary training succeeds; the assertions
	// below only look at the first three entries.
	for i, ti := range titles {
		if err := b.Append([]byte(ti), []byte(bodies[i])); err != nil {
			t.Fatal(err)
		}
	}
	if err := fill(b, 100, 60); err != nil {
		t.Fatal(err)
	}

	if err := s.Commit(b, 0); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if b.N() != 0 {
		t.Fatalf("caller's block has N=%d after Commit, want 0", b.N())
	}

	if _, err := os.Stat(filepath.Join(dir, "0.zst")); err != nil {
		t.Fatalf("0.zst missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, dict.FileName)); err != nil {
		t.Fatalf("%s missing: %v", dict.FileName, err)
	}

	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	e, err := s.ReadEntry(ref.New(0, 1))
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(e.Title) != "b" || string(e.Body) != "22" {
		t.Fatalf("ReadEntry(0,1) = (%q, %q), want (b, 22)", e.Title, e.Body)
	}
}

func TestS2TwoCommitsAcrossBlocks(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}

	const perBlock = 100
	b := block.New()
	if err := fill(b, 0, perBlock); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, perBlock); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if err := fill(b, perBlock, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, perBlock+1); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	paths, err := s.Blocks()
	if err != nil {
		t.Fatalf("Blocks: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(Blocks()) = %d, want 2", len(paths))
	}

	if err := s.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	e, err := s.ReadEntry(ref.New(uint32(perBlock+1), 0))
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	wantTitle := fmt.Sprintf("title-%d", perBlock)
	if string(e.Title) != wantTitle {
		t.Fatalf("ReadEntry title = %q, want %q", e.Title, wantTitle)
	}
}

func TestS3CorruptBlockOnRead(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}
	b := block.New()
	if err := fill(b, 0, 80); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, 80); err != nil {
		t.Fatal(err)
	}

	// Corrupt the block's decompressed data region (not the compressed
	// frame, which would just fail at the zstd layer instead of
	// exercising block.Parse) by dropping its last byte, then
	// recompress it back into place so the store still opens fine but
	// the last entry's declared body length overruns what remains.
	path := filepath.Join(dir, "80.zst")
	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := s.dict.Decompress(in)
	in.Close()
	if err != nil {
		t.Fatal(err)
	}
	raw = raw[:len(raw)-1]

	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.dict.CompressTo(out, raw); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	_, err = s.ReadEntry(ref.New(80, 79))
	if !errors.Is(err, storeerr.ErrCorruptBlock) {
		t.Fatalf("ReadEntry after corruption: err = %v, want storeerr.ErrCorruptBlock", err)
	}
}

func TestOpenWithoutDictionaryFails(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(); !errors.Is(err, storeerr.ErrNoDictionary) {
		t.Fatalf("Open() on empty store error = %v, want ErrNoDictionary", err)
	}
}

func TestReadBlockBadFilename(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}
	b := block.New()
	if err := fill(b, 0, 80); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadBlock(filepath.Join(dir, "notanumber.zst")); !errors.Is(err, storeerr.ErrBadFilename) {
		t.Fatalf("ReadBlock(bad filename) error = %v, want ErrBadFilename", err)
	}
}

func TestDictionaryTrainedOnce(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, dict.DefaultTargetSize)
	if err := s.Create(); err != nil {
		t.Fatal(err)
	}
	b := block.New()
	if err := fill(b, 0, 80); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, 80); err != nil {
		t.Fatal(err)
	}
	firstDict, err := os.ReadFile(filepath.Join(dir, dict.FileName))
	if err != nil {
		t.Fatal(err)
	}

	if err := fill(b, 80, 80); err != nil {
		t.Fatal(err)
	}
	if err := s.Commit(b, 160); err != nil {
		t.Fatal(err)
	}
	secondDict, err := os.ReadFile(filepath.Join(dir, dict.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(firstDict) != string(secondDict) {
		t.Fatal("dictionary bytes changed after the second commit")
	}
}
