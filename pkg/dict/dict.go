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

// Package dict manages the store's single shared zstd compression
// dictionary: trained once from the first committed block, persisted
// to disk, and reused to compress every block thereafter (including
// the one it was trained from).
package dict

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	kdict "github.com/klauspost/compress/dict"
	"github.com/klauspost/compress/zstd"

	"dictdump.dev/pkg/storeerr"
)

// FileName is the name of the dictionary file within a store
// directory.
const FileName = "zst.dictionary"

// DefaultTargetSize is the dictionary size trained from the first
// block, in bytes.
const DefaultTargetSize = 150_000

// DefaultLevel is the zstd compression level used with the
// dictionary.
const DefaultLevel = 3

// Manager trains, persists, and applies the store's dictionary. A
// zero Manager is not usable; construct one with New.
type Manager struct {
	dir        string
	targetSize int
	level      zstd.EncoderLevel

	raw []byte // trained/loaded dictionary bytes, nil until ready
}

// New returns a Manager rooted at dir. No I/O happens until Load or
// TrainFromSamples is called.
func New(dir string, targetSize int) *Manager {
	if targetSize <= 0 {
		targetSize = DefaultTargetSize
	}
	return &Manager{
		dir:        dir,
		targetSize: targetSize,
		level:      levelFromInt(DefaultLevel),
	}
}

func levelFromInt(n int) zstd.EncoderLevel {
	switch {
	case n <= 1:
		return zstd.SpeedFastest
	case n <= 3:
		return zstd.SpeedDefault
	case n <= 7:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Ready reports whether a dictionary is loaded in memory, either by
// Load or by a prior TrainFromSamples.
func (m *Manager) Ready() bool {
	return m.raw != nil
}

// Load reads the persisted dictionary from the store directory. It
// fails with storeerr.ErrNoDictionary if the file is absent.
func (m *Manager) Load() error {
	b, err := os.ReadFile(filepath.Join(m.dir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("dict: load: %w", storeerr.ErrNoDictionary)
		}
		return fmt.Errorf("dict: load: %w", err)
	}
	m.raw = b
	return nil
}

// TrainFromSamples trains a dictionary of the manager's target size
// from a continuous data buffer and the byte length of each sample
// within it, then persists the result to the store directory. It is
// a no-op if a dictionary is already loaded: the dictionary is
// trained exactly once, at first commit, and never replaced.
func (m *Manager) TrainFromSamples(data []byte, sampleSizes []int) error {
	if m.Ready() {
		return nil
	}
	samples := make([][]byte, len(sampleSizes))
	off := 0
	for i, n := range sampleSizes {
		if off+n > len(data) {
			return fmt.Errorf("dict: train: sample %d overruns data: %w", i, storeerr.ErrTrainFailed)
		}
		samples[i] = data[off : off+n]
		off += n
	}
	raw, err := kdict.BuildZstdDict(samples, kdict.Options{
		MaxDictSize: m.targetSize,
		HashBytes:   6,
		ZstdLevel:   m.level,
	})
	if err != nil {
		return fmt.Errorf("dict: train: %w: %v", storeerr.ErrTrainFailed, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("dict: train: empty dictionary: %w", storeerr.ErrTrainFailed)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("dict: train: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.dir, FileName), raw, 0o644); err != nil {
		return fmt.Errorf("dict: train: persist: %w", err)
	}
	m.raw = raw
	return nil
}

// CompressTo writes a dictionary-compressed frame of raw to w. It
// fails with storeerr.ErrStoreNotOpen if no dictionary is loaded yet.
func (m *Manager) CompressTo(w io.Writer, raw []byte) error {
	if !m.Ready() {
		return fmt.Errorf("dict: compress: %w", storeerr.ErrStoreNotOpen)
	}
	enc, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(m.level),
		zstd.WithEncoderDict(m.raw),
	)
	if err != nil {
		return fmt.Errorf("dict: compress: %w", err)
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return fmt.Errorf("dict: compress: %w", err)
	}
	return enc.Close()
}

// Decompress reads a dictionary-compressed frame from r and returns
// its decompressed bytes. It fails with storeerr.ErrStoreNotOpen if
// no dictionary is loaded yet (the reference implementation panics
// here; this returns an error instead).
func (m *Manager) Decompress(r io.Reader) ([]byte, error) {
	if !m.Ready() {
		return nil, fmt.Errorf("dict: decompress: %w", storeerr.ErrStoreNotOpen)
	}
	dec, err := zstd.NewReader(r, zstd.WithDecoderDicts(m.raw))
	if err != nil {
		return nil, fmt.Errorf("dict: decompress: %w", err)
	}
	defer dec.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		return nil, fmt.Errorf("dict: decompress: %w", err)
	}
	return buf.Bytes(), nil
}

// Bytes returns the raw trained/loaded dictionary bytes, or nil if
// none is ready yet.
func (m *Manager) Bytes() []byte {
	return m.raw
}
