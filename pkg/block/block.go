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

// Package block implements the on-disk layout of one block: an
// entry count, a table of byte offsets into a flat data arena, and
// the arena itself. Blocks are append-only in memory prior to commit
// and immutable on disk after.
package block

import (
	"encoding/binary"
	"fmt"

	"dictdump.dev/pkg/entry"
	"dictdump.dev/pkg/ref"
	"dictdump.dev/pkg/storeerr"
)

// headerLen is 4 bytes for n plus 4 reserved padding bytes. The
// padding exists because the original store was written with an
// incompatible 2-byte-count prefix; new writers keep emitting it as
// zero so the on-disk layout stays stable for old readers that still
// expect the gap.
const headerLen = 8

// Block is an ordered sequence of entries plus the flat arena holding
// their encoded bytes. ID is assigned from the source file name on
// read and is never part of the encoded bytes.
type Block struct {
	ID     uint32
	Starts []uint64
	Data   []byte
}

// New returns an empty block ready to be appended to.
func New() *Block {
	return &Block{}
}

// N returns the number of entries currently in the block.
func (b *Block) N() uint32 {
	return uint32(len(b.Starts))
}

// Append encodes title and body as an entry and adds it to the block,
// recording its start offset. It fails if the resulting data length
// would overflow a uint64, which in practice is unreachable.
func (b *Block) Append(title, body []byte) error {
	enc, err := entry.Encode(title, body)
	if err != nil {
		return fmt.Errorf("block: append: %w", err)
	}
	start := uint64(len(b.Data))
	if start > start+uint64(len(enc)) {
		return fmt.Errorf("block: append: data length would overflow u64")
	}
	b.Starts = append(b.Starts, start)
	b.Data = append(b.Data, enc...)
	return nil
}

// Reset empties the block in place, the Go realization of the
// "move-and-reset" contract: Store.Commit takes ownership of the
// caller's block and leaves an empty one behind.
func (b *Block) Reset() {
	b.Starts = nil
	b.Data = nil
}

// Take returns a copy of b's contents as a new *Block and resets b to
// empty, giving Store.Commit ownership of the filled block while the
// caller keeps filling a fresh one.
func (b *Block) Take() *Block {
	taken := &Block{ID: b.ID, Starts: b.Starts, Data: b.Data}
	b.Reset()
	return taken
}

// SampleSizes returns the per-entry byte lengths within Data, derived
// from the offset table: starts[1]-starts[0], ..., len(data)-starts[n-1].
// This is the sample-size sequence the dictionary trainer needs.
func (b *Block) SampleSizes() []int {
	n := len(b.Starts)
	if n == 0 {
		return nil
	}
	sizes := make([]int, n)
	for i := 0; i < n-1; i++ {
		sizes[i] = int(b.Starts[i+1] - b.Starts[i])
	}
	sizes[n-1] = len(b.Data) - int(b.Starts[n-1])
	return sizes
}

// Finalize produces the full block byte string: n, four zero padding
// bytes, every start offset, then the data arena verbatim.
func (b *Block) Finalize() []byte {
	n := len(b.Starts)
	out := make([]byte, headerLen+8*n+len(b.Data))
	binary.LittleEndian.PutUint32(out[0:4], uint32(n))
	// out[4:8] stays zero: reserved padding.
	off := headerLen
	for _, s := range b.Starts {
		binary.LittleEndian.PutUint64(out[off:off+8], s)
		off += 8
	}
	copy(out[off:], b.Data)
	return out
}

// Parse decodes a finalized block's bytes. The caller is responsible
// for assigning the resulting Block's ID from the source file name;
// Parse never sets it.
func Parse(b []byte) (*Block, error) {
	if len(b) < headerLen {
		return nil, fmt.Errorf("block: parse: %d bytes, need at least %d: %w", len(b), headerLen, storeerr.ErrCorruptBlock)
	}
	n := binary.LittleEndian.Uint32(b[0:4])
	// b[4:8] is reserved padding; tolerated whether or not it's zero.
	startsLen := uint64(n) * 8
	if uint64(len(b)-headerLen) < startsLen {
		return nil, fmt.Errorf("block: parse: truncated offset table: %w", storeerr.ErrCorruptBlock)
	}
	starts := make([]uint64, n)
	off := headerLen
	for i := uint32(0); i < n; i++ {
		starts[i] = binary.LittleEndian.Uint64(b[off : off+8])
		off += 8
	}
	data := b[off:]
	if err := validateStarts(starts, len(data)); err != nil {
		return nil, err
	}
	return &Block{Starts: starts, Data: data}, nil
}

func validateStarts(starts []uint64, dataLen int) error {
	for i, s := range starts {
		if s > uint64(dataLen) {
			return fmt.Errorf("block: parse: start[%d]=%d beyond data length %d: %w", i, s, dataLen, storeerr.ErrCorruptBlock)
		}
		if i > 0 && s <= starts[i-1] {
			return fmt.Errorf("block: parse: starts not strictly increasing at %d: %w", i, storeerr.ErrCorruptBlock)
		}
	}
	return nil
}

// Lookup decodes the i-th entry, attaching Ref{b.ID, i}. It fails
// with storeerr.ErrNoSuchEntry if i is out of range, and with
// storeerr.ErrCorruptBlock if the entry bytes fail to parse.
func (b *Block) Lookup(i uint32) (entry.Entry, error) {
	n := uint32(len(b.Starts))
	if i >= n {
		return entry.Entry{}, fmt.Errorf("block: lookup %d/%d: %w", i, n, storeerr.ErrNoSuchEntry)
	}
	start := int(b.Starts[i])
	var end int
	if i == n-1 {
		end = len(b.Data)
	} else {
		end = int(b.Starts[i+1])
	}
	if start+8 > len(b.Data) || end > len(b.Data) || end < start {
		return entry.Entry{}, fmt.Errorf("block: lookup %d: entry slice out of range: %w", i, storeerr.ErrCorruptBlock)
	}
	e, err := entry.Decode(b.Data[start:end])
	if err != nil {
		return entry.Entry{}, fmt.Errorf("block: lookup %d: %w: %v", i, storeerr.ErrCorruptBlock, err)
	}
	e.Ref = ref.New(b.ID, i)
	return e, nil
}
