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

// Package ref defines the compact (block, entry) handle used to name
// an entry durably within a store.
package ref

import (
	"fmt"
	"strconv"
	"strings"

	"dictdump.dev/pkg/storeerr"
)

// Ref names a single entry: the block it lives in, and its index
// within that block. It is a value type and supports equality with
// ==.
type Ref struct {
	BlockID uint32
	EntryID uint32
}

// New returns the Ref for the given block and entry index.
func New(blockID, entryID uint32) Ref {
	return Ref{BlockID: blockID, EntryID: entryID}
}

// String renders the ref in its "<block_id>/<entry_id>" textual form.
func (r Ref) String() string {
	return fmt.Sprintf("%d/%d", r.BlockID, r.EntryID)
}

// AsUint64 packs the ref into a little-endian 64-bit form: the block
// id occupies the low 32 bits, the entry id the high 32 bits.
func (r Ref) AsUint64() uint64 {
	return uint64(r.BlockID) | uint64(r.EntryID)<<32
}

// FromUint64 unpacks a ref from its 64-bit form.
func FromUint64(v uint64) Ref {
	return Ref{
		BlockID: uint32(v),
		EntryID: uint32(v >> 32),
	}
}

// Parse parses a ref from its "<block_id>/<entry_id>" textual form.
// It fails with storeerr.ErrBadRef if the single "/" separator is
// absent or either side fails to parse as a non-negative decimal.
func Parse(s string) (Ref, error) {
	b, e, ok := strings.Cut(s, "/")
	if !ok {
		return Ref{}, fmt.Errorf("ref: parse %q: %w", s, storeerr.ErrBadRef)
	}
	blockID, err := strconv.ParseUint(b, 10, 32)
	if err != nil {
		return Ref{}, fmt.Errorf("ref: parse %q: %w", s, storeerr.ErrBadRef)
	}
	entryID, err := strconv.ParseUint(e, 10, 32)
	if err != nil {
		return Ref{}, fmt.Errorf("ref: parse %q: %w", s, storeerr.ErrBadRef)
	}
	return Ref{BlockID: uint32(blockID), EntryID: uint32(entryID)}, nil
}
