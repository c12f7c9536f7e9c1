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

// Package entry implements the binary codec for a single (title,
// body) record: the unit the block store keeps. Titles and bodies
// are treated as opaque byte strings here; UTF-8 is asserted only at
// the XML ingestion and CLI surfaces.
package entry

import (
	"encoding/binary"
	"fmt"

	"dictdump.dev/pkg/ref"
)

// headerLen is the size of the two little-endian u32 length prefixes.
const headerLen = 8

// Entry is a titled document as stored in a block. Ref is assigned on
// read (Block.Lookup) and is never part of the encoded bytes.
type Entry struct {
	Title []byte
	Body  []byte
	Ref   ref.Ref
}

// New builds an Entry from a title and body, ready to be appended to
// a block. Its Ref is the zero value until the entry is looked up
// back out of a committed block.
func New(title, body []byte) Entry {
	return Entry{Title: title, Body: body}
}

// Encode writes title_len, body_len, title, body in that order,
// little-endian. It fails if either length exceeds 2^32-1.
func Encode(title, body []byte) ([]byte, error) {
	if uint64(len(title)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("entry: title too long: %d bytes", len(title))
	}
	if uint64(len(body)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("entry: body too long: %d bytes", len(body))
	}
	buf := make([]byte, headerLen+len(title)+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(title)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(body)))
	copy(buf[headerLen:], title)
	copy(buf[headerLen+len(title):], body)
	return buf, nil
}

// EncodedLen returns the number of bytes Encode would produce for the
// given title and body lengths, without allocating.
func EncodedLen(titleLen, bodyLen int) int {
	return headerLen + titleLen + bodyLen
}

// Decode reads title_len and body_len, then that many bytes for each
// field. It accepts and correctly returns an entry with body_len == 0.
func Decode(b []byte) (Entry, error) {
	if len(b) < headerLen {
		return Entry{}, fmt.Errorf("entry: decode: %d bytes, need at least %d", len(b), headerLen)
	}
	titleLen := int(binary.LittleEndian.Uint32(b[0:4]))
	bodyLen := int(binary.LittleEndian.Uint32(b[4:8]))
	want := uint64(headerLen) + uint64(titleLen) + uint64(bodyLen)
	if uint64(len(b)) < want {
		return Entry{}, fmt.Errorf("entry: decode: %d bytes, need %d", len(b), want)
	}
	title := make([]byte, titleLen)
	copy(title, b[headerLen:headerLen+titleLen])
	body := make([]byte, bodyLen)
	if bodyLen > 0 {
		copy(body, b[headerLen+titleLen:headerLen+titleLen+bodyLen])
	}
	return Entry{Title: title, Body: body}, nil
}
