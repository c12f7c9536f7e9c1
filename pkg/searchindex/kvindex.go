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

package searchindex

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"modernc.org/kv"
)

// docMeta is what a posting's docID maps back to: enough to rebuild a
// Hit without touching the block store.
type docMeta struct {
	Ref  uint64
	Lang string
	Gram string
}

// KVIndex is a Sink and Searcher backed by a single modernc.org/kv
// database file, the same pure-Go ordered key-value store the teacher
// uses for its own index storage abstraction. Postings are stored as
// "p\x00term\x00docID" -> "" keys, scanned by prefix for an AND-only
// token match; document metadata lives under "d\x00docID" keys.
type KVIndex struct {
	db     *kv.DB
	nextID uint64
}

var metaNextIDKey = []byte("meta\x00nextid")

// OpenKVIndex creates or opens the index database at path.
func OpenKVIndex(path string) (*KVIndex, error) {
	createOpen := kv.Open
	if _, err := os.Stat(path); os.IsNotExist(err) {
		createOpen = kv.Create
	}
	db, err := createOpen(path, &kv.Options{})
	if err != nil {
		return nil, fmt.Errorf("searchindex: open %s: %w", path, err)
	}
	idx := &KVIndex{db: db}
	if v, err := db.Get(nil, metaNextIDKey); err != nil {
		db.Close()
		return nil, fmt.Errorf("searchindex: read nextid: %w", err)
	} else if v != nil {
		idx.nextID = binary.BigEndian.Uint64(v)
	}
	return idx, nil
}

// Close closes the underlying database.
func (x *KVIndex) Close() error {
	return x.db.Close()
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

func docKey(id uint64) []byte {
	k := make([]byte, 2+8)
	k[0] = 'd'
	k[1] = 0
	binary.BigEndian.PutUint64(k[2:], id)
	return k
}

func postingKey(term string, id uint64) []byte {
	var buf bytes.Buffer
	buf.WriteByte('p')
	buf.WriteByte(0)
	buf.WriteString(term)
	buf.WriteByte(0)
	var idb [8]byte
	binary.BigEndian.PutUint64(idb[:], id)
	buf.Write(idb[:])
	return buf.Bytes()
}

func postingPrefix(term string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('p')
	buf.WriteByte(0)
	buf.WriteString(term)
	buf.WriteByte(0)
	return buf.Bytes()
}

// Index assigns doc a fresh document ID, persists its metadata, and
// writes one posting per distinct term in its title and text.
func (x *KVIndex) Index(doc Document) error {
	id := x.nextID
	x.nextID++

	meta, err := json.Marshal(docMeta{Ref: doc.Ref, Lang: doc.Lang, Gram: doc.Gram})
	if err != nil {
		return fmt.Errorf("searchindex: encode metadata: %w", err)
	}
	if err := x.db.Set(docKey(id), meta); err != nil {
		return fmt.Errorf("searchindex: store metadata: %w", err)
	}

	terms := tokenize(doc.Title + " " + doc.Text)
	for _, term := range terms {
		if err := x.db.Set(postingKey(term, id), nil); err != nil {
			return fmt.Errorf("searchindex: store posting %q: %w", term, err)
		}
	}

	var idb [8]byte
	binary.BigEndian.PutUint64(idb[:], x.nextID)
	return x.db.Set(metaNextIDKey, idb[:])
}

func (x *KVIndex) postingsFor(term string) (map[uint64]bool, error) {
	prefix := postingPrefix(term)
	enum, _, err := x.db.Seek(prefix)
	if err != nil {
		return nil, fmt.Errorf("searchindex: seek %q: %w", term, err)
	}
	ids := make(map[uint64]bool)
	for {
		k, _, err := enum.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("searchindex: scan %q: %w", term, err)
		}
		if !bytes.HasPrefix(k, prefix) {
			break
		}
		idBytes := k[len(prefix):]
		if len(idBytes) != 8 {
			continue
		}
		ids[binary.BigEndian.Uint64(idBytes)] = true
	}
	return ids, nil
}

// Search tokenizes query and returns every document whose title/text
// contains all of its terms, up to limit hits. A query with no terms
// matches nothing.
func (x *KVIndex) Search(query string, limit int) ([]Hit, error) {
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	candidates, err := x.postingsFor(terms[0])
	if err != nil {
		return nil, err
	}
	for _, term := range terms[1:] {
		ids, err := x.postingsFor(term)
		if err != nil {
			return nil, err
		}
		for id := range candidates {
			if !ids[id] {
				delete(candidates, id)
			}
		}
	}

	var hits []Hit
	for id := range candidates {
		if limit > 0 && len(hits) >= limit {
			break
		}
		v, err := x.db.Get(nil, docKey(id))
		if err != nil {
			return nil, fmt.Errorf("searchindex: read metadata for doc %d: %w", id, err)
		}
		if v == nil {
			continue
		}
		var m docMeta
		if err := json.Unmarshal(v, &m); err != nil {
			return nil, fmt.Errorf("searchindex: decode metadata for doc %d: %w", id, err)
		}
		hits = append(hits, Hit{
			Ref:   m.Ref,
			Lang:  m.Lang,
			Gram:  m.Gram,
			Score: float64(len(terms)),
		})
	}
	return hits, nil
}
