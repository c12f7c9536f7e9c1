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

// Package ingest wires the XML page recognizer, the block store, and
// the search index together into the two end-to-end operations this
// repo offers: building a store from a dump, and building a search
// index from a built store.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"

	"golang.org/x/sync/errgroup"

	"dictdump.dev/pkg/block"
	"dictdump.dev/pkg/entry"
	"dictdump.dev/pkg/ref"
	"dictdump.dev/pkg/searchindex"
	"dictdump.dev/pkg/section"
	"dictdump.dev/pkg/store"
	"dictdump.dev/pkg/xmlpage"
)

// Options carries the handful of knobs the ingestion and search-index
// build steps need. The zero value is not valid; use DefaultOptions
// and override individual fields.
type Options struct {
	StoreDir string

	// CommitInterval is how many entries accumulate in memory before
	// a block is committed to disk.
	CommitInterval int

	// DictionaryTargetSize is the trained dictionary's size in bytes.
	DictionaryTargetSize int

	// DictionaryLevel records the zstd compression level for the
	// dictionary. BuildStore does not pass it to the store: blocks are
	// always compressed at dict.DefaultLevel.
	DictionaryLevel int

	// Log receives progress messages; nil disables logging.
	Log *log.Logger
}

// DefaultOptions returns Options with the spec's default knob values
// for storeDir.
func DefaultOptions(storeDir string) Options {
	return Options{
		StoreDir:             storeDir,
		CommitInterval:       10000,
		DictionaryTargetSize: 150_000,
		DictionaryLevel:      3,
	}
}

func (o Options) logf(format string, args ...any) {
	if o.Log != nil {
		o.Log.Printf(format, args...)
	}
}

// BuildStore reads an XML dump from r and commits it into a fresh
// block store at opts.StoreDir, committing every opts.CommitInterval
// entries and once more at the end for any remainder. It returns the
// total number of entries ingested.
func BuildStore(ctx context.Context, r io.Reader, opts Options) (int, error) {
	s := store.New(opts.StoreDir, opts.DictionaryTargetSize)
	if err := s.Create(); err != nil {
		return 0, fmt.Errorf("ingest: build store: %w", err)
	}

	b := block.New()
	n := 0
	err := xmlpage.Walk(r, func(p xmlpage.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.Append([]byte(p.Title), []byte(p.Body)); err != nil {
			return fmt.Errorf("ingest: append entry %d: %w", n, err)
		}
		n++
		if n%opts.CommitInterval == 0 {
			opts.logf("committing block at %d entries", n)
			if err := s.Commit(b, uint32(n)); err != nil {
				return fmt.Errorf("ingest: commit at %d: %w", n, err)
			}
		}
		return nil
	})
	if err != nil {
		return n, err
	}

	if b.N() > 0 {
		opts.logf("committing final block at %d entries", n)
		if err := s.Commit(b, uint32(n)); err != nil {
			return n, fmt.Errorf("ingest: final commit: %w", err)
		}
	}
	opts.logf("ingested %d entries", n)
	return n, nil
}

// BuildIndex reads every entry out of an opened store and feeds each
// language section, and each language/grammar sub-section, to sink as
// a separate Document. The whole body is not indexed alongside them;
// only a body with no language headings is indexed once, whole.
func BuildIndex(s *store.Store, sink searchindex.Sink) (int, error) {
	paths, err := s.Blocks()
	if err != nil {
		return 0, fmt.Errorf("ingest: build index: %w", err)
	}

	n := 0
	for _, path := range paths {
		b, err := s.ReadBlock(path)
		if err != nil {
			return n, fmt.Errorf("ingest: build index: %w", err)
		}
		for i := uint32(0); i < b.N(); i++ {
			e, err := b.Lookup(i)
			if err != nil {
				return n, fmt.Errorf("ingest: build index: %w", err)
			}
			if err := indexEntry(sink, e); err != nil {
				return n, fmt.Errorf("ingest: build index: %w", err)
			}
			n++
		}
	}
	return n, nil
}

func indexEntry(sink searchindex.Sink, e entry.Entry) error {
	title := string(e.Title)
	text := string(e.Body)
	refID := e.Ref.AsUint64()

	indexed := false
	for lang, langText := range section.Split(section.LanguageHeading, text) {
		indexed = true
		if err := sink.Index(searchindex.Document{Title: title, Text: langText, Ref: refID, Lang: lang}); err != nil {
			return err
		}
		for gram, gramText := range section.Split(section.GrammarHeading, langText) {
			if err := sink.Index(searchindex.Document{Title: title, Text: gramText, Ref: refID, Lang: lang, Gram: gram}); err != nil {
				return err
			}
		}
	}
	if !indexed {
		if err := sink.Index(searchindex.Document{Title: title, Text: text, Ref: refID}); err != nil {
			return err
		}
	}
	return nil
}

// Scan walks every committed block in an opened store concurrently,
// bounded by a gate of size concurrency, and calls visit once per
// entry. visit may be called from multiple goroutines at once and
// must synchronize any state it shares across calls. Scan replaces
// the original implementation's rayon-based parallel iteration over
// blocks.
func Scan(ctx context.Context, s *store.Store, concurrency int, visit func(ref.Ref, entry.Entry) error) (int, error) {
	paths, err := s.Blocks()
	if err != nil {
		return 0, fmt.Errorf("ingest: scan: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	gate := store.NewGate(concurrency)
	g, ctx := errgroup.WithContext(ctx)

	counts := make([]int, len(paths))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			gate.Start()
			defer gate.Done()

			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := s.ReadBlock(path)
			if err != nil {
				return fmt.Errorf("ingest: scan %s: %w", path, err)
			}
			for j := uint32(0); j < b.N(); j++ {
				e, err := b.Lookup(j)
				if err != nil {
					return fmt.Errorf("ingest: scan %s: %w", path, err)
				}
				if err := visit(e.Ref, e); err != nil {
					return fmt.Errorf("ingest: scan %s: %w", path, err)
				}
			}
			counts[i] = int(b.N())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}
