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

// Package searchindex defines the contract between the ingest
// pipeline and whatever full-text engine sits behind it. The engine
// itself is an external collaborator; this package only specifies the
// document shape going in and the hit shape coming out, plus one
// concrete, minimal adapter (kvindex.go) to exercise the contract
// end-to-end.
package searchindex

// Document is one indexable projection of a stored entry: either the
// whole body (Lang and Gram empty), a per-language section, or a
// per-language-and-part-of-speech section.
type Document struct {
	Title string
	Text  string
	Ref   uint64
	Lang  string
	Gram  string
}

// Hit is a ranked search result. Ref identifies the stored entry to
// dereference through store.Store.ReadEntry; Lang and Gram say which
// projection of that entry matched.
type Hit struct {
	Ref   uint64
	Lang  string
	Gram  string
	Score float64
}

// Sink accepts documents for indexing. Index is called once per
// Document produced by the ingest pipeline's section splitting.
type Sink interface {
	Index(doc Document) error
}

// Searcher looks up documents by a free-text query, returning at most
// limit hits. Ranking quality is out of scope: an adapter only needs
// to return every document that matches and something monotonic for
// Score.
type Searcher interface {
	Search(query string, limit int) ([]Hit, error)
}
