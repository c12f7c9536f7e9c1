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

// Package xmlpage recognizes <page><title>...</title><text>...</text>
// </page> records out of a SAX-style stream of XML tokens, ignoring
// every other element the dump format carries (revisions, contributor
// blocks, namespaces, and so on).
package xmlpage

import (
	"encoding/xml"
	"io"
	"strings"
)

type state int

const (
	stateNone state = iota
	stateOpen
	stateTitle
	stateTitled
	stateText
	stateTexted
)

// Page is a completed title/body pair, emitted the instant a </text>
// close tag is seen.
type Page struct {
	Title string
	Body  string
}

// Machine is the recognizer's state. The zero value is the initial,
// out-of-page state, the same Machine that New returns.
type Machine struct {
	state      state
	title      string
	titleParts []string
	textParts  []string
}

// New returns a Machine in its initial, out-of-page state.
func New() Machine {
	return Machine{state: stateNone}
}

// Step feeds one XML token to the machine and returns its next state.
// When ok is true, page holds a completed record. A </page> close tag
// resets the machine to its initial state regardless of how far it
// had gotten, and a single step past Texted always falls back to
// None, so malformed or partial pages (a <page> with no <text>, say)
// never wedge the recognizer.
func (m Machine) Step(tok xml.Token) (next Machine, page Page, ok bool) {
	if m.state == stateTexted {
		return Machine{state: stateNone}, Page{}, false
	}
	if end, isEnd := tok.(xml.EndElement); isEnd && end.Name.Local == "page" {
		return Machine{state: stateNone}, Page{}, false
	}

	switch m.state {
	case stateNone:
		if start, isStart := tok.(xml.StartElement); isStart && start.Name.Local == "page" {
			return Machine{state: stateOpen}, Page{}, false
		}

	case stateOpen:
		if start, isStart := tok.(xml.StartElement); isStart && start.Name.Local == "title" {
			return Machine{state: stateTitle}, Page{}, false
		}

	case stateTitle:
		switch t := tok.(type) {
		case xml.CharData:
			parts := append(append([]string(nil), m.titleParts...), string(t))
			return Machine{state: stateTitle, titleParts: parts}, Page{}, false
		case xml.EndElement:
			if t.Name.Local == "title" {
				return Machine{state: stateTitled, title: strings.Join(m.titleParts, " ")}, Page{}, false
			}
		}

	case stateTitled:
		if start, isStart := tok.(xml.StartElement); isStart && start.Name.Local == "text" {
			return Machine{state: stateText, title: m.title}, Page{}, false
		}

	case stateText:
		switch t := tok.(type) {
		case xml.CharData:
			parts := append(append([]string(nil), m.textParts...), string(t))
			return Machine{state: stateText, title: m.title, textParts: parts}, Page{}, false
		case xml.EndElement:
			if t.Name.Local == "text" {
				body := strings.Join(m.textParts, " ")
				return Machine{state: stateTexted, title: m.title}, Page{Title: m.title, Body: body}, true
			}
		}
	}

	return m, Page{}, false
}

// Walk decodes every token from r and calls emit for each completed
// page, in document order. It stops at the first error from the
// decoder or from emit.
func Walk(r io.Reader, emit func(Page) error) error {
	dec := xml.NewDecoder(r)
	m := New()
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var page Page
		var ok bool
		m, page, ok = m.Step(xml.CopyToken(tok))
		if ok {
			if err := emit(page); err != nil {
				return err
			}
		}
	}
}
