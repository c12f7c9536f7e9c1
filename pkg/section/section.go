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

// Package section splits an entry body into named substrings delimited
// by heading lines at a given nesting depth ("==Name==" for languages,
// "===Name===" for grammatical parts), the projection the search index
// is built from.
package section

import (
	"regexp"
	"strings"
)

// LanguageHeading matches a top-level "==Name==" heading line.
var LanguageHeading = regexp.MustCompile(`(?m)^\s*==([\w\s]+)==\s*$`)

// GrammarHeading matches a second-level "===Name===" heading line
// nested under a language section.
var GrammarHeading = regexp.MustCompile(`(?m)^\s*===([\w\s]+)===\s*$`)

type match struct {
	name  string
	start int // rune index of the end of the whole heading match
	end   int // rune index of the start of the whole heading match
}

// Split partitions text into a mapping from lowercased heading name to
// section body, using rx to find heading lines. When the same name
// appears more than once, the later section overwrites the earlier
// one. An empty map is returned when rx matches nothing.
//
// Section boundaries are char-indexed, not byte-indexed: a section
// runs from the end of its own heading match to the start of the next
// one, or to the end of the text for the last section.
func Split(rx *regexp.Regexp, text string) map[string]string {
	runes := []rune(text)
	byteToRune := make([]int, len(text)+1)
	n := 0
	for i := range text {
		byteToRune[i] = n
		n++
	}
	byteToRune[len(text)] = n

	idxs := rx.FindAllStringSubmatchIndex(text, -1)
	if len(idxs) == 0 {
		return map[string]string{}
	}

	matches := make([]match, len(idxs))
	for i, m := range idxs {
		wholeStart, wholeEnd := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		matches[i] = match{
			name:  strings.ToLower(text[nameStart:nameEnd]),
			start: byteToRune[wholeEnd],
			end:   byteToRune[wholeStart],
		}
	}

	out := make(map[string]string, len(matches))
	for i, m := range matches {
		start := m.start
		var end int
		if i+1 < len(matches) {
			end = matches[i+1].end
		} else {
			end = len(runes)
		}
		if end < start {
			end = start
		}

		body := strings.TrimSpace(string(runes[start:end]))
		out[m.name] = body
	}
	return out
}
