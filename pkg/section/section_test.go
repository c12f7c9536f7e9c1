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

package section

import (
	"strings"
	"testing"
)

func TestS5LanguageSplit(t *testing.T) {
	text := "==English==\nfoo\n===Noun===\nbar\n==French==\nbaz\n"
	got := Split(LanguageHeading, text)

	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2: %v", len(got), got)
	}
	eng, ok := got["english"]
	if !ok {
		t.Fatalf("missing english section: %v", got)
	}
	if !strings.Contains(eng, "foo") || !strings.Contains(eng, "===Noun===") || !strings.Contains(eng, "bar") {
		t.Fatalf("english section = %q, want it to contain foo, ===Noun===, bar", eng)
	}
	fr, ok := got["french"]
	if !ok {
		t.Fatalf("missing french section: %v", got)
	}
	if !strings.Contains(fr, "baz") {
		t.Fatalf("french section = %q, want it to contain baz", fr)
	}
}

func TestEmptyOnNoHeadings(t *testing.T) {
	got := Split(LanguageHeading, "just a body with no headings at all")
	if len(got) != 0 {
		t.Fatalf("got %v, want empty map", got)
	}
}

func TestNoMatchOnEmptyText(t *testing.T) {
	got := Split(LanguageHeading, "")
	if len(got) != 0 {
		t.Fatalf("got %v, want empty map", got)
	}
}

// TestProperty7Idempotence mirrors the property that re-splitting an
// already-extracted section at the same heading level yields nothing
// new: a section body has had its own heading line consumed by the
// first split, so no nested heading of the same level remains in it.
func TestProperty7Idempotence(t *testing.T) {
	text := "== A ==\nX\n== B ==\nY\n"
	first := Split(LanguageHeading, text)
	if len(first) != 2 {
		t.Fatalf("first split = %v, want 2 sections", first)
	}
	for name, body := range first {
		second := Split(LanguageHeading, body)
		if len(second) != 0 {
			t.Fatalf("re-splitting section %q body %q gave %v, want empty", name, body, second)
		}
	}
}

func TestGrammarNesting(t *testing.T) {
	text := "==English==\n===Noun===\na table\n===Verb===\nto table\n"
	langs := Split(LanguageHeading, text)
	english, ok := langs["english"]
	if !ok {
		t.Fatalf("missing english section: %v", langs)
	}
	grams := Split(GrammarHeading, english)
	if len(grams) != 2 {
		t.Fatalf("got %d grammar sections, want 2: %v", len(grams), grams)
	}
	if !strings.Contains(grams["noun"], "a table") {
		t.Fatalf("noun section = %q, want it to contain %q", grams["noun"], "a table")
	}
	if !strings.Contains(grams["verb"], "to table") {
		t.Fatalf("verb section = %q, want it to contain %q", grams["verb"], "to table")
	}
}

func TestDuplicateHeadingOverwrites(t *testing.T) {
	text := "==English==\nfirst\n==English==\nsecond\n"
	got := Split(LanguageHeading, text)
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1: %v", len(got), got)
	}
	if !strings.Contains(got["english"], "second") {
		t.Fatalf("english section = %q, want the later occurrence to win", got["english"])
	}
}
