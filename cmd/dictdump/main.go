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

// Command dictdump builds and queries a content-addressable block
// store and full-text index from an XML dump of titled documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"dictdump.dev/pkg/ingest"
	"dictdump.dev/pkg/ref"
	"dictdump.dev/pkg/searchindex"
	"dictdump.dev/pkg/store"
)

var (
	storeDir = flag.String("store", "store", "block store directory")
	indexDir = flag.String("index", "index.kv", "search index database file")
	verbose  = flag.Bool("verbose", false, "extra debug logging")
)

type commandRunner func(args []string) error

var commands = make(map[string]commandRunner)

func registerCommand(name string, run commandRunner) {
	commands[name] = run
}

func init() {
	registerCommand("store make", runStoreMake)
	registerCommand("store get", runStoreGet)
	registerCommand("index make", runIndexMake)
	registerCommand("index query", runIndexQuery)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: dictdump [flags] <command> [args]\n\ncommands:\n")
	fmt.Fprintf(os.Stderr, "  store make <dump.xml>\n  store get <ref>\n  index make\n  index query <terms...>\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	name := args[0] + " " + args[1]
	run, ok := commands[name]
	if !ok {
		usage()
		os.Exit(2)
	}

	if err := run(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "dictdump: %v\n", err)
		os.Exit(1)
	}
}

func logger() *log.Logger {
	if !*verbose {
		return nil
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

func runStoreMake(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("store make: want exactly one dump path")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	opts := ingest.DefaultOptions(*storeDir)
	opts.Log = logger()
	n, err := ingest.BuildStore(context.Background(), f, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%d entries ingested\n", n)
	return nil
}

func runStoreGet(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("store get: want exactly one ref")
	}
	r, err := ref.Parse(args[0])
	if err != nil {
		return err
	}

	s := store.New(*storeDir, 0)
	if err := s.Open(); err != nil {
		return err
	}
	e, err := s.ReadEntry(r)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n\n%s\n", e.Title, e.Body)
	return nil
}

func runIndexMake(args []string) error {
	s := store.New(*storeDir, 0)
	if err := s.Open(); err != nil {
		return err
	}
	idx, err := searchindex.OpenKVIndex(*indexDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	n, err := ingest.BuildIndex(s, idx)
	if err != nil {
		return err
	}
	fmt.Printf("%d documents indexed\n", n)
	return nil
}

func runIndexQuery(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("index query: want at least one term")
	}

	s := store.New(*storeDir, 0)
	if err := s.Open(); err != nil {
		return err
	}
	idx, err := searchindex.OpenKVIndex(*indexDir)
	if err != nil {
		return err
	}
	defer idx.Close()

	hits, err := idx.Search(strings.Join(args, " "), 20)
	if err != nil {
		return err
	}
	for _, h := range hits {
		r := ref.FromUint64(h.Ref)
		e, err := s.ReadEntry(r)
		if err != nil {
			fmt.Printf("score=%.0f [%s] (%s/%s) <error reading %s: %v>\n", h.Score, r, h.Lang, h.Gram, r, err)
			continue
		}
		fmt.Printf("score=%.0f [%s] (%s/%s) %s\n", h.Score, r, h.Lang, h.Gram, e.Title)
	}
	return nil
}
