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

// Package storeerr defines the sentinel errors shared by the block
// store packages, so callers can use errors.Is against a single set
// of values regardless of which package actually returned the error.
package storeerr

import "errors"

var (
	// ErrNoSuchEntry is returned by Block.Lookup when the requested
	// entry index is out of range.
	ErrNoSuchEntry = errors.New("dictdump: no such entry")

	// ErrBadFilename is returned when a block file's name stem is not
	// a non-negative decimal integer.
	ErrBadFilename = errors.New("dictdump: bad block filename")

	// ErrNoDictionary is returned by Open when the store directory has
	// no zst.dictionary file.
	ErrNoDictionary = errors.New("dictdump: no dictionary")

	// ErrStoreNotOpen is returned when a read is attempted before Open
	// has loaded the decoder dictionary.
	ErrStoreNotOpen = errors.New("dictdump: store not open")

	// ErrTrainFailed is returned when dictionary training fails.
	ErrTrainFailed = errors.New("dictdump: dictionary training failed")

	// ErrCorruptBlock is returned when a block's header or entry bytes
	// fail to parse.
	ErrCorruptBlock = errors.New("dictdump: corrupt block")

	// ErrBadRef is returned when a textual Ref fails to parse.
	ErrBadRef = errors.New("dictdump: bad ref")
)
