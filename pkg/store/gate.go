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

package store

// Gate bounds how many goroutines may be inside a section of code at
// once, the same arbitrary-limit idiom the teacher uses for its own
// StatBlobs fan-out (pkg/blobserver/diskpacked's statGate).
type Gate struct {
	c chan struct{}
}

// NewGate returns a Gate that allows at most n concurrent holders.
func NewGate(n int) *Gate {
	return &Gate{c: make(chan struct{}, n)}
}

// Start blocks until a slot is available.
func (g *Gate) Start() {
	g.c <- struct{}{}
}

// Done releases the slot acquired by Start.
func (g *Gate) Done() {
	<-g.c
}
