// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package encoder

import "sort"

const emptyString = ""

// Strings accumulates every key, value, username, and relation role
// referenced by a PrimitiveBlock's entities, counting how many times each
// occurs. The usage counts drive CalcTable's sort: the most frequently
// referenced strings land on the smallest indices, which keeps their
// varint-encoded references short.
type Strings struct {
	usage map[string]int
}

// NewStrings returns an empty string accumulator.
func NewStrings() *Strings {
	return &Strings{usage: make(map[string]int)}
}

// Add records one use of value. Index assignment is deferred to CalcTable,
// once every entity in the block has been scanned.
func (s *Strings) Add(value string) {
	s.usage[value]++
}

// Table is a finalized, sorted string table: index 0 is always the empty
// string, and the remaining entries are ordered by descending usage count
// (ties broken by byte order), matching the PrimitiveBlock.stringtable the
// PBF format expects.
type Table struct {
	index   map[string]int32
	strings []string
}

// CalcTable sorts the accumulated strings by (usage desc, bytes asc) and
// assigns final indices, with the empty string pinned to index 0
// regardless of whether any entity actually referenced it.
func (s *Strings) CalcTable() *Table {
	entries := make([]string, 0, len(s.usage))

	for k := range s.usage {
		if k != emptyString {
			entries = append(entries, k)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		ui, uj := s.usage[entries[i]], s.usage[entries[j]]
		if ui != uj {
			return ui > uj
		}

		return entries[i] < entries[j]
	})

	strings := make([]string, 0, len(entries)+1)
	strings = append(strings, emptyString)
	strings = append(strings, entries...)

	index := make(map[string]int32, len(strings))
	for i, v := range strings {
		index[v] = int32(i)
	}

	return &Table{index: index, strings: strings}
}

// IndexOf returns value's final index. value must have been added via
// Strings.Add before CalcTable was called; looking up anything else
// returns the empty string's index (0).
func (t *Table) IndexOf(value string) int32 {
	if idx, ok := t.index[value]; ok {
		return idx
	}

	return 0
}

// AsArray returns the table in final index order, the slice that becomes
// PrimitiveBlock.stringtable.s on the wire.
func (t *Table) AsArray() []string {
	return t.strings
}
