// Copyright 2017-25 the original author or authors.
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

package model

import "golang.org/x/exp/constraints"

// DeltaEncoder turns a stream of absolute int64 values (ids, coordinates,
// timestamps) into the stream of deltas the dense/packed PBF encodings
// store on the wire.
type DeltaEncoder struct {
	prev int64
}

// Encode returns the delta between next and the previously encoded value,
// then remembers next as the new baseline.
func (e *DeltaEncoder) Encode(next int64) int64 {
	delta := next - e.prev
	e.prev = next

	return delta
}

// DeltaDecoder is the inverse of DeltaEncoder: it accumulates a stream of
// deltas back into absolute values.
type DeltaDecoder struct {
	prev int64
}

// Decode accumulates delta onto the running total and returns it.
func (d *DeltaDecoder) Decode(delta int64) int64 {
	d.prev += delta

	return d.prev
}

// CalcDeltas returns the successive differences of values, the batch form
// of DeltaEncoder used when an entire column is already in memory (dense
// node ids, lat/lon, way refs).
func CalcDeltas[T constraints.Integer | constraints.Float](values []T) []T {
	deltas := make([]T, len(values))

	var prev T

	for i, v := range values {
		deltas[i] = v - prev
		prev = v
	}

	return deltas
}
