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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/pbf/v2/model"
)

func TestCalcDeltasInt64(t *testing.T) {
	nodes := []model.ID{1, 1, 2, 3, 5, 7, 12}
	deltas := []model.ID{1, 0, 1, 1, 2, 2, 5}

	assert.Equal(t, deltas, model.CalcDeltas(nodes))
}

func TestCalcDeltasFloat(t *testing.T) {
	nodes := []float32{1, 1, 2, 3, 5, 7, 12}
	deltas := []float32{1, 0, 1, 1, 2, 2, 5}

	assert.Equal(t, deltas, model.CalcDeltas(nodes))
}

func TestDeltaEncoderDecoderRoundTrip(t *testing.T) {
	values := []int64{7, 7, 19, 3, -100, -100, 42}

	var enc model.DeltaEncoder

	deltas := make([]int64, len(values))
	for i, v := range values {
		deltas[i] = enc.Encode(v)
	}

	assert.Equal(t, model.CalcDeltas(values), deltas)

	var dec model.DeltaDecoder

	restored := make([]int64, len(deltas))
	for i, d := range deltas {
		restored[i] = dec.Decode(d)
	}

	assert.Equal(t, values, restored)
}

func TestDeltaEncoderZeroValue(t *testing.T) {
	var enc model.DeltaEncoder
	assert.Equal(t, int64(5), enc.Encode(5))
	assert.Equal(t, int64(-2), enc.Encode(3))
}
