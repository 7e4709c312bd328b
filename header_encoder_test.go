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

package pbf_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbf "m4o.io/pbf/v2"
	"m4o.io/pbf/v2/model"
)

func TestHeaderEncoderEmptyHeader(t *testing.T) {
	bb, err := pbf.NewHeaderEncoder().Finalize()
	require.NoError(t, err)
	assert.NotEmpty(t, bb)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(bb))
	require.NoError(t, err)

	assert.Empty(t, r.Header.RequiredFeatures)
	assert.Empty(t, r.Header.OptionalFeatures)
	assert.Nil(t, r.Header.BoundingBox)
}

func TestHeaderEncoderNanoBbox(t *testing.T) {
	bbox := model.BoundingBox{
		Left:   model.Nano(-10).Degrees(),
		Right:  model.Nano(20).Degrees(),
		Top:    model.Nano(30).Degrees(),
		Bottom: model.Nano(-40).Degrees(),
	}

	bb, err := pbf.NewHeaderEncoder().
		SetRequiredFeatures("FOO", "BAR").
		SetBbox(bbox).
		Finalize()
	require.NoError(t, err)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(bb))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"FOO", "BAR"}, r.Header.RequiredFeatures)

	got := r.Header.BoundingBox
	require.NotNil(t, got)
	assert.Equal(t, model.Nano(-10), got.Left.Nano())
	assert.Equal(t, model.Nano(20), got.Right.Nano())
	assert.Equal(t, model.Nano(30), got.Top.Nano())
	assert.Equal(t, model.Nano(-40), got.Bottom.Nano())
}

func TestHeaderEncoderFinalize(t *testing.T) {
	bbox := model.BoundingBox{Top: 1, Left: 2, Bottom: 3, Right: 4}

	bb, err := pbf.NewHeaderEncoder().
		SetRequiredFeatures("OsmSchema-V0.6", "DenseNodes").
		SetOptionalFeatures("Sort.Type_then_ID").
		SetBbox(bbox).
		SetWritingProgram("pbf-test").
		SetSource("unit-test").
		Finalize()
	require.NoError(t, err)
	assert.NotEmpty(t, bb)

	// Finalize's bytes are the same framed OSMHeader blob NewReader expects
	// at the front of a file, so a bare Reader can decode it back.
	r, err := pbf.NewReader(context.Background(), bytes.NewReader(bb))
	require.NoError(t, err)

	assert.Equal(t, []string{"OsmSchema-V0.6", "DenseNodes"}, r.Header.RequiredFeatures)
	assert.Equal(t, []string{"Sort.Type_then_ID"}, r.Header.OptionalFeatures)
	assert.Equal(t, &bbox, r.Header.BoundingBox)
	assert.Equal(t, "pbf-test", r.Header.WritingProgram)
	assert.Equal(t, "unit-test", r.Header.Source)
}
