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

func TestBlockEncoderFinalizeEmptyIsNil(t *testing.T) {
	e := pbf.NewBlockEncoder()

	bb, err := e.Finalize()
	require.NoError(t, err)
	assert.Nil(t, bb)
}

func TestBlockEncoderNodesProducesBlob(t *testing.T) {
	e := pbf.NewBlockEncoder()

	require.NoError(t, e.AddNode(&model.Node{ID: 1, Lat: 1, Lon: 1}))
	require.NoError(t, e.AddNode(&model.Node{ID: 2, Lat: 2, Lon: 2}))

	bb, err := e.Finalize()
	require.NoError(t, err)
	assert.NotEmpty(t, bb)

	// a fresh Finalize after a successful one starts a new, empty block.
	bb, err = e.Finalize()
	require.NoError(t, err)
	assert.Nil(t, bb)
}

func TestBlockEncoderAllowsInterleavedKinds(t *testing.T) {
	e := pbf.NewBlockEncoder()

	require.NoError(t, e.AddNode(&model.Node{ID: 1, Lat: 1, Lon: 1}))
	require.NoError(t, e.AddWay(&model.Way{ID: 100, NodeIDs: []model.ID{1}}))
	require.NoError(t, e.AddRelation(&model.Relation{ID: 200, Members: []model.Member{{ID: 1, Type: model.NODE}}}))
	require.NoError(t, e.AddNode(&model.Node{ID: 2, Lat: 2, Lon: 2}))

	bb, err := e.Finalize()
	require.NoError(t, err)
	assert.NotEmpty(t, bb)

	// a fresh Finalize after a successful one starts a new, empty block,
	// regardless of how many different entity kinds were added before it.
	bb, err = e.Finalize()
	require.NoError(t, err)
	assert.Nil(t, bb)
}

// TestHeaderAndBlockEncodersComposeAFile concatenates HeaderEncoder and
// BlockEncoder output and checks the result is a readable PBF file.
func TestHeaderAndBlockEncodersComposeAFile(t *testing.T) {
	hb, err := pbf.NewHeaderEncoder().
		SetRequiredFeatures("OsmSchema-V0.6", "DenseNodes").
		Finalize()
	require.NoError(t, err)

	e := pbf.NewBlockEncoder()
	require.NoError(t, e.AddNode(&model.Node{ID: 1, Lat: 1, Lon: 1}))
	require.NoError(t, e.AddWay(&model.Way{ID: 100, NodeIDs: []model.ID{1}}))

	bb, err := e.Finalize()
	require.NoError(t, err)

	var file bytes.Buffer

	file.Write(hb)
	file.Write(bb)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(file.Bytes()))
	require.NoError(t, err)

	var ids []model.ID

	require.NoError(t, r.ForEach(func(e model.Entity) error {
		ids = append(ids, e.GetID())

		return nil
	}))
	assert.Equal(t, []model.ID{1, 100}, ids)
}

func TestBlockEncoderGroupSizeOption(t *testing.T) {
	e := pbf.NewBlockEncoder(pbf.WithMaxGroupSize(1))

	require.NoError(t, e.AddNode(&model.Node{ID: 1, Lat: 1, Lon: 1}))
	require.NoError(t, e.AddNode(&model.Node{ID: 2, Lat: 2, Lon: 2}))

	bb, err := e.Finalize()
	require.NoError(t, err)
	assert.NotEmpty(t, bb)
}
