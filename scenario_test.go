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

// TestWayWithInlineLocationsRoundTrips checks that a way with tags and
// inline LocationsOnWays coordinates round-trips with the same id, refs,
// locations, and tags.
func TestWayWithInlineLocationsRoundTrips(t *testing.T) {
	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf, pbf.WithStorePath(t.TempDir()))
	require.NoError(t, err)

	way := &model.Way{
		ID:      42,
		Tags:    map[string]string{"abc": "def"},
		NodeIDs: []model.ID{1, 3, 5},
		Locations: []model.LatLng{
			{Lat: model.Nano(100).Degrees(), Lon: model.Nano(400).Degrees()},
			{Lat: model.Nano(200).Degrees(), Lon: model.Nano(500).Degrees()},
			{Lat: model.Nano(300).Degrees(), Lon: model.Nano(600).Degrees()},
		},
	}

	require.NoError(t, w.Encode(way))
	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var got *model.Way

	err = r.ForEach(func(e model.Entity) error {
		got = e.(*model.Way)

		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, model.ID(42), got.ID)
	assert.Equal(t, []model.ID{1, 3, 5}, got.NodeIDs)
	assert.Equal(t, map[string]string{"abc": "def"}, got.Tags)
	require.Len(t, got.Locations, 3)

	wantNano := [][2]model.Nano{{100, 400}, {200, 500}, {300, 600}}
	for i, loc := range got.Locations {
		assert.Equal(t, wantNano[i][0], loc.Lat.Nano())
		assert.Equal(t, wantNano[i][1], loc.Lon.Nano())
	}
}

// TestNodeCoordinateExactnessAtGranularity checks that a tagged node
// round-trips with exact coordinate equality when the granularity (100)
// evenly divides the input nanodegrees.
func TestNodeCoordinateExactnessAtGranularity(t *testing.T) {
	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf, pbf.WithStorePath(t.TempDir()))
	require.NoError(t, err)

	node := &model.Node{
		ID:   42,
		Tags: map[string]string{"abc": "def"},
		Lat:  model.Nano(100200).Degrees(),
		Lon:  model.Nano(300400).Degrees(),
	}

	require.NoError(t, w.Encode(node))
	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var got *model.Node

	err = r.ForEach(func(e model.Entity) error {
		got = e.(*model.Node)

		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, model.ID(42), got.ID)
	assert.Equal(t, map[string]string{"abc": "def"}, got.Tags)
	assert.Equal(t, model.Nano(100200), got.Lat.Nano())
	assert.Equal(t, model.Nano(300400), got.Lon.Nano())
}

// TestRelationWithWayMemberRoundTrips checks that a relation with a single
// WAY member and a role round-trips its member id, type, role, and tags.
func TestRelationWithWayMemberRoundTrips(t *testing.T) {
	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf, pbf.WithStorePath(t.TempDir()))
	require.NoError(t, err)

	rel := &model.Relation{
		ID:   120,
		Tags: map[string]string{"rel_key": "rel_value"},
		Members: []model.Member{
			{ID: 107, Type: model.WAY, Role: "test_role"},
		},
	}

	require.NoError(t, w.Encode(rel))
	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var got *model.Relation

	err = r.ForEach(func(e model.Entity) error {
		got = e.(*model.Relation)

		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, model.ID(120), got.ID)
	assert.Equal(t, map[string]string{"rel_key": "rel_value"}, got.Tags)
	require.Len(t, got.Members, 1)
	assert.Equal(t, model.ID(107), got.Members[0].ID)
	assert.Equal(t, model.WAY, got.Members[0].Type)
	assert.Equal(t, "test_role", got.Members[0].Role)
}

// TestDenseNodesVisibilityRoundTrips checks that historical (deleted,
// visible=false) nodes survive the DenseInfo write/read cycle alongside
// their version numbers.
func TestDenseNodesVisibilityRoundTrips(t *testing.T) {
	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf,
		pbf.WithStorePath(t.TempDir()),
		pbf.WithRequiredFeatures("OsmSchema-V0.6", "DenseNodes", "HistoricalInformation"),
	)
	require.NoError(t, err)

	nodes := []*model.Node{
		{ID: 1, Info: &model.Info{Version: 2, User: "mapper", Visible: false}},
		{ID: 2, Info: &model.Info{Version: 1, User: "mapper", Visible: true}},
	}

	for _, n := range nodes {
		require.NoError(t, w.Encode(n))
	}

	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Contains(t, r.Header.RequiredFeatures, "HistoricalInformation")

	var got []*model.Node

	err = r.ForEach(func(e model.Entity) error {
		got = append(got, e.(*model.Node))

		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, n := range nodes {
		require.NotNil(t, got[i].Info)
		assert.Equal(t, n.Info.Version, got[i].Info.Version)
		assert.Equal(t, n.Info.Visible, got[i].Info.Visible)
		assert.Equal(t, n.Info.User, got[i].Info.User)
	}
}

// TestDenseNodesLargeCoordinatesRoundTrip checks that dense nodes with
// large nanodegree coordinates round-trip through the DenseNodes path
// every Node write uses.
func TestDenseNodesLargeCoordinatesRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf, pbf.WithStorePath(t.TempDir()))
	require.NoError(t, err)

	nodes := []*model.Node{
		{ID: 1, Lat: model.Nano(214748364700).Degrees(), Lon: model.Nano(214748364700).Degrees()},
		{ID: 2, Lat: model.Nano(1000000000).Degrees(), Lon: model.Nano(1000000000).Degrees()},
	}

	for _, n := range nodes {
		require.NoError(t, w.Encode(n))
	}

	w.Close()

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var got []*model.Node

	err = r.ForEach(func(e model.Entity) error {
		got = append(got, e.(*model.Node))

		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i, n := range nodes {
		assert.Equal(t, n.ID, got[i].ID)
		assert.Equal(t, n.Lat.Nano(), got[i].Lat.Nano())
		assert.Equal(t, n.Lon.Nano(), got[i].Lon.Nano())
	}
}
