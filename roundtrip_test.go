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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbf "m4o.io/pbf/v2"
	"m4o.io/pbf/v2/model"
)

func sampleInfo() *model.Info {
	return &model.Info{
		Version:   1,
		UID:       42,
		Timestamp: time.Date(2022, 2, 13, 20, 40, 22, 0, time.UTC),
		Changeset: 1001,
		User:      "tester",
		Visible:   true,
	}
}

func sampleEntities() []model.Entity {
	return []model.Entity{
		&model.Node{
			ID:   1,
			Tags: map[string]string{"amenity": "cafe"},
			Info: sampleInfo(),
			Lat:  model.Degrees(53.1),
			Lon:  model.Degrees(10.2),
		},
		&model.Node{
			ID:   2,
			Tags: map[string]string{"amenity": "bench"},
			Info: sampleInfo(),
			Lat:  model.Degrees(53.2),
			Lon:  model.Degrees(10.3),
		},
		&model.Way{
			ID:      10,
			Tags:    map[string]string{"highway": "residential"},
			Info:    sampleInfo(),
			NodeIDs: []model.ID{1, 2},
		},
		&model.Relation{
			ID:   20,
			Tags: map[string]string{"type": "route"},
			Info: sampleInfo(),
			Members: []model.Member{
				{ID: 1, Type: model.NODE, Role: "stop"},
				{ID: 10, Type: model.WAY, Role: ""},
			},
		},
	}
}

func encodeSample(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf,
		pbf.WithStorePath(t.TempDir()),
		pbf.WithWritingProgram("pbf-test"),
		pbf.WithSource("unit-test"),
	)
	require.NoError(t, err)

	for _, e := range sampleEntities() {
		require.NoError(t, w.Encode(e))
	}

	w.Close()

	return buf.Bytes()
}

func TestRoundTripNodesWaysRelations(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "pbf-test", r.Header.WritingProgram)
	assert.Equal(t, "unit-test", r.Header.Source)
	require.NotNil(t, r.Header.BoundingBox)
	assert.True(t, r.Header.BoundingBox.Contains(model.Degrees(53.1), model.Degrees(10.2)))

	got := make(map[model.ID]model.Entity)

	err = r.ForEach(func(e model.Entity) error {
		got[e.GetID()] = e

		return nil
	})
	require.NoError(t, err)

	want := sampleEntities()
	require.Equal(t, len(want), len(got))

	// Blocks of different kinds may be written in any order, so match
	// entities up by id rather than by file position.
	for _, w := range want {
		g, ok := got[w.GetID()]
		require.True(t, ok, "missing entity %d", w.GetID())
		assert.IsType(t, w, g)
		assert.Equal(t, w.GetTags(), g.GetTags())
	}
}

func TestRoundTripStopsOnCallbackError(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	sentinel := assert.AnError

	count := 0
	err = r.ForEach(func(model.Entity) error {
		count++

		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, count)
}
