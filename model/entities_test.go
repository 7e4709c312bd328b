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

func TestNodeAccessors(t *testing.T) {
	info := &model.Info{User: "alice"}
	n := model.Node{ID: 1, Tags: map[string]string{"k": "v"}, Info: info, Lat: 53.1, Lon: 10.2}

	assert.Equal(t, model.ID(1), n.GetID())
	assert.Equal(t, map[string]string{"k": "v"}, n.GetTags())
	assert.Same(t, info, n.GetInfo())

	ll := n.LatLng()
	assert.InDelta(t, 53.1, ll.Lat.Degrees(), 1e-9)
	assert.InDelta(t, 10.2, ll.Lng.Degrees(), 1e-9)
}

func TestWayAccessors(t *testing.T) {
	w := model.Way{ID: 10, Tags: map[string]string{"highway": "residential"}, NodeIDs: []model.ID{1, 2, 3}}

	assert.Equal(t, model.ID(10), w.GetID())
	assert.Equal(t, map[string]string{"highway": "residential"}, w.GetTags())
	assert.Nil(t, w.GetInfo())
	assert.Equal(t, []model.ID{1, 2, 3}, w.NodeIDs)
}

func TestRelationAccessors(t *testing.T) {
	r := model.Relation{
		ID: 20,
		Members: []model.Member{
			{ID: 1, Type: model.NODE, Role: "stop"},
			{ID: 10, Type: model.WAY, Role: ""},
		},
	}

	assert.Equal(t, model.ID(20), r.GetID())
	assert.Len(t, r.Members, 2)
	assert.Equal(t, model.NODE, r.Members[0].Type)
	assert.Equal(t, model.WAY, r.Members[1].Type)
}

func TestEntityInterfaceSatisfiedByPointers(t *testing.T) {
	var entities = []model.Entity{
		&model.Node{ID: 1},
		&model.Way{ID: 2},
		&model.Relation{ID: 3},
	}

	ids := make([]model.ID, len(entities))
	for i, e := range entities {
		ids[i] = e.GetID()
	}

	assert.Equal(t, []model.ID{1, 2, 3}, ids)
}
