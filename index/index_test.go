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

package index_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbf "m4o.io/pbf/v2"
	"m4o.io/pbf/v2/index"
	"m4o.io/pbf/v2/model"
)

type sectionReader struct {
	data []byte
}

func (s *sectionReader) ReadAt(p []byte, off int64) (int, error) {
	return bytes.NewReader(s.data).ReadAt(p, off)
}

func buildSample(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := pbf.NewWriter(&buf, pbf.WithStorePath(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, w.Encode(&model.Node{ID: 1, Lat: 1, Lon: 1}))
	require.NoError(t, w.Encode(&model.Node{ID: 2, Lat: 2, Lon: 2}))
	require.NoError(t, w.Encode(&model.Way{ID: 100, NodeIDs: []model.ID{1, 2}}))

	w.Close()

	return buf.Bytes()
}

func TestBuildAndLookup(t *testing.T) {
	data := buildSample(t)

	idx, err := index.Build(&sectionReader{data: data}, int64(len(data)))
	require.NoError(t, err)
	require.NotEmpty(t, idx.Blobs)

	offsets, err := idx.Lookup(model.NODE, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, offsets)

	offsets, err = idx.Lookup(model.WAY, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, offsets)

	_, err = idx.Lookup(model.RELATION, 999)
	assert.ErrorIs(t, err, index.ErrNotFound)
}

func TestIndexWriteReadRoundTrip(t *testing.T) {
	data := buildSample(t)

	idx, err := index.Build(&sectionReader{data: data}, int64(len(data)))
	require.NoError(t, err)

	var buf bytes.Buffer

	_, err = idx.WriteTo(&buf)
	require.NoError(t, err)

	var restored index.Index

	_, err = restored.ReadFrom(&buf)
	require.NoError(t, err)

	assert.Equal(t, idx.Blobs, restored.Blobs)
}

// TestLookupOffsetSeeksToEntity feeds a looked-up offset back into
// Reader.Seek and confirms the sought-for entity decodes from there.
func TestLookupOffsetSeeksToEntity(t *testing.T) {
	data := buildSample(t)

	idx, err := index.Build(&sectionReader{data: data}, int64(len(data)))
	require.NoError(t, err)

	offsets, err := idx.Lookup(model.WAY, 100)
	require.NoError(t, err)
	require.NotEmpty(t, offsets)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.NoError(t, r.Seek(offsets[0]))

	found := false

	err = r.ForEach(func(e model.Entity) error {
		if w, ok := e.(*model.Way); ok && w.ID == 100 {
			found = true
		}

		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)
}
