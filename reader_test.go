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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pbf "m4o.io/pbf/v2"
	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/model"
)

func writeSampleFile(t *testing.T) string {
	t.Helper()

	data := encodeSample(t)
	path := filepath.Join(t.TempDir(), "sample.osm.pbf")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path
}

func TestOpenReadsEntities(t *testing.T) {
	path := writeSampleFile(t)

	r, err := pbf.Open(path)
	require.NoError(t, err)

	defer func() { require.NoError(t, r.Close()) }()

	var n int

	err = r.ForEach(func(model.Entity) error {
		n++

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(sampleEntities()), n)
}

func TestOpenMmapReadsEntities(t *testing.T) {
	path := writeSampleFile(t)

	r, err := pbf.OpenMmap(path)
	require.NoError(t, err)

	defer func() { require.NoError(t, r.Close()) }()

	var n int

	err = r.ForEach(func(model.Entity) error {
		n++

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, len(sampleEntities()), n)
}

func TestOpenMissingFile(t *testing.T) {
	_, err := pbf.Open(filepath.Join(t.TempDir(), "does-not-exist.osm.pbf"))
	assert.ErrorIs(t, err, errs.Io)
}

// TestTruncatedFileNeverSilentlySucceeds truncates the sample file at a
// sweep of byte counts: every cut must either fail outright or stop
// cleanly at a frame boundary with no more entities than the full file
// holds, never a silent partial success past a torn frame.
func TestTruncatedFileNeverSilentlySucceeds(t *testing.T) {
	data := encodeSample(t)
	full := len(sampleEntities())

	for cut := 0; cut < len(data); cut += 7 {
		r, err := pbf.NewReader(context.Background(), bytes.NewReader(data[:cut]))
		if err != nil {
			continue // truncated within the header blob, reported at open
		}

		var n int

		err = r.ForEach(func(model.Entity) error {
			n++

			return nil
		})

		if err != nil {
			assert.ErrorIs(t, err, errs.UnexpectedEOF, "cut at %d", cut)
		} else {
			assert.LessOrEqual(t, n, full, "cut at %d", cut)
		}
	}
}

func TestSeekRestartsIteration(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	count := func() int {
		var n int

		require.NoError(t, r.ForEach(func(model.Entity) error {
			n++

			return nil
		}))

		return n
	}

	first := count()
	assert.Equal(t, len(sampleEntities()), first)

	offset, err := r.NextOffset()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), offset)

	// rewinding to 0 replays the header blob, which the entity iteration
	// skips, followed by every data blob.
	require.NoError(t, r.Seek(0))
	assert.Equal(t, first, count())
}
