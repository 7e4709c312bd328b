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
	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/model"
)

func TestParMapReduceCountsEntities(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data), pbf.WithNCpus(4))
	require.NoError(t, err)

	count, err := pbf.ParMapReduce(context.Background(), r,
		func(model.Entity) int { return 1 },
		0,
		func(a, b int) int { return a + b },
	)
	require.NoError(t, err)
	assert.Equal(t, len(sampleEntities()), count)
}

func TestParMapFoldReduceCollectsIDs(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data), pbf.WithNCpus(2))
	require.NoError(t, err)

	ids, err := pbf.ParMapFoldReduce(context.Background(), r,
		func(e model.Entity) model.ID { return e.GetID() },
		func(acc []model.ID, id model.ID) []model.ID { return append(acc, id) },
		[]model.ID(nil),
		func(a, b []model.ID) []model.ID { return append(a, b...) },
	)
	require.NoError(t, err)
	assert.Len(t, ids, len(sampleEntities()))
}

// TestParMapReduceTruncatedFileFails tears the last blob frame and checks
// that the parallel driver reports the truncation rather than returning a
// silently short result.
func TestParMapReduceTruncatedFileFails(t *testing.T) {
	data := encodeSample(t)

	r, err := pbf.NewReader(context.Background(), bytes.NewReader(data[:len(data)-3]), pbf.WithNCpus(2))
	require.NoError(t, err)

	_, err = pbf.ParMapReduce(context.Background(), r,
		func(model.Entity) int { return 1 },
		0,
		func(a, b int) int { return a + b },
	)
	assert.ErrorIs(t, err, errs.UnexpectedEOF)
}
