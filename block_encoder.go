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

package pbf

import (
	"bytes"
	"fmt"

	"github.com/destel/rill"

	"m4o.io/pbf/v2/internal/encoder"
	"m4o.io/pbf/v2/model"
)

// blockEncoderOptions provides optional configuration parameters for
// BlockEncoder construction.
type blockEncoderOptions struct {
	compression     encoder.BlobCompression
	maxGroupSize    int
	granularity     int32
	dateGranularity int32
	latOffset       int64
	lonOffset       int64
}

// BlockEncoderOption configures how we set up a BlockEncoder.
type BlockEncoderOption func(*blockEncoderOptions)

// WithBlockCompression specifies the compression algorithm a BlockEncoder
// uses when it packs a finished block. The default is RAW; pass ZLIB to
// match what osmosis and osmium emit.
func WithBlockCompression(compression encoder.BlobCompression) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.compression = compression
	}
}

// WithMaxGroupSize caps how many entities of a given kind a BlockEncoder
// packs into a single PrimitiveGroup before starting another one. The
// default, 8000, matches the limit osmosis imposes when writing PBF.
func WithMaxGroupSize(n int) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.maxGroupSize = n
	}
}

// WithGranularity sets the granularity, in nanodegrees, a BlockEncoder
// quantizes coordinates to. The default is 100.
func WithGranularity(granularity int32) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.granularity = granularity
	}
}

// WithDateGranularity sets the granularity, in milliseconds, a BlockEncoder
// quantizes timestamps to. The default is 1000.
func WithDateGranularity(granularity int32) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.dateGranularity = granularity
	}
}

// WithLatOffset sets the latitude offset, in nanodegrees, a BlockEncoder
// applies before quantizing a coordinate. The default is 0.
func WithLatOffset(offset int64) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.latOffset = offset
	}
}

// WithLonOffset sets the longitude offset, in nanodegrees, a BlockEncoder
// applies before quantizing a coordinate. The default is 0.
func WithLonOffset(offset int64) BlockEncoderOption {
	return func(o *blockEncoderOptions) {
		o.lonOffset = offset
	}
}

var defaultBlockEncoderConfig = blockEncoderOptions{
	compression:     encoder.RAW,
	maxGroupSize:    encoder.EntityLimit,
	granularity:     encoder.Granularity,
	dateGranularity: encoder.DateGranularityMs,
	latOffset:       encoder.LatOffset,
	lonOffset:       encoder.LonOffset,
}

// BlockEncoder accumulates nodes, ways, and relations, interleaved in any
// order the caller likes, into one PrimitiveBlock. Finalize packs them
// into a ready-to-write OSMData blob, always ordering the block's groups
// nodes first, then ways, then relations, splitting each run across
// multiple PrimitiveGroups once it exceeds the configured max group size.
// Finalize also resets the accumulator so the same BlockEncoder can build
// the file's next block.
type BlockEncoder struct {
	cfg blockEncoderOptions

	nodes     []*model.Node
	ways      []*model.Way
	relations []*model.Relation
}

// NewBlockEncoder returns a BlockEncoder configured with opts.
func NewBlockEncoder(opts ...BlockEncoderOption) *BlockEncoder {
	cfg := defaultBlockEncoderConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	return &BlockEncoder{cfg: cfg}
}

// AddNode appends n to the block being built. It may be freely interleaved
// with AddWay and AddRelation calls.
func (e *BlockEncoder) AddNode(n *model.Node) error {
	e.nodes = append(e.nodes, n)

	return nil
}

// AddWay appends w to the block being built. It may be freely interleaved
// with AddNode and AddRelation calls. When w carries inline locations,
// they must pair up one-to-one with its node refs.
func (e *BlockEncoder) AddWay(w *model.Way) error {
	if len(w.Locations) != 0 && len(w.Locations) != len(w.NodeIDs) {
		return fmt.Errorf("way %d has %d refs but %d locations", w.ID, len(w.NodeIDs), len(w.Locations))
	}

	e.ways = append(e.ways, w)

	return nil
}

// AddRelation appends r to the block being built. It may be freely
// interleaved with AddNode and AddWay calls.
func (e *BlockEncoder) AddRelation(r *model.Relation) error {
	e.relations = append(e.relations, r)

	return nil
}

// Finalize packs the accumulated nodes, ways, and relations, in that
// order, into a framed OSMData blob, ready to append after the bytes a
// HeaderEncoder produces, and resets the BlockEncoder for the next block.
// Finalize on an empty BlockEncoder returns nil, nil.
func (e *BlockEncoder) Finalize() ([]byte, error) {
	total := len(e.nodes) + len(e.ways) + len(e.relations)
	if total == 0 {
		return nil, nil
	}

	entities := make([]model.Entity, 0, total)

	for _, n := range e.nodes {
		entities = append(entities, n)
	}

	for _, w := range e.ways {
		entities = append(entities, w)
	}

	for _, r := range e.relations {
		entities = append(entities, r)
	}

	block, err := encoder.EncodeBatchConfig(entities, encoder.BlockConfig{
		MaxGroupSize:    e.cfg.maxGroupSize,
		Granularity:     e.cfg.granularity,
		DateGranularity: e.cfg.dateGranularity,
		LatOffset:       e.cfg.latOffset,
		LonOffset:       e.cfg.lonOffset,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot encode block: %w", err)
	}

	bb, err := encoder.Pack(block, e.cfg.compression)
	if err != nil {
		return nil, fmt.Errorf("cannot pack block: %w", err)
	}

	var buf bytes.Buffer

	if err := encoder.SaveBlock(&buf, rill.Try[[]byte]{Value: bb}); err != nil {
		return nil, fmt.Errorf("cannot frame block: %w", err)
	}

	e.nodes = nil
	e.ways = nil
	e.relations = nil

	return buf.Bytes(), nil
}
