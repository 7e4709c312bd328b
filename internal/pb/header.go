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

package pb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// HeaderBBox carries the optional bounding box of a file, in absolute
// nanodegrees (not subject to the block-level granularity/offset scheme).
//
//	message HeaderBBox {
//	    required sint64 left = 1;
//	    required sint64 right = 2;
//	    required sint64 top = 3;
//	    required sint64 bottom = 4;
//	}
type HeaderBBox struct {
	Left, Right, Top, Bottom *int64
}

func (b *HeaderBBox) GetLeft() int64 {
	if b == nil || b.Left == nil {
		return 0
	}

	return *b.Left
}

func (b *HeaderBBox) GetRight() int64 {
	if b == nil || b.Right == nil {
		return 0
	}

	return *b.Right
}

func (b *HeaderBBox) GetTop() int64 {
	if b == nil || b.Top == nil {
		return 0
	}

	return *b.Top
}

func (b *HeaderBBox) GetBottom() int64 {
	if b == nil || b.Bottom == nil {
		return 0
	}

	return *b.Bottom
}

func (b *HeaderBBox) marshal() []byte {
	var out []byte

	appendSint64 := func(num protowire.Number, v *int64) {
		if v == nil {
			return
		}

		out = protowire.AppendTag(out, num, protowire.VarintType)
		out = protowire.AppendVarint(out, protowire.EncodeZigZag(*v))
	}

	appendSint64(1, b.Left)
	appendSint64(2, b.Right)
	appendSint64(3, b.Top)
	appendSint64(4, b.Bottom)

	return out
}

func (b *HeaderBBox) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		v := protowire.DecodeZigZag(f.u64)

		switch f.num {
		case 1:
			b.Left = int64Ptr(v)
		case 2:
			b.Right = int64Ptr(v)
		case 3:
			b.Top = int64Ptr(v)
		case 4:
			b.Bottom = int64Ptr(v)
		}

		return nil
	})
}

// HeaderBlock is the payload of the single OSMHeader blob that precedes
// every OSMData blob in a PBF file.
//
//	message HeaderBlock {
//	    optional HeaderBBox bbox = 1;
//	    repeated string required_features = 4;
//	    repeated string optional_features = 5;
//	    optional string writingprogram = 16;
//	    optional string source = 17;
//	    optional int64 osmosis_replication_timestamp = 32;
//	    optional int64 osmosis_replication_sequence_number = 33;
//	    optional string osmosis_replication_base_url = 34;
//	}
type HeaderBlock struct {
	Bbox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	Writingprogram                   *string
	Source                           *string
	OsmosisReplicationTimestamp      *int64
	OsmosisReplicationSequenceNumber *int64
	OsmosisReplicationBaseUrl        *string
}

func (h *HeaderBlock) GetBbox() *HeaderBBox {
	if h == nil {
		return nil
	}

	return h.Bbox
}

func (h *HeaderBlock) GetRequiredFeatures() []string {
	if h == nil {
		return nil
	}

	return h.RequiredFeatures
}

func (h *HeaderBlock) GetOptionalFeatures() []string {
	if h == nil {
		return nil
	}

	return h.OptionalFeatures
}

func (h *HeaderBlock) GetWritingprogram() string {
	if h == nil || h.Writingprogram == nil {
		return ""
	}

	return *h.Writingprogram
}

func (h *HeaderBlock) GetSource() string {
	if h == nil || h.Source == nil {
		return ""
	}

	return *h.Source
}

func (h *HeaderBlock) GetOsmosisReplicationTimestamp() int64 {
	if h == nil || h.OsmosisReplicationTimestamp == nil {
		return 0
	}

	return *h.OsmosisReplicationTimestamp
}

func (h *HeaderBlock) GetOsmosisReplicationSequenceNumber() int64 {
	if h == nil || h.OsmosisReplicationSequenceNumber == nil {
		return 0
	}

	return *h.OsmosisReplicationSequenceNumber
}

func (h *HeaderBlock) GetOsmosisReplicationBaseUrl() string {
	if h == nil || h.OsmosisReplicationBaseUrl == nil {
		return ""
	}

	return *h.OsmosisReplicationBaseUrl
}

func (h *HeaderBlock) Marshal() ([]byte, error) {
	var out []byte

	if h.Bbox != nil {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, h.Bbox.marshal())
	}

	for _, s := range h.RequiredFeatures {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendString(out, s)
	}

	for _, s := range h.OptionalFeatures {
		out = protowire.AppendTag(out, 5, protowire.BytesType)
		out = protowire.AppendString(out, s)
	}

	if h.Writingprogram != nil {
		out = protowire.AppendTag(out, 16, protowire.BytesType)
		out = protowire.AppendString(out, *h.Writingprogram)
	}

	if h.Source != nil {
		out = protowire.AppendTag(out, 17, protowire.BytesType)
		out = protowire.AppendString(out, *h.Source)
	}

	if h.OsmosisReplicationTimestamp != nil {
		out = protowire.AppendTag(out, 32, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*h.OsmosisReplicationTimestamp))
	}

	if h.OsmosisReplicationSequenceNumber != nil {
		out = protowire.AppendTag(out, 33, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*h.OsmosisReplicationSequenceNumber))
	}

	if h.OsmosisReplicationBaseUrl != nil {
		out = protowire.AppendTag(out, 34, protowire.BytesType)
		out = protowire.AppendString(out, *h.OsmosisReplicationBaseUrl)
	}

	return out, nil
}

func (h *HeaderBlock) Unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			h.Bbox = &HeaderBBox{}

			return h.Bbox.unmarshal(f.data)
		case 4:
			h.RequiredFeatures = append(h.RequiredFeatures, string(f.data))
		case 5:
			h.OptionalFeatures = append(h.OptionalFeatures, string(f.data))
		case 16:
			h.Writingprogram = stringPtr(string(f.data))
		case 17:
			h.Source = stringPtr(string(f.data))
		case 32:
			h.OsmosisReplicationTimestamp = int64Ptr(int64(f.u64))
		case 33:
			h.OsmosisReplicationSequenceNumber = int64Ptr(int64(f.u64))
		case 34:
			h.OsmosisReplicationBaseUrl = stringPtr(string(f.data))
		}

		return nil
	})
}
