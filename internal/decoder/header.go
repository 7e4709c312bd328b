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

package decoder

import (
	"fmt"
	"io"
	"time"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/core"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

// LoadHeader reads and decodes the single OSMHeader blob that must precede
// every OSMData blob in reader.
func LoadHeader(reader io.Reader) (model.Header, error) {
	blob, typ, _, err := readBlob(reader)
	if err != nil {
		return model.Header{}, err
	}

	if typ != "OSMHeader" {
		return model.Header{}, fmt.Errorf("%w: first blob is %q, want OSMHeader", errs.Protobuf, typ)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	unpacked, err := unpack(buf, blob)
	if err != nil {
		return model.Header{}, err
	}

	hb := &pb.HeaderBlock{}
	if err := hb.Unmarshal(unpacked); err != nil {
		return model.Header{}, fmt.Errorf("%w: %w", errs.Protobuf, err)
	}

	return toHeader(hb), nil
}

func toHeader(hb *pb.HeaderBlock) model.Header {
	h := model.Header{
		RequiredFeatures:                 hb.GetRequiredFeatures(),
		OptionalFeatures:                 hb.GetOptionalFeatures(),
		WritingProgram:                   hb.GetWritingprogram(),
		Source:                           hb.GetSource(),
		OsmosisReplicationSequenceNumber: hb.GetOsmosisReplicationSequenceNumber(),
		OsmosisReplicationBaseURL:        hb.GetOsmosisReplicationBaseUrl(),
	}

	if ts := hb.GetOsmosisReplicationTimestamp(); ts != 0 {
		h.OsmosisReplicationTimestamp = time.Unix(ts, 0).UTC()
	}

	if bbox := hb.GetBbox(); bbox != nil {
		h.BoundingBox = &model.BoundingBox{
			Left:   model.Nano(bbox.GetLeft()).Degrees(),
			Right:  model.Nano(bbox.GetRight()).Degrees(),
			Top:    model.Nano(bbox.GetTop()).Degrees(),
			Bottom: model.Nano(bbox.GetBottom()).Degrees(),
		}
	}

	return h
}
