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

	"m4o.io/pbf/v2/internal/encoder"
	"m4o.io/pbf/v2/model"
)

// HeaderEncoder builds the framed OSMHeader blob that precedes a PBF
// file's data blocks.
type HeaderEncoder struct {
	hdr         model.Header
	compression encoder.BlobCompression
}

// NewHeaderEncoder returns an empty HeaderEncoder. The header it builds is
// packed with ZLIB compression by default; use WithHeaderCompression to
// override that.
func NewHeaderEncoder() *HeaderEncoder {
	return &HeaderEncoder{compression: DefaultBlobCompression}
}

// WithHeaderCompression sets the compression algorithm Finalize uses when
// it packs the header blob.
func (h *HeaderEncoder) WithHeaderCompression(compression encoder.BlobCompression) *HeaderEncoder {
	h.compression = compression

	return h
}

// SetRequiredFeatures sets the header's required features, e.g.
// "OsmSchema-V0.6" and "DenseNodes".
func (h *HeaderEncoder) SetRequiredFeatures(features ...string) *HeaderEncoder {
	h.hdr.RequiredFeatures = features

	return h
}

// SetOptionalFeatures sets the header's optional features, e.g.
// "Sort.Type_then_ID".
func (h *HeaderEncoder) SetOptionalFeatures(features ...string) *HeaderEncoder {
	h.hdr.OptionalFeatures = features

	return h
}

// SetBbox sets the header's bounding box.
func (h *HeaderEncoder) SetBbox(bbox model.BoundingBox) *HeaderEncoder {
	h.hdr.BoundingBox = &bbox

	return h
}

// SetWritingProgram sets the name of the program writing the file.
func (h *HeaderEncoder) SetWritingProgram(program string) *HeaderEncoder {
	h.hdr.WritingProgram = program

	return h
}

// SetSource sets the header's data source attribution.
func (h *HeaderEncoder) SetSource(source string) *HeaderEncoder {
	h.hdr.Source = source

	return h
}

// Finalize packs the built header into a framed OSMHeader blob, the same
// bytes NewWriter writes at the front of a file, ready to be written
// directly to an io.Writer ahead of the data blocks BlockEncoder produces.
func (h *HeaderEncoder) Finalize() ([]byte, error) {
	var buf bytes.Buffer

	if err := encoder.SaveHeader(&buf, h.hdr, h.compression); err != nil {
		return nil, fmt.Errorf("cannot encode header: %w", err)
	}

	return buf.Bytes(), nil
}
