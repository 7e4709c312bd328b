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
	"io"

	"m4o.io/pbf/v2/model"
)

// WriterOption configures how we set up a Writer. It shares its
// underlying options with EncoderOption, since Writer is a thin,
// file-level convenience built atop the same encoding pipeline.
type WriterOption = EncoderOption

// Writer is a file-level convenience atop Encoder: entities are buffered
// to a temporary store so the header, whose bounding box isn't known
// until every entity has been seen, can be written before the body.
type Writer struct {
	enc *Encoder
}

// NewWriter returns a new Writer, configured with opts, that writes to w.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	enc, err := NewEncoder(w, opts...)
	if err != nil {
		return nil, err
	}

	return &Writer{enc: enc}, nil
}

// Encode writes a single entity.
func (w *Writer) Encode(entity model.Entity) error {
	return w.enc.Encode(entity)
}

// EncodeBatch writes a batch of entities of the same kind.
func (w *Writer) EncodeBatch(entities []model.Entity) error {
	return w.enc.EncodeBatch(entities)
}

// Close flushes the pipeline and finishes writing the file.
func (w *Writer) Close() {
	w.enc.Close()
}
