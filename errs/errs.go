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

// Package errs collects the sentinel errors the decoder and encoder return,
// so callers can use errors.Is against a stable set of values regardless of
// which layer (blob framing, unpacking, block decoding) raised them.
package errs

import "errors"

var (
	// Io wraps a failure of the underlying reader, writer, file, or
	// mapping, as opposed to a structural problem with the PBF data
	// itself.
	Io = errors.New("pbf: i/o failure")

	// UnexpectedEOF is returned when a blob frame is truncated mid-read.
	UnexpectedEOF = errors.New("pbf: unexpected end of file")

	// InvalidHeaderSize is returned when a BlobHeader's declared size is
	// zero or exceeds the 64 KiB the format allows.
	InvalidHeaderSize = errors.New("pbf: blob header size is zero or exceeds 64 KiB limit")

	// InvalidDataSize is returned when a Blob's declared size exceeds the
	// 32 MiB the format allows.
	InvalidDataSize = errors.New("pbf: blob data size exceeds 32 MiB limit")

	// UnsupportedFeature is returned when a header block names a required
	// feature this library does not implement, or a blob uses a
	// compression codec it cannot decompress.
	UnsupportedFeature = errors.New("pbf: unsupported feature")

	// DecompressionError wraps a failure from a blob's compression codec.
	DecompressionError = errors.New("pbf: blob decompression failed")

	// Protobuf wraps a failure to marshal or unmarshal a protobuf message.
	Protobuf = errors.New("pbf: protobuf encoding error")

	// StringtableIndexOutOfBounds is returned when a key/value/role/user
	// index refers outside the block's string table.
	StringtableIndexOutOfBounds = errors.New("pbf: string table index out of bounds")

	// StringtableUTF8 is returned when a string table entry is not valid
	// UTF-8.
	StringtableUTF8 = errors.New("pbf: string table entry is not valid utf-8")

	// InvalidDenseNodesKeysVals is returned when a DenseNodes.KeysVals
	// array is missing its trailing zero terminator for some node, or
	// ends on a key that has no value.
	InvalidDenseNodesKeysVals = errors.New("pbf: dense nodes keys_vals missing terminator")

	// NegativeIDOrIndex is returned when delta-decoding produces a
	// negative id or string table index.
	NegativeIDOrIndex = errors.New("pbf: delta-decoded id or index is negative")

	// Cancelled is returned by the parallel driver when the caller's
	// context is cancelled before every block has been processed.
	Cancelled = errors.New("pbf: operation cancelled")
)
