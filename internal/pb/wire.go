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

// Package pb holds hand-written wire bindings for the OSM PBF protobuf
// messages (fileformat.proto and osmformat.proto). No .proto files or
// protoc-generated code travel with this module; each message instead
// marshals and unmarshals itself directly against
// google.golang.org/protobuf/encoding/protowire, the same module the rest
// of the tree already depends on for everything else protobuf-shaped.
package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// appendPackedVarint appends a length-delimited field carrying a run of
// plain (unzigzagged) varints, the wire shape of `packed repeated uint32`
// and `packed repeated int32/int64` fields.
func appendPackedVarint(b []byte, num protowire.Number, vals []uint64) []byte {
	if len(vals) == 0 {
		return b
	}

	var inner []byte
	for _, v := range vals {
		inner = protowire.AppendVarint(inner, v)
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendBytes(b, inner)

	return b
}

// appendPackedSint appends a length-delimited field of zigzag-encoded
// varints, the wire shape of `packed repeated sint32/sint64` fields.
func appendPackedSint(b []byte, num protowire.Number, vals []int64) []byte {
	if len(vals) == 0 {
		return b
	}

	packed := make([]uint64, len(vals))
	for i, v := range vals {
		packed[i] = protowire.EncodeZigZag(v)
	}

	return appendPackedVarint(b, num, packed)
}

// appendPackedBool appends a length-delimited field of packed booleans.
func appendPackedBool(b []byte, num protowire.Number, vals []bool) []byte {
	if len(vals) == 0 {
		return b
	}

	packed := make([]uint64, len(vals))
	for i, v := range vals {
		if v {
			packed[i] = 1
		}
	}

	return appendPackedVarint(b, num, packed)
}

// consumeVarintSlice decodes the contents of a length-delimited packed
// varint field, already stripped of its tag and length prefix.
func consumeVarintSlice(data []byte) ([]uint64, error) {
	vals := make([]uint64, 0)

	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return nil, fmt.Errorf("pb: malformed packed varint: %w", protowire.ParseError(n))
		}

		vals = append(vals, v)
		data = data[n:]
	}

	return vals, nil
}

func consumeSintSlice(data []byte) ([]int64, error) {
	raw, err := consumeVarintSlice(data)
	if err != nil {
		return nil, err
	}

	vals := make([]int64, len(raw))
	for i, v := range raw {
		vals[i] = protowire.DecodeZigZag(v)
	}

	return vals, nil
}

func consumeInt32Slice(data []byte) ([]int32, error) {
	raw, err := consumeVarintSlice(data)
	if err != nil {
		return nil, err
	}

	vals := make([]int32, len(raw))
	for i, v := range raw {
		vals[i] = int32(v)
	}

	return vals, nil
}

func consumeSint32Slice(data []byte) ([]int32, error) {
	raw, err := consumeSintSlice(data)
	if err != nil {
		return nil, err
	}

	vals := make([]int32, len(raw))
	for i, v := range raw {
		vals[i] = int32(v)
	}

	return vals, nil
}

func consumeUint32Slice(data []byte) ([]uint32, error) {
	raw, err := consumeVarintSlice(data)
	if err != nil {
		return nil, err
	}

	vals := make([]uint32, len(raw))
	for i, v := range raw {
		vals[i] = uint32(v)
	}

	return vals, nil
}

func consumeBoolSlice(data []byte) ([]bool, error) {
	raw, err := consumeVarintSlice(data)
	if err != nil {
		return nil, err
	}

	vals := make([]bool, len(raw))
	for i, v := range raw {
		vals[i] = v != 0
	}

	return vals, nil
}

// field is a single decoded wire field, yielded while scanning a message.
type field struct {
	num  protowire.Number
	typ  protowire.Type
	data []byte // BytesType payload
	u64  uint64 // VarintType / Fixed64Type / Fixed32Type payload
}

// forEachField walks every top-level field of a serialized message, calling
// fn for each one. It is the shared scan loop every Unmarshal in this
// package is built on, mirroring what hand-rolled protobuf readers (e.g.
// tidwall/osmfile's pbf.ForEachField) do without generated code.
func forEachField(data []byte, fn func(field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("pb: malformed tag: %w", protowire.ParseError(n))
		}

		data = data[n:]

		var f field
		f.num = num
		f.typ = typ

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return fmt.Errorf("pb: malformed varint: %w", protowire.ParseError(n))
			}

			f.u64 = v
			data = data[n:]
		case protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return fmt.Errorf("pb: malformed fixed64: %w", protowire.ParseError(n))
			}

			f.u64 = v
			data = data[n:]
		case protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(data)
			if n < 0 {
				return fmt.Errorf("pb: malformed fixed32: %w", protowire.ParseError(n))
			}

			f.u64 = uint64(v)
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return fmt.Errorf("pb: malformed bytes: %w", protowire.ParseError(n))
			}

			f.data = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return fmt.Errorf("pb: malformed field: %w", protowire.ParseError(n))
			}

			data = data[n:]
		}

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

func int32Ptr(v int32) *int32    { return &v }
func int64Ptr(v int64) *int64    { return &v }
func boolPtr(v bool) *bool       { return &v }
func stringPtr(v string) *string { return &v }
