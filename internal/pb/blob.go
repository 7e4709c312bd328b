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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// BlobHeader is the variable-length frame preceding every Blob on the
// wire; its own length is written before it as a 4-byte big-endian int.
//
//	message BlobHeader {
//	    required string type = 1;
//	    optional bytes indexdata = 2;
//	    required int32 datasize = 3;
//	}
type BlobHeader struct {
	Type      *string
	IndexData []byte
	Datasize  *int32
}

func (h *BlobHeader) GetType() string {
	if h == nil || h.Type == nil {
		return ""
	}

	return *h.Type
}

func (h *BlobHeader) GetIndexData() []byte {
	if h == nil {
		return nil
	}

	return h.IndexData
}

func (h *BlobHeader) GetDatasize() int32 {
	if h == nil || h.Datasize == nil {
		return 0
	}

	return *h.Datasize
}

func (h *BlobHeader) Marshal() ([]byte, error) {
	var b []byte

	if h.Type == nil {
		return nil, fmt.Errorf("pb: BlobHeader.Type is required")
	}

	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, *h.Type)

	if h.IndexData != nil {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, h.IndexData)
	}

	if h.Datasize == nil {
		return nil, fmt.Errorf("pb: BlobHeader.Datasize is required")
	}

	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(*h.Datasize))

	return b, nil
}

func (h *BlobHeader) Unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			h.Type = stringPtr(string(f.data))
		case 2:
			h.IndexData = append([]byte(nil), f.data...)
		case 3:
			h.Datasize = int32Ptr(int32(f.u64))
		}

		return nil
	})
}

// Blob carries the (possibly compressed) payload of an OSMHeader or
// OSMData frame.
//
//	message Blob {
//	    optional bytes raw = 1;
//	    optional int32 raw_size = 2;
//	    optional bytes zlib_data = 3;
//	    optional bytes lzma_data = 4;
//	    optional bytes OBSOLETE_bzip2_data = 5 [deprecated=true];
//	    optional bytes lz4_data = 6;
//	    optional bytes zstd_data = 7;
//	}
type Blob struct {
	Data    isBlob_Data
	RawSize *int32
}

type isBlob_Data interface{ isBlob_Data() }

type Blob_Raw struct{ Raw []byte }
type Blob_ZlibData struct{ ZlibData []byte }
type Blob_LzmaData struct{ LzmaData []byte }
type Blob_Lz4Data struct{ Lz4Data []byte }
type Blob_ZstdData struct{ ZstdData []byte }

func (*Blob_Raw) isBlob_Data()      {}
func (*Blob_ZlibData) isBlob_Data() {}
func (*Blob_LzmaData) isBlob_Data() {}
func (*Blob_Lz4Data) isBlob_Data()  {}
func (*Blob_ZstdData) isBlob_Data() {}

func (b *Blob) GetRaw() []byte {
	if v, ok := b.Data.(*Blob_Raw); ok {
		return v.Raw
	}

	return nil
}

func (b *Blob) GetZlibData() []byte {
	if v, ok := b.Data.(*Blob_ZlibData); ok {
		return v.ZlibData
	}

	return nil
}

func (b *Blob) GetLzmaData() []byte {
	if v, ok := b.Data.(*Blob_LzmaData); ok {
		return v.LzmaData
	}

	return nil
}

func (b *Blob) GetLz4Data() []byte {
	if v, ok := b.Data.(*Blob_Lz4Data); ok {
		return v.Lz4Data
	}

	return nil
}

func (b *Blob) GetZstdData() []byte {
	if v, ok := b.Data.(*Blob_ZstdData); ok {
		return v.ZstdData
	}

	return nil
}

func (b *Blob) GetRawSize() int32 {
	if b == nil || b.RawSize == nil {
		return 0
	}

	return *b.RawSize
}

func (b *Blob) Marshal() ([]byte, error) {
	var out []byte

	switch v := b.Data.(type) {
	case *Blob_Raw:
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, v.Raw)
	case *Blob_ZlibData:
		out = protowire.AppendTag(out, 3, protowire.BytesType)
		out = protowire.AppendBytes(out, v.ZlibData)
	case *Blob_LzmaData:
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, v.LzmaData)
	case *Blob_Lz4Data:
		out = protowire.AppendTag(out, 6, protowire.BytesType)
		out = protowire.AppendBytes(out, v.Lz4Data)
	case *Blob_ZstdData:
		out = protowire.AppendTag(out, 7, protowire.BytesType)
		out = protowire.AppendBytes(out, v.ZstdData)
	default:
		return nil, fmt.Errorf("pb: Blob has no payload set")
	}

	if b.RawSize != nil {
		out = protowire.AppendTag(out, 2, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*b.RawSize)))
	}

	return out, nil
}

func (b *Blob) Unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			b.Data = &Blob_Raw{Raw: append([]byte(nil), f.data...)}
		case 2:
			b.RawSize = int32Ptr(int32(f.u64))
		case 3:
			b.Data = &Blob_ZlibData{ZlibData: append([]byte(nil), f.data...)}
		case 4:
			b.Data = &Blob_LzmaData{LzmaData: append([]byte(nil), f.data...)}
		case 6:
			b.Data = &Blob_Lz4Data{Lz4Data: append([]byte(nil), f.data...)}
		case 7:
			b.Data = &Blob_ZstdData{ZstdData: append([]byte(nil), f.data...)}
		}

		return nil
	})
}
