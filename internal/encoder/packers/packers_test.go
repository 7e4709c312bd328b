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

package packers

import (
	"bytes"
	"compress/zlib"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"

	"m4o.io/pbf/v2/internal/pb"
)

const payload = "the quick brown fox jumps over the lazy dog, repeatedly, to pad the buffer"

func TestRawPackerRoundTrip(t *testing.T) {
	p := NewRawPacker()

	_, err := p.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	blob := &pb.Blob{}
	p.SaveTo(blob)

	assert.Equal(t, payload, string(blob.GetRaw()))
}

func TestZlibPackerRoundTrip(t *testing.T) {
	p := NewZlibPacker()

	_, err := p.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	blob := &pb.Blob{}
	p.SaveTo(blob)

	rdr, err := zlib.NewReader(bytes.NewReader(blob.GetZlibData()))
	require.NoError(t, err)

	got, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestLzmaPackerRoundTrip(t *testing.T) {
	p := NewLzmaPacker()

	_, err := p.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	blob := &pb.Blob{}
	p.SaveTo(blob)

	rdr, err := lzma.NewReader(bytes.NewReader(blob.GetLzmaData()))
	require.NoError(t, err)

	got, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestLz4PackerRoundTrip(t *testing.T) {
	p := NewLz4Packer()

	_, err := p.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	blob := &pb.Blob{}
	p.SaveTo(blob)

	rdr := lz4.NewReader(bytes.NewReader(blob.GetLz4Data()))

	got, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestZstdPackerRoundTrip(t *testing.T) {
	p := NewZstdPacker()

	_, err := p.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, p.Close())

	blob := &pb.Blob{}
	p.SaveTo(blob)

	rdr, err := zstd.NewReader(bytes.NewReader(blob.GetZstdData()))
	require.NoError(t, err)

	defer rdr.Close()

	got, err := io.ReadAll(rdr)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}
