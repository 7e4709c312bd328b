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
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/core"
	"m4o.io/pbf/v2/internal/pb"
)

// maxHeaderSize and maxDataSize are the framing bounds the PBF format
// itself imposes: a BlobHeader is never larger than 64 KiB and a Blob's
// declared datasize is never larger than 32 MiB.
const (
	maxHeaderSize = 64 * 1024
	maxDataSize   = 32 * 1024 * 1024
)

// OffsetBlob pairs a decoded blob with the byte offset, within the stream
// GenerateOffsetBlobReader read it from, at which its length-prefixed
// framing began.
type OffsetBlob struct {
	Blob   *pb.Blob
	Offset int64
}

// GenerateBlobReader creates an iterator that returns primitive blobs read
// off of the reader.
func GenerateBlobReader(ctx context.Context, reader io.Reader) func(yield func(enc *pb.Blob, err error) bool) {
	return func(yield func(enc *pb.Blob, err error) bool) {
		for ob, err := range GenerateOffsetBlobReader(ctx, reader) {
			if err != nil {
				yield(nil, err)

				return
			}

			if !yield(ob.Blob, nil) {
				return
			}
		}
	}
}

// GenerateOffsetBlobReader is GenerateBlobReader, additionally reporting
// the byte offset each blob's framing started at, which a parallel
// reduction needs to pick a deterministic, offset-ordered error when more
// than one worker's blob fails to decode.
func GenerateOffsetBlobReader(ctx context.Context, reader io.Reader) func(yield func(ob OffsetBlob, err error) bool) {
	return func(yield func(ob OffsetBlob, err error) bool) {
		buffer := core.NewPooledBuffer()
		defer buffer.Close()

		var offset int64

		for {
			select {
			case <-ctx.Done():
				yield(OffsetBlob{}, fmt.Errorf("%w: %w", errs.Cancelled, ctx.Err()))

				return
			default:
			}

			blob, typ, n, err := readBlob(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Error("unable to read blob", "error", err)
					yield(OffsetBlob{Offset: offset}, err)
				}

				return
			}

			// A header blob can legally appear anywhere in the stream;
			// it carries no entities, so the data pipeline steps over it.
			if typ == "OSMData" {
				if !yield(OffsetBlob{Blob: blob, Offset: offset}, nil) {
					return
				}
			}

			offset += n

			buffer.Reset()
		}
	}
}

// readBlob reads a PBF blob from the rdr, reporting the blob's declared
// type and the number of bytes its length-prefixed framing consumed.
func readBlob(rdr io.Reader) (*pb.Blob, string, int64, error) {
	h, headerBytes, err := readBlobHeader(rdr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, "", 0, err
		}

		return nil, "", 0, fmt.Errorf("error reading blob header: %w", err)
	}

	b, err := readBlobData(rdr, int64(h.GetDatasize()))
	if err != nil {
		return nil, "", 0, fmt.Errorf("error reading blob: %w", err)
	}

	return b, h.GetType(), headerBytes + int64(h.GetDatasize()), nil
}

// readBlobHeader unmarshals a header from an array of protobuf encoded
// bytes, along with the number of bytes the 4-byte size prefix and the
// header itself occupied on the wire. The header is used when decoding
// blobs into OSM elements.
func readBlobHeader(rdr io.Reader) (header *pb.BlobHeader, headerBytes int64, err error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	var size uint32

	if err := binary.Read(rdr, binary.BigEndian, &size); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: error reading blob header size: %w", errs.UnexpectedEOF, err)
		}

		return nil, 0, fmt.Errorf("%w: error reading blob header size: %w", errs.Io, err)
	}

	if size == 0 {
		return nil, 0, fmt.Errorf("%w: header declares 0 bytes", errs.InvalidHeaderSize)
	}

	if size > maxHeaderSize {
		return nil, 0, fmt.Errorf("%w: header declares %d bytes", errs.InvalidHeaderSize, size)
	}

	if n, err := io.CopyN(buf, rdr, int64(size)); err != nil || n != int64(size) {
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, 0, fmt.Errorf("%w: error reading blob header: %w", errs.Io, err)
		}

		return nil, 0, fmt.Errorf("%w: error reading blob header", errs.UnexpectedEOF)
	}

	header = &pb.BlobHeader{}

	if err := header.Unmarshal(buf.Bytes()); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", errs.Protobuf, err)
	}

	return header, int64(binary.Size(size)) + int64(size), nil
}

// readBlobData unmarshals a blob from an array of protobuf encoded bytes.  The
// blob still needs to be decoded into OSM elements.
func readBlobData(rdr io.Reader, size int64) (*pb.Blob, error) {
	if size > maxDataSize {
		return nil, fmt.Errorf("%w: blob declares %d bytes", errs.InvalidDataSize, size)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	if n, err := io.CopyN(buf, rdr, size); err != nil || n != size {
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: error reading blob data: %w", errs.Io, err)
		}

		return nil, fmt.Errorf("%w: error reading blob data", errs.UnexpectedEOF)
	}

	blob := &pb.Blob{}

	if err := blob.Unmarshal(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.Protobuf, err)
	}

	return blob, nil
}
