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

package pbf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/decoder"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

// Reader reads and decodes OpenStreetMap PBF data from an input stream.
// Its zero value is not usable; construct one with Open, NewReader, or
// OpenMmap.
type Reader struct {
	// Header is the OSMHeader blob that precedes the data blobs. It is
	// read and decoded during construction.
	Header model.Header

	rdr io.Reader
	cfg readerOptions

	file *os.File
	mm   mmap.MMap
}

// Open opens the PBF file at path and reads its header, streaming the
// body off of disk as entities are requested.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", errs.Io, path, err)
	}

	r, err := NewReader(context.Background(), f, opts...)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	r.file = f

	return r, nil
}

// OpenMmap opens the PBF file at path and memory-maps its contents,
// avoiding a read syscall per blob at the cost of holding the whole file
// mapped into the process's address space. Only beneficial for files
// that fit comfortably within available virtual memory.
func OpenMmap(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", errs.Io, path, err)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("%w: cannot mmap %s: %w", errs.Io, path, err)
	}

	r, err := NewReader(context.Background(), bytes.NewReader(m), opts...)
	if err != nil {
		_ = m.Unmap()
		_ = f.Close()

		return nil, err
	}

	r.file = f
	r.mm = m

	return r, nil
}

// NewReader returns a new Reader, configured with opts, that reads from
// rdr. The OSMHeader blob is read and decoded immediately; ctx bounds
// that initial read.
func NewReader(ctx context.Context, rdr io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := defaultReaderConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	type result struct {
		hdr model.Header
		err error
	}

	done := make(chan result, 1)

	go func() {
		hdr, err := decoder.LoadHeader(rdr)
		done <- result{hdr, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", errs.Cancelled, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}

		return &Reader{Header: res.hdr, rdr: rdr, cfg: cfg}, nil
	}
}

// Close releases any resources NewReader's caller didn't open itself:
// the underlying file and, for a mmapped Reader, the memory mapping.
func (r *Reader) Close() error {
	var err error

	if r.mm != nil {
		if uerr := r.mm.Unmap(); uerr != nil {
			err = fmt.Errorf("%w: cannot unmap: %w", errs.Io, uerr)
		}
	}

	if r.file != nil {
		if cerr := r.file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: cannot close: %w", errs.Io, cerr)
		}
	}

	return err
}

// Seek repositions the Reader at the given byte offset, which must be a
// frame boundary: 0 is the start of the file, and the offsets recorded
// by an index.Index are the starts of its data blobs. It fails when the
// underlying source is not seekable.
func (r *Reader) Seek(offset int64) error {
	s, ok := r.rdr.(io.Seeker)
	if !ok {
		return fmt.Errorf("pbf: underlying reader of %T is not seekable", r.rdr)
	}

	if _, err := s.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: cannot seek to offset %d: %w", errs.Io, offset, err)
	}

	return nil
}

// NextOffset reports the byte offset of the next blob frame's length
// prefix. It fails when the underlying source is not seekable.
func (r *Reader) NextOffset() (int64, error) {
	s, ok := r.rdr.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("pbf: underlying reader of %T is not seekable", r.rdr)
	}

	offset, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot report current offset: %w", errs.Io, err)
	}

	return offset, nil
}

// ForEach calls f once for every Node, Way, and Relation in the data
// blobs that follow the header, in the order they appear in the file. It
// stops and returns f's error as soon as f returns a non-nil one.
func (r *Reader) ForEach(f func(model.Entity) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batch := make([]*pb.Blob, 0, r.cfg.protoBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		for res := range decoder.DecodeBatch(batch) {
			if res.Error != nil {
				return res.Error
			}

			for _, e := range res.Value {
				if err := f(e); err != nil {
					return err
				}
			}
		}

		batch = batch[:0]

		return nil
	}

	for blob, err := range decoder.GenerateBlobReader(ctx, r.rdr) {
		if err != nil {
			return err
		}

		batch = append(batch, blob)

		if len(batch) >= r.cfg.protoBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}
