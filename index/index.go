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

// Package index builds and serves an on-disk offset index for a PBF
// file, letting a caller seek straight to the blob holding a given
// node, way, or relation instead of scanning the whole file.
package index

import (
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/decoder"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

// ErrNotFound is returned by Lookup when no indexed blob could contain
// the requested id.
var ErrNotFound = errors.New("index: not found")

// formatVersion is bumped whenever the gob payload's shape changes, so a
// stale cache file is rejected instead of misread.
const formatVersion = byte(1)

// GroupInfo summarizes all entities of one type within a blob, across
// its PrimitiveGroups: the entity type, how many entities of that type
// the blob holds, and the inclusive id range those entities span.
type GroupInfo struct {
	Type  model.EntityType
	Count int
	Low   model.ID
	High  model.ID
}

// BlobInfo locates one OSMData blob within the file and summarizes the
// entities it contains.
type BlobInfo struct {
	Offset int64
	Size   int64
	Groups []GroupInfo
}

// Index is a serializable map from id ranges to the blobs that might
// contain them, built once by Build and cheap to reload with ReadFrom on
// later runs.
type Index struct {
	Blobs []BlobInfo
}

// Build scans size bytes of r, a whole PBF file header blob included,
// and records the offset and id range of every OSMData blob. The header
// blob is skipped; it carries no entities to index.
func Build(r io.ReaderAt, size int64) (*Index, error) {
	sr := io.NewSectionReader(r, 0, size)
	idx := &Index{}

	offset := int64(0)

	for offset < size {
		info, blobSize, skip, err := readBlobInfo(sr, offset)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, err
		}

		if !skip {
			idx.Blobs = append(idx.Blobs, info)
		}

		offset += blobSize
	}

	return idx, nil
}

// readBlobInfo reads one length-prefixed blob starting at offset and
// summarizes it, reporting skip=true for the OSMHeader blob that carries
// no entities.
func readBlobInfo(sr io.Reader, offset int64) (info BlobInfo, blobSize int64, skip bool, err error) {
	var sizeBuf [4]byte

	if _, err = io.ReadFull(sr, sizeBuf[:]); err != nil {
		return BlobInfo{}, 0, false, err
	}

	hdrSize := binary.BigEndian.Uint32(sizeBuf[:])

	hdrBuf := make([]byte, hdrSize)
	if _, err = io.ReadFull(sr, hdrBuf); err != nil {
		return BlobInfo{}, 0, false, fmt.Errorf("%w: cannot read blob header at offset %d: %w", frameErr(err), offset, err)
	}

	hdr := &pb.BlobHeader{}
	if err = hdr.Unmarshal(hdrBuf); err != nil {
		return BlobInfo{}, 0, false, fmt.Errorf("cannot unmarshal blob header at offset %d: %w", offset, err)
	}

	dataBuf := make([]byte, hdr.GetDatasize())
	if _, err = io.ReadFull(sr, dataBuf); err != nil {
		return BlobInfo{}, 0, false, fmt.Errorf("%w: cannot read blob data at offset %d: %w", frameErr(err), offset, err)
	}

	blobSize = int64(len(sizeBuf)) + int64(hdrSize) + int64(hdr.GetDatasize())

	if hdr.GetType() != "OSMData" {
		return BlobInfo{}, blobSize, true, nil
	}

	blob := &pb.Blob{}
	if err = blob.Unmarshal(dataBuf); err != nil {
		return BlobInfo{}, 0, false, fmt.Errorf("cannot unmarshal blob at offset %d: %w", offset, err)
	}

	groups, err := groupsFor(blob)
	if err != nil {
		return BlobInfo{}, 0, false, fmt.Errorf("cannot index blob at offset %d: %w", offset, err)
	}

	return BlobInfo{Offset: offset, Size: blobSize, Groups: groups}, blobSize, false, nil
}

// frameErr classifies a mid-frame read failure: a short read is frame
// truncation, anything else is a failure of the underlying source.
func frameErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.UnexpectedEOF
	}

	return errs.Io
}

func groupsFor(blob *pb.Blob) ([]GroupInfo, error) {
	res := <-decoder.DecodeBatch([]*pb.Blob{blob})
	if res.Error != nil {
		return nil, res.Error
	}

	var nodes, ways, relations []model.ID

	for _, e := range res.Value {
		switch v := e.(type) {
		case *model.Node:
			nodes = append(nodes, v.ID)
		case *model.Way:
			ways = append(ways, v.ID)
		case *model.Relation:
			relations = append(relations, v.ID)
		}
	}

	var groups []GroupInfo

	for _, g := range []*GroupInfo{
		summarize(model.NODE, nodes),
		summarize(model.WAY, ways),
		summarize(model.RELATION, relations),
	} {
		if g != nil {
			groups = append(groups, *g)
		}
	}

	return groups, nil
}

func summarize(t model.EntityType, ids []model.ID) *GroupInfo {
	if len(ids) == 0 {
		return nil
	}

	low, high := ids[0], ids[0]

	for _, id := range ids[1:] {
		if id < low {
			low = id
		}

		if id > high {
			high = id
		}
	}

	return &GroupInfo{Type: t, Count: len(ids), Low: low, High: high}
}

// Lookup returns the file offsets of every blob whose Groups could
// contain id of the given type.
func (i *Index) Lookup(t model.EntityType, id model.ID) ([]int64, error) {
	var offsets []int64

	for _, blob := range i.Blobs {
		for _, g := range blob.Groups {
			if g.Type == t && id >= g.Low && id <= g.High {
				offsets = append(offsets, blob.Offset)

				break
			}
		}
	}

	if len(offsets) == 0 {
		return nil, ErrNotFound
	}

	return offsets, nil
}

// WriteTo writes a one-byte format version followed by the gob-encoded
// index.
func (i *Index) WriteTo(w io.Writer) (int64, error) {
	if _, err := w.Write([]byte{formatVersion}); err != nil {
		return 0, fmt.Errorf("%w: cannot write index version: %w", errs.Io, err)
	}

	if err := gob.NewEncoder(w).Encode(i); err != nil {
		return 0, fmt.Errorf("cannot encode index: %w", err)
	}

	return 0, nil
}

// ReadFrom replaces i's contents with the index read from r, rejecting
// caches written by an incompatible version of this package.
func (i *Index) ReadFrom(r io.Reader) (int64, error) {
	var version [1]byte

	if _, err := io.ReadFull(r, version[:]); err != nil {
		return 0, fmt.Errorf("%w: cannot read index version: %w", errs.Io, err)
	}

	if version[0] != formatVersion {
		return 0, fmt.Errorf("index: unsupported format version %d", version[0])
	}

	if err := gob.NewDecoder(r).Decode(i); err != nil {
		return 0, fmt.Errorf("cannot decode index: %w", err)
	}

	return 0, nil
}
