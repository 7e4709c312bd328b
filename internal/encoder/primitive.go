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

package encoder

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/destel/rill"
	"google.golang.org/protobuf/proto"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

const (
	DateGranularityMs = 1000
	Granularity       = 100
	LatOffset         = 0
	LonOffset         = 0

	// EntityLimit is the max number of entities in a pb.PrimitiveGroup.
	// Certain programs (e.g. osmosis 0.38) limit the number of entities in
	// each group to 8000 when writing PBF format.
	EntityLimit = 8000
)

// BlockConfig controls how a PrimitiveBlock is assembled: the coordinate
// and timestamp scaling it records in the block header, and the point at
// which a run of same-kind entities is split across multiple
// PrimitiveGroups.
type BlockConfig struct {
	MaxGroupSize    int
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

// DefaultBlockConfig matches the values osmosis and other common PBF
// writers use.
var DefaultBlockConfig = BlockConfig{
	MaxGroupSize:    EntityLimit,
	Granularity:     Granularity,
	DateGranularity: DateGranularityMs,
	LatOffset:       LatOffset,
	LonOffset:       LonOffset,
}

func SaveBlock(w io.Writer, bb rill.Try[[]byte]) error {
	if bb.Error != nil {
		return bb.Error
	}

	hdr := &pb.BlobHeader{
		Type:     proto.String("OSMData"),
		Datasize: proto.Int32(int32(len(bb.Value))),
	}

	hb, err := hdr.Marshal()
	if err != nil {
		return fmt.Errorf("could not marshal blob header: %w", err)
	}

	if err = binary.Write(w, binary.BigEndian, uint32(len(hb))); err != nil {
		return fmt.Errorf("%w: could not write header size: %w", errs.Io, err)
	}

	if _, err = w.Write(hb); err != nil {
		return fmt.Errorf("%w: could not write blob header: %w", errs.Io, err)
	}

	if _, err = w.Write(bb.Value); err != nil {
		return fmt.Errorf("%w: could not write blob data: %w", errs.Io, err)
	}

	return nil
}

type blockContext struct {
	table    *Table
	entities []model.Entity
	cfg      BlockConfig
}

func newBlockContext(entities []model.Entity, cfg BlockConfig) *blockContext {
	strings := NewStrings()

	for _, e := range entities {
		extractTagsAndInfo(strings, e)

		if r, ok := e.(*model.Relation); ok {
			extractMemberRoles(strings, r)
		}
	}

	return &blockContext{
		table:    strings.CalcTable(),
		entities: entities,
		cfg:      cfg,
	}
}

// extractPrimitiveBlock splits bc.entities into per-kind runs and emits one
// PrimitiveGroup per cfg.MaxGroupSize-sized chunk of each run, in
// nodes-then-ways-then-relations order, so a block built from interleaved
// Add calls still groups its entities the way the wire format expects.
func (bc *blockContext) extractPrimitiveBlock() *pb.PrimitiveBlock {
	var nodes []*model.Node

	var ways []*model.Way

	var relations []*model.Relation

	for _, e := range bc.entities {
		switch v := e.(type) {
		case *model.Node:
			nodes = append(nodes, v)
		case *model.Way:
			ways = append(ways, v)
		case *model.Relation:
			relations = append(relations, v)
		default:
			panic("unknown type")
		}
	}

	var groups []*pb.PrimitiveGroup

	groups = append(groups, bc.extractDenseNodeGroups(nodes)...)
	groups = append(groups, bc.extractWayGroups(ways)...)
	groups = append(groups, bc.extractRelationGroups(relations)...)

	return &pb.PrimitiveBlock{
		Stringtable: &pb.StringTable{
			S: bc.table.AsArray(),
		},
		Primitivegroup:  groups,
		Granularity:     proto.Int32(bc.cfg.Granularity),
		LatOffset:       proto.Int64(bc.cfg.LatOffset),
		LonOffset:       proto.Int64(bc.cfg.LonOffset),
		DateGranularity: proto.Int32(bc.cfg.DateGranularity),
	}
}

func (bc *blockContext) maxGroupSize() int {
	if bc.cfg.MaxGroupSize <= 0 {
		return EntityLimit
	}

	return bc.cfg.MaxGroupSize
}

func (bc *blockContext) extractDenseNodeGroups(nodes []*model.Node) []*pb.PrimitiveGroup {
	if len(nodes) == 0 {
		return nil
	}

	size := bc.maxGroupSize()

	groups := make([]*pb.PrimitiveGroup, 0, (len(nodes)+size-1)/size)

	for start := 0; start < len(nodes); start += size {
		end := min(start+size, len(nodes))
		groups = append(groups, &pb.PrimitiveGroup{Dense: bc.extractDenseNodes(nodes[start:end])})
	}

	return groups
}

func (bc *blockContext) extractWayGroups(ways []*model.Way) []*pb.PrimitiveGroup {
	if len(ways) == 0 {
		return nil
	}

	size := bc.maxGroupSize()

	groups := make([]*pb.PrimitiveGroup, 0, (len(ways)+size-1)/size)

	for start := 0; start < len(ways); start += size {
		end := min(start+size, len(ways))
		groups = append(groups, &pb.PrimitiveGroup{Ways: bc.extractWays(ways[start:end])})
	}

	return groups
}

func (bc *blockContext) extractRelationGroups(relations []*model.Relation) []*pb.PrimitiveGroup {
	if len(relations) == 0 {
		return nil
	}

	size := bc.maxGroupSize()

	groups := make([]*pb.PrimitiveGroup, 0, (len(relations)+size-1)/size)

	for start := 0; start < len(relations); start += size {
		end := min(start+size, len(relations))
		groups = append(groups, &pb.PrimitiveGroup{Relations: bc.extractRelations(relations[start:end])})
	}

	return groups
}

func (bc *blockContext) extractDenseNodes(nodes []*model.Node) *pb.DenseNodes {
	dn := &pb.DenseNodes{}

	ids := make([]int64, 0, len(nodes))

	lats := make([]int64, 0, len(nodes))
	lons := make([]int64, 0, len(nodes))

	versions := make([]int32, 0, len(nodes))
	uids := make([]int32, 0, len(nodes))
	ts := make([]int64, 0, len(nodes))
	cs := make([]int64, 0, len(nodes))
	usids := make([]int32, 0, len(nodes))
	visibilities := make([]bool, 0, len(nodes))

	keyValIDs := make([]int32, 0)

	haveInfo := false

	for _, n := range nodes {
		ids = append(ids, int64(n.ID))

		lat := n.Lat
		lon := n.Lon

		lats = append(lats, model.ToCoordinate(bc.cfg.LatOffset, bc.cfg.Granularity, lat))
		lons = append(lons, model.ToCoordinate(bc.cfg.LonOffset, bc.cfg.Granularity, lon))

		info := n.GetInfo()
		if info != nil {
			haveInfo = true
		} else {
			info = &model.Info{Visible: true}
		}

		versions = append(versions, info.Version)
		uids = append(uids, int32(info.UID))
		ts = append(ts, fromTimestamp(bc.cfg.DateGranularity, info.Timestamp))
		cs = append(cs, info.Changeset)
		usids = append(usids, bc.table.IndexOf(info.User))
		visibilities = append(visibilities, info.Visible)

		kIDs, vIDs := calcTagIDs(n.Tags, bc.table)
		for i, k := range kIDs {
			keyValIDs = append(keyValIDs, int32(k))
			keyValIDs = append(keyValIDs, int32(vIDs[i]))
		}

		keyValIDs = append(keyValIDs, 0)
	}

	dn.Id = model.CalcDeltas(ids)
	dn.Lat = model.CalcDeltas(lats)
	dn.Lon = model.CalcDeltas(lons)
	dn.KeysVals = keyValIDs

	// Omit DenseInfo entirely when no node carried one: it is optional on
	// the wire and an all-zero block would just bloat the blob.
	if haveInfo {
		// version is the one DenseInfo column stored plain on the wire.
		dn.Denseinfo = &pb.DenseInfo{
			Version:   versions,
			Timestamp: model.CalcDeltas(ts),
			Changeset: model.CalcDeltas(cs),
			Uid:       model.CalcDeltas(uids),
			UserSid:   model.CalcDeltas(usids),
			Visible:   visibilities,
		}
	}

	return dn
}

func (bc *blockContext) extractWays(ways []*model.Way) []*pb.Way {
	result := make([]*pb.Way, 0, len(ways))

	for _, w := range ways {
		var refs []int64

		for _, r := range w.NodeIDs {
			refs = append(refs, int64(r))
		}

		keyIDs, valIDs := calcTagIDs(w.Tags, bc.table)

		way := &pb.Way{
			Id:   proto.Int64(int64(w.ID)),
			Keys: keyIDs,
			Vals: valIDs,
			Info: toInfoPb(w.Info, bc.table, bc.cfg.DateGranularity),
			Refs: model.CalcDeltas(refs),
		}

		if len(w.Locations) != 0 {
			lats := make([]int64, len(w.Locations))
			lons := make([]int64, len(w.Locations))

			for i, loc := range w.Locations {
				lats[i] = model.ToCoordinate(bc.cfg.LatOffset, bc.cfg.Granularity, loc.Lat)
				lons[i] = model.ToCoordinate(bc.cfg.LonOffset, bc.cfg.Granularity, loc.Lon)
			}

			way.Lat = model.CalcDeltas(lats)
			way.Lon = model.CalcDeltas(lons)
		}

		result = append(result, way)
	}

	return result
}

func (bc *blockContext) extractRelations(relations []*model.Relation) []*pb.Relation {
	result := make([]*pb.Relation, 0, len(relations))

	for _, r := range relations {
		keyIDs, valIDs := calcTagIDs(r.Tags, bc.table)
		memids := make([]int64, len(r.Members))
		roleids := make([]int32, len(r.Members))
		types := make([]pb.Relation_MemberType, len(r.Members))

		for i, m := range r.Members {
			memids[i] = int64(m.ID)
			roleids[i] = bc.table.IndexOf(m.Role)
			types[i] = pb.Relation_MemberType(m.Type)
		}

		relation := &pb.Relation{
			Id:       proto.Int64(int64(r.ID)),
			Keys:     keyIDs,
			Vals:     valIDs,
			Info:     toInfoPb(r.Info, bc.table, bc.cfg.DateGranularity),
			RolesSid: roleids,
			Memids:   model.CalcDeltas(memids),
			Types:    types,
		}

		result = append(result, relation)
	}

	return result
}

func extractMemberRoles(strings *Strings, r *model.Relation) {
	for _, m := range r.Members {
		strings.Add(m.Role)
	}
}

func extractTagsAndInfo(strings *Strings, e model.Entity) {
	for k, v := range e.GetTags() {
		strings.Add(k)
		strings.Add(v)
	}

	if info := e.GetInfo(); info != nil {
		strings.Add(info.User)
	}
}

func calcTagIDs(tags map[string]string, table *Table) (keyIDs []uint32, valIDs []uint32) {
	keys := make([]string, 0, len(tags))

	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		keyIDs = append(keyIDs, uint32(table.IndexOf(k)))
		valIDs = append(valIDs, uint32(table.IndexOf(tags[k])))
	}

	return keyIDs, valIDs
}

func toInfoPb(info *model.Info, table *Table, dateGranularity int32) *pb.Info {
	if info == nil {
		return nil
	}

	pbInfo := &pb.Info{
		Version:   proto.Int32(info.Version),
		Timestamp: proto.Int64(info.Timestamp.UTC().UnixMilli() / int64(dateGranularity)),
		Changeset: proto.Int64(info.Changeset),
		Uid:       proto.Int32(int32(info.UID)),
		UserSid:   proto.Int32(table.IndexOf(info.User)),
		Visible:   proto.Bool(info.Visible),
	}

	return pbInfo
}

// fromTimestamp converts a timestamp of type Time to a count of units of
// granularity milliseconds.
func fromTimestamp(granularity int32, timestamp time.Time) int64 {
	millis := timestamp.UnixMilli()

	return millis / int64(granularity)
}
