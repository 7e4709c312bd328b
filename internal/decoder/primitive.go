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
	"fmt"
	"time"
	"unicode/utf8"

	"m4o.io/pbf/v2/errs"
	"m4o.io/pbf/v2/internal/pb"
	"m4o.io/pbf/v2/model"
)

func parsePrimitiveBlock(buf []byte) ([]model.Entity, error) {
	blk := &pb.PrimitiveBlock{}
	if err := blk.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("%w: unable to unmarshal primitive block: %w", errs.Protobuf, err)
	}

	c := newBlockContext(blk)

	entities := make([]model.Entity, 0)

	for _, pg := range blk.GetPrimitivegroup() {
		nodes, err := c.decodeNodes(pg.GetNodes())
		if err != nil {
			return nil, err
		}

		entities = append(entities, nodes...)

		dense, err := c.decodeDenseNodes(pg.GetDense())
		if err != nil {
			return nil, err
		}

		entities = append(entities, dense...)

		ways, err := c.decodeWays(pg.GetWays())
		if err != nil {
			return nil, err
		}

		entities = append(entities, ways...)

		relations, err := c.decodeRelations(pg.GetRelations())
		if err != nil {
			return nil, err
		}

		entities = append(entities, relations...)
	}

	return entities, nil
}

type blockContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(pb *pb.PrimitiveBlock) *blockContext {
	return &blockContext{
		strings:         pb.GetStringtable().GetS(),
		granularity:     pb.GetGranularity(),
		latOffset:       pb.GetLatOffset(),
		lonOffset:       pb.GetLonOffset(),
		dateGranularity: pb.GetDateGranularity(),
	}
}

func (c *blockContext) str(index uint32) (string, error) {
	if int(index) >= len(c.strings) {
		return "", fmt.Errorf("%w: index %d, table size %d", errs.StringtableIndexOutOfBounds, index, len(c.strings))
	}

	s := c.strings[index]
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: index %d", errs.StringtableUTF8, index)
	}

	return s, nil
}

func (c *blockContext) decodeNodes(nodes []*pb.Node) ([]model.Entity, error) {
	entities := make([]model.Entity, len(nodes))

	for i, node := range nodes {
		tags, err := c.decodeTags(node.GetKeys(), node.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(node.GetInfo())
		if err != nil {
			return nil, err
		}

		if node.GetId() < 0 {
			return nil, fmt.Errorf("%w: node id %d", errs.NegativeIDOrIndex, node.GetId())
		}

		entities[i] = &model.Node{
			ID:   model.ID(node.GetId()),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, node.GetLat()),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, node.GetLon()),
		}
	}

	return entities, nil
}

func (c *blockContext) decodeDenseNodes(nodes *pb.DenseNodes) ([]model.Entity, error) {
	ids := nodes.GetId()
	lats := nodes.GetLat()
	lons := nodes.GetLon()

	if len(lats) != len(ids) || len(lons) != len(ids) {
		return nil, fmt.Errorf("%w: dense nodes carry %d ids but %d lats and %d lons",
			errs.Protobuf, len(ids), len(lats), len(lons))
	}

	entities := make([]model.Entity, len(ids))

	tic := c.newTagsContext(nodes.GetKeysVals())

	dic, err := c.newDenseInfoContext(nodes.GetDenseinfo(), len(ids))
	if err != nil {
		return nil, err
	}

	var id, lat, lon int64

	for i := range ids {
		id += ids[i]
		lat += lats[i]
		lon += lons[i]

		if id < 0 {
			return nil, fmt.Errorf("%w: dense node id %d", errs.NegativeIDOrIndex, id)
		}

		tags, err := tic.decodeTags()
		if err != nil {
			return nil, err
		}

		info := &model.Info{Visible: true}
		if dic != nil {
			info, err = dic.decodeInfo(i)
			if err != nil {
				return nil, err
			}
		}

		entities[i] = &model.Node{
			ID:   model.ID(id),
			Tags: tags,
			Info: info,
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon),
		}
	}

	return entities, nil
}

func (c *blockContext) decodeWays(nodes []*pb.Way) ([]model.Entity, error) {
	entities := make([]model.Entity, len(nodes))

	for i, node := range nodes {
		refs := node.GetRefs()
		nodeIDs := make([]model.ID, len(refs))

		var nodeID int64

		for j, delta := range refs {
			nodeID += delta
			if nodeID < 0 {
				return nil, fmt.Errorf("%w: way node ref %d", errs.NegativeIDOrIndex, nodeID)
			}

			nodeIDs[j] = model.ID(nodeID)
		}

		tags, err := c.decodeTags(node.GetKeys(), node.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(node.GetInfo())
		if err != nil {
			return nil, err
		}

		locations, err := c.decodeLocationsOnWay(node, len(nodeIDs))
		if err != nil {
			return nil, err
		}

		entities[i] = &model.Way{
			ID:        model.ID(node.GetId()),
			Tags:      tags,
			NodeIDs:   nodeIDs,
			Info:      info,
			Locations: locations,
		}
	}

	return entities, nil
}

// decodeLocationsOnWay decodes the optional inline node coordinates a
// LocationsOnWays-tagged file stores alongside each way's node refs. It
// returns nil for files that don't carry this extension. When present,
// the inline arrays must line up one-to-one with the way's refs.
func (c *blockContext) decodeLocationsOnWay(node *pb.Way, nrefs int) ([]model.LatLng, error) {
	lats := node.GetLat()
	lons := node.GetLon()

	if len(lats) == 0 && len(lons) == 0 {
		return nil, nil
	}

	if len(lats) != nrefs || len(lons) != nrefs {
		return nil, fmt.Errorf("%w: way %d has %d refs but %d/%d inline coordinates",
			errs.Protobuf, node.GetId(), nrefs, len(lats), len(lons))
	}

	locations := make([]model.LatLng, len(lats))

	var lat, lon int64

	for i := range lats {
		lat += lats[i]
		lon += lons[i]

		locations[i] = model.LatLng{
			Lat: model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon: model.ToDegrees(c.lonOffset, c.granularity, lon),
		}
	}

	return locations, nil
}

func (c *blockContext) decodeRelations(nodes []*pb.Relation) ([]model.Entity, error) {
	entities := make([]model.Entity, len(nodes))

	for i, node := range nodes {
		tags, err := c.decodeTags(node.GetKeys(), node.GetVals())
		if err != nil {
			return nil, err
		}

		info, err := c.decodeInfo(node.GetInfo())
		if err != nil {
			return nil, err
		}

		members, err := c.decodeMembers(node)
		if err != nil {
			return nil, err
		}

		entities[i] = &model.Relation{
			ID:      model.ID(node.GetId()),
			Tags:    tags,
			Info:    info,
			Members: members,
		}
	}

	return entities, nil
}

func (c *blockContext) decodeMembers(node *pb.Relation) ([]model.Member, error) {
	memids := node.GetMemids()
	memtypes := node.GetTypes()
	memroles := node.GetRolesSid()

	if len(memtypes) != len(memids) || len(memroles) != len(memids) {
		return nil, fmt.Errorf("%w: relation %d member arrays disagree: %d ids, %d types, %d roles",
			errs.Protobuf, node.GetId(), len(memids), len(memtypes), len(memroles))
	}

	members := make([]model.Member, len(memids))

	var memid int64

	for i := range memids {
		memid += memids[i]
		if memid < 0 {
			return nil, fmt.Errorf("%w: relation %d member id %d", errs.NegativeIDOrIndex, node.GetId(), memid)
		}

		role, err := c.str(uint32(memroles[i]))
		if err != nil {
			return nil, err
		}

		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: decodeMemberType(memtypes[i]),
			Role: role,
		}
	}

	return members, nil
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) (map[string]string, error) {
	if len(valIDs) != len(keyIDs) {
		return nil, fmt.Errorf("%w: %d tag keys but %d values", errs.Protobuf, len(keyIDs), len(valIDs))
	}

	tags := make(map[string]string, len(keyIDs))

	for i, keyID := range keyIDs {
		k, err := c.str(keyID)
		if err != nil {
			return nil, err
		}

		v, err := c.str(valIDs[i])
		if err != nil {
			return nil, err
		}

		tags[k] = v
	}

	return tags, nil
}

func (c *blockContext) decodeInfo(info *pb.Info) (*model.Info, error) {
	i := &model.Info{Visible: true}
	if info == nil {
		return i, nil
	}

	i.Version = info.GetVersion()
	i.Timestamp = toTimestamp(c.dateGranularity, info.GetTimestamp())
	i.Changeset = info.GetChangeset()
	i.UID = model.UID(info.GetUid())

	user, err := c.str(uint32(info.GetUserSid()))
	if err != nil {
		return nil, err
	}

	i.User = user

	if info.Visible != nil {
		i.Visible = info.GetVisible()
	}

	return i, nil
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo, n int) (*denseInfoContext, error) {
	if di == nil {
		return nil, nil
	}

	uids := make([]model.UID, len(di.GetUid()))
	for i, uid := range di.GetUid() {
		uids[i] = model.UID(uid)
	}

	dic := &denseInfoContext{
		dateGranularity: c.dateGranularity,
		str:             c.str,
		versions:        di.GetVersion(),
		uids:            uids,
		timestamps:      di.GetTimestamp(),
		changesets:      di.GetChangeset(),
		userSids:        di.GetUserSid(),
	}

	visibilities := di.GetVisible()
	if len(visibilities) != 0 {
		dic.visibilities = visibilities
	}

	// Each parallel array is either fully populated or omitted by the
	// writer; any other length cannot be lined up with the node ids.
	for _, l := range []int{
		len(dic.versions), len(dic.uids), len(dic.timestamps),
		len(dic.changesets), len(dic.userSids), len(dic.visibilities),
	} {
		if l != 0 && l != n {
			return nil, fmt.Errorf("%w: dense info array of length %d cannot cover %d nodes",
				errs.Protobuf, l, n)
		}
	}

	return dic, nil
}

type denseInfoContext struct {
	version   int32
	timestamp int64
	changeset int64
	uid       model.UID
	userSid   int32

	dateGranularity int32
	str             func(uint32) (string, error)
	versions        []int32
	uids            []model.UID
	timestamps      []int64
	changesets      []int64
	userSids        []int32
	visibilities    []bool
}

func (dic *denseInfoContext) decodeInfo(i int) (*model.Info, error) {
	// Unlike its siblings, version is stored plain, not delta coded.
	if len(dic.versions) != 0 {
		dic.version = dic.versions[i]
	}

	if len(dic.uids) != 0 {
		dic.uid += dic.uids[i]
	}

	if len(dic.timestamps) != 0 {
		dic.timestamp += dic.timestamps[i]
	}

	if len(dic.changesets) != 0 {
		dic.changeset += dic.changesets[i]
	}

	if len(dic.userSids) != 0 {
		dic.userSid += dic.userSids[i]
	}

	if dic.userSid < 0 {
		return nil, fmt.Errorf("%w: dense info user sid %d", errs.NegativeIDOrIndex, dic.userSid)
	}

	user, err := dic.str(uint32(dic.userSid))
	if err != nil {
		return nil, err
	}

	info := &model.Info{
		Version:   dic.version,
		UID:       dic.uid,
		Timestamp: toTimestamp(dic.dateGranularity, dic.timestamp),
		Changeset: dic.changeset,
		User:      user,
	}

	if len(dic.visibilities) == 0 {
		info.Visible = true
	} else {
		info.Visible = dic.visibilities[i]
	}

	return info, nil
}

type tagsContext struct {
	str     func(uint32) (string, error)
	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	tc := &tagsContext{str: c.str}

	if len(keyVals) != 0 {
		tc.keyVals = keyVals
	}

	return tc
}

func (tic *tagsContext) decodeTags() (map[string]string, error) {
	if tic.keyVals == nil {
		return map[string]string{}, nil
	}

	tags := make(map[string]string)
	i := tic.i

	for {
		if i >= len(tic.keyVals) {
			return nil, fmt.Errorf("%w: missing terminator", errs.InvalidDenseNodesKeysVals)
		}

		if tic.keyVals[i] <= 0 {
			break
		}

		if i+1 >= len(tic.keyVals) {
			return nil, fmt.Errorf("%w: dangling key", errs.InvalidDenseNodesKeysVals)
		}

		k, err := tic.str(uint32(tic.keyVals[i]))
		if err != nil {
			return nil, err
		}

		v, err := tic.str(uint32(tic.keyVals[i+1]))
		if err != nil {
			return nil, err
		}

		tags[k] = v
		i += 2
	}

	tic.i = i + 1

	return tags, nil
}

// decodeMemberType converts protobuf enum Relation_MemberType to an EntityType.
func decodeMemberType(mt pb.Relation_MemberType) model.EntityType {
	switch mt {
	case pb.Relation_WAY:
		return model.WAY
	case pb.Relation_RELATION:
		return model.RELATION
	default:
		return model.NODE
	}
}

// toTimestamp converts a timestamp with a specific granularity, in units of
// milliseconds, to a UTC timestamp of type Time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}
