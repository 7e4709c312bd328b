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

// Info carries per-version metadata for a sparse node, way, or relation.
//
//	message Info {
//	    optional int32 version = 1 [default = -1];
//	    optional int64 timestamp = 2;
//	    optional int64 changeset = 3;
//	    optional int32 uid = 4;
//	    optional int32 user_sid = 5;
//	    optional bool visible = 6;
//	}
type Info struct {
	Version   *int32
	Timestamp *int64
	Changeset *int64
	Uid       *int32
	UserSid   *int32
	Visible   *bool
}

func (i *Info) GetVersion() int32 {
	if i == nil || i.Version == nil {
		return -1
	}

	return *i.Version
}

func (i *Info) GetTimestamp() int64 {
	if i == nil || i.Timestamp == nil {
		return 0
	}

	return *i.Timestamp
}

func (i *Info) GetChangeset() int64 {
	if i == nil || i.Changeset == nil {
		return 0
	}

	return *i.Changeset
}

func (i *Info) GetUid() int32 {
	if i == nil || i.Uid == nil {
		return 0
	}

	return *i.Uid
}

func (i *Info) GetUserSid() int32 {
	if i == nil || i.UserSid == nil {
		return 0
	}

	return *i.UserSid
}

func (i *Info) GetVisible() bool {
	if i == nil || i.Visible == nil {
		return true
	}

	return *i.Visible
}

func (i *Info) marshal() []byte {
	var out []byte

	if i.Version != nil {
		out = protowire.AppendTag(out, 1, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*i.Version)))
	}

	if i.Timestamp != nil {
		out = protowire.AppendTag(out, 2, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*i.Timestamp))
	}

	if i.Changeset != nil {
		out = protowire.AppendTag(out, 3, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*i.Changeset))
	}

	if i.Uid != nil {
		out = protowire.AppendTag(out, 4, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*i.Uid)))
	}

	if i.UserSid != nil {
		out = protowire.AppendTag(out, 5, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*i.UserSid)))
	}

	if i.Visible != nil {
		out = protowire.AppendTag(out, 6, protowire.VarintType)
		if *i.Visible {
			out = protowire.AppendVarint(out, 1)
		} else {
			out = protowire.AppendVarint(out, 0)
		}
	}

	return out
}

func (i *Info) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			i.Version = int32Ptr(int32(f.u64))
		case 2:
			i.Timestamp = int64Ptr(int64(f.u64))
		case 3:
			i.Changeset = int64Ptr(int64(f.u64))
		case 4:
			i.Uid = int32Ptr(int32(f.u64))
		case 5:
			i.UserSid = int32Ptr(int32(f.u64))
		case 6:
			i.Visible = boolPtr(f.u64 != 0)
		}

		return nil
	})
}

// DenseInfo is the struct-of-arrays analogue of Info used inside
// DenseNodes, with every array delta-encoded except Version and Visible.
//
//	message DenseInfo {
//	    repeated int32 version = 1 [packed = true];
//	    repeated sint64 timestamp = 2 [packed = true];
//	    repeated sint64 changeset = 3 [packed = true];
//	    repeated sint32 uid = 4 [packed = true];
//	    repeated sint32 user_sid = 5 [packed = true];
//	    repeated bool visible = 6 [packed = true];
//	}
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	Uid       []int32
	UserSid   []int32
	Visible   []bool
}

func (d *DenseInfo) GetVersion() []int32 {
	if d == nil {
		return nil
	}

	return d.Version
}

func (d *DenseInfo) GetTimestamp() []int64 {
	if d == nil {
		return nil
	}

	return d.Timestamp
}

func (d *DenseInfo) GetChangeset() []int64 {
	if d == nil {
		return nil
	}

	return d.Changeset
}

func (d *DenseInfo) GetUid() []int32 {
	if d == nil {
		return nil
	}

	return d.Uid
}

func (d *DenseInfo) GetUserSid() []int32 {
	if d == nil {
		return nil
	}

	return d.UserSid
}

func (d *DenseInfo) GetVisible() []bool {
	if d == nil {
		return nil
	}

	return d.Visible
}

func (d *DenseInfo) marshal() []byte {
	var out []byte

	versions := make([]uint64, len(d.Version))
	for i, v := range d.Version {
		versions[i] = uint64(uint32(v))
	}

	out = appendPackedVarint(out, 1, versions)
	out = appendPackedSint(out, 2, d.Timestamp)
	out = appendPackedSint(out, 3, d.Changeset)

	uids := make([]int64, len(d.Uid))
	for i, v := range d.Uid {
		uids[i] = int64(v)
	}

	out = appendPackedSint(out, 4, uids)

	sids := make([]int64, len(d.UserSid))
	for i, v := range d.UserSid {
		sids[i] = int64(v)
	}

	out = appendPackedSint(out, 5, sids)
	out = appendPackedBool(out, 6, d.Visible)

	return out
}

func (d *DenseInfo) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		var err error

		switch f.num {
		case 1:
			d.Version, err = consumeInt32Slice(f.data)
		case 2:
			d.Timestamp, err = consumeSintSlice(f.data)
		case 3:
			d.Changeset, err = consumeSintSlice(f.data)
		case 4:
			d.Uid, err = consumeSint32Slice(f.data)
		case 5:
			d.UserSid, err = consumeSint32Slice(f.data)
		case 6:
			d.Visible, err = consumeBoolSlice(f.data)
		}

		return err
	})
}

// Node is a sparse (non-dense) node entry.
//
//	message Node {
//	    required sint64 id = 1;
//	    repeated uint32 keys = 2 [packed = true];
//	    repeated uint32 vals = 3 [packed = true];
//	    optional Info info = 4;
//	    required sint64 lat = 8;
//	    required sint64 lon = 9;
//	}
type Node struct {
	Id   *int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  *int64
	Lon  *int64
}

func (n *Node) GetId() int64 {
	if n == nil || n.Id == nil {
		return 0
	}

	return *n.Id
}

func (n *Node) GetKeys() []uint32 {
	if n == nil {
		return nil
	}

	return n.Keys
}

func (n *Node) GetVals() []uint32 {
	if n == nil {
		return nil
	}

	return n.Vals
}

func (n *Node) GetInfo() *Info {
	if n == nil {
		return nil
	}

	return n.Info
}

func (n *Node) GetLat() int64 {
	if n == nil || n.Lat == nil {
		return 0
	}

	return *n.Lat
}

func (n *Node) GetLon() int64 {
	if n == nil || n.Lon == nil {
		return 0
	}

	return *n.Lon
}

func (n *Node) marshal() ([]byte, error) {
	var out []byte

	if n.Id == nil || n.Lat == nil || n.Lon == nil {
		return nil, fmt.Errorf("pb: Node.Id, Lat, and Lon are required")
	}

	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, protowire.EncodeZigZag(*n.Id))

	keys := make([]uint64, len(n.Keys))
	for i, v := range n.Keys {
		keys[i] = uint64(v)
	}

	out = appendPackedVarint(out, 2, keys)

	vals := make([]uint64, len(n.Vals))
	for i, v := range n.Vals {
		vals[i] = uint64(v)
	}

	out = appendPackedVarint(out, 3, vals)

	if n.Info != nil {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, n.Info.marshal())
	}

	out = protowire.AppendTag(out, 8, protowire.VarintType)
	out = protowire.AppendVarint(out, protowire.EncodeZigZag(*n.Lat))
	out = protowire.AppendTag(out, 9, protowire.VarintType)
	out = protowire.AppendVarint(out, protowire.EncodeZigZag(*n.Lon))

	return out, nil
}

func (n *Node) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		var err error

		switch f.num {
		case 1:
			n.Id = int64Ptr(protowire.DecodeZigZag(f.u64))
		case 2:
			n.Keys, err = consumeUint32Slice(f.data)
		case 3:
			n.Vals, err = consumeUint32Slice(f.data)
		case 4:
			n.Info = &Info{}
			err = n.Info.unmarshal(f.data)
		case 8:
			n.Lat = int64Ptr(protowire.DecodeZigZag(f.u64))
		case 9:
			n.Lon = int64Ptr(protowire.DecodeZigZag(f.u64))
		}

		return err
	})
}

// DenseNodes is the struct-of-arrays, delta-encoded encoding most PBF
// writers use for nodes.
//
//	message DenseNodes {
//	    repeated sint64 id = 1 [packed = true];
//	    optional DenseInfo denseinfo = 5;
//	    repeated sint64 lat = 8 [packed = true];
//	    repeated sint64 lon = 9 [packed = true];
//	    repeated int32 keys_vals = 10 [packed = true];
//	}
type DenseNodes struct {
	Id        []int64
	Denseinfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (d *DenseNodes) GetId() []int64 {
	if d == nil {
		return nil
	}

	return d.Id
}

func (d *DenseNodes) GetDenseinfo() *DenseInfo {
	if d == nil {
		return nil
	}

	return d.Denseinfo
}

func (d *DenseNodes) GetLat() []int64 {
	if d == nil {
		return nil
	}

	return d.Lat
}

func (d *DenseNodes) GetLon() []int64 {
	if d == nil {
		return nil
	}

	return d.Lon
}

func (d *DenseNodes) GetKeysVals() []int32 {
	if d == nil {
		return nil
	}

	return d.KeysVals
}

func (d *DenseNodes) marshal() []byte {
	var out []byte

	out = appendPackedSint(out, 1, d.Id)

	if d.Denseinfo != nil {
		out = protowire.AppendTag(out, 5, protowire.BytesType)
		out = protowire.AppendBytes(out, d.Denseinfo.marshal())
	}

	out = appendPackedSint(out, 8, d.Lat)
	out = appendPackedSint(out, 9, d.Lon)

	kv := make([]uint64, len(d.KeysVals))
	for i, v := range d.KeysVals {
		kv[i] = uint64(uint32(v))
	}

	out = appendPackedVarint(out, 10, kv)

	return out
}

func (d *DenseNodes) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		var err error

		switch f.num {
		case 1:
			d.Id, err = consumeSintSlice(f.data)
		case 5:
			d.Denseinfo = &DenseInfo{}
			err = d.Denseinfo.unmarshal(f.data)
		case 8:
			d.Lat, err = consumeSintSlice(f.data)
		case 9:
			d.Lon, err = consumeSintSlice(f.data)
		case 10:
			d.KeysVals, err = consumeInt32Slice(f.data)
		}

		return err
	})
}

// Way is a way entry: an ordered list of (delta-encoded) node ids plus
// optional inline locations (the LocationsOnWays extension).
//
//	message Way {
//	    required int64 id = 1;
//	    repeated uint32 keys = 2 [packed = true];
//	    repeated uint32 vals = 3 [packed = true];
//	    optional Info info = 4;
//	    repeated sint64 refs = 8 [packed = true];
//	    repeated sint64 lat = 9 [packed = true];
//	    repeated sint64 lon = 10 [packed = true];
//	}
type Way struct {
	Id   *int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
	Lat  []int64
	Lon  []int64
}

func (w *Way) GetId() int64 {
	if w == nil || w.Id == nil {
		return 0
	}

	return *w.Id
}

func (w *Way) GetKeys() []uint32 {
	if w == nil {
		return nil
	}

	return w.Keys
}

func (w *Way) GetVals() []uint32 {
	if w == nil {
		return nil
	}

	return w.Vals
}

func (w *Way) GetInfo() *Info {
	if w == nil {
		return nil
	}

	return w.Info
}

func (w *Way) GetRefs() []int64 {
	if w == nil {
		return nil
	}

	return w.Refs
}

func (w *Way) GetLat() []int64 {
	if w == nil {
		return nil
	}

	return w.Lat
}

func (w *Way) GetLon() []int64 {
	if w == nil {
		return nil
	}

	return w.Lon
}

func (w *Way) marshal() ([]byte, error) {
	var out []byte

	if w.Id == nil {
		return nil, fmt.Errorf("pb: Way.Id is required")
	}

	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(*w.Id))

	keys := make([]uint64, len(w.Keys))
	for i, v := range w.Keys {
		keys[i] = uint64(v)
	}

	out = appendPackedVarint(out, 2, keys)

	vals := make([]uint64, len(w.Vals))
	for i, v := range w.Vals {
		vals[i] = uint64(v)
	}

	out = appendPackedVarint(out, 3, vals)

	if w.Info != nil {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, w.Info.marshal())
	}

	out = appendPackedSint(out, 8, w.Refs)
	out = appendPackedSint(out, 9, w.Lat)
	out = appendPackedSint(out, 10, w.Lon)

	return out, nil
}

func (w *Way) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		var err error

		switch f.num {
		case 1:
			w.Id = int64Ptr(int64(f.u64))
		case 2:
			w.Keys, err = consumeUint32Slice(f.data)
		case 3:
			w.Vals, err = consumeUint32Slice(f.data)
		case 4:
			w.Info = &Info{}
			err = w.Info.unmarshal(f.data)
		case 8:
			w.Refs, err = consumeSintSlice(f.data)
		case 9:
			w.Lat, err = consumeSintSlice(f.data)
		case 10:
			w.Lon, err = consumeSintSlice(f.data)
		}

		return err
	})
}

// Relation_MemberType enumerates the kind of entity a relation member
// refers to.
type Relation_MemberType int32

const (
	Relation_NODE     Relation_MemberType = 0
	Relation_WAY      Relation_MemberType = 1
	Relation_RELATION Relation_MemberType = 2
)

// Relation is a relation entry: parallel arrays of (delta-encoded) member
// ids, member types, and role string-table indices.
//
//	message Relation {
//	    enum MemberType { NODE = 0; WAY = 1; RELATION = 2; }
//	    required int64 id = 1;
//	    repeated uint32 keys = 2 [packed = true];
//	    repeated uint32 vals = 3 [packed = true];
//	    optional Info info = 4;
//	    repeated int32 roles_sid = 8 [packed = true];
//	    repeated sint64 memids = 9 [packed = true];
//	    repeated MemberType types = 10 [packed = true];
//	}
type Relation struct {
	Id       *int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []Relation_MemberType
}

func (r *Relation) GetId() int64 {
	if r == nil || r.Id == nil {
		return 0
	}

	return *r.Id
}

func (r *Relation) GetKeys() []uint32 {
	if r == nil {
		return nil
	}

	return r.Keys
}

func (r *Relation) GetVals() []uint32 {
	if r == nil {
		return nil
	}

	return r.Vals
}

func (r *Relation) GetInfo() *Info {
	if r == nil {
		return nil
	}

	return r.Info
}

func (r *Relation) GetRolesSid() []int32 {
	if r == nil {
		return nil
	}

	return r.RolesSid
}

func (r *Relation) GetMemids() []int64 {
	if r == nil {
		return nil
	}

	return r.Memids
}

func (r *Relation) GetTypes() []Relation_MemberType {
	if r == nil {
		return nil
	}

	return r.Types
}

func (r *Relation) marshal() ([]byte, error) {
	var out []byte

	if r.Id == nil {
		return nil, fmt.Errorf("pb: Relation.Id is required")
	}

	out = protowire.AppendTag(out, 1, protowire.VarintType)
	out = protowire.AppendVarint(out, uint64(*r.Id))

	keys := make([]uint64, len(r.Keys))
	for i, v := range r.Keys {
		keys[i] = uint64(v)
	}

	out = appendPackedVarint(out, 2, keys)

	vals := make([]uint64, len(r.Vals))
	for i, v := range r.Vals {
		vals[i] = uint64(v)
	}

	out = appendPackedVarint(out, 3, vals)

	if r.Info != nil {
		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, r.Info.marshal())
	}

	roles := make([]uint64, len(r.RolesSid))
	for i, v := range r.RolesSid {
		roles[i] = uint64(uint32(v))
	}

	out = appendPackedVarint(out, 8, roles)
	out = appendPackedSint(out, 9, r.Memids)

	types := make([]uint64, len(r.Types))
	for i, v := range r.Types {
		types[i] = uint64(uint32(v))
	}

	out = appendPackedVarint(out, 10, types)

	return out, nil
}

func (r *Relation) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		var err error

		switch f.num {
		case 1:
			r.Id = int64Ptr(int64(f.u64))
		case 2:
			r.Keys, err = consumeUint32Slice(f.data)
		case 3:
			r.Vals, err = consumeUint32Slice(f.data)
		case 4:
			r.Info = &Info{}
			err = r.Info.unmarshal(f.data)
		case 8:
			r.RolesSid, err = consumeInt32Slice(f.data)
		case 9:
			r.Memids, err = consumeSintSlice(f.data)
		case 10:
			var raw []int32

			raw, err = consumeInt32Slice(f.data)
			if err == nil {
				r.Types = make([]Relation_MemberType, len(raw))
				for i, v := range raw {
					r.Types[i] = Relation_MemberType(v)
				}
			}
		}

		return err
	})
}

// ChangeSet groups are part of the wire schema but are never decoded into
// model.Entity values; the format allows readers to skip them.
//
//	message ChangeSet {
//	    required int64 id = 1;
//	}
type ChangeSet struct {
	Id *int64
}

func (c *ChangeSet) GetId() int64 {
	if c == nil || c.Id == nil {
		return 0
	}

	return *c.Id
}
