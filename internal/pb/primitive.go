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

// StringTable holds every distinct key, value, user name, and relation
// member role referenced anywhere within a PrimitiveBlock, indexed by
// position; index 0 is conventionally the empty string.
//
//	message StringTable {
//	    repeated bytes s = 1;
//	}
type StringTable struct {
	S []string
}

func (s *StringTable) GetS() []string {
	if s == nil {
		return nil
	}

	return s.S
}

func (s *StringTable) marshal() []byte {
	var out []byte

	for _, v := range s.S {
		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendString(out, v)
	}

	return out
}

func (s *StringTable) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		if f.num == 1 {
			s.S = append(s.S, string(f.data))
		}

		return nil
	})
}

// PrimitiveGroup holds a homogeneous batch of entities: exactly one of the
// five fields is populated by a well-formed writer (sort.Type_then_ID is
// what makes this grouping effective in practice).
//
//	message PrimitiveGroup {
//	    repeated Node nodes = 1;
//	    optional DenseNodes dense = 2;
//	    repeated Way ways = 3;
//	    repeated Relation relations = 4;
//	    repeated ChangeSet changesets = 5;
//	}
type PrimitiveGroup struct {
	Nodes     []*Node
	Dense     *DenseNodes
	Ways      []*Way
	Relations []*Relation
}

func (g *PrimitiveGroup) GetNodes() []*Node {
	if g == nil {
		return nil
	}

	return g.Nodes
}

func (g *PrimitiveGroup) GetDense() *DenseNodes {
	if g == nil {
		return nil
	}

	return g.Dense
}

func (g *PrimitiveGroup) GetWays() []*Way {
	if g == nil {
		return nil
	}

	return g.Ways
}

func (g *PrimitiveGroup) GetRelations() []*Relation {
	if g == nil {
		return nil
	}

	return g.Relations
}

func (g *PrimitiveGroup) marshal() ([]byte, error) {
	var out []byte

	for _, n := range g.Nodes {
		b, err := n.marshal()
		if err != nil {
			return nil, err
		}

		out = protowire.AppendTag(out, 1, protowire.BytesType)
		out = protowire.AppendBytes(out, b)
	}

	if g.Dense != nil {
		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendBytes(out, g.Dense.marshal())
	}

	for _, w := range g.Ways {
		b, err := w.marshal()
		if err != nil {
			return nil, err
		}

		out = protowire.AppendTag(out, 3, protowire.BytesType)
		out = protowire.AppendBytes(out, b)
	}

	for _, r := range g.Relations {
		b, err := r.marshal()
		if err != nil {
			return nil, err
		}

		out = protowire.AppendTag(out, 4, protowire.BytesType)
		out = protowire.AppendBytes(out, b)
	}

	return out, nil
}

func (g *PrimitiveGroup) unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			n := &Node{}
			if err := n.unmarshal(f.data); err != nil {
				return err
			}

			g.Nodes = append(g.Nodes, n)
		case 2:
			g.Dense = &DenseNodes{}

			return g.Dense.unmarshal(f.data)
		case 3:
			w := &Way{}
			if err := w.unmarshal(f.data); err != nil {
				return err
			}

			g.Ways = append(g.Ways, w)
		case 4:
			r := &Relation{}
			if err := r.unmarshal(f.data); err != nil {
				return err
			}

			g.Relations = append(g.Relations, r)
		}
		// field 5 (changesets) is intentionally left undecoded.

		return nil
	})
}

// PrimitiveBlock is the payload of an OSMData blob: a shared string table,
// the granularity/offset scheme in effect for every coordinate and
// timestamp in the block, and the primitive groups themselves.
//
//	message PrimitiveBlock {
//	    required StringTable stringtable = 1;
//	    repeated PrimitiveGroup primitivegroup = 2;
//	    optional int32 granularity = 17 [default = 100];
//	    optional int64 lat_offset = 19 [default = 0];
//	    optional int64 lon_offset = 20 [default = 0];
//	    optional int32 date_granularity = 18 [default = 1000];
//	}
type PrimitiveBlock struct {
	Stringtable     *StringTable
	Primitivegroup  []*PrimitiveGroup
	Granularity     *int32
	LatOffset       *int64
	LonOffset       *int64
	DateGranularity *int32
}

func (p *PrimitiveBlock) GetStringtable() *StringTable {
	if p == nil {
		return nil
	}

	return p.Stringtable
}

func (p *PrimitiveBlock) GetPrimitivegroup() []*PrimitiveGroup {
	if p == nil {
		return nil
	}

	return p.Primitivegroup
}

func (p *PrimitiveBlock) GetGranularity() int32 {
	if p == nil || p.Granularity == nil {
		return 100
	}

	return *p.Granularity
}

func (p *PrimitiveBlock) GetLatOffset() int64 {
	if p == nil || p.LatOffset == nil {
		return 0
	}

	return *p.LatOffset
}

func (p *PrimitiveBlock) GetLonOffset() int64 {
	if p == nil || p.LonOffset == nil {
		return 0
	}

	return *p.LonOffset
}

func (p *PrimitiveBlock) GetDateGranularity() int32 {
	if p == nil || p.DateGranularity == nil {
		return 1000
	}

	return *p.DateGranularity
}

func (p *PrimitiveBlock) Marshal() ([]byte, error) {
	var out []byte

	if p.Stringtable == nil {
		return nil, fmt.Errorf("pb: PrimitiveBlock.Stringtable is required")
	}

	out = protowire.AppendTag(out, 1, protowire.BytesType)
	out = protowire.AppendBytes(out, p.Stringtable.marshal())

	for _, g := range p.Primitivegroup {
		b, err := g.marshal()
		if err != nil {
			return nil, err
		}

		out = protowire.AppendTag(out, 2, protowire.BytesType)
		out = protowire.AppendBytes(out, b)
	}

	if p.LatOffset != nil {
		out = protowire.AppendTag(out, 19, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*p.LatOffset))
	}

	if p.LonOffset != nil {
		out = protowire.AppendTag(out, 20, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*p.LonOffset))
	}

	if p.Granularity != nil {
		out = protowire.AppendTag(out, 17, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*p.Granularity)))
	}

	if p.DateGranularity != nil {
		out = protowire.AppendTag(out, 18, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(uint32(*p.DateGranularity)))
	}

	return out, nil
}

func (p *PrimitiveBlock) Unmarshal(data []byte) error {
	return forEachField(data, func(f field) error {
		switch f.num {
		case 1:
			p.Stringtable = &StringTable{}

			return p.Stringtable.unmarshal(f.data)
		case 2:
			g := &PrimitiveGroup{}
			if err := g.unmarshal(f.data); err != nil {
				return err
			}

			p.Primitivegroup = append(p.Primitivegroup, g)
		case 17:
			p.Granularity = int32Ptr(int32(f.u64))
		case 18:
			p.DateGranularity = int32Ptr(int32(f.u64))
		case 19:
			p.LatOffset = int64Ptr(int64(f.u64))
		case 20:
			p.LonOffset = int64Ptr(int64(f.u64))
		}

		return nil
	})
}
