// Copyright 2025 Poiesic Systems
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


package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. The schema
// carries nested optional structs and closed enums that are validated on
// decode, so the serializers are maintained by hand rather than generated.

// IDMUS serializes IDs.
var IDMUS = idMUS{}

// AtomMUS serializes Atoms.
var AtomMUS = atomMUS{}

// RelationMUS serializes Relations.
var RelationMUS = relationMUS{}

// ClusterMUS serializes Clusters.
var ClusterMUS = clusterMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// Timestamps are persisted as microsecond unix times, matching the index key
// resolution.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

// zeroTimeMicros is what the zero time marshals to; decoding it restores the
// zero value instead of its epoch offset so IsZero keeps working.
var zeroTimeMicros = time.Time{}.UnixMicro()

func unmarshalTime(bs []byte) (time.Time, int, error) {
	v, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	if v == zeroTimeMicros {
		return time.Time{}, n, nil
	}
	return time.UnixMicro(v).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var n1 int
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func marshalStrings(s []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(s), bs)
	for _, v := range s {
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (s []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	s = make([]string, length)
	for i := 0; i < length; i++ {
		var n1 int
		s[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return s, n, nil
}

func sizeStrings(s []string) (size int) {
	size = varint.Int.Size(len(s))
	for _, v := range s {
		size += ord.String.Size(v)
	}
	return size
}

func marshalIDs(ids []ID, bs []byte) (n int) {
	n = varint.Int.Marshal(len(ids), bs)
	for _, id := range ids {
		n += IDMUS.Marshal(id, bs[n:])
	}
	return n
}

func unmarshalIDs(bs []byte) (ids []ID, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	ids = make([]ID, length)
	for i := 0; i < length; i++ {
		var n1 int
		ids[i], n1, err = IDMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return ids, n, nil
}

func sizeIDs(ids []ID) (size int) {
	size = varint.Int.Size(len(ids))
	for _, id := range ids {
		size += IDMUS.Size(id)
	}
	return size
}

func marshalDaci(d *DACIRoles, bs []byte) (n int) {
	n = ord.Bool.Marshal(d != nil, bs)
	if d == nil {
		return n
	}
	n += ord.String.Marshal(d.Driver, bs[n:])
	n += ord.String.Marshal(d.Approver, bs[n:])
	n += marshalStrings(d.Contributors, bs[n:])
	n += marshalStrings(d.Informed, bs[n:])
	return n
}

func unmarshalDaci(bs []byte) (d *DACIRoles, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	d = &DACIRoles{}
	var n1 int
	if d.Driver, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if d.Approver, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if d.Contributors, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if d.Informed, n1, err = unmarshalStrings(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	return d, n, nil
}

func sizeDaci(d *DACIRoles) (size int) {
	size = ord.Bool.Size(d != nil)
	if d == nil {
		return size
	}
	size += ord.String.Size(d.Driver)
	size += ord.String.Size(d.Approver)
	size += sizeStrings(d.Contributors)
	size += sizeStrings(d.Informed)
	return size
}

func marshalMatrix(m *DecisionMatrix, bs []byte) (n int) {
	n = ord.Bool.Marshal(m != nil, bs)
	if m == nil {
		return n
	}
	n += varint.Int.Marshal(int(m.Impact), bs[n:])
	n += varint.Int.Marshal(int(m.Reversibility), bs[n:])
	return n
}

func unmarshalMatrix(bs []byte) (m *DecisionMatrix, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return nil, n, err
	}
	m = &DecisionMatrix{}
	var v, n1 int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	m.Impact = Impact(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	m.Reversibility = Reversibility(v)
	n += n1
	return m, n, nil
}

func sizeMatrix(m *DecisionMatrix) (size int) {
	size = ord.Bool.Size(m != nil)
	if m == nil {
		return size
	}
	size += varint.Int.Size(int(m.Impact))
	size += varint.Int.Size(int(m.Reversibility))
	return size
}

type atomMUS struct{}

func (atomMUS) Marshal(a Atom, bs []byte) (n int) {
	n = IDMUS.Marshal(a.Id, bs)
	n += ord.String.Marshal(a.CapsuleId, bs[n:])
	n += ord.String.Marshal(a.Statement, bs[n:])
	n += varint.Int.Marshal(int(a.Kind), bs[n:])
	n += varint.Int.Marshal(a.Confidence, bs[n:])
	n += varint.Int.Marshal(int(a.Layer), bs[n:])
	n += varint.Int.Marshal(int(a.Status), bs[n:])
	n += ord.String.Marshal(a.SourceDocumentId, bs[n:])
	n += ord.String.Marshal(a.SourceName, bs[n:])
	n += IDMUS.Marshal(a.ClusterId, bs[n:])
	n += marshalVector(a.Vector, bs[n:])
	n += marshalDaci(a.Daci, bs[n:])
	n += marshalMatrix(a.Matrix, bs[n:])
	n += varint.Int.Marshal(int(a.AIAction), bs[n:])
	n += ord.String.Marshal(a.AIReasoning, bs[n:])
	n += marshalTime(a.CreatedAt, bs[n:])
	n += marshalTime(a.UpdatedAt, bs[n:])
	return n
}

func (atomMUS) Unmarshal(bs []byte) (a Atom, n int, err error) {
	var n1, v int
	if a.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return a, n1, err
	}
	n = n1
	if a.CapsuleId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Statement, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	a.Kind = AtomKind(v)
	n += n1
	if a.Confidence, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	a.Layer = Layer(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	a.Status = AtomStatus(v)
	n += n1
	if a.SourceDocumentId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.SourceName, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.ClusterId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Daci, n1, err = unmarshalDaci(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.Matrix, n1, err = unmarshalMatrix(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	a.AIAction = AIAction(v)
	n += n1
	if a.AIReasoning, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	if a.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return a, n + n1, err
	}
	n += n1
	return a, n, nil
}

func (atomMUS) Size(a Atom) (size int) {
	size = IDMUS.Size(a.Id)
	size += ord.String.Size(a.CapsuleId)
	size += ord.String.Size(a.Statement)
	size += varint.Int.Size(int(a.Kind))
	size += varint.Int.Size(a.Confidence)
	size += varint.Int.Size(int(a.Layer))
	size += varint.Int.Size(int(a.Status))
	size += ord.String.Size(a.SourceDocumentId)
	size += ord.String.Size(a.SourceName)
	size += IDMUS.Size(a.ClusterId)
	size += sizeVector(a.Vector)
	size += sizeDaci(a.Daci)
	size += sizeMatrix(a.Matrix)
	size += varint.Int.Size(int(a.AIAction))
	size += ord.String.Size(a.AIReasoning)
	size += sizeTime(a.CreatedAt)
	size += sizeTime(a.UpdatedAt)
	return size
}

type relationMUS struct{}

func (relationMUS) Marshal(r Relation, bs []byte) (n int) {
	n = IDMUS.Marshal(r.Id, bs)
	n += IDMUS.Marshal(r.FromAtomId, bs[n:])
	n += IDMUS.Marshal(r.ToAtomId, bs[n:])
	n += varint.Int.Marshal(int(r.Type), bs[n:])
	n += varint.Int.Marshal(r.Confidence, bs[n:])
	n += marshalTime(r.CreatedAt, bs[n:])
	return n
}

func (relationMUS) Unmarshal(bs []byte) (r Relation, n int, err error) {
	var n1, v int
	if r.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return r, n1, err
	}
	n = n1
	if r.FromAtomId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.ToAtomId, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	r.Type = RelationType(v)
	n += n1
	if r.Confidence, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	return r, n, nil
}

func (relationMUS) Size(r Relation) (size int) {
	size = IDMUS.Size(r.Id)
	size += IDMUS.Size(r.FromAtomId)
	size += IDMUS.Size(r.ToAtomId)
	size += varint.Int.Size(int(r.Type))
	size += varint.Int.Size(r.Confidence)
	size += sizeTime(r.CreatedAt)
	return size
}

type clusterMUS struct{}

func (clusterMUS) Marshal(c Cluster, bs []byte) (n int) {
	n = IDMUS.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.CapsuleId, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Summary, bs[n:])
	n += marshalIDs(c.ItemIds, bs[n:])
	n += varint.Int.Marshal(int(c.Decision), bs[n:])
	n += marshalTime(c.CreatedAt, bs[n:])
	n += marshalTime(c.DecidedAt, bs[n:])
	return n
}

func (clusterMUS) Unmarshal(bs []byte) (c Cluster, n int, err error) {
	var n1, v int
	if c.Id, n1, err = IDMUS.Unmarshal(bs); err != nil {
		return c, n1, err
	}
	n = n1
	if c.CapsuleId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Summary, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.ItemIds, n1, err = unmarshalIDs(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Decision = ClusterDecision(v)
	n += n1
	if c.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.DecidedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (clusterMUS) Size(c Cluster) (size int) {
	size = IDMUS.Size(c.Id)
	size += ord.String.Size(c.CapsuleId)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.Summary)
	size += sizeIDs(c.ItemIds)
	size += varint.Int.Size(int(c.Decision))
	size += sizeTime(c.CreatedAt)
	size += sizeTime(c.DecidedAt)
	return size
}
