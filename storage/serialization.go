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


package storage

import (
	"github.com/poiesic/stratum/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalAtom serializes an Atom to bytes.
func MarshalAtom(atom *core.Atom) []byte {
	buf := make([]byte, core.AtomMUS.Size(*atom))
	core.AtomMUS.Marshal(*atom, buf)
	return buf
}

// UnmarshalAtom deserializes an Atom from bytes.
func UnmarshalAtom(data []byte) (*core.Atom, error) {
	atom, _, err := core.AtomMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &atom, nil
}

// MarshalRelation serializes a Relation to bytes.
func MarshalRelation(relation *core.Relation) []byte {
	buf := make([]byte, core.RelationMUS.Size(*relation))
	core.RelationMUS.Marshal(*relation, buf)
	return buf
}

// UnmarshalRelation deserializes a Relation from bytes.
func UnmarshalRelation(data []byte) (*core.Relation, error) {
	relation, _, err := core.RelationMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &relation, nil
}

// MarshalCluster serializes a Cluster to bytes.
func MarshalCluster(cluster *core.Cluster) []byte {
	buf := make([]byte, core.ClusterMUS.Size(*cluster))
	core.ClusterMUS.Marshal(*cluster, buf)
	return buf
}

// UnmarshalCluster deserializes a Cluster from bytes.
func UnmarshalCluster(data []byte) (*core.Cluster, error) {
	cluster, _, err := core.ClusterMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &cluster, nil
}
