package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/stratum/core"
)

// Key prefixes for different data types
const (
	atomRecordPrefix     = "atmrec"
	atomCapsulePrefix    = "atmcap"
	atomLayerPrefix      = "atmlay"
	relationRecordPrefix = "relrec"
	relationFromPrefix   = "relfrm"
	relationToPrefix     = "relto"
	relationIDSeq        = "relrecseq"
	clusterRecordPrefix  = "clurec"
	clusterCapsulePrefix = "clucap"
	clusterIDSeq         = "clurecseq"
)

// makeAtomKey generates a key for an atom by ID.
func makeAtomKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", atomRecordPrefix, id))
}

// makeAtomCapsuleKey generates a composite key for the capsule index.
// Format: prefix:capsuleID:id
func makeAtomCapsuleKey(capsuleID string, id core.ID) []byte {
	prefix := atomCapsulePrefix + ":" + capsuleID + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialAtomCapsuleKey generates a prefix for capsule index scans.
func makePartialAtomCapsuleKey(capsuleID string) []byte {
	return []byte(atomCapsulePrefix + ":" + capsuleID + ":")
}

// makeAtomLayerKey generates a composite key for the layer index.
// Format: prefix:layer:id
func makeAtomLayerKey(layer core.Layer, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%d:", atomLayerPrefix, layer)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialAtomLayerKey generates a prefix for layer index scans.
func makePartialAtomLayerKey(layer core.Layer) []byte {
	return []byte(fmt.Sprintf("%s:%d:", atomLayerPrefix, layer))
}

// makeRelationKey generates a key for a relation by ID.
func makeRelationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", relationRecordPrefix, id))
}

// makeRelationEndpointKey generates a composite key for the endpoint indexes.
// Format: prefix:atomID:relationID
func makeRelationEndpointKey(prefix string, atomID, relationID core.ID) []byte {
	p := prefix + ":"
	buf := make([]byte, len(p)+16)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(atomID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(relationID))
	return buf
}

// makePartialRelationEndpointKey generates a prefix for endpoint index scans.
func makePartialRelationEndpointKey(prefix string, atomID core.ID) []byte {
	p := prefix + ":"
	buf := make([]byte, len(p)+8)
	offset := copy(buf, p)
	binary.BigEndian.PutUint64(buf[offset:], uint64(atomID))
	return buf
}

// makeClusterKey generates a key for a cluster by ID.
func makeClusterKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", clusterRecordPrefix, id))
}

// makeClusterCapsuleKey generates a composite key for the cluster capsule index.
// Format: prefix:capsuleID:id
func makeClusterCapsuleKey(capsuleID string, id core.ID) []byte {
	prefix := clusterCapsulePrefix + ":" + capsuleID + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialClusterCapsuleKey generates a prefix for cluster capsule scans.
func makePartialClusterCapsuleKey(capsuleID string) []byte {
	return []byte(clusterCapsulePrefix + ":" + capsuleID + ":")
}
