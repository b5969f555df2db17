package kv

import (
	"github.com/annwhocodes/ResQMap/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

func encodeRoute(route datastructure.CachedRoute) ([]byte, error) {
	encoded, err := binary.Marshal(route)
	if err != nil {
		return nil, err
	}
	return compress(encoded)
}

func loadRoute(bbCompressed []byte) (datastructure.CachedRoute, error) {
	bb, err := decompress(bbCompressed)
	if err != nil {
		return datastructure.CachedRoute{}, err
	}

	var route datastructure.CachedRoute
	err = binary.Unmarshal(bb, &route)
	return route, err
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
