package common

import (
	"hash"
	"sync"

	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/sha3"
)

var sha256HasherPool = sync.Pool{New: func() any { return sha256.New() }}

var sha3HasherPool = sync.Pool{New: func() any { return sha3.New256() }}

// Sha256 computes the SHA-256 digest of the concatenation of the given parts.
func Sha256(parts ...[]byte) Hash {
	return digest(&sha256HasherPool, parts)
}

// Sha3 computes the SHA3-256 digest of the concatenation of the given parts.
func Sha3(parts ...[]byte) Hash {
	return digest(&sha3HasherPool, parts)
}

func digest(pool *sync.Pool, parts [][]byte) Hash {
	hasher := pool.Get().(hash.Hash)
	hasher.Reset()
	for _, part := range parts {
		hasher.Write(part)
	}
	var res Hash
	hasher.Sum(res[:0])
	pool.Put(hasher)
	return res
}
