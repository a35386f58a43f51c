package common

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Hash is a 32-byte cryptographic digest. Roots, node identities and all
// other commitments produced by this module are Hashes.
type Hash [32]byte

// HashFromBytes converts the given slice into a Hash. The conversion fails
// if the slice does not have exactly the size of a hash.
func HashFromBytes(data []byte) (Hash, error) {
	var res Hash
	if len(data) != len(res) {
		return res, fmt.Errorf("invalid hash length %d, expected %d", len(data), len(res))
	}
	copy(res[:], data)
	return res, nil
}

// HashFromString parses a hex-encoded hash with an optional 0x prefix.
func HashFromString(str string) (Hash, error) {
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		str = str[2:]
	}
	data, err := hex.DecodeString(str)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(data)
}

// IsZero is true if all bytes of the hash are zero.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

// Compare provides a total order on hashes, consistent with bytes.Compare.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}
