package hashmap

import (
	"cmp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeusync/zecs/internal/core/models"
)

// Hasher maps a key to a bucket hash.
type Hasher[K any] func(K) uint64

// Algorithm selects the byte hash used by the hasher helpers.
type Algorithm uint8

const (
	// AlgorithmDJB2 is the multiplicative string hash hash*33 + b.
	AlgorithmDJB2 Algorithm = iota
	// AlgorithmXXHash uses xxhash64.
	AlgorithmXXHash
)

// ParseAlgorithm maps a config name to an Algorithm. Unknown names fall back to djb2.
func ParseAlgorithm(name string) (Algorithm, bool) {
	switch strings.ToLower(name) {
	case "", "djb2":
		return AlgorithmDJB2, true
	case "xxhash", "xxh64":
		return AlgorithmXXHash, true
	default:
		return AlgorithmDJB2, false
	}
}

func (a Algorithm) String() string {
	switch a {
	case AlgorithmXXHash:
		return "xxhash"
	default:
		return "djb2"
	}
}

// DJB2 hashes raw bytes with hash = hash*33 + b, seeded with 5381.
func DJB2(data []byte) uint64 {
	var hash uint64 = 5381
	for _, b := range data {
		hash = hash*33 + uint64(b)
	}
	return hash
}

func djb2String(s string) uint64 {
	var hash uint64 = 5381
	for i := 0; i < len(s); i++ {
		hash = hash*33 + uint64(s[i])
	}
	return hash
}

// BytesHasher returns a hasher over byte slices.
func BytesHasher(alg Algorithm) Hasher[[]byte] {
	if alg == AlgorithmXXHash {
		return xxhash.Sum64
	}
	return DJB2
}

// StringHasher returns a hasher over strings.
func StringHasher(alg Algorithm) Hasher[string] {
	if alg == AlgorithmXXHash {
		return xxhash.Sum64String
	}
	return djb2String
}

// UUIDHasher hashes the NUL-terminated prefix of an identity, so ids that
// compare equal always land in the same bucket.
func UUIDHasher(alg Algorithm) Hasher[models.UUID] {
	h := BytesHasher(alg)
	return func(id models.UUID) uint64 {
		return h(id.Bytes())
	}
}

// CompareUUID is the comparison function for identity keys.
func CompareUUID(a, b models.UUID) int {
	return models.Compare(a, b)
}

// CompareString is the comparison function for string keys.
func CompareString(a, b string) int {
	return strings.Compare(a, b)
}

// CompareOrdered compares integer-like keys, including pointer identities cast to uintptr.
func CompareOrdered[T cmp.Ordered](a, b T) int {
	return cmp.Compare(a, b)
}
