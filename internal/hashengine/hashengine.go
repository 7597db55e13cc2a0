// Package hashengine defines the hash capability that the worker pool
// drives. The actual RandomX algorithm is an external collaborator per the
// core mining engine's contract: this package only describes the shape of
// that collaborator (cache/dataset/VM construction, reinitialization, and
// hashing) so the worker pool can be built and tested against a fake
// implementation, with internal/randomx supplying the real one.
package hashengine

import "fmt"

// Flag is a bitset of RandomX initialization hints.
type Flag uint64

const (
	FlagDefault     Flag = 0
	FlagLargePages  Flag = 1 << 0
	FlagHardAES     Flag = 1 << 1
	FlagFullMem     Flag = 1 << 2
	FlagJIT         Flag = 1 << 3
	FlagSecure      Flag = 1 << 4
	FlagArgon2SSSE3 Flag = 1 << 5
	FlagArgon2AVX2  Flag = 1 << 6
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }
func (f Flag) With(bit Flag) Flag { return f | bit }
func (f Flag) Without(bit Flag) Flag { return f &^ bit }

func (f Flag) String() string {
	names := []struct {
		bit  Flag
		name string
	}{
		{FlagLargePages, "large_pages"},
		{FlagHardAES, "hard_aes"},
		{FlagFullMem, "full_mem"},
		{FlagJIT, "jit"},
		{FlagSecure, "secure"},
		{FlagArgon2SSSE3, "argon2_ssse3"},
		{FlagArgon2AVX2, "argon2_avx2"},
	}
	if f == FlagDefault {
		return "default"
	}
	s := ""
	for _, n := range names {
		if f.Has(n.bit) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// Cache is the RandomX cache derived from a seed hash.
type Cache interface {
	Close()
}

// Dataset is the memory-heavy structure enabling fast (full-memory) mode.
type Dataset interface {
	Close()
}

// VM evaluates the hash function against an input blob.
type VM interface {
	// ReinitCache reinitializes the VM's cache in place, avoiding a full
	// VM rebuild when only the seed changed.
	ReinitCache(cache Cache) error
	// ReinitDataset reinitializes the VM's dataset in place.
	ReinitDataset(dataset Dataset) error
	CalculateHash(input []byte) ([32]byte, error)
	Close()
}

// Engine constructs caches, datasets, and VMs. A single Engine is shared by
// every worker; each worker owns the Cache/Dataset/VM instances it builds
// from it.
type Engine interface {
	RecommendedFlags() Flag
	NewCache(flags Flag, seed []byte) (Cache, error)
	NewDataset(flags Flag, cache Cache) (Dataset, error)
	NewVM(flags Flag, cache Cache, dataset Dataset) (VM, error)
}

// ErrUnsupportedFlags is returned by an Engine when a flag combination
// cannot be satisfied on the current host (e.g. huge pages unavailable).
var ErrUnsupportedFlags = fmt.Errorf("hashengine: unsupported flag combination")
