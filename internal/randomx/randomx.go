package randomx

/*
#cgo LDFLAGS: -lrandomx -lstdc++
#include <randomx.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/anonmine-dev/corexminer/internal/hashengine"
)

// Engine is the cgo-backed hashengine.Engine implementation.
type Engine struct{}

// New returns the production RandomX engine.
func New() *Engine { return &Engine{} }

func (Engine) RecommendedFlags() hashengine.Flag {
	return hashengine.Flag(C.randomx_get_flags())
}

// Cache wraps a randomx_cache*.
type Cache struct {
	ptr   C.randomx_cache
	flags hashengine.Flag
}

func (c *Cache) Close() {
	if c.ptr != nil {
		C.randomx_release_cache(c.ptr)
		c.ptr = nil
	}
}

func (Engine) NewCache(flags hashengine.Flag, seed []byte) (hashengine.Cache, error) {
	ptr := C.randomx_alloc_cache(C.randomx_flags(flags))
	if ptr == nil {
		return nil, fmt.Errorf("randomx: randomx_alloc_cache failed for flags %s: %w", flags, hashengine.ErrUnsupportedFlags)
	}
	if len(seed) == 0 {
		C.randomx_release_cache(ptr)
		return nil, fmt.Errorf("randomx: empty seed")
	}
	C.randomx_init_cache(ptr, unsafe.Pointer(&seed[0]), C.size_t(len(seed)))
	return &Cache{ptr: ptr, flags: flags}, nil
}

// Dataset wraps a randomx_dataset*.
type Dataset struct {
	ptr C.randomx_dataset
}

func (d *Dataset) Close() {
	if d.ptr != nil {
		C.randomx_release_dataset(d.ptr)
		d.ptr = nil
	}
}

func (Engine) NewDataset(flags hashengine.Flag, cache hashengine.Cache) (hashengine.Dataset, error) {
	c, ok := cache.(*Cache)
	if !ok {
		return nil, fmt.Errorf("randomx: NewDataset requires a *randomx.Cache")
	}
	ptr := C.randomx_alloc_dataset(C.randomx_flags(flags))
	if ptr == nil {
		return nil, fmt.Errorf("randomx: randomx_alloc_dataset failed: %w", hashengine.ErrUnsupportedFlags)
	}
	itemCount := C.randomx_dataset_item_count()
	C.randomx_init_dataset(ptr, c.ptr, 0, itemCount)
	return &Dataset{ptr: ptr}, nil
}

// VM wraps a randomx_vm*.
type VM struct {
	ptr     C.randomx_vm
	flags   hashengine.Flag
	cache   *Cache
	dataset *Dataset
}

func (Engine) NewVM(flags hashengine.Flag, cache hashengine.Cache, dataset hashengine.Dataset) (hashengine.VM, error) {
	c, _ := cache.(*Cache)
	var cPtr C.randomx_cache
	if c != nil {
		cPtr = c.ptr
	}
	var dPtr C.randomx_dataset
	var ds *Dataset
	if dataset != nil {
		ds, _ = dataset.(*Dataset)
		if ds != nil {
			dPtr = ds.ptr
		}
	}
	ptr := C.randomx_create_vm(C.randomx_flags(flags), cPtr, dPtr)
	if ptr == nil {
		return nil, fmt.Errorf("randomx: randomx_create_vm failed for flags %s: %w", flags, hashengine.ErrUnsupportedFlags)
	}
	return &VM{ptr: ptr, flags: flags, cache: c, dataset: ds}, nil
}

func (vm *VM) ReinitCache(cache hashengine.Cache) error {
	c, ok := cache.(*Cache)
	if !ok {
		return fmt.Errorf("randomx: ReinitCache requires a *randomx.Cache")
	}
	C.randomx_vm_set_cache(vm.ptr, c.ptr)
	vm.cache = c
	return nil
}

func (vm *VM) ReinitDataset(dataset hashengine.Dataset) error {
	d, ok := dataset.(*Dataset)
	if !ok {
		return fmt.Errorf("randomx: ReinitDataset requires a *randomx.Dataset")
	}
	C.randomx_vm_set_dataset(vm.ptr, d.ptr)
	vm.dataset = d
	return nil
}

func (vm *VM) CalculateHash(input []byte) ([32]byte, error) {
	var out [32]byte
	if len(input) == 0 {
		return out, fmt.Errorf("randomx: empty input")
	}
	C.randomx_calculate_hash(vm.ptr, unsafe.Pointer(&input[0]), C.size_t(len(input)), unsafe.Pointer(&out[0]))
	return out, nil
}

func (vm *VM) Close() {
	if vm.ptr != nil {
		C.randomx_destroy_vm(vm.ptr)
		vm.ptr = nil
	}
}
