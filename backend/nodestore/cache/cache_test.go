package cache

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Fantom-foundation/Arbor/go/backend/nodestore"
	"github.com/Fantom-foundation/Arbor/go/backend/nodestore/memory"
	"github.com/Fantom-foundation/Arbor/go/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"
)

func TestCache_Implements(t *testing.T) {
	var s Store
	var _ nodestore.NodeStore = &s
	var _ nodestore.Deleter = &s
	var _ nodestore.BatchSaver = &s
}

func TestCache_LoadsAreServedFromCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := nodestore.NewMockNodeStore(ctrl)
	store.EXPECT().Load(common.Hash{1}).Return([]byte{1, 2}, true, nil).Times(1)

	registry := prometheus.NewRegistry()
	cache, err := New(store, Config{Capacity: 4, Name: "test", Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	for i := 0; i < 3; i++ {
		data, found, err := cache.Load(common.Hash{1})
		if err != nil || !found || !bytes.Equal(data, []byte{1, 2}) {
			t.Fatalf("unexpected load result: %x, %t, %v", data, found, err)
		}
	}
	if got := testutil.ToFloat64(cache.metrics.hits); got != 2 {
		t.Errorf("unexpected number of hits: %v", got)
	}
	if got := testutil.ToFloat64(cache.metrics.misses); got != 1 {
		t.Errorf("unexpected number of misses: %v", got)
	}
}

func TestCache_MissingNodesAreNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := nodestore.NewMockNodeStore(ctrl)
	store.EXPECT().Load(common.Hash{1}).Return(nil, false, nil).Times(2)

	cache, err := New(store, Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, found, err := cache.Load(common.Hash{1}); found || err != nil {
			t.Errorf("unexpected load result: %t, %v", found, err)
		}
	}
}

func TestCache_LoadErrorsArePropagated(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := nodestore.NewMockNodeStore(ctrl)
	injected := errors.New("injected")
	store.EXPECT().Load(common.Hash{1}).Return(nil, false, injected)

	cache, err := New(store, Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	if _, _, err := cache.Load(common.Hash{1}); !errors.Is(err, injected) {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestCache_SavedNodesAreCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := nodestore.NewMockNodeStore(ctrl)
	store.EXPECT().Save(common.Hash{1}, []byte{1})

	cache, err := New(store, Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	if err := cache.Save(common.Hash{1}, []byte{1}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if _, found, err := cache.Load(common.Hash{1}); !found || err != nil {
		t.Errorf("saved node should be served by cache: %t, %v", found, err)
	}
}

func TestCache_EvictionsAreCounted(t *testing.T) {
	registry := prometheus.NewRegistry()
	cache, err := New(memory.New(), Config{Capacity: 2, Name: "evict", Registerer: registry})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	for i := byte(0); i < 5; i++ {
		if err := cache.Save(common.Hash{i}, []byte{i}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
	}
	if got := cache.Len(); got != 2 {
		t.Errorf("unexpected cache size: %d", got)
	}
	if got := testutil.ToFloat64(cache.metrics.evictions); got != 3 {
		t.Errorf("unexpected number of evictions: %v", got)
	}
}

func TestCache_DeletionsAreNotCountedAsEvictions(t *testing.T) {
	cache, err := New(memory.New(), Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	for i := byte(0); i < 3; i++ {
		if err := cache.Save(common.Hash{i}, []byte{i}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
	}
	for i := byte(0); i < 3; i++ {
		if err := cache.Delete(common.Hash{i}); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
	}
	if got := cache.Len(); got != 0 {
		t.Errorf("unexpected cache size: %d", got)
	}
	if got := testutil.ToFloat64(cache.metrics.evictions); got != 0 {
		t.Errorf("deletions should not be counted as evictions, got %v", got)
	}
}

func TestCache_DeletionSupportFollowsWrappedStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache, err := New(nodestore.NewMockNodeStore(ctrl), Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	if nodestore.CanDelete(cache) {
		t.Errorf("cache on top of a store without deletes should not support deletes")
	}
	if err := cache.Delete(common.Hash{1}); err == nil {
		t.Errorf("deleting should fail")
	}

	cache, err = New(memory.New(), Config{Capacity: 4})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	if !nodestore.CanDelete(cache) {
		t.Errorf("cache on top of memory store should support deletes")
	}
	if err := cache.Save(common.Hash{1}, []byte{1}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}
	if err := cache.Delete(common.Hash{1}); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, found, _ := cache.Load(common.Hash{1}); found {
		t.Errorf("deleted node should be gone")
	}
}

func TestCache_DuplicateRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	config := Config{Capacity: 4, Name: "dup", Registerer: registry}
	if _, err := New(memory.New(), config); err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	if _, err := New(memory.New(), config); err == nil {
		t.Errorf("registering the same metrics twice should fail")
	}
}
