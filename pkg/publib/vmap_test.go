package publib

import (
	"sync"
	"testing"
)

func TestVMap_Basic(t *testing.T) {
	vm := NewVMap[string, int]()

	vm.Set("a", 1)
	vm.Set("b", 2)
	if got := vm.Get("a"); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
	if got := vm.Get("missing"); got != 0 {
		t.Errorf("expected zero value for missing key, got %d", got)
	}
	if _, ok := vm.Lookup("missing"); ok {
		t.Error("lookup must report missing keys")
	}
	if v, ok := vm.Lookup("b"); !ok || v != 2 {
		t.Errorf("expected (2, true), got (%d, %v)", v, ok)
	}
	if vm.Len() != 2 {
		t.Errorf("expected len 2, got %d", vm.Len())
	}

	vm.Delete("a")
	vm.Delete("a") // absent delete is a no-op
	if vm.Len() != 1 {
		t.Errorf("expected len 1 after delete, got %d", vm.Len())
	}
}

func TestVMap_RangeEarlyStop(t *testing.T) {
	vm := NewVMap[int, string]()
	for i := 0; i < 10; i++ {
		vm.Set(i, "v")
	}

	visited := 0
	vm.Range(func(k int, v string) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("expected range to stop after 3, got %d", visited)
	}
}

func TestVMap_Make(t *testing.T) {
	var vm VMap[string, int]
	vm.Make()
	vm.Set("a", 1)
	if vm.Len() != 1 {
		t.Errorf("expected usable map after Make, got len %d", vm.Len())
	}
	vm.Make()
	if vm.Len() != 0 {
		t.Errorf("Make must reinitialize, got len %d", vm.Len())
	}
}

func TestVMap_Concurrent(t *testing.T) {
	vm := NewVMap[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vm.Set(i, i)
			_ = vm.Get(i)
		}(i)
	}
	wg.Wait()
	if vm.Len() != 50 {
		t.Errorf("expected 50 entries, got %d", vm.Len())
	}
}
