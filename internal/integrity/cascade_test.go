package integrity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/CarLinkRental/CarLinkRental/internal/common/errs"
)

// fakeTable 一张内存表：id -> parentID，用来搭建级联层级。
type fakeTable struct {
	mu   sync.Mutex
	rows map[string]string
}

func newFakeTable(rows map[string]string) *fakeTable {
	return &fakeTable{rows: rows}
}

func (t *fakeTable) childIDs(_ context.Context, parentIDs []string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		set[id] = struct{}{}
	}
	var ids []string
	for id, parent := range t.rows {
		if _, ok := set[parent]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *fakeTable) delete(_ context.Context, ids []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		delete(t.rows, id)
	}
	return nil
}

func (t *fakeTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func buildHierarchy() (*fakeTable, *fakeTable, *fakeTable, *fakeTable, *fakeTable) {
	states := newFakeTable(map[string]string{"s1": "", "s2": ""})
	cities := newFakeTable(map[string]string{"c1": "s1", "c2": "s1", "c3": "s2"})
	locations := newFakeTable(map[string]string{"l1": "c1", "l2": "c2", "l3": "c3"})
	cars := newFakeTable(map[string]string{"v1": "l1", "v2": "l1", "v3": "l3"})
	reservations := newFakeTable(map[string]string{"r1": "v1", "r2": "v2", "r3": "v3"})
	return states, cities, locations, cars, reservations
}

func newTestCascader(states, cities, locations, cars, reservations *fakeTable) *Cascader {
	return NewCascader(
		Level{Kind: KindState, Delete: states.delete},
		Level{Kind: KindCity, ChildIDs: cities.childIDs, Delete: cities.delete},
		Level{Kind: KindLocation, ChildIDs: locations.childIDs, Delete: locations.delete},
		Level{Kind: KindCar, ChildIDs: cars.childIDs, Delete: cars.delete},
		Level{Kind: KindReservation, ChildIDs: reservations.childIDs, Delete: reservations.delete},
	)
}

func TestCascadeDeleteState(t *testing.T) {
	states, cities, locations, cars, reservations := buildHierarchy()
	cascade := newTestCascader(states, cities, locations, cars, reservations)

	if err := cascade.Delete(context.Background(), KindState, []string{"s1"}); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}

	// s1 子树（c1,c2 / l1,l2 / v1,v2 / r1,r2）应全部消失，s2 子树不受影响。
	if states.size() != 1 {
		t.Fatalf("expected 1 state left, got %d", states.size())
	}
	if cities.size() != 1 {
		t.Fatalf("expected 1 city left, got %d", cities.size())
	}
	if locations.size() != 1 {
		t.Fatalf("expected 1 location left, got %d", locations.size())
	}
	if cars.size() != 1 {
		t.Fatalf("expected 1 car left, got %d", cars.size())
	}
	if reservations.size() != 1 {
		t.Fatalf("expected 1 reservation left, got %d", reservations.size())
	}
}

func TestCascadeDeleteFromMidLevel(t *testing.T) {
	states, cities, locations, cars, reservations := buildHierarchy()
	cascade := newTestCascader(states, cities, locations, cars, reservations)

	// 从车辆层发起：只应带走它的预订，父级不动。
	if err := cascade.Delete(context.Background(), KindCar, []string{"v1"}); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
	if cars.size() != 2 {
		t.Fatalf("expected 2 cars left, got %d", cars.size())
	}
	if reservations.size() != 2 {
		t.Fatalf("expected 2 reservations left, got %d", reservations.size())
	}
	if states.size() != 2 || cities.size() != 3 || locations.size() != 3 {
		t.Fatalf("ancestors must be untouched")
	}
}

func TestCascadeDeleteIdempotent(t *testing.T) {
	states, cities, locations, cars, reservations := buildHierarchy()
	cascade := newTestCascader(states, cities, locations, cars, reservations)

	ctx := context.Background()
	if err := cascade.Delete(ctx, KindState, []string{"s1"}); err != nil {
		t.Fatalf("first cascade: %v", err)
	}
	// 对已删除的根重跑必须是 no-op。
	if err := cascade.Delete(ctx, KindState, []string{"s1"}); err != nil {
		t.Fatalf("second cascade must be a no-op, got %v", err)
	}
	if states.size() != 1 {
		t.Fatalf("expected 1 state left, got %d", states.size())
	}
}

func TestCascadeFailureNamesLevel(t *testing.T) {
	states, cities, locations, cars, reservations := buildHierarchy()

	boom := fmt.Errorf("disk on fire")
	cascade := NewCascader(
		Level{Kind: KindState, Delete: states.delete},
		Level{Kind: KindCity, ChildIDs: cities.childIDs, Delete: cities.delete},
		Level{Kind: KindLocation, ChildIDs: locations.childIDs, Delete: func(ctx context.Context, ids []string) error {
			return boom
		}},
		Level{Kind: KindCar, ChildIDs: cars.childIDs, Delete: cars.delete},
		Level{Kind: KindReservation, ChildIDs: reservations.childIDs, Delete: reservations.delete},
	)

	err := cascade.Delete(context.Background(), KindState, []string{"s1"})
	var failure *errs.CascadeFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected CascadeFailure, got %v", err)
	}
	if failure.Level != string(KindLocation) {
		t.Fatalf("expected failure at location level, got %q", failure.Level)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause")
	}

	// 叶层已删、失败层保留：重试语义。
	if reservations.size() != 1 || cars.size() != 1 {
		t.Fatalf("levels below the failure must already be deleted")
	}
	if locations.size() != 3 || cities.size() != 3 || states.size() != 2 {
		t.Fatalf("failed level and above must be intact")
	}
}

func TestCascadeUnknownRoot(t *testing.T) {
	cascade := NewCascader(Level{Kind: KindState})
	if err := cascade.Delete(context.Background(), KindUser, []string{"u1"}); err == nil {
		t.Fatalf("expected error for kind outside the hierarchy")
	}
}
