package main

import "testing"

func containsRef(refs []EntityRef, kind EntityKind, idx int) bool {
	for _, r := range refs {
		if r.Kind == kind && r.Idx == idx {
			return true
		}
	}
	return false
}

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)
	grid.Insert(100, 100, EntityRef{Kind: KindEnemy, Idx: 0})

	if !containsRef(grid.Query(100, 100, KindEnemy), KindEnemy, 0) {
		t.Error("expected to find entity at (100,100)")
	}
	if containsRef(grid.Query(1000, 600, KindEnemy), KindEnemy, 0) {
		t.Error("should not find entity at (1000,600)")
	}
}

func TestSpatialGridKindsAreSeparate(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)
	grid.Insert(100, 100, EntityRef{Kind: KindGem, Idx: 3})
	if len(grid.Query(100, 100, KindEnemy)) != 0 {
		t.Error("expected enemy layer to be empty")
	}
	if !containsRef(grid.Query(100, 100, KindGem), KindGem, 3) {
		t.Error("expected gem in gem layer")
	}
}

func TestSpatialGridNeighborhood(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)
	// just across a cell boundary
	grid.Insert(SpatialCellSize+1, 10, EntityRef{Kind: KindEnemy, Idx: 1})
	if !containsRef(grid.Query(SpatialCellSize-1, 10, KindEnemy), KindEnemy, 1) {
		t.Error("expected neighbor cell to be searched")
	}
	// two cells away is outside the 3x3 block
	grid.Insert(SpatialCellSize*3+1, 10, EntityRef{Kind: KindEnemy, Idx: 2})
	if containsRef(grid.Query(SpatialCellSize-1, 10, KindEnemy), KindEnemy, 2) {
		t.Error("expected entity two cells away to be excluded")
	}
}

func TestSpatialGridClear(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)
	grid.Insert(500, 500, EntityRef{Kind: KindEnemy, Idx: 0})
	grid.Clear()

	if n := len(grid.Query(500, 500, KindEnemy)); n != 0 {
		t.Errorf("expected 0 results after clear, got %d", n)
	}
}

func TestSpatialGridOutsideArena(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)

	// spawn positions sit just outside the arena
	grid.Insert(-60, 300, EntityRef{Kind: KindEnemy, Idx: 0})
	if !containsRef(grid.Query(-40, 300, KindEnemy), KindEnemy, 0) {
		t.Error("expected to find entity at negative coords")
	}

	grid.Insert(5000, 5000, EntityRef{Kind: KindEnemy, Idx: 1})
	if !containsRef(grid.Query(1400, 800, KindEnemy), KindEnemy, 1) {
		t.Error("expected far entity to be clamped into the border cell")
	}
}

func TestSpatialGridQueryRadius(t *testing.T) {
	grid := NewSpatialGrid(1280, 720)
	grid.Insert(600, 360, EntityRef{Kind: KindGem, Idx: 0})
	grid.Insert(1200, 360, EntityRef{Kind: KindGem, Idx: 1})

	refs := grid.QueryRadius(300, 360, 400, KindGem, nil)
	if !containsRef(refs, KindGem, 0) {
		t.Error("expected gem inside radius box")
	}
	if containsRef(refs, KindGem, 1) {
		t.Error("expected far gem to be excluded")
	}
}

func TestSpatialGridRebuild(t *testing.T) {
	w := newTestWorld()
	e := w.newEnemy(EnemyChaser, 200, 200)
	w.Enemies = append(w.Enemies, e)
	dead := w.newEnemy(EnemyChaser, 210, 200)
	dead.Alive = false
	w.Enemies = append(w.Enemies, dead)

	w.Grid.Rebuild(w)
	refs := w.Grid.Query(200, 200, KindEnemy)
	if len(refs) != 1 || refs[0].Idx != 0 {
		t.Errorf("expected only the live enemy, got %v", refs)
	}

	e.X, e.Y = 900, 600
	w.Grid.Rebuild(w)
	if containsRef(w.Grid.Query(200, 200, KindEnemy), KindEnemy, 0) {
		t.Error("expected rebuild to drop stale position")
	}
}
