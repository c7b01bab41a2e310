package service

import (
	"fmt"
	"testing"

	"go-reservation-board/internal/domain/entity"
	"go-reservation-board/internal/store"
	"go-reservation-board/pkg/timeformat"

	"github.com/sirupsen/logrus"
)

type recordingApplier struct {
	applied []string
}

func (a *recordingApplier) ApplyPlacement(id, date, start, end, slotBase string) {
	a.applied = append(a.applied, id)
}

func newTestLayout(t *testing.T) (*SlotLayoutEngine, *store.BoardStore, *recordingApplier) {
	t.Helper()
	boardStore := store.NewBoardStore()
	applier := &recordingApplier{}
	grid := entity.SlotGrid{SlotMinutes: 120, DayStart: "09:00", DayEnd: "21:00"}
	engine := NewSlotLayoutEngine(logrus.New(), boardStore, grid, applier, 120)
	return engine, boardStore, applier
}

func seedBucket(boardStore *store.BoardStore, date, slotBase string, n int) {
	for i := 0; i < n; i++ {
		boardStore.Upsert(&entity.Reservation{
			ID:           fmt.Sprintf("ev-%d", i),
			CustomerID:   fmt.Sprintf("96650000000%d", i),
			Date:         date,
			Start:        slotBase,
			TimeSlotBase: slotBase,
			Type:         entity.TypeCheckup,
			Title:        fmt.Sprintf("Customer %c", 'A'+i),
		})
	}
}

func TestReflowProducesNonOverlappingSortedIntervals(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	boardStore.Upsert(&entity.Reservation{ID: "b", Date: "2025-03-10", TimeSlotBase: "11:00", Type: entity.TypeFollowup, Title: "Zahra"})
	boardStore.Upsert(&entity.Reservation{ID: "a", Date: "2025-03-10", TimeSlotBase: "11:00", Type: entity.TypeCheckup, Title: "Mona"})
	boardStore.Upsert(&entity.Reservation{ID: "c", Date: "2025-03-10", TimeSlotBase: "11:00", Type: entity.TypeCheckup, Title: "Amal"})

	placements := engine.Reflow("2025-03-10", "11:00")
	if len(placements) != 3 {
		t.Fatalf("got %d placements, want 3", len(placements))
	}

	// Checkups sort before followups, titles break ties.
	wantOrder := []string{"c", "a", "b"}
	for i, want := range wantOrder {
		if placements[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, placements[i].ID, want)
		}
	}

	prevEnd := -1
	for _, p := range placements {
		start := timeformat.MinutesOfDay(p.Start)
		end := timeformat.MinutesOfDay(p.End)
		if start >= end {
			t.Errorf("placement %s has empty interval [%s,%s)", p.ID, p.Start, p.End)
		}
		if start <= prevEnd {
			t.Errorf("placement %s overlaps previous (start %s, prev end %d)", p.ID, p.Start, prevEnd)
		}
		prevEnd = end
	}
}

func TestReflowIsIdempotent(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	seedBucket(boardStore, "2025-03-10", "11:00", 4)

	first := engine.Reflow("2025-03-10", "11:00")
	second := engine.Reflow("2025-03-10", "11:00")

	if len(first) != len(second) {
		t.Fatalf("placement counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("placement %d changed on second reflow: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestReflowDurationByDensity(t *testing.T) {
	tests := []struct {
		n            int
		wantDuration int
	}{
		{5, 20},
		{7, 15},
	}

	for _, tt := range tests {
		engine, boardStore, _ := newTestLayout(t)
		seedBucket(boardStore, "2025-03-10", "11:00", tt.n)

		placements := engine.Reflow("2025-03-10", "11:00")
		if len(placements) != tt.n {
			t.Fatalf("got %d placements, want %d", len(placements), tt.n)
		}
		for _, p := range placements {
			duration := timeformat.MinutesOfDay(p.End) - timeformat.MinutesOfDay(p.Start)
			if duration != tt.wantDuration {
				t.Errorf("bucket of %d: duration %d, want %d", tt.n, duration, tt.wantDuration)
			}
		}
	}
}

func TestReflowOffsetsIncludeGap(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	// The 11:21 and 12:59 creations both normalize into the 11:00 bucket.
	boardStore.Upsert(&entity.Reservation{ID: "x", Date: "2025-03-10", TimeSlotBase: "11:00", Start: "11:21", Title: "A"})
	boardStore.Upsert(&entity.Reservation{ID: "y", Date: "2025-03-10", TimeSlotBase: "11:00", Start: "12:59", Title: "B"})

	placements := engine.Reflow("2025-03-10", "11:00")
	if len(placements) != 2 {
		t.Fatalf("got %d placements, want 2", len(placements))
	}
	if placements[0].Start != "11:00" {
		t.Errorf("first start = %s, want 11:00", placements[0].Start)
	}
	gap := timeformat.MinutesOfDay(placements[1].Start) - timeformat.MinutesOfDay(placements[0].Start)
	if gap != 20+1 {
		t.Errorf("second offset = %d minutes, want duration+1 = 21", gap)
	}
}

func TestReflowSkipsCancelledAndConversation(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	boardStore.Upsert(&entity.Reservation{ID: "live", Date: "2025-03-10", TimeSlotBase: "11:00", Title: "A"})
	boardStore.Upsert(&entity.Reservation{ID: "gone", Date: "2025-03-10", TimeSlotBase: "11:00", Title: "B", Cancelled: true})
	boardStore.Upsert(&entity.Reservation{ID: "chat", Date: "2025-03-10", TimeSlotBase: "11:00", Title: "C", Type: entity.TypeConversation})

	placements := engine.Reflow("2025-03-10", "11:00")
	if len(placements) != 1 || placements[0].ID != "live" {
		t.Fatalf("placements = %+v, want only live", placements)
	}
}

func TestReflowUnstampedFallback(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	// Raw start inside the window but no bucket stamp yet.
	boardStore.Upsert(&entity.Reservation{ID: "fresh", Date: "2025-03-10", Start: "12:30", Title: "A"})
	// Outside the window.
	boardStore.Upsert(&entity.Reservation{ID: "far", Date: "2025-03-10", Start: "15:00", Title: "B"})

	placements := engine.Reflow("2025-03-10", "11:00")
	if len(placements) != 1 || placements[0].ID != "fresh" {
		t.Fatalf("placements = %+v, want only fresh", placements)
	}

	// The reflow stamps the bucket, so strict mode now sees it.
	strict := engine.ReflowStrict("2025-03-10", "11:00")
	if len(strict) != 1 {
		t.Fatalf("strict placements = %+v, want the stamped item", strict)
	}
}

func TestReflowStrictIgnoresUnstamped(t *testing.T) {
	engine, boardStore, _ := newTestLayout(t)
	boardStore.Upsert(&entity.Reservation{ID: "fresh", Date: "2025-03-10", Start: "12:30", Title: "A"})

	if placements := engine.ReflowStrict("2025-03-10", "11:00"); len(placements) != 0 {
		t.Fatalf("strict placements = %+v, want none", placements)
	}
}

func TestReflowEmptyBucketIsNoOp(t *testing.T) {
	engine, _, applier := newTestLayout(t)
	if placements := engine.Reflow("2025-03-10", "11:00"); placements != nil {
		t.Fatalf("placements = %+v, want nil", placements)
	}
	if len(applier.applied) != 0 {
		t.Fatal("nothing should be applied for an empty bucket")
	}
}

func TestReflowMovedTargetsOnlyMovedItem(t *testing.T) {
	engine, boardStore, applier := newTestLayout(t)
	seedBucket(boardStore, "2025-03-10", "11:00", 3)

	placement, ok := engine.ReflowMoved("2025-03-10", "11:00", "ev-1")
	if !ok {
		t.Fatal("moved item should be placed")
	}
	if placement.ID != "ev-1" {
		t.Fatalf("placement for %s, want ev-1", placement.ID)
	}
	if len(applier.applied) != 1 || applier.applied[0] != "ev-1" {
		t.Fatalf("applied = %v, want only ev-1", applier.applied)
	}

	// Neighbors keep their stored times untouched.
	neighbor, _ := boardStore.Get("ev-0")
	if neighbor.Start != "11:00" {
		t.Errorf("neighbor start mutated to %s", neighbor.Start)
	}
}

func TestReflowMovedMissingItemSkipsOffset(t *testing.T) {
	engine, boardStore, applier := newTestLayout(t)
	seedBucket(boardStore, "2025-03-10", "11:00", 2)

	if _, ok := engine.ReflowMoved("2025-03-10", "11:00", "ghost"); ok {
		t.Fatal("missing item should not be placed")
	}
	if len(applier.applied) != 0 {
		t.Fatalf("applied = %v, want none", applier.applied)
	}
}
