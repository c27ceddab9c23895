package localmap

import (
	"reflect"
	"testing"
)

func TestFindPathIdentity(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}

	got := FindPath(TilePosition{X: 1, Y: 1}, TilePosition{X: 1, Y: 1}, cfg, nil)
	want := []TilePosition{{X: 1, Y: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPath(a, a) = %v, want %v", got, want)
	}
}

func TestFindPathIdentityOnBlockedTile(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}
	blocked := []TilePosition{{X: 1, Y: 1}}

	got := FindPath(TilePosition{X: 1, Y: 1}, TilePosition{X: 1, Y: 1}, cfg, blocked)
	want := []TilePosition{{X: 1, Y: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPath(a, a) on a blocked tile = %v, want %v", got, want)
	}
}

func TestFindPathCanonicalTieBreak(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}

	got := FindPath(TilePosition{X: 0, Y: 0}, TilePosition{X: 2, Y: 2}, cfg, nil)
	want := []TilePosition{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPath = %v, want %v", got, want)
	}
}

func TestFindPathRoutesAroundBlockedTiles(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}
	blocked := []TilePosition{{X: 1, Y: 0}, {X: 1, Y: 1}}

	got := FindPath(TilePosition{X: 0, Y: 0}, TilePosition{X: 2, Y: 0}, cfg, blocked)
	want := []TilePosition{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2},
		{X: 1, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPath = %v, want %v", got, want)
	}
}

func TestFindPathReturnsNilWhenUnreachable(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}
	wall := []TilePosition{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2}}

	if got := FindPath(TilePosition{X: 0, Y: 0}, TilePosition{X: 2, Y: 0}, cfg, wall); got != nil {
		t.Fatalf("expected nil for a walled-off goal, got %v", got)
	}
}

func TestFindPathRejectsInvalidEndpoints(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}
	cases := []struct {
		name        string
		start, goal TilePosition
		blocked     []TilePosition
	}{
		{name: "start out of bounds", start: TilePosition{X: -1, Y: 0}, goal: TilePosition{X: 2, Y: 2}},
		{name: "goal out of bounds", start: TilePosition{X: 0, Y: 0}, goal: TilePosition{X: 3, Y: 0}},
		{name: "goal blocked", start: TilePosition{X: 0, Y: 0}, goal: TilePosition{X: 2, Y: 2}, blocked: []TilePosition{{X: 2, Y: 2}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FindPath(tc.start, tc.goal, cfg, tc.blocked); got != nil {
				t.Fatalf("FindPath(%v, %v) = %v, want nil", tc.start, tc.goal, got)
			}
		})
	}
}

func TestFindPathAllowsBlockedStart(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}
	blocked := []TilePosition{{X: 0, Y: 0}}

	got := FindPath(TilePosition{X: 0, Y: 0}, TilePosition{X: 0, Y: 2}, cfg, blocked)
	want := []TilePosition{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindPath from a blocked start = %v, want %v", got, want)
	}
}

func TestFindPathOpenGridLengthMatchesManhattanDistance(t *testing.T) {
	cfg := Config{GridWidth: 8, GridHeight: 6}
	start := TilePosition{X: 1, Y: 1}
	goal := TilePosition{X: 6, Y: 4}

	got := FindPath(start, goal, cfg, nil)
	if wantLen := ManhattanDistance(start, goal) + 1; len(got) != wantLen {
		t.Fatalf("path length = %d, want %d", len(got), wantLen)
	}
	if got[0] != start || got[len(got)-1] != goal {
		t.Fatalf("path endpoints = %v and %v, want %v and %v", got[0], got[len(got)-1], start, goal)
	}
	for i := 1; i < len(got); i++ {
		if ManhattanDistance(got[i-1], got[i]) != 1 {
			t.Fatalf("tiles %v and %v are not cardinal neighbors", got[i-1], got[i])
		}
	}
}
