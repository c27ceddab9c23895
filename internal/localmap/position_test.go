package localmap

import (
	"reflect"
	"testing"
)

func TestAdjacentTilesCardinalOrderIsNorthWestEastSouth(t *testing.T) {
	cfg := Config{GridWidth: 5, GridHeight: 5}

	got := AdjacentTiles(TilePosition{X: 2, Y: 2}, cfg, false)
	want := []TilePosition{{X: 2, Y: 1}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 2, Y: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AdjacentTiles(2,2) = %v, want %v", got, want)
	}
}

func TestAdjacentTilesClipsAtOrigin(t *testing.T) {
	cfg := Config{GridWidth: 5, GridHeight: 5}

	got := AdjacentTiles(TilePosition{X: 0, Y: 0}, cfg, false)
	want := []TilePosition{{X: 1, Y: 0}, {X: 0, Y: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AdjacentTiles(0,0) = %v, want %v", got, want)
	}
}

func TestAdjacentTilesDiagonalRingRowMajor(t *testing.T) {
	cfg := Config{GridWidth: 5, GridHeight: 5}

	got := AdjacentTiles(TilePosition{X: 2, Y: 2}, cfg, true)
	want := []TilePosition{
		{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1},
		{X: 1, Y: 2}, {X: 3, Y: 2},
		{X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AdjacentTiles(2,2, diagonals) = %v, want %v", got, want)
	}
}

func TestAdjacentTilesDiagonalClipsAtCorner(t *testing.T) {
	cfg := Config{GridWidth: 3, GridHeight: 3}

	got := AdjacentTiles(TilePosition{X: 2, Y: 2}, cfg, true)
	want := []TilePosition{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 1, Y: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("AdjacentTiles(2,2, diagonals) = %v, want %v", got, want)
	}
}

func TestAreAdjacent(t *testing.T) {
	cases := []struct {
		name string
		a, b TilePosition
		want bool
	}{
		{name: "east neighbor", a: TilePosition{X: 1, Y: 1}, b: TilePosition{X: 2, Y: 1}, want: true},
		{name: "diagonal neighbor", a: TilePosition{X: 1, Y: 1}, b: TilePosition{X: 2, Y: 2}, want: true},
		{name: "same tile", a: TilePosition{X: 1, Y: 1}, b: TilePosition{X: 1, Y: 1}, want: false},
		{name: "two apart", a: TilePosition{X: 1, Y: 1}, b: TilePosition{X: 3, Y: 1}, want: false},
		{name: "knight move", a: TilePosition{X: 1, Y: 1}, b: TilePosition{X: 3, Y: 2}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AreAdjacent(tc.a, tc.b); got != tc.want {
				t.Fatalf("AreAdjacent(%v, %v) = %t, want %t", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestDistances(t *testing.T) {
	a := TilePosition{X: 1, Y: 2}
	b := TilePosition{X: 4, Y: 0}

	if got := ManhattanDistance(a, b); got != 5 {
		t.Fatalf("ManhattanDistance = %d, want 5", got)
	}
	if got := ChebyshevDistance(a, b); got != 3 {
		t.Fatalf("ChebyshevDistance = %d, want 3", got)
	}
	if got := ManhattanDistance(a, a); got != 0 {
		t.Fatalf("ManhattanDistance of identical tiles = %d, want 0", got)
	}
}

func TestTileSetKeepsFirstInsertionOrder(t *testing.T) {
	set := newTileSet()
	set.add(TilePosition{X: 2, Y: 0})
	set.add(TilePosition{X: 0, Y: 0})
	set.add(TilePosition{X: 2, Y: 0})
	set.add(TilePosition{X: 1, Y: 0})

	got := set.tiles()
	want := []TilePosition{{X: 2, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tiles() = %v, want %v", got, want)
	}
}
