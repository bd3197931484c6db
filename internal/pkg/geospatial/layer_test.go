package geospatial_test

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/pkg/geospatial"
)

func TestLength(t *testing.T) {
	path := []domain.Coordinate{{X: 0, Y: 0}, {X: 3, Y: 4}, {X: 3, Y: 10}}

	if got := geospatial.Length(path); got != 11 {
		t.Errorf("expected 11, got %f", got)
	}
	if got := geospatial.Length(path[:1]); got != 0 {
		t.Errorf("expected 0 for a single point, got %f", got)
	}
}

func TestExtent(t *testing.T) {
	if geospatial.Extent(nil) != nil {
		t.Error("expected nil extent for empty path")
	}

	b := geospatial.Extent([]domain.Coordinate{{X: 650000, Y: 6860000}, {X: 649000, Y: 6862000}})
	want := domain.Bounds{MinX: 649000, MinY: 6860000, MaxX: 650000, MaxY: 6862000}
	if b == nil || *b != want {
		t.Fatalf("expected %+v, got %+v", want, b)
	}
}

func TestLayer_KeepsPathOrder(t *testing.T) {
	path := []domain.Coordinate{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}

	fc := geospatial.Layer(path, geospatial.DefaultStyle)
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	ls, ok := fc.Features[0].Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("expected LineString, got %T", fc.Features[0].Geometry)
	}
	for i, c := range path {
		if ls[i] != (orb.Point{c.X, c.Y}) {
			t.Errorf("point %d: expected %v, got %v", i, c, ls[i])
		}
	}
	if fc.Features[0].Properties["stroke"] != "255,255,0" {
		t.Errorf("unexpected stroke %v", fc.Features[0].Properties["stroke"])
	}
}

func TestLayer_MarshalsNameAndCRS(t *testing.T) {
	data, err := json.Marshal(geospatial.Layer(nil, geospatial.DefaultStyle))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out struct {
		Name string `json:"name"`
		CRS  struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Name != geospatial.LayerName {
		t.Errorf("expected layer name %q, got %q", geospatial.LayerName, out.Name)
	}
	if out.CRS.Properties.Name != "urn:ogc:def:crs:EPSG::2154" {
		t.Errorf("unexpected crs %q", out.CRS.Properties.Name)
	}
	if len(out.Features) != 0 {
		t.Errorf("expected no features, got %d", len(out.Features))
	}
}
