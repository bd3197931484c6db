package geospatial

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/tempusgw/internal/core/domain"
)

// LayerName is the name of the layer holding a computed itinerary.
const LayerName = "Itinerary"

// Style describes how the itinerary line is drawn.
type Style struct {
	Color string  // "r,g,b"
	Width float64 // map units of the renderer, not meters
	CRS   string  // e.g. EPSG:2154
}

// DefaultStyle is a yellow 1.5 wide line in Lambert-93.
var DefaultStyle = Style{Color: "255,255,0", Width: 1.5, CRS: "EPSG:2154"}

// LineString converts an overview path into an orb line.
func LineString(path []domain.Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(path))
	for _, c := range path {
		ls = append(ls, orb.Point{c.X, c.Y})
	}
	return ls
}

// Length returns the planar length of the path in CRS units.
func Length(path []domain.Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	return planar.Length(LineString(path))
}

// Extent returns the bounding box of the path, or nil when it is empty.
func Extent(path []domain.Coordinate) *domain.Bounds {
	if len(path) == 0 {
		return nil
	}
	b := LineString(path).Bound()
	return &domain.Bounds{MinX: b.Min.X(), MinY: b.Min.Y(), MaxX: b.Max.X(), MaxY: b.Max.Y()}
}

// Layer builds a named feature collection with the overview path as a single
// LineString feature. An empty path yields an empty collection.
func Layer(path []domain.Coordinate, style Style) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"name": LayerName,
		"crs": map[string]interface{}{
			"type":       "name",
			"properties": map[string]string{"name": crsURN(style.CRS)},
		},
	}
	if len(path) == 0 {
		return fc
	}

	ls := LineString(path)
	f := geojson.NewFeature(ls)
	f.BBox = geojson.NewBBox(ls.Bound())
	f.Properties["stroke"] = style.Color
	f.Properties["stroke-width"] = style.Width
	f.Properties["length"] = Length(path)
	fc.Append(f)
	return fc
}

// crsURN turns "EPSG:2154" into the OGC URN form used by GeoJSON readers.
func crsURN(crs string) string {
	authority, code, ok := strings.Cut(crs, ":")
	if !ok {
		return crs
	}
	return "urn:ogc:def:crs:" + strings.ToUpper(authority) + "::" + code
}
