package geo

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// Centroid is the representative point of one municipality polygon.
type Centroid struct {
	ID   string // six-digit IBGE code
	Name string
	Lat  float64
	Lon  float64
}

// ReadCentroids walks an IBGE municipal mesh shapefile and computes the
// centroid of each municipality polygon. The mesh carries seven-digit codes
// (with check digit); the returned IDs are truncated to the six-digit form
// used as the join key everywhere else. Records with no usable geometry or
// code are skipped and counted.
func ReadCentroids(shpPath string) ([]Centroid, error) {
	r, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", shpPath)
	}
	defer func() { _ = r.Close() }()

	fields := r.Fields()
	codeIdx, nameIdx := -1, -1
	for i, f := range fields {
		switch strings.ToUpper(strings.TrimRight(f.String(), "\x00")) {
		case "CD_MUN", "CD_GEOCMU":
			codeIdx = i
		case "NM_MUN", "NM_MUNICIP":
			nameIdx = i
		}
	}
	if codeIdx < 0 {
		return nil, eris.Errorf("geo: shapefile %s has no municipality code field", shpPath)
	}

	var out []Centroid
	var skipped int

	for r.Next() {
		_, shape := r.Shape()

		code := strings.TrimSpace(r.Attribute(codeIdx))
		if len(code) < 7 {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok || len(poly.Points) == 0 {
			skipped++
			continue
		}

		center, err := polygonCentroid(poly)
		if err != nil {
			skipped++
			continue
		}

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(r.Attribute(nameIdx))
		}

		out = append(out, Centroid{
			ID:   code[:6],
			Name: name,
			Lon:  center[0],
			Lat:  center[1],
		})
	}

	if skipped > 0 {
		zap.L().Warn("geo: skipped mesh records", zap.Int("skipped", skipped))
	}

	return out, nil
}

// polygonCentroid converts a shapefile polygon into a go-geom polygon over
// its rings and returns the area-weighted centroid.
func polygonCentroid(poly *shp.Polygon) (geom.Coord, error) {
	flat := make([]float64, 0, len(poly.Points)*2)
	for _, p := range poly.Points {
		flat = append(flat, p.X, p.Y)
	}

	ends := make([]int, 0, len(poly.Parts))
	for i := range poly.Parts {
		if i+1 < len(poly.Parts) {
			ends = append(ends, int(poly.Parts[i+1])*2)
		} else {
			ends = append(ends, len(flat))
		}
	}
	if len(ends) == 0 {
		ends = append(ends, len(flat))
	}

	g := geom.NewPolygonFlat(geom.XY, flat, ends)
	return xy.Centroid(g)
}

// FormatCoord renders a coordinate with the fixed output precision.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
