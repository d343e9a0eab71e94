package loader

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/couchcryptid/park-visits-dashboard/internal/domain"
)

// ParksResult is the outcome of parsing a park FeatureCollection.
type ParksResult struct {
	Parks   []domain.ParkFeature
	Skipped int
}

// ParseParksGeoJSON decodes a FeatureCollection of park points. Features
// without a point geometry or without Name and Code properties are skipped.
func ParseParksGeoJSON(data []byte) (ParksResult, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return ParksResult{}, fmt.Errorf("decode feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return ParksResult{}, fmt.Errorf("decode feature collection: unexpected type %q", fc.Type)
	}

	res := ParksResult{Parks: make([]domain.ParkFeature, 0, len(fc.Features))}
	for _, f := range fc.Features {
		if f.Geometry == nil || !f.Geometry.IsPoint() || len(f.Geometry.Point) < 2 {
			res.Skipped++
			continue
		}
		name := f.PropertyMustString("Name", "")
		code := f.PropertyMustString("Code", "")
		if name == "" || code == "" {
			res.Skipped++
			continue
		}
		res.Parks = append(res.Parks, domain.ParkFeature{
			Lng:   f.Geometry.Point[0],
			Lat:   f.Geometry.Point[1],
			Name:  name,
			Code:  code,
			State: f.PropertyMustString("State", ""),
		})
	}
	return res, nil
}

// EncodeParks renders parks as a FeatureCollection of points with the same
// Name, Code and State properties ParseParksGeoJSON reads.
func EncodeParks(parks []domain.ParkFeature) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range parks {
		f := geojson.NewPointFeature([]float64{p.Lng, p.Lat})
		f.SetProperty("Name", p.Name)
		f.SetProperty("Code", p.Code)
		f.SetProperty("State", p.State)
		fc.AddFeature(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode feature collection: %w", err)
	}
	return data, nil
}
