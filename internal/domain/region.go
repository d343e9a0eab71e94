package domain

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// Region identifies one of the three map views.
type Region string

const (
	RegionMainland Region = "usa-mainland"
	RegionAlaska   Region = "alaska"
	RegionHawaii   Region = "hawaii"
)

// AllRegions lists the regions in display order.
var AllRegions = []Region{RegionMainland, RegionAlaska, RegionHawaii}

// ParseRegion validates a region id.
func ParseRegion(s string) (Region, error) {
	for _, r := range AllRegions {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

// Contains reports whether the point falls inside the region's bounding box.
// Bounds are exclusive:
//
//	usa-mainland: -130 < lng < -65 and 24 < lat < 49
//	hawaii:       lng < -154 and lat < 25
//	alaska:       lat > 50
func (r Region) Contains(lng, lat float64) bool {
	switch r {
	case RegionMainland:
		return lng > -130 && lng < -65 && lat > 24 && lat < 49
	case RegionHawaii:
		return lng < -154 && lat < 25
	case RegionAlaska:
		return lat > 50
	default:
		return false
	}
}

// Regions returns every region whose box contains the point, in display
// order. A nil result means the point is excluded from all maps.
func Regions(lng, lat float64) []Region {
	var out []Region
	for _, r := range AllRegions {
		if r.Contains(lng, lat) {
			out = append(out, r)
		}
	}
	return out
}

// FilterParksByRegion returns the parks whose coordinates fall in region.
func FilterParksByRegion(parks []ParkFeature, region Region) []ParkFeature {
	out := make([]ParkFeature, 0)
	for _, p := range parks {
		if region.Contains(p.Lng, p.Lat) {
			out = append(out, p)
		}
	}
	return out
}

// Unclassified returns the parks that fall outside every region.
func Unclassified(parks []ParkFeature) []ParkFeature {
	var out []ParkFeature
	for _, p := range parks {
		if len(Regions(p.Lng, p.Lat)) == 0 {
			out = append(out, p)
		}
	}
	return out
}

// LatLng is a [latitude, longitude] pair in degrees.
type LatLng [2]float64

// Bounds is a lat/lng rectangle in degrees.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// MapRegion describes how a region's map is framed.
type MapRegion struct {
	ID     Region  `json:"id"`
	Name   string  `json:"name"`
	Center LatLng  `json:"center"`
	Zoom   int     `json:"zoom"`
	Bounds *Bounds `json:"bounds,omitempty"`
}

var mapRegions = map[Region]MapRegion{
	RegionMainland: {ID: RegionMainland, Name: "Continental U.S.", Center: LatLng{37.8, -96}, Zoom: 4},
	RegionAlaska:   {ID: RegionAlaska, Name: "Alaska", Center: LatLng{64, -150}, Zoom: 4},
	RegionHawaii:   {ID: RegionHawaii, Name: "Hawaii", Center: LatLng{20, -157}, Zoom: 6},
}

// MapRegionFor returns the default framing for region with Bounds computed
// over parks. Bounds stay nil when parks is empty.
func MapRegionFor(region Region, parks []ParkFeature) MapRegion {
	m := mapRegions[region]
	if b, ok := ParkBounds(parks); ok {
		m.Bounds = &b
	}
	return m
}

// ParkBounds returns the smallest rectangle containing every park.
func ParkBounds(parks []ParkFeature) (Bounds, bool) {
	rect := s2.EmptyRect()
	for _, p := range parks {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}
	if rect.IsEmpty() {
		return Bounds{}, false
	}
	lo, hi := rect.Lo(), rect.Hi()
	return Bounds{
		South: lo.Lat.Degrees(),
		West:  lo.Lng.Degrees(),
		North: hi.Lat.Degrees(),
		East:  hi.Lng.Degrees(),
	}, true
}
