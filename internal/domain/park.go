package domain

import "strings"

// ParkFeature is a park location parsed from the parks GeoJSON.
type ParkFeature struct {
	Lng   float64 `json:"lng"`
	Lat   float64 `json:"lat"`
	Name  string  `json:"name"`
	Code  string  `json:"code"`
	State string  `json:"state"`
}

// FilterNationalParks keeps features whose name mentions "national park",
// ignoring case. Monuments, historic sites and other units are dropped.
func FilterNationalParks(parks []ParkFeature) []ParkFeature {
	out := make([]ParkFeature, 0, len(parks))
	for _, p := range parks {
		if strings.Contains(strings.ToLower(p.Name), "national park") {
			out = append(out, p)
		}
	}
	return out
}

// FindPark returns the first park with the given unit code.
func FindPark(parks []ParkFeature, code string) (ParkFeature, bool) {
	for _, p := range parks {
		if p.Code == code {
			return p, true
		}
	}
	return ParkFeature{}, false
}
