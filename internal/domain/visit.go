package domain

// VisitRecord is one month of recreation visits for one park.
type VisitRecord struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Visitors int    `json:"visitors"`
	ParkName string `json:"parkname"`
	UnitCode string `json:"unitcode"`
}

// ParkVisits is the set of records sharing a park name.
type ParkVisits struct {
	ParkName string
	Records  []VisitRecord
}

// VisitsForPark returns the records whose unit code equals code.
// The result is empty, never nil, when nothing matches.
func VisitsForPark(records []VisitRecord, code string) []VisitRecord {
	out := make([]VisitRecord, 0)
	for _, r := range records {
		if r.UnitCode == code {
			out = append(out, r)
		}
	}
	return out
}

// GroupByPark groups records by park name, preserving the order in which
// each park name first appears.
func GroupByPark(records []VisitRecord) []ParkVisits {
	index := make(map[string]int)
	var groups []ParkVisits
	for _, r := range records {
		i, ok := index[r.ParkName]
		if !ok {
			i = len(groups)
			index[r.ParkName] = i
			groups = append(groups, ParkVisits{ParkName: r.ParkName})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// UnitCodes returns the distinct unit codes present in records, in first-seen order.
func UnitCodes(records []VisitRecord) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		if seen[r.UnitCode] {
			continue
		}
		seen[r.UnitCode] = true
		codes = append(codes, r.UnitCode)
	}
	return codes
}
