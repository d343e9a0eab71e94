// Package domain models National Park Service (NPS) visitation data and park
// locations.
//
// # Data Sources
//
// Visit counts come from the NPS Integrated Resource Management Applications
// (IRMA) visitor use statistics, exported as a flat CSV with one row per park
// per month:
//
//	Year,Month,RecreationVisits,ParkName,UnitCode
//	2019,7,45000,Yosemite,YOSE
//
// Park locations come from a GeoJSON FeatureCollection of Point features with
// properties {Name, Code, State}. Coordinates follow GeoJSON order:
// [longitude, latitude].
//
// # Conventions
//
// Unit codes:
//
//	Four-letter NPS unit codes (YOSE, GRCA, DENA) join visit rows to park
//	features. Codes are compared exactly; no case folding is applied.
//
// Months:
//
//	Calendar months 1-12. Heatmaps always lay out all twelve months even
//	when a park has no rows for some of them.
//
// Duplicates:
//
//	Rows are not deduplicated. Two rows for the same park, year and month
//	are both kept and both plotted.
//
// # Regions
//
// Parks are split across three map views by fixed bounding boxes (see
// [Region.Contains]). The boxes are neither exhaustive nor guaranteed
// disjoint; a park outside all three is excluded from every map on purpose.
package domain
