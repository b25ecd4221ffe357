// Package types defines the core data structures for the OSDU demo dataset.
package types

import (
	"fmt"
)

// Kind identifies one of the three record kinds.
type Kind int

const (
	KindWell Kind = iota
	KindTrajectory
	KindCasing
)

// Kinds lists every record kind in declaration order.
var Kinds = []Kind{KindWell, KindTrajectory, KindCasing}

// String returns the collection name used for storage and snapshots.
func (k Kind) String() string {
	switch k {
	case KindWell:
		return "wells"
	case KindTrajectory:
		return "trajectories"
	case KindCasing:
		return "casings"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindWell && k <= KindCasing
}

// Record is implemented by Well, Trajectory and Casing.
type Record interface {
	RecordID() string
	RecordKind() Kind
}

// Location is a geographic point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Well is a drilled well.
type Well struct {
	ID           string   `json:"id"`
	FacilityName string   `json:"facility_name"`
	Operator     string   `json:"operator"`
	Location     Location `json:"location"`
}

func (w Well) RecordID() string { return w.ID }
func (w Well) RecordKind() Kind { return KindWell }

// Station is one survey point along a trajectory.
type Station struct {
	MD   float64 `json:"md"`   // measured depth
	TVD  float64 `json:"tvd"`  // true vertical depth
	Incl float64 `json:"incl"` // inclination, degrees
	Azi  float64 `json:"azi"`  // azimuth, degrees
}

// Trajectory is the survey path of a well. Stations are expected in
// ascending measured depth but this is not enforced.
type Trajectory struct {
	ID       string    `json:"id"`
	WellID   string    `json:"well_id"`
	Stations []Station `json:"stations"`
}

func (t Trajectory) RecordID() string { return t.ID }
func (t Trajectory) RecordKind() Kind { return KindTrajectory }

// Casing is a cemented pipe section. TopDepth < BottomDepth is expected,
// not enforced.
type Casing struct {
	ID          string  `json:"id"`
	WellID      string  `json:"well_id"`
	TopDepth    float64 `json:"top_depth"`
	BottomDepth float64 `json:"bottom_depth"`
	Diameter    float64 `json:"diameter"`
}

func (c Casing) RecordID() string { return c.ID }
func (c Casing) RecordKind() Kind { return KindCasing }

// RecordCounts holds the number of records per kind.
type RecordCounts struct {
	Wells        int `json:"wells"`
	Trajectories int `json:"trajectories"`
	Casings      int `json:"casings"`
}

// Total returns the sum of all counts.
func (c RecordCounts) Total() int {
	return c.Wells + c.Trajectories + c.Casings
}

// Dataset is the full persisted snapshot.
type Dataset struct {
	Wells        []Well       `json:"wells"`
	Trajectories []Trajectory `json:"trajectories"`
	Casings      []Casing     `json:"casings"`
}

// Counts returns the record counts of the dataset.
func (d *Dataset) Counts() RecordCounts {
	return RecordCounts{
		Wells:        len(d.Wells),
		Trajectories: len(d.Trajectories),
		Casings:      len(d.Casings),
	}
}

// Records returns the records of one kind as the Record interface.
func (d *Dataset) Records(kind Kind) []Record {
	var out []Record
	switch kind {
	case KindWell:
		out = make([]Record, 0, len(d.Wells))
		for _, w := range d.Wells {
			out = append(out, w)
		}
	case KindTrajectory:
		out = make([]Record, 0, len(d.Trajectories))
		for _, t := range d.Trajectories {
			out = append(out, t)
		}
	case KindCasing:
		out = make([]Record, 0, len(d.Casings))
		for _, c := range d.Casings {
			out = append(out, c)
		}
	}
	return out
}

// Add appends a record to the slice matching its kind.
func (d *Dataset) Add(r Record) error {
	switch v := r.(type) {
	case Well:
		d.Wells = append(d.Wells, v)
	case Trajectory:
		d.Trajectories = append(d.Trajectories, v)
	case Casing:
		d.Casings = append(d.Casings, v)
	default:
		return fmt.Errorf("unsupported record type %T", r)
	}
	return nil
}

// Validate checks that ids are non-empty and unique within each kind.
func (d *Dataset) Validate() error {
	for _, kind := range Kinds {
		seen := make(map[string]bool)
		for _, r := range d.Records(kind) {
			id := r.RecordID()
			if id == "" {
				return fmt.Errorf("%s: record with empty id", kind)
			}
			if seen[id] {
				return fmt.Errorf("%s: duplicate id %q", kind, id)
			}
			seen[id] = true
		}
	}
	return nil
}

// Seed returns the hard-coded sample dataset.
func Seed() *Dataset {
	return &Dataset{
		Wells: []Well{
			{ID: "well1", FacilityName: "Well A", Operator: "OperatorX", Location: Location{Lat: 29.75, Lon: -95.48}},
			{ID: "well2", FacilityName: "Well B", Operator: "OperatorY", Location: Location{Lat: 30.12, Lon: -96.34}},
		},
		Trajectories: []Trajectory{
			{ID: "traj1", WellID: "well1", Stations: []Station{
				{MD: 0, TVD: 0, Incl: 0, Azi: 0},
				{MD: 1000, TVD: 900, Incl: 10, Azi: 45},
			}},
			{ID: "traj2", WellID: "well2", Stations: []Station{
				{MD: 0, TVD: 0, Incl: 0, Azi: 0},
				{MD: 1500, TVD: 1300, Incl: 15, Azi: 90},
			}},
		},
		Casings: []Casing{
			{ID: "casing1", WellID: "well1", TopDepth: 0, BottomDepth: 500, Diameter: 9.625},
			{ID: "casing1b", WellID: "well1", TopDepth: 500, BottomDepth: 1000, Diameter: 7.0},
			{ID: "casing2", WellID: "well2", TopDepth: 0, BottomDepth: 700, Diameter: 7.0},
		},
	}
}
