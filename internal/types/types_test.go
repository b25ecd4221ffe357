package types

import (
	"strings"
	"testing"
)

func TestSeed(t *testing.T) {
	d := Seed()
	if err := d.Validate(); err != nil {
		t.Fatalf("seed should validate: %v", err)
	}

	want := RecordCounts{Wells: 2, Trajectories: 2, Casings: 3}
	if got := d.Counts(); got != want {
		t.Errorf("expected counts %+v, got %+v", want, got)
	}
	if total := d.Counts().Total(); total != 7 {
		t.Errorf("expected 7 records, got %d", total)
	}

	for _, c := range d.Casings {
		if c.TopDepth >= c.BottomDepth {
			t.Errorf("casing %s: top %v should be above bottom %v", c.ID, c.TopDepth, c.BottomDepth)
		}
	}
	for _, tr := range d.Trajectories {
		for i := 1; i < len(tr.Stations); i++ {
			if tr.Stations[i-1].MD >= tr.Stations[i].MD {
				t.Errorf("trajectory %s: stations not ordered by MD at %d", tr.ID, i)
			}
		}
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindWell, "wells"},
		{KindTrajectory, "trajectories"},
		{KindCasing, "casings"},
		{Kind(9), "kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
	if Kind(9).Valid() {
		t.Error("kind(9) should not be valid")
	}
}

func TestDatasetRecordsAndAdd(t *testing.T) {
	var d Dataset
	for _, r := range []Record{
		Well{ID: "w"},
		Trajectory{ID: "t", WellID: "w"},
		Casing{ID: "c", WellID: "w"},
	} {
		if err := d.Add(r); err != nil {
			t.Fatalf("failed to add %s: %v", r.RecordID(), err)
		}
	}

	for _, kind := range Kinds {
		recs := d.Records(kind)
		if len(recs) != 1 {
			t.Fatalf("expected 1 %s record, got %d", kind, len(recs))
		}
		if recs[0].RecordKind() != kind {
			t.Errorf("expected kind %s, got %s", kind, recs[0].RecordKind())
		}
	}
}

func TestValidateDuplicate(t *testing.T) {
	d := Seed()
	d.Casings = append(d.Casings, d.Casings[0])
	err := d.Validate()
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
	if !strings.Contains(err.Error(), `duplicate id "casing1"`) {
		t.Errorf("unexpected error: %v", err)
	}

	d = Seed()
	d.Wells[0].ID = ""
	if err := d.Validate(); err == nil {
		t.Error("expected error for empty id")
	}
}
