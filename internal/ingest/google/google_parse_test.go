package google

import (
	"testing"
)

func TestRosterFromValues(t *testing.T) {
	values := [][]any{
		{"Resource Type", "Grade", "Deployment Status", "Relocation", "Aging"},
		{"Bench", "C1", "Available - Client Blocked", "-", 95},
		{"", "", "", "", ""},
		{"RD", "S2", "Available", "Rome", "12"},
	}

	got, err := rosterFromValues(values)
	if err != nil {
		t.Fatalf("rosterFromValues: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].ResourceType != "Bench" || got[0].Aging != 95 {
		t.Errorf("record[0] = %+v", got[0])
	}
	if got[1].Relocation != "Rome" || got[1].Aging != 12 {
		t.Errorf("record[1] = %+v", got[1])
	}
}

func TestRosterFromValuesBadHeader(t *testing.T) {
	values := [][]any{
		{"Name", "Location"},
		{"Mario", "Milan"},
	}
	if _, err := rosterFromValues(values); err == nil {
		t.Error("expected error for header without required columns")
	}
}
