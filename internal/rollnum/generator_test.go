package rollnum

import (
	"fmt"
	"testing"
)

func TestGenerateFirstSerial(t *testing.T) {
	got, err := Generate(Request{
		Department:   "ECE",
		AcademicYear: 1,
		CurrentYear:  2024,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "24KP1A0401" {
		t.Fatalf("got %q, want 24KP1A0401", got)
	}
}

func TestGenerateIncrementsSerial(t *testing.T) {
	first, err := Generate(Request{Department: "ECE", AcademicYear: 1, CurrentYear: 2024})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := Generate(Request{
		Department:    "ECE",
		AcademicYear:  1,
		CurrentYear:   2024,
		ExistingRolls: []string{first},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if second != "24KP1A0402" {
		t.Fatalf("got %q, want 24KP1A0402", second)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	req := Request{
		Department:    "CSE",
		AcademicYear:  3,
		CurrentYear:   2025,
		ExistingRolls: []string{"23KP1A0501", "23KP1A0507", "23KP1A0503"},
	}
	a, err := Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if a != b {
		t.Fatalf("same snapshot produced %q then %q", a, b)
	}
	if a != "23KP1A0508" {
		t.Fatalf("got %q, want 23KP1A0508", a)
	}
}

func TestGenerateLateralEntry(t *testing.T) {
	// A lateral student in year 2 during 2024 was admitted in 2024.
	got, err := Generate(Request{
		Department:   "IT",
		AcademicYear: 2,
		LateralEntry: true,
		CurrentYear:  2024,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "24KP4A1201" {
		t.Fatalf("got %q, want 24KP4A1201", got)
	}
}

func TestGenerateAdmissionYearByStanding(t *testing.T) {
	cases := []struct {
		academicYear int
		lateral      bool
		want         string
	}{
		{1, false, "25KP1A0401"},
		{2, false, "24KP1A0401"},
		{4, false, "22KP1A0401"},
		{2, true, "25KP4A0401"},
		{3, true, "24KP4A0401"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("y%d_lateral_%t", tc.academicYear, tc.lateral), func(t *testing.T) {
			got, err := Generate(Request{
				Department:   "ECE",
				AcademicYear: tc.academicYear,
				LateralEntry: tc.lateral,
				CurrentYear:  2025,
			})
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGenerateUnmappedDepartment(t *testing.T) {
	got, err := Generate(Request{Department: "MARINE", AcademicYear: 1, CurrentYear: 2024})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "24KP1A0001" {
		t.Fatalf("got %q, want 24KP1A0001", got)
	}
}

func TestGenerateRejectsBadYear(t *testing.T) {
	if _, err := Generate(Request{Department: "ECE", AcademicYear: 5, CurrentYear: 2024}); err == nil {
		t.Fatal("expected error for academic year 5")
	}
	if _, err := Generate(Request{Department: "ECE", AcademicYear: 0, CurrentYear: 2024}); err == nil {
		t.Fatal("expected error for academic year 0")
	}
}

func TestGenerateIgnoresForeignPrefixes(t *testing.T) {
	got, err := Generate(Request{
		Department:   "ECE",
		AcademicYear: 1,
		CurrentYear:  2024,
		ExistingRolls: []string{
			"T-STAFF-1",     // staff roll
			"23KP1A0499",    // different admission year
			"24KP4A0405",    // lateral prefix, not ours
			"24KP1A04XX",    // unparseable serial
			"24KP1A04051",   // wrong length
			"24kp1a0402",    // lowercased, still ours
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "24KP1A0403" {
		t.Fatalf("got %q, want 24KP1A0403", got)
	}
}
