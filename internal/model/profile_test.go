package model

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestValidateProfileUpdate(t *testing.T) {
	cases := []struct {
		name string
		upd  ProfileUpdate
		ok   bool
	}{
		{"empty", ProfileUpdate{}, true},
		{"full", ProfileUpdate{FullName: strPtr("Sam"), DiagnosisAge: intPtr(34), DiagnosisType: strPtr(DiagnosisBoth)}, true},
		{"negative age", ProfileUpdate{DiagnosisAge: intPtr(-1)}, false},
		{"age too high", ProfileUpdate{DiagnosisAge: intPtr(121)}, false},
		{"unknown type", ProfileUpdate{DiagnosisType: strPtr("adhd")}, false},
		{"long name", ProfileUpdate{FullName: strPtr(strings.Repeat("n", 201))}, false},
	}
	for _, tc := range cases {
		err := ValidateProfileUpdate(&tc.upd)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: ok=%v err=%v", tc.name, tc.ok, err)
		}
		if err != nil && !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if err := ValidateProfileUpdate(nil); err == nil {
		t.Fatal("expected error for nil update")
	}
}

func TestProfileUpdateNormalize(t *testing.T) {
	u := ProfileUpdate{FullName: strPtr("  Sam Lee "), DiagnosisType: strPtr(" ")}
	u.Normalize()
	if u.FullName == nil || *u.FullName != "Sam Lee" {
		t.Fatalf("FullName = %v", u.FullName)
	}
	if u.DiagnosisType != nil {
		t.Fatalf("blank diagnosis type kept: %q", *u.DiagnosisType)
	}

	blank := ProfileUpdate{FullName: strPtr("")}
	blank.Normalize()
	if blank.FullName != nil {
		t.Fatal("blank name kept")
	}
}
