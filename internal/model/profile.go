package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Diagnosis types a profile may record.
const (
	DiagnosisADHD   = "ADHD"
	DiagnosisAutism = "Autism"
	DiagnosisBoth   = "Both"
	DiagnosisOther  = "Other"
)

const (
	maxFullNameLen  = 200
	maxDiagnosisAge = 120
)

// Profile holds the optional personal details of one user. The ID is the
// user id; a profile is created empty the first time it is read.
type Profile struct {
	ID            string    `json:"id"`
	FullName      *string   `json:"fullName"`
	DiagnosisAge  *int      `json:"diagnosisAge"`
	DiagnosisType *string   `json:"diagnosisType"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ProfileUpdate replaces every editable field of a profile. A nil field
// clears the stored value.
type ProfileUpdate struct {
	FullName      *string `json:"fullName"`
	DiagnosisAge  *int    `json:"diagnosisAge"`
	DiagnosisType *string `json:"diagnosisType"`
}

// Normalize turns blank strings into nil so they clear the stored value.
func (u *ProfileUpdate) Normalize() {
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if name == "" {
			u.FullName = nil
		} else {
			u.FullName = &name
		}
	}
	if u.DiagnosisType != nil && strings.TrimSpace(*u.DiagnosisType) == "" {
		u.DiagnosisType = nil
	}
}

// ValidateProfileUpdate checks the age range and the diagnosis type.
func ValidateProfileUpdate(u *ProfileUpdate) error {
	if u == nil {
		return NewValidationError("profile", "missing update")
	}
	if u.FullName != nil && utf8.RuneCountInString(*u.FullName) > maxFullNameLen {
		return NewValidationError("fullName", fmt.Sprintf("exceeds %d characters", maxFullNameLen))
	}
	if u.DiagnosisAge != nil && (*u.DiagnosisAge < 0 || *u.DiagnosisAge > maxDiagnosisAge) {
		return NewValidationError("diagnosisAge", fmt.Sprintf("must be between 0 and %d", maxDiagnosisAge))
	}
	if u.DiagnosisType != nil {
		switch *u.DiagnosisType {
		case DiagnosisADHD, DiagnosisAutism, DiagnosisBoth, DiagnosisOther:
		default:
			return NewValidationError("diagnosisType", "must be ADHD, Autism, Both or Other")
		}
	}
	return nil
}

// ValidateProfile checks a stored profile record.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return NewValidationError("profile", "missing record")
	}
	if p.ID == "" {
		return NewValidationError("id", "profile id is required")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		return NewValidationError("createdAt", "timestamps are required")
	}
	return nil
}
