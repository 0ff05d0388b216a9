package domain

import (
	"errors"
	"fmt"
)

// DefaultProfile is used when neither the caller nor the scenario names one.
const DefaultProfile = "driving"

var ErrInvalidProfile = errors.New("invalid profile")

// ValidateProfile accepts letters, digits, '-' and '_'. Profiles end up in
// the OSRM URL path.
func ValidateProfile(profile string) error {
	if profile == "" {
		return fmt.Errorf("%w: must be non-empty", ErrInvalidProfile)
	}
	for _, r := range profile {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum && r != '-' && r != '_' {
			return fmt.Errorf("%w: %q contains invalid character %q", ErrInvalidProfile, profile, r)
		}
	}
	return nil
}
