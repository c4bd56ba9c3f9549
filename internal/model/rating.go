package model

import (
	"encoding/json"
	"fmt"
)

type SafetyRating string

const (
	Safe    SafetyRating = "Safe"
	Caution SafetyRating = "Caution"
	Warning SafetyRating = "Warning"
)

// SafetyRatings lists the closed set of ratings in severity order.
var SafetyRatings = []SafetyRating{Safe, Caution, Warning}

func (r SafetyRating) Valid() bool {
	switch r {
	case Safe, Caution, Warning:
		return true
	}
	return false
}

func ParseSafetyRating(s string) (SafetyRating, error) {
	r := SafetyRating(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown safety rating %q", s)
	}
	return r, nil
}

func (r *SafetyRating) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("safety rating: %w", err)
	}
	parsed, err := ParseSafetyRating(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func SafetyRatingValues() []string {
	values := make([]string, 0, len(SafetyRatings))
	for _, r := range SafetyRatings {
		values = append(values, string(r))
	}
	return values
}
