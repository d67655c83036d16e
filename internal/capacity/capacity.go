// Package capacity extracts the KVA power rating encoded in free-text
// equipment descriptors such as "5KVA 10KWH 10x550W".
package capacity

import (
	"errors"
	"regexp"
	"strconv"
)

const (
	// MinRating and MaxRating bound the accepted KVA range at the client
	// record boundary. Extraction itself does not enforce them.
	MinRating = 1
	MaxRating = 100
)

var (
	ErrMissingDescriptor = errors.New("missing_descriptor")
	ErrNoRating          = errors.New("no_capacity_rating")
	ErrRatingOutOfRange  = errors.New("capacity_rating_out_of_range")
)

// A number followed by the KVA unit, case-insensitive, optional interior
// whitespace. The leftmost match wins so descriptors with several ratings
// stay deterministic ("16KVA 20KWH" -> 16).
var ratingPattern = regexp.MustCompile(`(?i)(\d+)\s*KVA`)

// Extract returns the first KVA rating found in the descriptor. The second
// return value is false when no rating is present.
func Extract(descriptor string) (int, bool) {
	if descriptor == "" {
		return 0, false
	}
	match := ratingPattern.FindStringSubmatch(descriptor)
	if match == nil {
		return 0, false
	}
	rating, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return rating, true
}

// Validate checks that the descriptor carries a rating in [MinRating, MaxRating].
func Validate(descriptor string) error {
	if descriptor == "" {
		return ErrMissingDescriptor
	}
	rating, ok := Extract(descriptor)
	if !ok {
		return ErrNoRating
	}
	if rating < MinRating || rating > MaxRating {
		return ErrRatingOutOfRange
	}
	return nil
}
