// internal/athletes/directory.go

// Package athletes resolves phone numbers to athlete profiles for
// participant enrollment.
package athletes

import (
	"context"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/tsampaio/courtly/internal/booking"
)

// Directory looks athletes up by phone number. Numbers are normalized to
// E.164 before hitting the store, so "11 91234-5678" and "+5511912345678"
// resolve to the same athlete.
type Directory struct {
	store         booking.Store
	defaultRegion string
}

func NewDirectory(store booking.Store, defaultRegion string) *Directory {
	if defaultRegion == "" {
		defaultRegion = "BR"
	}
	return &Directory{store: store, defaultRegion: defaultRegion}
}

// LookupByPhone resolves a raw phone number to an athlete. A number that
// matches nobody returns booking.ErrAthleteNotFound, a typed outcome the
// caller is expected to branch on.
func (d *Directory) LookupByPhone(ctx context.Context, raw string) (booking.Athlete, error) {
	normalized, err := NormalizePhone(raw, d.defaultRegion)
	if err != nil {
		return booking.Athlete{}, err
	}
	return d.store.AthleteByPhone(ctx, normalized)
}

// IsPhoneNumber reports whether raw parses as a valid phone number for
// the region.
func IsPhoneNumber(raw, region string) bool {
	_, err := NormalizePhone(raw, region)
	return err == nil
}

// NormalizePhone parses a phone number in any common written form and
// returns it in E.164.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", booking.ValidationError{Field: "phone", Reason: "is required"}
	}

	parsed, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return "", booking.ValidationError{Field: "phone", Reason: fmt.Sprintf("is not a valid phone number: %v", err)}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", booking.ValidationError{Field: "phone", Reason: "is not a valid phone number"}
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
