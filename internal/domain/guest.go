package domain

import (
	"strings"
	"time"
)

// NationalIDPlaceholderPrefix marks legacy records imported before the
// national_id column became nullable. Values carrying it are treated as
// absent and must never be rendered.
const NationalIDPlaceholderPrefix = "PLACEHOLDER-"

type Guest struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	NationalID   *string    `json:"national_id,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Address      *string    `json:"address,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
}

func IsPlaceholderNationalID(v string) bool {
	return strings.HasPrefix(v, NationalIDPlaceholderPrefix)
}

// HasNationalID reports whether the guest carries a real national ID,
// i.e. one that is present and not a legacy placeholder.
func (g *Guest) HasNationalID() bool {
	return g.NationalID != nil && *g.NationalID != "" && !IsPlaceholderNationalID(*g.NationalID)
}

// DisplayNationalID is the only way a national ID should reach a view.
func (g *Guest) DisplayNationalID() string {
	if !g.HasNationalID() {
		return ""
	}
	return *g.NationalID
}

// Incomplete reports whether the profile still misses data a booking form
// could supply.
func (g *Guest) Incomplete() bool {
	return !g.HasNationalID() ||
		g.Phone == nil || *g.Phone == "" ||
		g.Address == nil || *g.Address == ""
}

// NewGuest carries the fields for a first-time guest record, created lazily
// on the guest's first reservation.
type NewGuest struct {
	Name         string
	Email        string
	PasswordHash string
	NationalID   *string
	Phone        *string
	Address      *string
	BirthDate    *time.Time
	RegisteredAt time.Time
}

// GuestPatch is a partial update: nil means "leave the column alone".
type GuestPatch struct {
	Name       *string
	NationalID *string
	Phone      *string
	Address    *string
}

func (p GuestPatch) Empty() bool {
	return p.Name == nil && p.NationalID == nil && p.Phone == nil && p.Address == nil
}

// GuestFromBooking builds the record for a guest who books without an
// existing profile. Optional fields are included only when the form actually
// supplied them; the birth date comes from the authenticated identity.
func GuestFromBooking(ident Identity, form *BookingForm, now time.Time) NewGuest {
	return NewGuest{
		Name:         form.Name,
		Email:        ident.Email,
		PasswordHash: ident.PasswordHash,
		NationalID:   optional(form.NationalID),
		Phone:        optional(form.Phone),
		Address:      optional(form.Address),
		BirthDate:    ident.BirthDate,
		RegisteredAt: now,
	}
}

// CompletionPatch builds the update that backfills an existing guest from a
// booking form. A field qualifies only when it is currently missing (or a
// placeholder national ID) and the form submitted a non-blank replacement.
// Real values already on the profile are never overwritten.
func CompletionPatch(g *Guest, form *BookingForm) GuestPatch {
	var p GuestPatch

	if !g.HasNationalID() {
		p.NationalID = optional(form.NationalID)
	}
	if g.Phone == nil || *g.Phone == "" {
		p.Phone = optional(form.Phone)
	}
	if g.Address == nil || *g.Address == "" {
		p.Address = optional(form.Address)
	}
	if g.Name == "" {
		p.Name = optional(form.Name)
	}

	return p
}

// optional returns a pointer to the trimmed value, or nil for blank input.
func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
