package profile

// Package profile contains domain-level types for marketplace profiles and
// delivery addresses. It is pure and free of framework/adapter concerns.

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxDisplayNameLen = 120
	maxBioLen         = 2000
	maxLabelLen       = 60
	maxLineLen        = 255
	maxCategories     = 10
)

// Profile is the marketplace profile row provisioned for an identity.
// Absence of a row is a normal state (the identity has not finished
// onboarding, or server-side provisioning has not caught up yet).
type Profile struct {
	ID                 string    `json:"id"                   db:"id"`
	UserID             string    `json:"user_id"              db:"user_id"`
	DisplayName        string    `json:"display_name"         db:"display_name"`
	Bio                *string   `json:"bio,omitempty"        db:"bio"`
	AvatarURL          *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Categories         []string  `json:"categories"           db:"categories"`
	OnboardingComplete bool      `json:"onboarding_complete"  db:"onboarding_complete"`
	CreatedAt          time.Time `json:"created_at"           db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"           db:"updated_at"`
}

// UpsertProfileRequest carries the writable profile fields.
type UpsertProfileRequest struct {
	UserID      string   `json:"-"`
	DisplayName string   `json:"display_name"`
	Bio         *string  `json:"bio,omitempty"`
	AvatarURL   *string  `json:"avatar_url,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

// Validate checks the request against field limits.
func (r *UpsertProfileRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user ID is required and cannot be empty")
	}
	name := strings.TrimSpace(r.DisplayName)
	if name == "" {
		return errors.New("display name is required and cannot be empty")
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return errors.New("display name cannot exceed 120 characters")
	}
	if r.Bio != nil && utf8.RuneCountInString(*r.Bio) > maxBioLen {
		return errors.New("bio cannot exceed 2000 characters")
	}
	if len(r.Categories) > maxCategories {
		return errors.New("categories cannot exceed 10 entries")
	}
	for _, c := range r.Categories {
		if strings.TrimSpace(c) == "" {
			return errors.New("categories cannot contain empty values")
		}
	}
	return nil
}

// Address is a saved service address for a user. At most one address per
// user carries IsDefault.
type Address struct {
	ID         string    `json:"id"          db:"id"`
	UserID     string    `json:"user_id"     db:"user_id"`
	Label      string    `json:"label"       db:"label"`
	Street     string    `json:"street"      db:"street"`
	City       string    `json:"city"        db:"city"`
	Region     string    `json:"region"      db:"region"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Country    string    `json:"country"     db:"country"`
	IsDefault  bool      `json:"is_default"  db:"is_default"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}

// CreateAddressRequest carries parameters to create an Address.
type CreateAddressRequest struct {
	UserID     string `json:"-"`
	Label      string `json:"label"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  *bool  `json:"is_default,omitempty"`
}

// Validate checks the request against field limits.
func (r *CreateAddressRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user ID is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Label) > maxLabelLen {
		return errors.New("label cannot exceed 60 characters")
	}
	for field, v := range map[string]string{
		"street":  r.Street,
		"city":    r.City,
		"country": r.Country,
	} {
		if strings.TrimSpace(v) == "" {
			return errors.New(field + " is required and cannot be empty")
		}
	}
	for _, v := range []string{r.Street, r.City, r.Region, r.PostalCode, r.Country} {
		if utf8.RuneCountInString(v) > maxLineLen {
			return errors.New("address fields cannot exceed 255 characters")
		}
	}
	return nil
}

// UpdateAddressRequest carries the updatable address fields. Nil means
// "leave unchanged"; at least one field must be set.
type UpdateAddressRequest struct {
	Label      *string `json:"label,omitempty"`
	Street     *string `json:"street,omitempty"`
	City       *string `json:"city,omitempty"`
	Region     *string `json:"region,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	IsDefault  *bool   `json:"is_default,omitempty"`
}

// Validate ensures the update is non-empty and within limits.
func (r *UpdateAddressRequest) Validate() error {
	if r.Label == nil && r.Street == nil && r.City == nil && r.Region == nil &&
		r.PostalCode == nil && r.Country == nil && r.IsDefault == nil {
		return errors.New("at least one field must be updated")
	}
	if r.Label != nil && utf8.RuneCountInString(*r.Label) > maxLabelLen {
		return errors.New("label cannot exceed 60 characters")
	}
	for _, v := range []*string{r.Street, r.City, r.Region, r.PostalCode, r.Country} {
		if v != nil && utf8.RuneCountInString(*v) > maxLineLen {
			return errors.New("address fields cannot exceed 255 characters")
		}
	}
	return nil
}
