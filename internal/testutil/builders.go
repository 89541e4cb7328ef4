package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fixwave/fixwave-api/internal/domain/profile"
)

// ProfileRequestBuilder provides a fluent interface for building UpsertProfileRequest objects for testing.
type ProfileRequestBuilder struct {
	req *profile.UpsertProfileRequest
}

// NewProfileRequest creates a new ProfileRequestBuilder with sensible defaults.
// Each builder gets a unique user ID so tests sharing a database don't collide.
func NewProfileRequest() *ProfileRequestBuilder {
	return &ProfileRequestBuilder{
		req: &profile.UpsertProfileRequest{
			UserID:      fmt.Sprintf("u-%s", uuid.NewString()),
			DisplayName: "Test User",
			Categories:  []string{"plumbing"},
		},
	}
}

// WithUserID sets the user ID.
func (b *ProfileRequestBuilder) WithUserID(userID string) *ProfileRequestBuilder {
	b.req.UserID = userID
	return b
}

// WithDisplayName sets the display name.
func (b *ProfileRequestBuilder) WithDisplayName(name string) *ProfileRequestBuilder {
	b.req.DisplayName = name
	return b
}

// WithBio sets the bio.
func (b *ProfileRequestBuilder) WithBio(bio string) *ProfileRequestBuilder {
	b.req.Bio = &bio
	return b
}

// WithAvatarURL sets the avatar URL.
func (b *ProfileRequestBuilder) WithAvatarURL(url string) *ProfileRequestBuilder {
	b.req.AvatarURL = &url
	return b
}

// WithCategories sets the service categories.
func (b *ProfileRequestBuilder) WithCategories(categories ...string) *ProfileRequestBuilder {
	b.req.Categories = categories
	return b
}

// Build returns the constructed UpsertProfileRequest.
func (b *ProfileRequestBuilder) Build() *profile.UpsertProfileRequest {
	return b.req
}

// AddressRequestBuilder provides a fluent interface for building CreateAddressRequest objects for testing.
type AddressRequestBuilder struct {
	req *profile.CreateAddressRequest
}

// NewAddressRequest creates a new AddressRequestBuilder with sensible defaults.
func NewAddressRequest(userID string) *AddressRequestBuilder {
	return &AddressRequestBuilder{
		req: &profile.CreateAddressRequest{
			UserID:     userID,
			Label:      "home",
			Street:     "1 Main St",
			City:       "Springfield",
			Region:     "IL",
			PostalCode: "62701",
			Country:    "US",
		},
	}
}

// WithLabel sets the address label.
func (b *AddressRequestBuilder) WithLabel(label string) *AddressRequestBuilder {
	b.req.Label = label
	return b
}

// WithStreet sets the street line.
func (b *AddressRequestBuilder) WithStreet(street string) *AddressRequestBuilder {
	b.req.Street = street
	return b
}

// WithCity sets the city.
func (b *AddressRequestBuilder) WithCity(city string) *AddressRequestBuilder {
	b.req.City = city
	return b
}

// WithCountry sets the country code.
func (b *AddressRequestBuilder) WithCountry(country string) *AddressRequestBuilder {
	b.req.Country = country
	return b
}

// AsDefault marks the address as the user's default.
func (b *AddressRequestBuilder) AsDefault() *AddressRequestBuilder {
	v := true
	b.req.IsDefault = &v
	return b
}

// Build returns the constructed CreateAddressRequest.
func (b *AddressRequestBuilder) Build() *profile.CreateAddressRequest {
	return b.req
}
