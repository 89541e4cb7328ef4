package authroles

import (
	domainauth "github.com/fixwave/fixwave-api/internal/domain/auth"
)

// StaticRoleMapper maps IdP groups to application roles by string membership.
// Precedence is admin, then provider, then customer; unknown groups fall
// through to guest.
type StaticRoleMapper struct {
	AdminGroup    string
	ProviderGroup string
	CustomerGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	for _, g := range groups {
		if m.AdminGroup != "" && g == m.AdminGroup {
			return domainauth.RoleAdmin
		}
	}
	for _, g := range groups {
		if m.ProviderGroup != "" && g == m.ProviderGroup {
			return domainauth.RoleProvider
		}
	}
	for _, g := range groups {
		if m.CustomerGroup != "" && g == m.CustomerGroup {
			return domainauth.RoleCustomer
		}
	}
	return domainauth.RoleGuest
}
