// Package mocks provides mock implementations for testing the fixwave services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockProfileRepository(ctrl)
//	mockRepo.EXPECT().GetByUserID(gomock.Any(), gomock.Any()).Return(prof, nil)
package mocks

// Generate mock for ProfileRepository interface from internal/core package.
// This creates MockProfileRepository with methods for all ProfileRepository interface methods:
// Upsert, GetByUserID, SetOnboardingComplete, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_repository_mock.go github.com/fixwave/fixwave-api/internal/core ProfileRepository

// Generate mock for AddressRepository interface from internal/core package.
// This creates MockAddressRepository with methods for all AddressRepository interface methods:
// Create, ListByUser, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=address_repository_mock.go github.com/fixwave/fixwave-api/internal/core AddressRepository

// Generate mock for VerificationChecker interface from internal/core package.
// This creates MockVerificationChecker with methods for all VerificationChecker interface methods:
// Verified
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=verification_checker_mock.go github.com/fixwave/fixwave-api/internal/core VerificationChecker

// Generate mock for IdentityDirectory interface from internal/ports package.
// This creates MockIdentityDirectory with methods for all IdentityDirectory interface methods:
// Lookup, ResendVerification, RevokeSessions
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=identity_directory_mock.go github.com/fixwave/fixwave-api/internal/ports IdentityDirectory

// Generate mock for ObjectStore interface from internal/ports package.
// This creates MockObjectStore with methods for all ObjectStore interface methods:
// Put, Delete, PresignGet
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=object_store_mock.go github.com/fixwave/fixwave-api/internal/ports ObjectStore
