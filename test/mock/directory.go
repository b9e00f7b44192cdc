// test/mock/directory.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock implementation of the identity provider
// directory used by the user and notification services.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetUsersWithCOI(ctx context.Context, coi string) ([]string, error) {
	args := m.Called(ctx, coi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDirectory) GetAccessControlGroupsByEmail(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDirectory) GetCommunitiesOfInterestByEmail(ctx context.Context, email string) ([]string, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDirectory) GetRegionByEmail(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) UpdateUserACGs(ctx context.Context, email string, acgs []string) error {
	args := m.Called(ctx, email, acgs)
	return args.Error(0)
}

func (m *MockDirectory) UpdateUserCOIs(ctx context.Context, email string, cois []string) error {
	args := m.Called(ctx, email, cois)
	return args.Error(0)
}
