// api/audit/service_test.go
package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mealcraft/api/audit"
	"github.com/mealcraft/api/test/mock"
)

func TestServiceDelegatesToRepository(t *testing.T) {
	repo := new(mock.MockAuditService)
	svc := audit.NewService(repo)
	ctx := context.Background()

	log := audit.AccessLog{
		Timestamp:     time.Now(),
		UserID:        "chef@example.com",
		Action:        "READ_RECIPE",
		RecipeID:      "r1",
		AccessGranted: false,
		Reason:        "access control groups do not intersect",
	}

	repo.On("LogAccess", ctx, log).Return(nil)
	require.NoError(t, svc.LogAccess(ctx, log))

	from := time.Now().Add(-time.Hour)
	to := time.Now()
	repo.On("QueryLogs", ctx, from, to, "chef@example.com", "r1").
		Return([]audit.AccessLog{log}, nil)

	logs, err := svc.QueryLogs(ctx, from, to, "chef@example.com", "r1")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, "READ_RECIPE", logs[0].Action)

	repo.AssertExpectations(t)
}

func TestServicePropagatesRepositoryError(t *testing.T) {
	repo := new(mock.MockAuditService)
	svc := audit.NewService(repo)
	ctx := context.Background()

	repo.On("LogAccess", ctx, tmock.Anything).Return(errors.New("index unavailable"))

	err := svc.LogAccess(ctx, audit.AccessLog{Action: "CREATE_RECIPE"})
	assert.Error(t, err)
}
