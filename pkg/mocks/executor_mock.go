package mocks

import (
	"context"

	"github.com/dukex/stateflow/pkg/executor"
	"github.com/dukex/stateflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockExecutor is a mock of the workflow-execution service client.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Fetch(ctx context.Context, id string) (*executor.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*executor.Workflow), args.Error(1)
}

func (m *MockExecutor) FetchMap(ctx context.Context, id string) (*models.WorkflowMap, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowMap), args.Error(1)
}

func (m *MockExecutor) Submit(ctx context.Context, doc models.WorkflowDocument) (*executor.Workflow, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*executor.Workflow), args.Error(1)
}
