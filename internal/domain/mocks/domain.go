// Package mocks provides testify mocks of the domain ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/stackmut/internal/domain"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// MockOrchestrator is a mock of domain.Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

// NewMockOrchestrator creates a mock that asserts its expectations on cleanup.
func NewMockOrchestrator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockOrchestrator {
	_m := &MockOrchestrator{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockOrchestrator) TestMutant(ctx context.Context, mutant m.Mutant, harness domain.Harness) (m.Result, error) {
	ret := _m.Called(ctx, mutant, harness)

	if rf, ok := ret.Get(0).(func(context.Context, m.Mutant, domain.Harness) m.Result); ok {
		return rf(ctx, mutant, harness), ret.Error(1)
	}

	result, _ := ret.Get(0).(m.Result)

	return result, ret.Error(1)
}

// MockWorkflow is a mock of domain.Workflow.
type MockWorkflow struct {
	mock.Mock
}

// NewMockWorkflow creates a mock that asserts its expectations on cleanup.
func NewMockWorkflow(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockWorkflow {
	_m := &MockWorkflow{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockWorkflow) Estimate(ctx context.Context, args domain.EstimateArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

func (_m *MockWorkflow) Test(ctx context.Context, args domain.TestArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

func (_m *MockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

func (_m *MockWorkflow) Merge(ctx context.Context, args domain.MergeArgs) error {
	ret := _m.Called(ctx, args)
	return ret.Error(0)
}

func (_m *MockWorkflow) Mutate(ctx context.Context, args domain.MutateArgs) (m.Mutant, error) {
	ret := _m.Called(ctx, args)

	mutant, _ := ret.Get(0).(m.Mutant)

	return mutant, ret.Error(1)
}
