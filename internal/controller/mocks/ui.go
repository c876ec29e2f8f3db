// Package mocks provides testify mocks of the controller ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/stackmut/internal/controller"
	m "gooze.dev/pkg/stackmut/internal/model"
)

// MockUI is a mock of controller.UI.
type MockUI struct {
	mock.Mock
}

// NewMockUI creates a mock that asserts its expectations on cleanup.
func NewMockUI(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUI {
	_m := &MockUI{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockUI) Start(ctx context.Context, options ...controller.StartOption) error {
	ret := _m.Called(ctx, options)
	return ret.Error(0)
}

func (_m *MockUI) Close(ctx context.Context) {
	_m.Called(ctx)
}

func (_m *MockUI) Wait(ctx context.Context) {
	_m.Called(ctx)
}

func (_m *MockUI) DisplayEstimation(ctx context.Context, mutants []m.Mutant, err error) error {
	ret := _m.Called(ctx, mutants, err)
	return ret.Error(0)
}

func (_m *MockUI) DisplayConcurrencyInfo(ctx context.Context, threads int, shardIndex int, shardCount int) {
	_m.Called(ctx, threads, shardIndex, shardCount)
}

func (_m *MockUI) DisplayUpcomingTestsInfo(ctx context.Context, count int) {
	_m.Called(ctx, count)
}

func (_m *MockUI) DisplayStartingTestInfo(ctx context.Context, mutant m.Mutant, threadID int) {
	_m.Called(ctx, mutant, threadID)
}

func (_m *MockUI) DisplayCompletedTestInfo(ctx context.Context, mutant m.Mutant, result m.Result) {
	_m.Called(ctx, mutant, result)
}

func (_m *MockUI) DisplayMutationScore(ctx context.Context, score float64) {
	_m.Called(ctx, score)
}

func (_m *MockUI) DisplayReports(ctx context.Context, reports []m.Report) error {
	ret := _m.Called(ctx, reports)
	return ret.Error(0)
}

func (_m *MockUI) DisplayMutant(ctx context.Context, mutant m.Mutant) error {
	ret := _m.Called(ctx, mutant)
	return ret.Error(0)
}

func (_m *MockUI) DisplayCatalog(ctx context.Context, entries []controller.CatalogEntry) error {
	ret := _m.Called(ctx, entries)
	return ret.Error(0)
}
