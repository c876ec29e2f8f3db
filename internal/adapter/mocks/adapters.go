// Package mocks provides testify mocks of the adapter ports.
package mocks

import (
	"context"
	"os"

	"github.com/stretchr/testify/mock"

	m "gooze.dev/pkg/stackmut/internal/model"
	pkg "gooze.dev/pkg/stackmut/pkg"
)

// MockSourceFSAdapter is a mock of adapter.SourceFSAdapter.
type MockSourceFSAdapter struct {
	mock.Mock
}

// NewMockSourceFSAdapter creates a mock that asserts its expectations on cleanup.
func NewMockSourceFSAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSourceFSAdapter {
	_m := &MockSourceFSAdapter{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error) {
	ret := _m.Called(ctx, paths, exclude)

	sources, _ := ret.Get(0).([]m.Source)

	return sources, ret.Error(1)
}

func (_m *MockSourceFSAdapter) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	ret := _m.Called(ctx, path)

	content, _ := ret.Get(0).([]byte)

	return content, ret.Error(1)
}

func (_m *MockSourceFSAdapter) HashFile(ctx context.Context, path m.Path) (string, error) {
	ret := _m.Called(ctx, path)
	return ret.String(0), ret.Error(1)
}

func (_m *MockSourceFSAdapter) CreateTempDir(ctx context.Context, pattern string) (m.Path, error) {
	ret := _m.Called(ctx, pattern)

	path, _ := ret.Get(0).(m.Path)

	return path, ret.Error(1)
}

func (_m *MockSourceFSAdapter) RemoveAll(ctx context.Context, path m.Path) error {
	ret := _m.Called(ctx, path)
	return ret.Error(0)
}

func (_m *MockSourceFSAdapter) WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error {
	ret := _m.Called(ctx, path, content, perm)
	return ret.Error(0)
}

func (_m *MockSourceFSAdapter) JoinPath(ctx context.Context, elem ...string) m.Path {
	ret := _m.Called(ctx, elem)

	path, _ := ret.Get(0).(m.Path)

	return path
}

// MockReportStore is a mock of adapter.ReportStore.
type MockReportStore struct {
	mock.Mock
}

// NewMockReportStore creates a mock that asserts its expectations on cleanup.
func NewMockReportStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockReportStore {
	_m := &MockReportStore{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockReportStore) SaveReports(ctx context.Context, dir m.Path, reports pkg.FileSpill[m.Report]) error {
	ret := _m.Called(ctx, dir, reports)
	return ret.Error(0)
}

func (_m *MockReportStore) LoadReports(ctx context.Context, dir m.Path) ([]m.Report, error) {
	ret := _m.Called(ctx, dir)

	reports, _ := ret.Get(0).([]m.Report)

	return reports, ret.Error(1)
}

func (_m *MockReportStore) CheckUpdates(ctx context.Context, dir m.Path, sources []m.Source) ([]m.Source, error) {
	ret := _m.Called(ctx, dir, sources)

	changed, _ := ret.Get(0).([]m.Source)

	return changed, ret.Error(1)
}

func (_m *MockReportStore) CleanReports(ctx context.Context, dir m.Path, sources []m.Source) error {
	ret := _m.Called(ctx, dir, sources)
	return ret.Error(0)
}

func (_m *MockReportStore) ShardDirs(ctx context.Context, dir m.Path) ([]m.Path, error) {
	ret := _m.Called(ctx, dir)

	dirs, _ := ret.Get(0).([]m.Path)

	return dirs, ret.Error(1)
}

// MockListingAdapter is a mock of adapter.ListingAdapter.
type MockListingAdapter struct {
	mock.Mock
}

// NewMockListingAdapter creates a mock that asserts its expectations on cleanup.
func NewMockListingAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockListingAdapter {
	_m := &MockListingAdapter{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockListingAdapter) Load(ctx context.Context, path m.Path) (m.Class, error) {
	ret := _m.Called(ctx, path)

	class, _ := ret.Get(0).(m.Class)

	return class, ret.Error(1)
}

func (_m *MockListingAdapter) Decode(ctx context.Context, content []byte) (m.Class, error) {
	ret := _m.Called(ctx, content)

	class, _ := ret.Get(0).(m.Class)

	return class, ret.Error(1)
}

func (_m *MockListingAdapter) Encode(ctx context.Context, class m.Class) ([]byte, error) {
	ret := _m.Called(ctx, class)

	content, _ := ret.Get(0).([]byte)

	return content, ret.Error(1)
}

func (_m *MockListingAdapter) Render(method m.Method) string {
	ret := _m.Called(method)
	return ret.String(0)
}

// MockTestRunnerAdapter is a mock of adapter.TestRunnerAdapter.
type MockTestRunnerAdapter struct {
	mock.Mock
}

// NewMockTestRunnerAdapter creates a mock that asserts its expectations on cleanup.
func NewMockTestRunnerAdapter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTestRunnerAdapter {
	_m := &MockTestRunnerAdapter{}
	_m.Mock.Test(t)
	t.Cleanup(func() { _m.AssertExpectations(t) })

	return _m
}

func (_m *MockTestRunnerAdapter) RunHarness(ctx context.Context, workDir string, command []string, env map[string]string) (string, error) {
	ret := _m.Called(ctx, workDir, command, env)
	return ret.String(0), ret.Error(1)
}
