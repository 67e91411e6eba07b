package mocks

import (
	"github.com/brettbedarf/picsort"
	"github.com/stretchr/testify/mock"
)

// MockFilesystem implements picsort.Filesystem for testing across packages
type MockFilesystem struct {
	mock.Mock
}

func (m *MockFilesystem) Move(src, dst string) error {
	args := m.Called(src, dst)

	// Handle function return types (for tests that apply the move)
	if fn, ok := args.Get(0).(func(string, string) error); ok {
		return fn(src, dst)
	}
	return args.Error(0)
}

func (m *MockFilesystem) Exists(path string) (bool, error) {
	args := m.Called(path)

	if fn, ok := args.Get(0).(func(string) bool); ok {
		return fn(path), args.Error(1)
	}
	return args.Bool(0), args.Error(1)
}

func (m *MockFilesystem) Remove(path string) error {
	args := m.Called(path)

	if fn, ok := args.Get(0).(func(string) error); ok {
		return fn(path)
	}
	return args.Error(0)
}

func (m *MockFilesystem) MkdirAll(path string) error {
	args := m.Called(path)

	if fn, ok := args.Get(0).(func(string) error); ok {
		return fn(path)
	}
	return args.Error(0)
}

var _ picsort.Filesystem = (*MockFilesystem)(nil)

// MockCursor implements picsort.Cursor for testing across packages
type MockCursor struct {
	mock.Mock
}

func (m *MockCursor) Current() (picsort.PathEntry, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return picsort.PathEntry{}, args.Bool(1)
	}
	return args.Get(0).(picsort.PathEntry), args.Bool(1)
}

var _ picsort.Cursor = (*MockCursor)(nil)

// MockDestinations implements picsort.Destinations for testing across packages
type MockDestinations struct {
	mock.Mock
}

func (m *MockDestinations) Contains(folder string) bool {
	args := m.Called(folder)
	return args.Bool(0)
}

var _ picsort.Destinations = (*MockDestinations)(nil)
