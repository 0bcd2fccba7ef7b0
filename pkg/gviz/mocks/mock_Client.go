// Package mocks provides test doubles for the gviz client.
package mocks

import (
	"context"

	model "github.com/sells-group/fba-resolver/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Query provides a mock function with given fields: ctx, sheetID, tabID
func (_m *MockClient) Query(ctx context.Context, sheetID string, tabID string) ([]model.RawRow, error) {
	ret := _m.Called(ctx, sheetID, tabID)

	if len(ret) == 0 {
		panic("no return value specified for Query")
	}

	var r0 []model.RawRow
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) ([]model.RawRow, error)); ok {
		return rf(ctx, sheetID, tabID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) []model.RawRow); ok {
		r0 = rf(ctx, sheetID, tabID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]model.RawRow)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, sheetID, tabID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
