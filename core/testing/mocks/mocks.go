// Package mocks provides testify mocks for the query pipeline interfaces.
package mocks

import (
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
)

// MockQueryParameters is a mock of interfaces.QueryParameters
type MockQueryParameters struct {
	mock.Mock
}

// NewMockQueryParameters creates a mock that asserts its expectations on cleanup
func NewMockQueryParameters(t mock.TestingT) *MockQueryParameters {
	m := &MockQueryParameters{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockQueryParameters) Validate() error {
	args := m.Called()
	return args.Error(0)
}

// MockQueryGenerator is a mock of interfaces.QueryGenerator
type MockQueryGenerator struct {
	mock.Mock
}

// NewMockQueryGenerator creates a mock that asserts its expectations on cleanup
func NewMockQueryGenerator(t mock.TestingT) *MockQueryGenerator {
	m := &MockQueryGenerator{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockQueryGenerator) GenerateQuery(params interfaces.QueryParameters) ([]byte, error) {
	args := m.Called(params)
	var query []byte
	if v := args.Get(0); v != nil {
		query = v.([]byte)
	}
	return query, args.Error(1)
}

// MockResponseHandler is a mock of interfaces.ResponseHandler[any]
type MockResponseHandler struct {
	mock.Mock
}

// NewMockResponseHandler creates a mock that asserts its expectations on cleanup
func NewMockResponseHandler(t mock.TestingT) *MockResponseHandler {
	m := &MockResponseHandler{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockResponseHandler) HandleResponse(resp *http.Response) (any, error) {
	args := m.Called(resp)
	return args.Get(0), args.Error(1)
}

// MockDoer is a mock of interfaces.Doer
type MockDoer struct {
	mock.Mock
}

// NewMockDoer creates a mock that asserts its expectations on cleanup
func NewMockDoer(t mock.TestingT) *MockDoer {
	m := &MockDoer{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	var resp *http.Response
	if v := args.Get(0); v != nil {
		resp = v.(*http.Response)
	}
	return resp, args.Error(1)
}

type cleaner interface {
	Cleanup(func())
}

func registerCleanup(t mock.TestingT, m *mock.Mock) {
	if c, ok := t.(cleaner); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
}

var (
	_ interfaces.QueryParameters      = (*MockQueryParameters)(nil)
	_ interfaces.QueryGenerator       = (*MockQueryGenerator)(nil)
	_ interfaces.ResponseHandler[any] = (*MockResponseHandler)(nil)
	_ interfaces.Doer                 = (*MockDoer)(nil)
)
