package mocks

import (
	"context"
	"time"

	"parent-reconciler/core/search"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of search.Client and search.HealthChecker
type Client struct {
	mock.Mock
}

func (m *Client) Count(ctx context.Context, index string, filter search.Filter) (int64, error) {
	args := m.Called(ctx, index, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Client) OpenScan(ctx context.Context, q search.Query, keepAlive time.Duration) (search.Page, error) {
	args := m.Called(ctx, q, keepAlive)
	return args.Get(0).(search.Page), args.Error(1)
}

func (m *Client) AdvanceScan(ctx context.Context, scrollID string, keepAlive time.Duration) (search.Page, error) {
	args := m.Called(ctx, scrollID, keepAlive)
	return args.Get(0).(search.Page), args.Error(1)
}

func (m *Client) CloseScan(ctx context.Context, scrollID string) error {
	args := m.Called(ctx, scrollID)
	return args.Error(0)
}

func (m *Client) Healthy(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
