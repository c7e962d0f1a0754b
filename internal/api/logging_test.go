package api_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qpaper/qpaper/internal/api"
	"github.com/qpaper/qpaper/internal/store"
)

func TestWithLogging_RecordsEvents(t *testing.T) {
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base, srv := newTestClient(t)
	core, logs := observer.New(zapcore.InfoLevel)
	c := api.WithLogging(base, s.EventRepo(), zap.New(core))
	ctx := context.Background()

	_, err = c.CreateExam(ctx, midterm())
	require.NoError(t, err)
	_, err = c.GetExam(ctx, 99)
	require.Error(t, err)

	events, err := s.EventRepo().QueryRequests(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, ok := events[0], events[1]
	assert.Equal(t, api.OpGetExam, failed.Op)
	assert.False(t, failed.Success)
	assert.Equal(t, 404, failed.StatusCode)
	assert.Equal(t, "/api/exams/99", failed.Path)
	assert.Contains(t, failed.ErrorMessage, "not found")

	assert.Equal(t, api.OpCreateExam, ok.Op)
	assert.True(t, ok.Success)
	assert.Equal(t, "POST", ok.Method)
	assert.Equal(t, srv.Requests()[0].RequestID, ok.RequestID)

	assert.Equal(t, 1, logs.FilterMessage("api request").Len())
	warn := logs.FilterMessage("api request failed").All()
	require.Len(t, warn, 1)
	assert.Equal(t, api.OpGetExam, warn[0].ContextMap()["op"])
}

func TestWithLogging_NilRepo(t *testing.T) {
	mock := api.NewMockClient().On(api.OpListExams, api.MockResponse{})
	c := api.WithLogging(mock, nil, nil)

	_, err := c.ListExams(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount(api.OpListExams))
}

func TestNewClient(t *testing.T) {
	_, srv := newTestClient(t)

	cfg := api.DefaultConfig()
	cfg.BaseURL = srv.URL
	c, err := api.NewClient(cfg, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = c.ListExams(context.Background())
	require.NoError(t, err)

	cfg.BaseURL = "localhost:8000"
	_, err = api.NewClient(cfg, nil, nil)
	assert.Error(t, err)
}
