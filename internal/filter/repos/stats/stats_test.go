package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/haukened/tubefilter/internal/filter/common/clock"
	"github.com/haukened/tubefilter/internal/filter/common/log"
	"github.com/haukened/tubefilter/internal/filter/domain"
)

type mockPersister struct{ mock.Mock }

func (m *mockPersister) Statistics(ctx context.Context) (domain.Statistics, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Statistics), args.Error(1)
}

func (m *mockPersister) SaveStatistics(ctx context.Context, s domain.Statistics) error {
	return m.Called(ctx, s).Error(0)
}

var start = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func opts() Options {
	return Options{Clock: clock.NewMockClock(start), Logger: log.NewNoopLogger()}
}

func TestRecorder_LoadsAndAccumulates(t *testing.T) {
	p := &mockPersister{}
	loaded := domain.NewStatistics()
	loaded.BlockedCount = 10
	p.On("Statistics", mock.Anything).Return(loaded, nil)

	r := New(context.Background(), p, opts())
	r.Record(domain.BlockRecord{Title: "t", Creator: "c", MatchedCreator: "c"})

	total := r.Snapshot()
	assert.Equal(t, uint64(11), total.BlockedCount)
	require.NotNil(t, total.LastBlocked)
	assert.Equal(t, start, total.LastBlocked.Timestamp)
	assert.Equal(t, uint64(1), r.PageSnapshot().BlockedCount)

	r.ResetPage()
	assert.Zero(t, r.PageSnapshot().BlockedCount)
	assert.Equal(t, uint64(11), r.Snapshot().BlockedCount)
}

func TestRecorder_LoadFailureStartsFromZero(t *testing.T) {
	p := &mockPersister{}
	p.On("Statistics", mock.Anything).Return(domain.Statistics{}, errors.New("corrupt"))
	r := New(context.Background(), p, opts())
	assert.Equal(t, domain.NewStatistics(), r.Snapshot())
}

func TestRecorder_FlushOnlyWhenDirty(t *testing.T) {
	p := &mockPersister{}
	p.On("Statistics", mock.Anything).Return(domain.NewStatistics(), nil)
	p.On("SaveStatistics", mock.Anything, mock.Anything).Return(nil).Once()

	r := New(context.Background(), p, opts())
	require.NoError(t, r.Flush(context.Background()))
	r.Record(domain.BlockRecord{Title: "t", MatchedKeyword: "k"})
	require.NoError(t, r.Flush(context.Background()))
	require.NoError(t, r.Flush(context.Background()))
	p.AssertExpectations(t)
}

func TestRecorder_FlushFailureStaysDirty(t *testing.T) {
	p := &mockPersister{}
	p.On("Statistics", mock.Anything).Return(domain.NewStatistics(), nil)
	p.On("SaveStatistics", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	p.On("SaveStatistics", mock.Anything, mock.Anything).Return(nil).Once()

	r := New(context.Background(), p, opts())
	r.Record(domain.BlockRecord{Title: "t", MatchedKeyword: "k"})
	assert.Error(t, r.Flush(context.Background()))
	assert.NoError(t, r.Flush(context.Background()))
	p.AssertExpectations(t)
}

func TestRecorder_Reset(t *testing.T) {
	p := &mockPersister{}
	p.On("Statistics", mock.Anything).Return(domain.NewStatistics(), nil)
	p.On("SaveStatistics", mock.Anything, domain.NewStatistics()).Return(nil).Once()

	r := New(context.Background(), p, opts())
	r.Record(domain.BlockRecord{Title: "t", MatchedKeyword: "k"})
	require.NoError(t, r.Reset(context.Background()))
	assert.Zero(t, r.Snapshot().BlockedCount)
	p.AssertExpectations(t)
}

func TestRecorder_NilPersister(t *testing.T) {
	r := New(context.Background(), nil, opts())
	r.Record(domain.BlockRecord{Title: "t"})
	assert.NoError(t, r.Flush(context.Background()))
}
