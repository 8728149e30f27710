package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-chat-bot/internal/telegram"
)

type fakeProber struct {
	calls atomic.Int32
	err   error
}

func (f *fakeProber) GetMe(context.Context) (telegram.User, error) {
	f.calls.Add(1)
	return telegram.User{ID: 1, Username: "weather_bot"}, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHeartbeatHealthy(t *testing.T) {
	auth := &telegram.AuthState{}
	p := &fakeProber{}
	s := New(p, auth, time.Minute, discard())

	s.Heartbeat(context.Background())

	assert.EqualValues(t, 1, p.calls.Load())
	assert.False(t, auth.Rejected())
}

func TestHeartbeatRejectedToken(t *testing.T) {
	auth := &telegram.AuthState{}
	s := New(&fakeProber{err: telegram.ErrUnauthorized}, auth, time.Minute, discard())

	s.Heartbeat(context.Background())
	assert.True(t, auth.Rejected())
}

func TestHeartbeatTransientFailure(t *testing.T) {
	auth := &telegram.AuthState{}
	s := New(&fakeProber{err: errors.New("timeout")}, auth, time.Minute, discard())

	s.Heartbeat(context.Background())
	assert.False(t, auth.Rejected())
}

func TestStartRunsHeartbeat(t *testing.T) {
	p := &fakeProber{}
	s := New(p, &telegram.AuthState{}, 20*time.Millisecond, discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartDisabled(t *testing.T) {
	p := &fakeProber{}
	s := New(p, &telegram.AuthState{}, 0, discard())
	require.NoError(t, s.Start())
	s.Stop()

	assert.Zero(t, p.calls.Load())
}
