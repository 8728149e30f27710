package dialog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/weather-chat-bot/internal/chat"
	"github.com/i474232898/weather-chat-bot/internal/render"
	"github.com/i474232898/weather-chat-bot/internal/router"
	"github.com/i474232898/weather-chat-bot/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder is a Messenger that logs every call in order.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	messages []chat.OutgoingMessage
}

func (r *recorder) SendMessage(_ context.Context, msg chat.OutgoingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "send")
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recorder) AnswerCallback(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "ack:"+id)
	return nil
}

func (r *recorder) SendTyping(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "typing")
	return nil
}

func (r *recorder) snapshot() ([]string, []chat.OutgoingMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...), append([]chat.OutgoingMessage(nil), r.messages...)
}

// stubLookup answers from fixed results and counts calls.
type stubLookup struct {
	mu       sync.Mutex
	current  weather.Result
	forecast weather.Result
	cities   []string
	release  chan struct{}
	panics   bool
	onLookup func()
}

func (s *stubLookup) Current(_ context.Context, city string) weather.Result {
	s.record(city)
	if s.current == nil {
		return weather.Unavailable{City: city}
	}
	return s.current
}

func (s *stubLookup) Forecast(_ context.Context, city string) weather.Result {
	s.record(city)
	if s.forecast == nil {
		return weather.Unavailable{City: city}
	}
	return s.forecast
}

func (s *stubLookup) record(city string) {
	s.mu.Lock()
	s.cities = append(s.cities, city)
	s.mu.Unlock()
	if s.onLookup != nil {
		s.onLookup()
	}
	if s.release != nil {
		<-s.release
	}
	if s.panics {
		panic("provider exploded")
	}
}

func (s *stubLookup) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cities...)
}

type panickingRenderer struct{}

func (panickingRenderer) Render(router.Intent, weather.Result) chat.OutgoingMessage {
	panic("template exploded")
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestController(m Messenger, l WeatherLookup) *Controller {
	return NewController(m, l, render.New(nil), discard())
}

func TestHandleCurrentWeatherText(t *testing.T) {
	rec := &recorder{}
	lookup := &stubLookup{current: weather.CurrentConditions{
		LocationName:     "Moscow",
		TemperatureC:     3,
		HumidityPct:      80,
		WindMetersPerSec: 5,
		ConditionText:    "Cloudy",
	}}
	c := newTestController(rec, lookup)

	c.Handle(context.Background(), chat.TextMessage{ChatID: 42, Text: "/weather Москва"})

	calls, msgs := rec.snapshot()
	assert.Equal(t, []string{"typing", "send"}, calls)
	assert.Equal(t, []string{"Москва"}, lookup.calls())
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, int64(42), msg.ChatID)
	for _, want := range []string{"Moscow", "3", "80", "5.0", "Cloudy"} {
		assert.Contains(t, msg.Text, want)
	}
	require.Len(t, msg.Buttons, 1)
	assert.Equal(t, "show_cities", msg.Buttons[0][0].Payload)
	assert.Equal(t, "forecast_Москва", msg.Buttons[0][1].Payload)
}

func TestHandleBareForecastNeedsNoLookup(t *testing.T) {
	rec := &recorder{}
	lookup := &stubLookup{}
	c := newTestController(rec, lookup)

	c.Handle(context.Background(), chat.TextMessage{ChatID: 7, Text: "/forecast"})

	calls, msgs := rec.snapshot()
	assert.Equal(t, []string{"send"}, calls)
	assert.Empty(t, lookup.calls())
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0].Text, "📊 Укажите город"), msgs[0].Text)
	assert.Contains(t, msgs[0].Text, "/forecast")
}

func TestHandleUnknownCityRendersUnavailable(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, &stubLookup{})

	c.Handle(context.Background(), chat.TextMessage{ChatID: 1, Text: "Atlantis"})

	_, msgs := rec.snapshot()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Не удалось")
	assert.Contains(t, msgs[0].Text, "Atlantis")
	assert.False(t, msgs[0].HasButtons())
}

func TestHandleButtonAcknowledgesBeforeLookup(t *testing.T) {
	rec := &recorder{}
	lookup := &stubLookup{
		forecast: weather.Forecast{LocationName: "Paris", Days: make([]weather.ForecastDay, weather.ForecastDays)},
		release:  make(chan struct{}),
	}
	c := newTestController(rec, lookup)

	c.Handle(context.Background(), chat.ButtonPress{ChatID: 9, CallbackID: "cb-1", Payload: "forecast_Paris"})

	calls, _ := rec.snapshot()
	require.NotEmpty(t, calls)
	assert.Equal(t, "ack:cb-1", calls[0], "acknowledged while the lookup is still blocked")

	close(lookup.release)
	c.Wait()

	calls, msgs := rec.snapshot()
	assert.Equal(t, []string{"ack:cb-1", "typing", "send"}, calls)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(9), msgs[0].ChatID)
	assert.Contains(t, msgs[0].Text, "Paris")
}

func TestHandleButtonWithoutLookup(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, &stubLookup{})

	c.Handle(context.Background(), chat.ButtonPress{ChatID: 3, CallbackID: "cb-2", Payload: "show_cities"})
	c.Wait()

	calls, msgs := rec.snapshot()
	assert.Equal(t, []string{"ack:cb-2", "send"}, calls)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].HasButtons())
}

func TestHandleCancelledDuringLookupSendsNothing(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lookup := &stubLookup{onLookup: cancel}
	c := newTestController(rec, lookup)

	c.Handle(ctx, chat.TextMessage{ChatID: 5, Text: "/weather London"})

	calls, msgs := rec.snapshot()
	assert.Equal(t, []string{"typing"}, calls)
	assert.Empty(t, msgs)
	assert.Equal(t, []string{"London"}, lookup.calls())
}

func TestHandleLookupPanicBecomesUnavailable(t *testing.T) {
	rec := &recorder{}
	c := newTestController(rec, &stubLookup{panics: true})

	assert.NotPanics(t, func() {
		c.Handle(context.Background(), chat.TextMessage{ChatID: 5, Text: "/forecast Oslo"})
	})

	_, msgs := rec.snapshot()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "Не удалось получить прогноз для 'Oslo'")
}

func TestHandleRenderPanicIsContained(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec, &stubLookup{}, panickingRenderer{}, discard())

	assert.NotPanics(t, func() {
		c.Handle(context.Background(), chat.TextMessage{ChatID: 5, Text: "/start"})
	})
	_, msgs := rec.snapshot()
	assert.Empty(t, msgs)
}

func TestDispatcherRunsEventsConcurrently(t *testing.T) {
	rec := &recorder{}
	lookup := &stubLookup{release: make(chan struct{})}
	c := newTestController(rec, lookup)
	d := NewDispatcher(context.Background(), c, discard())

	d.Submit(chat.TextMessage{ChatID: 1, Text: "/weather A"})
	d.Submit(chat.ButtonPress{ChatID: 2, CallbackID: "cb", Payload: "city_B"})
	d.Submit(chat.TextMessage{ChatID: 3, Text: "/start"})

	// Both lookups block together; neither waits for the other.
	require.Eventually(t, func() bool { return len(lookup.calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"A", "B"}, lookup.calls())

	close(lookup.release)
	d.Wait()

	_, msgs := rec.snapshot()
	chats := make([]int64, 0, len(msgs))
	for _, m := range msgs {
		chats = append(chats, m.ChatID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, chats)
}

func TestDispatcherDropsEventsAfterShutdown(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(ctx, newTestController(rec, &stubLookup{}), discard())
	cancel()

	d.Submit(chat.TextMessage{ChatID: 1, Text: "/start"})
	d.Wait()

	calls, _ := rec.snapshot()
	assert.Empty(t, calls)
}
