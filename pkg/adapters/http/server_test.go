package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/events"
	"github.com/aretw0/onboard/pkg/messenger"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/session"
	"github.com/aretw0/onboard/pkg/tutorial"
)

// MockRouter records envelopes and returns a canned result.
type MockRouter struct {
	Envelopes []domain.Envelope
	Resp      events.Response
	Err       error
}

func (m *MockRouter) Handle(ctx context.Context, env domain.Envelope) (events.Response, error) {
	m.Envelopes = append(m.Envelopes, env)
	return m.Resp, m.Err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostEvents_InvalidJSON(t *testing.T) {
	router := &MockRouter{}
	w := post(t, NewHandler(router), `{"token": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, router.Envelopes, "router must not see unparsable bodies")
}

func TestPostEvents_InvalidToken(t *testing.T) {
	router := &MockRouter{Err: domain.ErrInvalidToken}
	w := post(t, NewHandler(router), `{"token":"secret-guess","type":"url_verification","challenge":"c"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-guess")
}

func TestPostEvents_MistypedFieldStillChecksToken(t *testing.T) {
	h := NewHandler(events.NewRouter("T", nil))

	w := post(t, h, `{"token":"wrong","type":"event_callback","team_id":"A","event_id":7}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = post(t, h, `{"token":"T","type":"event_callback","team_id":"A","event_id":7}`)
	assert.Equal(t, http.StatusOK, w.Code, "a verified but malformed callback is acknowledged")
}

func TestPostEvents_Challenge(t *testing.T) {
	router := &MockRouter{Resp: events.Response{Challenge: "abc123"}}
	w := post(t, NewHandler(router), `{"token":"T","type":"url_verification","challenge":"abc123"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Body.String())
}

func TestPostEvents_MalformedEventStillRouted(t *testing.T) {
	router := &MockRouter{}
	w := post(t, NewHandler(router), `{"token":"T","type":"event_callback","team_id":"A","event":{"type":"pin_added"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, router.Envelopes, 1)
	assert.Nil(t, router.Envelopes[0].Event)
}

func TestPostEvents_BodyLimit(t *testing.T) {
	router := &MockRouter{}
	h := NewHandler(router, WithMaxBodyBytes(16))
	w := post(t, h, `{"token":"T","type":"url_verification","challenge":"abcdefghijklmnop"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndInfo(t *testing.T) {
	h := NewHandler(&MockRouter{}, WithVersion("1.2.3"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.JSONEq(t, `{"app":"onboard","version":"1.2.3"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are opt-in")
}

type recordingClient struct {
	posts int
}

func (c *recordingClient) PostMessage(ctx context.Context, msg domain.OutboundMessage) (string, error) {
	c.posts++
	return "1.1", nil
}

func (c *recordingClient) UpdateMessage(ctx context.Context, msg domain.OutboundMessage) error {
	return nil
}

func TestEndToEnd_JoinOverHTTP(t *testing.T) {
	tmpl, err := tutorial.Load("../../tutorial/testdata/welcome.json")
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore(), tmpl)
	client := &recordingClient{}
	require.NoError(t, sessions.ProvisionTeam(context.Background(), domain.TeamState{ID: "A", Client: client}))

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	disp := dispatch.New()
	router := events.NewRouter("T",
		events.NewHandlers(sessions, messenger.New(messenger.WithLifecycleHooks(metrics.Hooks()))),
		events.WithDispatcher(disp),
		events.WithLifecycleHooks(metrics.Hooks()),
	)
	h := NewHandler(router, WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	w := post(t, h, `{"token":"T","type":"event_callback","team_id":"A","event":{"type":"team_join","user":{"id":"U1"}}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	require.NoError(t, disp.Wait(context.Background()))

	assert.Equal(t, 1, client.posts)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `onboard_events_total{kind="team_join"} 1`)
	assert.Contains(t, w.Body.String(), `onboard_messages_total{op="post",result="ok"} 1`)
}
