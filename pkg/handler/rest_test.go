package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/MattchuPichuu/WarDaddy/pkg/command"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/metrics"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 11, 21, 12, 0, 0, 0, time.UTC)

type stubPublisher struct {
	err  error
	urls []string
}

func (p *stubPublisher) Post(_ context.Context, url string, _ discord.Payload) error {
	p.urls = append(p.urls, url)
	return p.err
}

type stubProbe struct {
	err error
}

func (p stubProbe) Check(context.Context) error {
	return p.err
}

type fixture struct {
	clock     *clock.Manual
	store     *service.EntityStore
	publisher *stubPublisher
	commands  *command.Service
	server    *httptest.Server
}

func newFixture(t *testing.T, probe HealthProbe) *fixture {
	t.Helper()

	clk := clock.NewManual(t0)
	seq := 0
	store := service.NewEntityStore(clk, service.EntityStoreConfig{
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	publisher := &stubPublisher{}
	commands := command.NewService(command.Dependencies{
		Store:       store,
		ClientState: service.NewMemoryClientStateStore(clk, time.Hour),
		Publisher:   publisher,
		Metrics:     metrics.New(prometheus.NewRegistry()),
	})

	server := httptest.NewServer(NewAPI(commands, probe).Routes())
	t.Cleanup(server.Close)

	return &fixture{
		clock:     clk,
		store:     store,
		publisher: publisher,
		commands:  commands,
		server:    server,
	}
}

type result struct {
	status int
	body   map[string]interface{}
}

func (r result) data() map[string]interface{} {
	d, _ := r.body["data"].(map[string]interface{})
	return d
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) result {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := result{status: resp.StatusCode, body: map[string]interface{}{}}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out.body))
	}
	return out
}

func (f *fixture) login(t *testing.T, username, role string) string {
	t.Helper()

	res := f.do(t, http.MethodPost, "/v1/session", "", map[string]string{"username": username, "role": role})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, username, res.body["username"])

	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name   string
		probe  HealthProbe
		status int
	}{
		{name: "no probe", probe: nil, status: http.StatusOK},
		{name: "healthy", probe: stubProbe{}, status: http.StatusOK},
		{name: "unhealthy", probe: stubProbe{err: errors.New("redis down")}, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.probe)
			res := f.do(t, http.MethodGet, "/healthz", "", nil)
			assert.Equal(t, tt.status, res.status)
		})
	}
}

func TestSessionRequired(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/board", "", nil).status)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/board", "bogus", nil).status)

	token := f.login(t, "hus", "admin")
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/board", token, nil).status)

	f.clock.Advance(2 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/board", token, nil).status)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	res := f.do(t, http.MethodDelete, "/v1/session", token, nil)
	assert.Equal(t, http.StatusNoContent, res.status)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/sitrep", token, nil).status)
}

func TestLoginUnknownRoleIsViewer(t *testing.T) {
	f := newFixture(t, nil)

	res := f.do(t, http.MethodPost, "/v1/session", "", map[string]string{"username": "vi", "role": "general"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "VIEWER", res.body["role"])
}

func TestCombatantLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	res := f.do(t, http.MethodPost, "/v1/combatants", token, map[string]string{"name": "Vex", "faction": "enemy"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Contains(t, res.body["message"], "Vex")
	assert.Equal(t, "id-1", res.data()["id"])
	assert.Equal(t, "ENEMY", res.data()["faction"])
	assert.Equal(t, "OPEN", res.data()["status"])

	res = f.do(t, http.MethodPost, "/v1/combatants/id-1/shot", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.NotEmpty(t, res.body["embeds"])

	res = f.do(t, http.MethodGet, "/v1/combatants/id-1", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "PROTECTED", res.data()["status"])

	res = f.do(t, http.MethodPatch, "/v1/combatants/id-1", token, map[string]string{"notes": "sniper"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "sniper", res.data()["notes"])

	res = f.do(t, http.MethodPost, "/v1/combatants/id-1/state", token, map[string]string{"status": "dead"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "DEAD")

	res = f.do(t, http.MethodPost, "/v1/combatants/id-1/trigger", token, map[string]string{"time": "2025-11-21 11:00"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "2025-11-21 11:00:00")

	res = f.do(t, http.MethodPost, "/v1/combatants/id-1/trigger", token, map[string]string{"time": "whenever"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = f.do(t, http.MethodDelete, "/v1/combatants/id-1", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "Removed")

	res = f.do(t, http.MethodGet, "/v1/combatants/id-1", token, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestBoard(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	f.do(t, http.MethodPost, "/v1/combatants", token, map[string]string{"name": "Vex", "faction": "ENEMY"})
	f.do(t, http.MethodPost, "/v1/combatants", token, map[string]string{"name": "Hus", "faction": "FRIENDLY", "externalRef": "42"})

	res := f.do(t, http.MethodGet, "/v1/board", token, nil)
	require.Equal(t, http.StatusOK, res.status)

	data := res.data()
	assert.Len(t, data["enemies"], 1)
	assert.Len(t, data["friendlies"], 1)
	assert.Empty(t, data["timers"])
	assert.NotEmpty(t, res.body["embeds"])

	res = f.do(t, http.MethodGet, "/v1/sitrep", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.NotEmpty(t, res.body["message"])
}

func TestRoleGating(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.login(t, "hus", "ADMIN")
	editor := f.login(t, "ed", "EDITOR")
	viewer := f.login(t, "vi", "VIEWER")

	f.do(t, http.MethodPost, "/v1/combatants", admin, map[string]string{"name": "Vex", "faction": "ENEMY"})

	tests := []struct {
		name   string
		token  string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"viewer cannot add", viewer, http.MethodPost, "/v1/combatants", map[string]string{"name": "A", "faction": "ENEMY"}, http.StatusForbidden},
		{"editor cannot add", editor, http.MethodPost, "/v1/combatants", map[string]string{"name": "A", "faction": "ENEMY"}, http.StatusForbidden},
		{"viewer cannot shoot", viewer, http.MethodPost, "/v1/combatants/id-1/shot", nil, http.StatusForbidden},
		{"editor can shoot", editor, http.MethodPost, "/v1/combatants/id-1/shot", nil, http.StatusOK},
		{"editor cannot delete", editor, http.MethodDelete, "/v1/combatants/id-1", nil, http.StatusForbidden},
		{"viewer can read", viewer, http.MethodGet, "/v1/combatants/id-1", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, res.status, res.body)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	tests := []struct {
		name    string
		path    string
		body    interface{}
		message string
	}{
		{"missing name", "/v1/combatants", map[string]string{"faction": "ENEMY"}, "name"},
		{"unknown faction", "/v1/combatants", map[string]string{"name": "Vex", "faction": "neutral"}, "faction"},
		{"unknown field", "/v1/combatants", map[string]string{"name": "Vex", "faction": "ENEMY", "rank": "9"}, "malformed"},
		{"not json", "/v1/combatants", "{", "malformed"},
		{"missing duration", "/v1/timers/id-1/start", map[string]string{}, "duration"},
		{"bad webhook url", "/v1/board/publish", map[string]string{"url": "nope"}, "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.do(t, http.MethodPost, tt.path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, res.status)
			assert.Contains(t, res.body["error"], tt.message)
		})
	}
}

func TestTimers(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	res := f.do(t, http.MethodPost, "/v1/timers", token, map[string]string{"name": "Bombard"})
	require.Equal(t, http.StatusCreated, res.status)
	assert.Equal(t, "STOPPED", res.data()["status"])

	res = f.do(t, http.MethodPost, "/v1/timers/id-1/start", token, map[string]string{"duration": "1h30m"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "01:30:00")

	res = f.do(t, http.MethodPost, "/v1/timers/id-1/start", token, map[string]string{"duration": "0"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = f.do(t, http.MethodPost, "/v1/timers/id-1/stop", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "stopped")

	res = f.do(t, http.MethodPost, "/v1/timers/id-9/stop", token, nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestCooldowns(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	res := f.do(t, http.MethodPost, "/v1/cooldowns", token, map[string]string{"name": "Medic"})
	require.Equal(t, http.StatusCreated, res.status)

	res = f.do(t, http.MethodPost, "/v1/cooldowns/id-1/use", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "2025-11-22 12:00:00")

	res = f.do(t, http.MethodPost, "/v1/cooldowns/id-1/trigger", token, map[string]string{"time": "11/20/2025 1:00 PM"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Contains(t, res.body["message"], "2025-11-20 13:00:00")

	res = f.do(t, http.MethodPatch, "/v1/cooldowns/id-1", token, map[string]string{"name": "Field Medic", "notes": "smoke"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Field Medic", res.data()["name"])
	assert.Equal(t, "smoke", res.data()["notes"])

	res = f.do(t, http.MethodPatch, "/v1/cooldowns/id-1", token, map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = f.do(t, http.MethodPatch, "/v1/cooldowns/id-9", token, map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, res.status)

	editor := f.login(t, "ed", "EDITOR")
	res = f.do(t, http.MethodPatch, "/v1/cooldowns/id-1", editor, map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusForbidden, res.status)
}

func TestRenameOntoTakenName(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "ADMIN")

	res := f.do(t, http.MethodPost, "/v1/combatants", token, map[string]string{"name": "Vex", "faction": "ENEMY"})
	require.Equal(t, http.StatusCreated, res.status)
	res = f.do(t, http.MethodPost, "/v1/combatants", token, map[string]string{"name": "Rook", "faction": "ENEMY"})
	require.Equal(t, http.StatusCreated, res.status)

	res = f.do(t, http.MethodPatch, "/v1/combatants/id-2", token, map[string]string{"name": "vex"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = f.do(t, http.MethodGet, "/v1/combatants/id-2", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "Rook", res.data()["name"])
}

func TestPublish(t *testing.T) {
	f := newFixture(t, nil)
	token := f.login(t, "hus", "EDITOR")

	res := f.do(t, http.MethodPost, "/v1/board/publish", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Contains(t, res.body["error"], "No webhook URL")

	res = f.do(t, http.MethodPut, "/v1/webhook", token, map[string]string{"url": "https://discord.test/hook"})
	require.Equal(t, http.StatusOK, res.status)

	res = f.do(t, http.MethodPost, "/v1/board/publish", token, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, []string{"https://discord.test/hook"}, f.publisher.urls)

	f.publisher.err = fmt.Errorf("%w: discord returned 500", service.ErrDeliveryFailure)
	res = f.do(t, http.MethodPost, "/v1/board/publish", token, map[string]string{"url": "https://discord.test/other"})
	assert.Equal(t, http.StatusBadGateway, res.status)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{command.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("%w: nope", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: id-1", service.ErrNotFound), http.StatusNotFound},
		{service.NewUserError(service.ErrParseFailure, "bad"), http.StatusBadRequest},
		{fmt.Errorf("%w: empty", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: 500", service.ErrDeliveryFailure), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, httpStatus(tt.err))
		})
	}
}
