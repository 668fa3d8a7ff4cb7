//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/handler"
	fixtures "github.com/attaboy/fairway/internal/testutil"
)

// DeviceID is sent on every request the env makes.
const DeviceID = "integration-device"

// Do performs a JSON request against the test server.
func (env *TestEnv) Do(method, path string, body interface{}) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.DeviceIDHeader, DeviceID)

	resp, err := env.Server.Client().Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs a GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil)
}

// PUT performs a PUT request with a JSON body.
func (env *TestEnv) PUT(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body)
}

// POST performs a POST request with a JSON body.
func (env *TestEnv) POST(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body)
}

// GroupPath returns the route prefix for a group.
func GroupPath(ref domain.GroupRef) string {
	return fmt.Sprintf("/tournaments/%s/groups/%s", ref.TournamentID, ref.GroupID)
}

// SetupGroup runs game setup over HTTP for n players with the given config.
func (env *TestEnv) SetupGroup(ref domain.GroupRef, n int, hasVerifier bool, cfg domain.GameConfig) {
	env.t.Helper()
	resp := env.PUT(GroupPath(ref), handler.SetupRequest{
		StartingHole: 1,
		HasVerifier:  hasVerifier,
		Teebox:       fixtures.Teebox(),
		Players:      fixtures.Players(n),
		Config:       cfg,
		Actor:        "starter",
	})
	AssertStatus(env.t, resp, http.StatusOK)
	resp.Body.Close()
}

// SubmitHole posts one channel's gross scores for a hole.
func (env *TestEnv) SubmitHole(ref domain.GroupRef, hole int, ch domain.Channel, gross map[string]int) handler.HoleResponse {
	env.t.Helper()
	entries := make(map[string]domain.ScoreEntry, len(gross))
	for id, g := range gross {
		entries[id] = fixtures.Gross(g)
	}
	resp := env.PUT(fmt.Sprintf("%s/holes/%d/%s", GroupPath(ref), hole, ch), handler.HoleRequest{
		Actor:   string(ch) + "-device",
		Entries: entries,
	})
	AssertStatus(env.t, resp, http.StatusOK)
	var out handler.HoleResponse
	DecodeJSON(env.t, resp, &out)
	return out
}
