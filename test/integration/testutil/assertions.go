//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/attaboy/fairway/internal/domain"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertGroupVersion queries score_groups and asserts the stored version.
func AssertGroupVersion(t *testing.T, env *TestEnv, ref domain.GroupRef, expected int64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var version int64
	err := env.Pool.QueryRow(ctx,
		"SELECT version FROM score_groups WHERE tournament_id = $1 AND group_id = $2",
		ref.TournamentID, ref.GroupID).Scan(&version)
	if err != nil {
		t.Fatalf("AssertGroupVersion: query: %v", err)
	}
	if version != expected {
		t.Errorf("group version: expected %d, got %d", expected, version)
	}
}

// CountEvents returns the number of logged events for a group, optionally
// only the unpublished ones.
func CountEvents(t *testing.T, env *TestEnv, ref domain.GroupRef, unpublishedOnly bool) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sql := "SELECT COUNT(*) FROM group_event_log WHERE tournament_id = $1 AND group_id = $2"
	if unpublishedOnly {
		sql += " AND published_at IS NULL"
	}
	var n int
	if err := env.Pool.QueryRow(ctx, sql, ref.TournamentID, ref.GroupID).Scan(&n); err != nil {
		t.Fatalf("CountEvents: query: %v", err)
	}
	return n
}
