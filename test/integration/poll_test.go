package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePollValidation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	token := tokenFor(t, uuid.New(), "member")

	cases := []struct {
		name      string
		overrides map[string]any
	}{
		{"one option", map[string]any{"options": []string{"Yes"}}},
		{"bad type", map[string]any{"type": "ranked"}},
		{"end before start", map[string]any{
			"starts_at": time.Now().Add(time.Hour),
			"ends_at":   time.Now(),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]any{
				"title":     "Invalid poll",
				"type":      "informal",
				"starts_at": time.Now(),
				"ends_at":   time.Now().Add(time.Hour),
				"options":   []string{"A", "B"},
			}
			for k, v := range tc.overrides {
				payload[k] = v
			}

			resp := app.doJSON(t, http.MethodPost, "/api/polls", token, payload)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp := app.doJSON(t, http.MethodPost, "/api/polls", "", map[string]any{"title": "anonymous creator"})
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCastOnDraftAndClosedPolls(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := tokenFor(t, uuid.New(), "member")
	voter := tokenFor(t, uuid.New(), "member")

	draft := app.createPoll(t, creator, map[string]any{
		"starts_at": time.Now().Add(time.Hour),
		"ends_at":   time.Now().Add(2 * time.Hour),
	})
	resp := app.doJSON(t, http.MethodPost, fmt.Sprintf("/api/polls/%s/votes", draft.ID), voter,
		map[string]any{"option_id": draft.Options[0].ID})
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not started", body["reason"])

	closed := app.createPoll(t, creator, map[string]any{
		"starts_at": time.Now().Add(-2 * time.Hour),
		"ends_at":   time.Now().Add(-time.Hour),
	})
	resp = app.doJSON(t, http.MethodPost, fmt.Sprintf("/api/polls/%s/votes", closed.ID), voter,
		map[string]any{"option_id": closed.Options[0].ID})
	body = decodeBody[map[string]string](t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "closed", body["reason"])
}

func TestResultsAccessPolicy(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := tokenFor(t, uuid.New(), "member")
	admin := tokenFor(t, uuid.New(), "admin")

	active := app.createPoll(t, creator, nil)
	app.castVote(t, active.ID, active.Options[0].ID, tokenFor(t, uuid.New(), "member"))

	resp := app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/polls/%s/results", active.ID), "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "live tallies are admin-only")

	resp = app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/polls/%s/results", active.ID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tallies := decodeBody[[]map[string]any](t, resp)
	require.Len(t, tallies, 2)
	assert.EqualValues(t, 1, tallies[0]["count"])

	closed := app.createPoll(t, creator, map[string]any{
		"starts_at": time.Now().Add(-2 * time.Hour),
		"ends_at":   time.Now().Add(-time.Hour),
	})
	resp = app.doJSON(t, http.MethodGet, fmt.Sprintf("/api/polls/%s/results", closed.ID), "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "closed poll tallies are public")
}

func TestListPollsWithFilters(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := tokenFor(t, uuid.New(), "member")
	app.createPoll(t, creator, map[string]any{"type": "binding"})
	app.createPoll(t, creator, map[string]any{
		"type":      "informal",
		"starts_at": time.Now().Add(-2 * time.Hour),
		"ends_at":   time.Now().Add(-time.Hour),
	})

	resp := app.doJSON(t, http.MethodGet, "/api/polls", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decodeBody[[]map[string]any](t, resp)
	assert.Len(t, all, 2)

	resp = app.doJSON(t, http.MethodGet, "/api/polls?status=closed", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decodeBody[[]map[string]any](t, resp)
	require.Len(t, closed, 1)
	assert.Equal(t, "informal", closed[0]["type"])
	assert.Equal(t, "closed", closed[0]["status"])

	resp = app.doJSON(t, http.MethodGet, "/api/polls?type=binding", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	binding := decodeBody[[]map[string]any](t, resp)
	assert.Len(t, binding, 1)
}

func TestPurgePollCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	creator := tokenFor(t, uuid.New(), "member")
	admin := tokenFor(t, uuid.New(), "admin")

	poll := app.createPoll(t, creator, nil)
	app.castVote(t, poll.ID, poll.Options[0].ID, tokenFor(t, uuid.New(), "member"))

	resp := app.doJSON(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), creator, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "purge is admin-only")

	resp = app.doJSON(t, http.MethodDelete, "/api/polls/"+poll.ID.String(), admin, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, table := range []string{"votes", "poll_options", "participations", "chain_tails"} {
		var count int
		err := app.DB.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE poll_id = $1`, table), poll.ID).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count, "purge must cascade to "+table)
	}

	resp = app.doJSON(t, http.MethodGet, "/api/polls/"+poll.ID.String(), "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
