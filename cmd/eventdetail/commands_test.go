package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/event-planner-client/services/event-detail/usecase"
)

type fakeAPI struct {
	mu      sync.Mutex
	deletes int
	joins   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/events/7":
		io.WriteString(w, `{"eventId":7,"userId":9,"eventName":"Gala","eventType":"Party","eventDate":[2024,5,1],"eventStartTime":[10,0],"eventEndTime":[12,0],"venueId":3}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/venues/3":
		io.WriteString(w, `{"venueId":3,"venueName":"Hall A","address":"1 Main St","city":"Hanoi","country":"VN"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/bookings/7":
		io.WriteString(w, `{"bookingDate":[2024,5,1],"bookingStartTime":[10,0],"bookingEndTime":[12,0]}`)
	case r.Method == http.MethodDelete && r.URL.Path == "/api/events/7/delete":
		f.deletes++
	case r.Method == http.MethodPost && r.URL.Path == "/api/guests/9/manage":
		body, _ := io.ReadAll(r.Body)
		f.joins = append(f.joins, string(body))
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "Event not found")
	}
}

func (f *fakeAPI) counts() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes, append([]string(nil), f.joins...)
}

func setupCLI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("API_BASE_URL", srv.URL+"/api")
	t.Setenv("NAVIGATE_DELAY", "10ms")
	return api
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShowCommand(t *testing.T) {
	setupCLI(t)

	out, err := run(t, "", "show", "7", "--user", "9", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "Event 7: Gala (Party)")
	assert.Contains(t, out, "2024-05-01 10:00-12:00")
	assert.Contains(t, out, "Hall A")
	assert.Contains(t, out, "delete")
	assert.NotContains(t, out, "match the event details")

	out, err = run(t, "", "show", "7", "--json")
	require.NoError(t, err)
	var view usecase.PageView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, usecase.StatusLoaded, view.Status)
	assert.True(t, view.State.ConsistencyMatch)
	assert.Empty(t, view.Capabilities)

	out, err = run(t, "", "show", "99")
	require.NoError(t, err)
	assert.Contains(t, out, "Event Not Found")

	_, err = run(t, "", "show", "abc")
	assert.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	api := setupCLI(t)

	out, err := run(t, "n\n", "delete", "7", "--user", "9", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "Are you sure")
	deletes, _ := api.counts()
	assert.Equal(t, 0, deletes)

	out, err = run(t, "", "delete", "7", "--user", "9", "--token", "t", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Event deleted successfully!")
	deletes, _ = api.counts()
	assert.Equal(t, 1, deletes)

	_, err = run(t, "", "delete", "7", "--user", "5", "--token", "t", "--yes")
	assert.Error(t, err)
	deletes, _ = api.counts()
	assert.Equal(t, 1, deletes)
}

func TestJoinCommand(t *testing.T) {
	api := setupCLI(t)

	out, err := run(t, "", "join", "7", "--user", "5", "--token", "t")
	require.NoError(t, err)
	assert.Contains(t, out, "[success] Successfully joined the event!")
	_, joins := api.counts()
	require.Len(t, joins, 1)
	assert.JSONEq(t, `{"userId":5,"eventId":7,"status":"accepted"}`, joins[0])

	_, err = run(t, "", "join", "7")
	assert.Error(t, err)

	_, err = run(t, "", "join", "7", "--user", "5")
	assert.Error(t, err)
}

func TestSheetCommand(t *testing.T) {
	setupCLI(t)
	target := filepath.Join(t.TempDir(), "gala.pdf")

	out, err := run(t, "", "sheet", "7", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
