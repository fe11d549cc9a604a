package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillerhq/tiller"
	"github.com/tillerhq/tiller/internal/testutils"
	"github.com/tillerhq/tiller/pkg/adapters/memory"
	"github.com/tillerhq/tiller/pkg/session"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	engine, err := tiller.New(testutils.Steps(
		testutils.KeywordClarifier("Infosys", "TCS"),
		testutils.ScoredResearcher(8.0),
		testutils.VerdictValidator(),
		testutils.EchoSynthesizer(),
	))
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(NewHandler(NewServer(engine, sessions)))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeOutcome(t *testing.T, resp *http.Response) outcomeResponse {
	t.Helper()
	defer resp.Body.Close()
	var out outcomeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_StartCompletes(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{Message: "Tell me about Infosys"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeOutcome(t, resp)
	assert.Equal(t, "completed", string(out.Status))
	assert.Contains(t, out.Response, "Infosys")
	assert.NotEmpty(t, out.SessionID)
	assert.NotEmpty(t, out.Trace)
}

func TestServer_StartRequiresMessage(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_SuspendAndResume(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{Message: "Tell me about the company"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	out := decodeOutcome(t, resp)
	assert.Equal(t, "suspended", string(out.Status))
	assert.NotEmpty(t, out.Question)

	resumed := postJSON(t, srv.URL+"/sessions/"+out.SessionID+"/resume", answerRequest{Answer: "I mean Infosys"})
	require.Equal(t, http.StatusOK, resumed.StatusCode)

	final := decodeOutcome(t, resumed)
	assert.Equal(t, "completed", string(final.Status))
	assert.Contains(t, final.Response, "Infosys")

	// The suspension was consumed; resuming again conflicts.
	again := postJSON(t, srv.URL+"/sessions/"+out.SessionID+"/resume", answerRequest{Answer: "Infosys"})
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestServer_ResumeActiveSessionConflicts(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{Message: "Tell me about Infosys"})
	out := decodeOutcome(t, resp)
	require.Equal(t, "completed", string(out.Status))

	resumed := postJSON(t, srv.URL+"/sessions/"+out.SessionID+"/resume", answerRequest{Answer: "TCS"})
	defer resumed.Body.Close()
	assert.Equal(t, http.StatusConflict, resumed.StatusCode)
}

func TestServer_NextTurnKeepsContext(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{Message: "Tell me about Infosys"})
	out := decodeOutcome(t, resp)
	require.Equal(t, "completed", string(out.Status))

	next := postJSON(t, srv.URL+"/sessions/"+out.SessionID+"/messages", messageRequest{Message: "Who is their CEO?"})
	require.Equal(t, http.StatusOK, next.StatusCode)

	turn := decodeOutcome(t, next)
	assert.Equal(t, "completed", string(turn.Status))
	assert.Contains(t, turn.Response, "Infosys")
	assert.Equal(t, out.SessionID, turn.SessionID)
}

func TestServer_GetAndListAndDelete(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", messageRequest{Message: "Tell me about TCS"})
	out := decodeOutcome(t, resp)

	got, err := http.Get(srv.URL + "/sessions/" + out.SessionID)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)

	list, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	defer list.Body.Close()
	var listing map[string][]string
	require.NoError(t, json.NewDecoder(list.Body).Decode(&listing))
	assert.Contains(t, listing["sessions"], out.SessionID)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+out.SessionID, nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	gone, err := http.Get(srv.URL + "/sessions/" + out.SessionID)
	require.NoError(t, err)
	defer gone.Body.Close()
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestServer_Healthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
