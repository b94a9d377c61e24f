package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/app"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := app.NewService(app.WithLogger(logger))
	h := NewServer(s, WithLogger(logger))
	return s, h
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `action="/game"`)
	assert.NotContains(t, body, "Resume game")
}

func TestIndexOffersResumeForLiveSession(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.ID})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "/game/"+sess.ID)
}

func TestCreateRedirectsToGameAndSetsCookie(t *testing.T) {
	svc, h := newTestServer(t)
	rr := postForm(h, "/game", nil)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc := rr.Result().Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/game/"), "location %q", loc)

	var cookie string
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c.Value
		}
	}
	assert.Equal(t, strings.TrimPrefix(loc, "/game/"), cookie)
	_, ok := svc.Get(cookie)
	assert.True(t, ok)
}

func TestGamePageMountsRoot(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()

	req := httptest.NewRequest(http.MethodGet, "/game/"+url.PathEscape(sess.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Equal(t, 1, strings.Count(body, `id="root"`))
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "Go to game start")
	assert.Contains(t, body, `<ol class="moves">`)
	// SSE wiring present
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+sess.ID+"/events")
}

func TestGamePageUnknownSession(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/game/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()

	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"cell": {"4"}})

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="root"`)
	assert.NotContains(t, body, "<!doctype html>")
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, "Go to move #1")

	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 1, latest.State.Moves())
	assert.Equal(t, domain.X, latest.State.Current().Board[4])
}

func TestPlayEndpointRejectsSilently(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()
	_, _, err := svc.Play(sess.ID, 4)
	require.NoError(t, err)

	for _, v := range []string{"4", "9", "-1", "x", ""} {
		rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"cell": {v}})
		require.Equal(t, http.StatusOK, rr.Code, "cell %q", v)
		assert.Contains(t, rr.Body.String(), "Next player: O")
	}
	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 1, latest.State.Moves())
}

func TestPlayEndpointUnknownSession(t *testing.T) {
	_, h := newTestServer(t)
	rr := postForm(h, "/game/nope/play", url.Values{"cell": {"0"}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWinnerHighlighted(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()
	for _, c := range []int{0, 1, 3, 2} {
		_, _, err := svc.Play(sess.ID, c)
		require.NoError(t, err)
	}

	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"cell": {"6"}})

	body := rr.Body.String()
	assert.Contains(t, body, "Winner: X")
	assert.Equal(t, 3, strings.Count(body, "square winning"))
}

func TestJumpEndpointTimeTravels(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()
	for _, c := range []int{0, 1, 2} {
		_, _, err := svc.Play(sess.ID, c)
		require.NoError(t, err)
	}

	rr := postForm(h, "/game/"+sess.ID+"/jump", url.Values{"step": {"1"}})

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, "<b>Go to move #1</b>")

	rr = postForm(h, "/game/"+sess.ID+"/play", url.Values{"cell": {"8"}})
	require.Equal(t, http.StatusOK, rr.Code)
	latest, _ := svc.Get(sess.ID)
	assert.Len(t, latest.State.History, 3)
	assert.Equal(t, 2, latest.State.Step)
	assert.NotContains(t, rr.Body.String(), "Go to move #3")
}

func TestReverseEndpoint(t *testing.T) {
	svc, h := newTestServer(t)
	sess := svc.Create()
	_, _, err := svc.Play(sess.ID, 0)
	require.NoError(t, err)

	rr := postForm(h, "/game/"+sess.ID+"/reverse", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Sort ascending")
	assert.Contains(t, body, `<ol class="moves" reversed>`)
	assert.Less(t, strings.Index(body, "Go to move #1"), strings.Index(body, "Go to game start"))
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := postForm(h, "/game", nil)
	loc := rrCreate.Result().Header.Get("Location")
	require.NotEmpty(t, loc)

	req := httptest.NewRequest(http.MethodGet, loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestEventsEndpointUnknownSession(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/game/nope/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEventsStreamBroadcastsBoard(t *testing.T) {
	svc, h := newTestServer(t)
	srv := httptest.NewServer(h)
	defer srv.Close()
	sess := svc.Create()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/game/"+sess.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The subscription is registered before headers are flushed.
	_, _, err = svc.Play(sess.ID, 4)
	require.NoError(t, err)

	var got bytes.Buffer
	buf := make([]byte, 4096)
	for !strings.Contains(got.String(), "Next player: O") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		require.NoError(t, err)
	}
	assert.Contains(t, got.String(), "event: board\n")
	assert.Contains(t, got.String(), `data: <div id="root"`)
}

func TestWriteEventSplitsLines(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, "board", []byte("a\nb"))
	assert.Equal(t, "event: board\ndata: a\ndata: b\n\n", buf.String())
}
