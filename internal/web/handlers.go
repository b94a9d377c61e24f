package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jaminalder/time-travel-tic-tac-toe/internal/app"
	"github.com/jaminalder/time-travel-tic-tac-toe/internal/view"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *slog.Logger
	heartbeat time.Duration
}

func (h *handlers) renderRoot(sess app.Session) []byte {
	b, err := renderTemplate(h.tpl.root, "", rootData{ID: sess.ID, Game: view.Project(sess.State)})
	if err != nil {
		h.log.Error("render root", "session", sess.ID, "error", err)
	}
	return b
}

func writeHTML(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// fail maps service errors onto status codes.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	h.log.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	var resume string
	if id := sessionFromCookie(r); id != "" {
		if _, ok := h.svc.Get(id); ok {
			resume = id
		}
	}
	b, err := renderTemplate(h.tpl.index, "base", resume)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, b)
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	sess := h.svc.Create()
	setSessionCookie(w, sess.ID)
	http.Redirect(w, r, "/game/"+sess.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := renderTemplate(h.tpl.game, "base", rootData{ID: sess.ID, Game: view.Project(sess.State)})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, b)
}

// formInt reads an integer form value; ok is false when absent or malformed.
func formInt(r *http.Request, key string) (int, bool) {
	if err := r.ParseForm(); err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(r.Form.Get(key))
	if err != nil {
		return 0, false
	}
	return v, true
}

// play never reports a rejected move; the unchanged board is the answer.
func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cell, ok := formInt(r, "cell")
	if !ok {
		cell = -1
	}
	sess, _, err := h.svc.Play(id, cell)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, h.renderRoot(*sess))
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	step, ok := formInt(r, "step")
	if !ok {
		step = -1
	}
	sess, err := h.svc.JumpTo(id, step)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, h.renderRoot(*sess))
}

func (h *handlers) reverse(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.ToggleReverse(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeHTML(w, h.renderRoot(*sess))
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer unsub()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent emits one SSE event; multi-line payloads become multiple data
// lines.
func writeEvent(w io.Writer, name string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", name)
	start := 0
	for i, c := range payload {
		if c == '\n' {
			_, _ = fmt.Fprintf(w, "data: %s\n", payload[start:i])
			start = i + 1
		}
	}
	_, _ = fmt.Fprintf(w, "data: %s\n\n", payload[start:])
}
