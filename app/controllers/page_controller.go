package controllers

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"postboard/app/services"
	"postboard/app/toggle"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// SessionCookie names the cookie holding the viewer's session id.
const SessionCookie = "postboard_session"

// PageController serves a viewer's page and its toggle API.
type PageController struct {
	sessions *services.SessionService
}

// NewPageController creates a new PageController
func NewPageController(sessions *services.SessionService) *PageController {
	return &PageController{sessions: sessions}
}

// ToggleResponse is the body of a toggle API call.
type ToggleResponse struct {
	PostID  int  `json:"post_id"`
	Visible bool `json:"visible"`
}

// StateResponse describes what a session's page currently shows.
type StateResponse struct {
	UserID  int   `json:"user_id"`
	Visible []int `json:"visible"`
}

// Show renders the session's page, selecting ?userId= first when given.
func (pc *PageController) Show(w http.ResponseWriter, r *http.Request) {
	sess, ok := pc.session(w, r)
	if !ok {
		return
	}

	if q := r.URL.Query(); q.Has("userId") {
		if res := sess.Page.Select(r.Context(), q.Get("userId")); res.Stale {
			log.Debugf("[server] selection of user %d superseded", res.UserID)
		}
	}

	var buf bytes.Buffer
	if err := sess.Page.Render(&buf); err != nil {
		pc.sendError(w, r, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sum := blake2b.Sum256(buf.Bytes())
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// Submit handles the page form: a toggle press or a new selection.
func (pc *PageController) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := pc.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		pc.sendError(w, r, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	if raw := r.PostForm.Get("toggle"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
			return
		}
		if _, err := sess.Page.Click(id); err != nil {
			log.Warnf("[server] toggle %d: %v", id, err)
		}
	} else {
		sess.Page.Select(r.Context(), r.PostForm.Get("userId"))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Toggle flips the comment section of a post on the session's page.
func (pc *PageController) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	sess, ok := pc.session(w, r)
	if !ok {
		return
	}

	visible, err := sess.Page.Click(id)
	switch {
	case errors.Is(err, toggle.ErrInvalidPostID):
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
	case errors.Is(err, toggle.ErrNotFound):
		pc.sendError(w, r, "Post not found", http.StatusNotFound)
	case err != nil:
		pc.sendError(w, r, "Toggle failed: "+err.Error(), http.StatusInternalServerError)
	default:
		pc.sendJSON(w, ToggleResponse{PostID: id, Visible: visible})
	}
}

// State reports the selected user and the posts whose comments are shown.
func (pc *PageController) State(w http.ResponseWriter, r *http.Request) {
	sess, ok := pc.session(w, r)
	if !ok {
		return
	}

	ids, err := sess.Page.VisibleSections()
	if err != nil {
		pc.sendError(w, r, "Failed to read state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	pc.sendJSON(w, StateResponse{UserID: sess.Page.Selected(), Visible: ids})
}

// Health reports liveness.
func (pc *PageController) Health(w http.ResponseWriter, r *http.Request) {
	pc.sendJSON(w, map[string]string{"status": "ok"})
}

func (pc *PageController) session(w http.ResponseWriter, r *http.Request) (*services.Session, bool) {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}

	sess, created, err := pc.sessions.Get(r.Context(), id)
	if errors.Is(err, services.ErrSessionLimit) {
		pc.sendError(w, r, "Too many sessions", http.StatusServiceUnavailable)
		return nil, false
	}
	if err != nil {
		pc.sendError(w, r, "Session error: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}

	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, true
}

func (pc *PageController) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (pc *PageController) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if r.Header.Get("Accept") == "application/json" || strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
	} else {
		http.Error(w, message, status)
	}
}
