package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cabewaldrop/statuspage/internal/dom"
	"github.com/cabewaldrop/statuspage/internal/replay"
	"github.com/cabewaldrop/statuspage/internal/viewstate"
)

// APIResponse wraps all API responses with success/error info.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StateResponse describes a decoded view state.
type StateResponse struct {
	Terms      []string `json:"terms"`
	Sort       int      `json:"sort"`
	Reverse    bool     `json:"reverse"`
	Query      string   `json:"query"`
	SearchText string   `json:"search_text"`
}

// ViewResponse describes the table as a visitor would see it.
type ViewResponse struct {
	State    StateResponse `json:"state"`
	URL      string        `json:"url"`
	Rows     int           `json:"rows"`
	Total    int           `json:"total"`
	Packages []string      `json:"packages"`
}

// NewStateResponse converts s for the API.
func NewStateResponse(s viewstate.ViewState) StateResponse {
	terms := s.Terms
	if terms == nil {
		terms = []string{}
	}
	return StateResponse{
		Terms:      terms,
		Sort:       s.Sort,
		Reverse:    s.Reverse,
		Query:      viewstate.Encode(s),
		SearchText: viewstate.SearchText(s),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful API response.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error API response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   message,
	})
}

// handleState decodes the view state carried by the url parameter, or by
// the request's own query when url is absent.
// GET /api/state?url=...
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var st viewstate.ViewState
	if u := r.URL.Query().Get("url"); u != "" {
		st = viewstate.Decode(u)
	} else {
		st = viewstate.DecodeQuery(r.URL.RawQuery)
	}
	writeSuccess(w, NewStateResponse(st))
}

// handleView renders the page, applies the request's view state and any
// scripted actions headlessly, and reports the visible rows.
// GET /api/view?q=...&s=...&r=...&do=click:1
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var actions []replay.Action
	for _, raw := range r.URL.Query()["do"] {
		a, err := replay.ParseAction(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		actions = append(actions, a)
	}

	var buf bytes.Buffer
	if err := s.page(&buf); err != nil {
		GetLogger(r).Error(err, "rendering status page")
		writeError(w, http.StatusInternalServerError, "failed to render status page")
		return
	}

	log := GetLogger(r)
	sess, err := replay.Open(&buf, r.URL.String(), s.opts, log)
	if err != nil {
		log.Error(err, "parsing status page")
		writeError(w, http.StatusInternalServerError, "failed to parse status page")
		return
	}
	sess.DoAll(actions)

	rows := sess.Doc.TableRows()
	resp := ViewResponse{
		State:    NewStateResponse(sess.Controller.State()),
		URL:      sess.Doc.URL(),
		Rows:     len(rows),
		Total:    sess.Controller.Session().Index.Get().Len(),
		Packages: make([]string, 0, len(rows)),
	}
	for _, tr := range rows {
		if name := strings.Fields(dom.Text(dom.Cell(tr, 1))); len(name) > 0 {
			resp.Packages = append(resp.Packages, name[0])
		}
	}
	writeSuccess(w, resp)
}
