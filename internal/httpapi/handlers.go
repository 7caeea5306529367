package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chaz8081/lampctl/internal/ble/protocol"
	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/profile"
)

// stateView adds a hex rendering of the colour to the decoded state.
type stateView struct {
	lamp.State
	Hex string `json:"hex,omitempty"`
}

type profileView struct {
	profile.Profile
	Hex string `json:"hex"`
}

func newProfileView(p profile.Profile) profileView {
	return profileView{Profile: p, Hex: protocol.FormatHex(p.Color)}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.lamp.Status())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.lamp.GetState(r.Context())
	view := stateView{State: st}
	if st.Connected {
		view.Hex = protocol.FormatHex(st.Color)
	}
	writeOK(w, view)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	devices, err := s.lamp.Scan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, devices)
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.lamp.Connect(r.Context(), r.URL.Query().Get("address")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, s.lamp.Status())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.lamp.Disconnect()
	writeOK(w, s.lamp.Status())
}

func (s *Server) handleOn(w http.ResponseWriter, r *http.Request) {
	if !s.autoconnect(w, r) {
		return
	}
	if err := s.lamp.TurnOn(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleOff(w http.ResponseWriter, r *http.Request) {
	if !s.autoconnect(w, r) {
		return
	}
	if err := s.lamp.TurnOff(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		red, green, blue int
		err              error
	)
	switch {
	case q.Get("rgb") != "":
		red, green, blue, err = protocol.ParseRGB(q.Get("rgb"))
	case q.Get("hex") != "":
		red, green, blue, err = protocol.HexToRGB(q.Get("hex"))
	default:
		err = fmt.Errorf("rgb=r,g,b or hex=#rrggbb is required")
	}
	if err != nil {
		writeKind(w, "InvalidColor", err.Error())
		return
	}

	if !s.autoconnect(w, r) {
		return
	}
	if err := s.lamp.SetColor(r.Context(), red, green, blue); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

// defaultBrightness is used when /brightness carries no p.
const defaultBrightness = 50

func (s *Server) handleBrightness(w http.ResponseWriter, r *http.Request) {
	pct := defaultBrightness
	var err error
	if v := r.URL.Query().Get("p"); v != "" {
		pct, err = strconv.Atoi(v)
	}
	if err != nil {
		writeKind(w, "InvalidBrightness", "p must be an integer percentage")
		return
	}

	if !s.autoconnect(w, r) {
		return
	}
	if err := s.lamp.SetBrightness(r.Context(), pct); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, nil)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]profileView, len(profiles))
	for i, p := range profiles {
		views[i] = newProfileView(p)
	}
	writeOK(w, views)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.profiles.SaveCurrent(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, newProfileView(p))
}

func (s *Server) handleApplyProfile(w http.ResponseWriter, r *http.Request) {
	if !s.autoconnect(w, r) {
		return
	}
	p, err := s.profiles.ApplyNamed(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, newProfileView(p))
}

// autoconnect connects on demand when the request carries autoconnect=1.
// It reports false after writing an error response.
func (s *Server) autoconnect(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("autoconnect") != "1" {
		return true
	}
	if err := s.lamp.EnsureConnected(r.Context()); err != nil {
		writeError(w, err)
		return false
	}
	return true
}
