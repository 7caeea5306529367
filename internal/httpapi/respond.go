package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/profile"
)

type envelope struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	kindInvalidProfile   = "InvalidProfile"
	kindProfileNotFound  = "ProfileNotFound"
	kindStateUnavailable = "StateUnavailable"
	kindRateLimited      = "RateLimited"
	kindInternal         = "Internal"
)

var kindStatus = map[string]int{
	"NoAdapterFound":     http.StatusServiceUnavailable,
	"DeviceNotFound":     http.StatusNotFound,
	"ScanFailed":         http.StatusBadGateway,
	"ConnectFailed":      http.StatusBadGateway,
	"NotConnected":       http.StatusConflict,
	"WriteFailed":        http.StatusBadGateway,
	"ReadFailed":         http.StatusBadGateway,
	"InvalidBrightness":  http.StatusBadRequest,
	"InvalidColor":       http.StatusBadRequest,
	kindInvalidProfile:   http.StatusBadRequest,
	kindProfileNotFound:  http.StatusNotFound,
	kindStateUnavailable: http.StatusConflict,
	kindRateLimited:      http.StatusTooManyRequests,
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{OK: status < 400, Data: data})
}

func writeOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func writeKind(w http.ResponseWriter, kind, message string) {
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: &apiError{Kind: kind, Message: message}})
}

// writeError maps a controller or profile error to its kind and status.
func writeError(w http.ResponseWriter, err error) {
	writeKind(w, errorKind(err), err.Error())
}

func errorKind(err error) string {
	if kind := lamp.KindOf(err); kind != "" {
		return kind
	}
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return kindProfileNotFound
	case errors.Is(err, profile.ErrInvalidProfile):
		return kindInvalidProfile
	case errors.Is(err, profile.ErrStateUnavailable):
		return kindStateUnavailable
	}
	return kindInternal
}
