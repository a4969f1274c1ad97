// Package sharetest provides an in-process fake SecureShare backend for
// tests and examples. It implements the upload, access, status,
// terminate and report endpoints with the real status-code contract,
// including one-time destruction, device limits, expiry and PIN lockout,
// but keeps everything in memory.
package sharetest

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	secureshare "github.com/secureshare/client-go"
)

// maxKeyHashFailures locks a PIN after this many wrong key hashes.
const maxKeyHashFailures = 3

// Report is a received security report.
type Report struct {
	ContentID    string `json:"content_id"`
	ActivityType string `json:"activity_type"`
	DeviceID     string `json:"device_id"`
	Description  string `json:"description"`
}

type record struct {
	contentID  string
	ciphertext []byte
	iv         string
	keyHash    string

	accessMode       string
	deviceLimit      int
	contentType      string
	fileName         string
	fileSize         int64
	mimeType         string
	requireBiometric bool
	autoTerminate    bool
	trustedDevices   map[string]bool

	createdAt    time.Time
	expiryTime   time.Time
	lastAccessed time.Time

	views           int
	devices         map[string]bool
	keyHashFailures int
	active          bool
}

// Server is the fake backend. Create one with NewServer and point a
// secureshare.Client at s.URL.
type Server struct {
	URL string

	httpServer *httptest.Server

	mu      sync.Mutex
	shares  map[string]*record // by PIN
	reports []Report
}

// NewServer starts a fake backend on a loopback listener.
func NewServer() *Server {
	s := &Server{
		shares: make(map[string]*record),
	}

	r := mux.NewRouter()
	r.HandleFunc("/content/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/content/access/{pin}", s.handleAccess).Methods(http.MethodPost)
	r.HandleFunc("/content/status/{pin}", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/content/terminate/{pin}", s.handleTerminate).Methods(http.MethodDelete)
	r.HandleFunc("/security/report", s.handleReport).Methods(http.MethodPost)

	s.httpServer = httptest.NewServer(r)
	s.URL = s.httpServer.URL
	return s
}

// Close shuts the backend down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// Reports returns a copy of the received security reports.
func (s *Server) Reports() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// Views returns how many times the share behind a PIN has been viewed.
func (s *Server) Views(pin string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.shares[pin]; ok {
		return rec.views
	}
	return 0
}

// Destroy marks a share destroyed, as if its content had been wiped
// server-side.
func (s *Server) Destroy(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.shares[pin]; ok {
		rec.active = false
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	ciphertext, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file part")
		return
	}

	pin := r.FormValue("pin")
	if len(pin) != 4 {
		writeError(w, http.StatusBadRequest, "pin must be four digits")
		return
	}
	keyHash := r.FormValue("key_hash")
	if keyHash == "" {
		writeError(w, http.StatusBadRequest, "key_hash is required")
		return
	}

	deviceLimit, _ := strconv.Atoi(r.FormValue("device_limit"))
	if deviceLimit < 1 {
		deviceLimit = 1
	}

	rec := &record{
		contentID:        uuid.NewString(),
		ciphertext:       ciphertext,
		iv:               r.FormValue("iv"),
		keyHash:          keyHash,
		accessMode:       r.FormValue("access_mode"),
		deviceLimit:      deviceLimit,
		contentType:      r.FormValue("content_type"),
		fileName:         r.FormValue("file_name"),
		mimeType:         r.FormValue("mime_type"),
		requireBiometric: r.FormValue("require_biometric") == "true",
		autoTerminate:    r.FormValue("auto_terminate") == "true",
		trustedDevices:   make(map[string]bool),
		createdAt:        time.Now().UTC(),
		devices:          make(map[string]bool),
		active:           true,
	}
	if size := r.FormValue("file_size"); size != "" {
		rec.fileSize, _ = strconv.ParseInt(size, 10, 64)
	}
	for _, fp := range strings.Split(r.FormValue("trusted_devices"), ",") {
		if fp != "" {
			rec.trustedDevices[fp] = true
		}
	}

	resp := map[string]interface{}{"content_id": rec.contentID}
	if rec.accessMode != "one_time" {
		minutes, _ := strconv.Atoi(r.FormValue("duration_minutes"))
		if minutes <= 0 {
			minutes = 60
		}
		rec.expiryTime = rec.createdAt.Add(time.Duration(minutes) * time.Minute)
		resp["expiry_time"] = rec.expiryTime
	}

	s.mu.Lock()
	s.shares[pin] = rec
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	pin := mux.Vars(r)["pin"]

	var params struct {
		DeviceID          string `json:"device_id"`
		DeviceFingerprint string `json:"device_fingerprint"`
		BiometricVerified bool   `json:"biometric_verified"`
		KeyHash           string `json:"key_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "malformed access request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.shares[pin]
	if !ok {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	if !rec.active || (!rec.expiryTime.IsZero() && time.Now().After(rec.expiryTime)) {
		writeError(w, http.StatusGone, "content expired or destroyed")
		return
	}
	if rec.keyHashFailures >= maxKeyHashFailures {
		writeError(w, http.StatusLocked, "too many failed attempts")
		return
	}
	if params.KeyHash != "" && params.KeyHash != rec.keyHash {
		rec.keyHashFailures++
		if rec.keyHashFailures >= maxKeyHashFailures {
			writeError(w, http.StatusLocked, "too many failed attempts")
			return
		}
		writeError(w, http.StatusUnauthorized, "key hash mismatch")
		return
	}
	if rec.requireBiometric && !params.BiometricVerified {
		writeError(w, http.StatusUnauthorized, "biometric verification required")
		return
	}
	if !rec.devices[params.DeviceFingerprint] && !rec.trustedDevices[params.DeviceFingerprint] {
		if len(rec.devices) >= rec.deviceLimit {
			writeError(w, http.StatusForbidden, "device limit reached")
			return
		}
	}
	rec.devices[params.DeviceFingerprint] = true

	rec.views++
	rec.lastAccessed = time.Now().UTC()

	viewsRemaining := -1
	if rec.accessMode == "one_time" {
		rec.active = false
		viewsRemaining = 0
	}

	resp := map[string]interface{}{
		"content":         base64.StdEncoding.EncodeToString(rec.ciphertext),
		"iv":              rec.iv,
		"content_id":      rec.contentID,
		"views_remaining": viewsRemaining,
		"device_limit":    rec.deviceLimit,
		"current_devices": len(rec.devices),
		"access_mode":     rec.accessMode,
		"content_type":    rec.contentType,
		"file_name":       rec.fileName,
		"file_size":       rec.fileSize,
		"mime_type":       rec.mimeType,
		"session_token":   uuid.NewString(),
	}
	if !rec.expiryTime.IsZero() {
		resp["expiry_time"] = rec.expiryTime
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	pin := mux.Vars(r)["pin"]

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.shares[pin]
	if !ok {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}

	active := rec.active && (rec.expiryTime.IsZero() || time.Now().Before(rec.expiryTime))
	resp := map[string]interface{}{
		"access_mode":      rec.accessMode,
		"views":            rec.views,
		"device_limit":     rec.deviceLimit,
		"created_at":       rec.createdAt,
		"devices_accessed": len(rec.devices),
		"is_active":        active,
	}
	if !rec.expiryTime.IsZero() {
		resp["expiry_time"] = rec.expiryTime
	}
	if !rec.lastAccessed.IsZero() {
		resp["last_accessed"] = rec.lastAccessed
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTerminate(w http.ResponseWriter, r *http.Request) {
	pin := mux.Vars(r)["pin"]

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.shares[pin]
	if !ok {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	if !rec.active {
		writeError(w, http.StatusGone, "content already destroyed")
		return
	}
	rec.active = false
	rec.ciphertext = nil

	certificateID := uuid.NewString()
	destroyedAt := time.Now().UTC().Truncate(time.Second)
	reason := "sender_terminated"

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"certificate_id": certificateID,
		"content_id":     rec.contentID,
		"reason":         reason,
		"destroyed_at":   destroyedAt,
		"proof_hash":     secureshare.ProofHash(certificateID, rec.contentID, reason, destroyedAt),
		"signature":      "sharetest-" + uuid.NewString(),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var report Report
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		writeError(w, http.StatusBadRequest, "malformed report")
		return
	}

	s.mu.Lock()
	s.reports = append(s.reports, report)
	for _, rec := range s.shares {
		if rec.contentID == report.ContentID && rec.autoTerminate && report.ActivityType != "session_closed" {
			rec.active = false
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
