// Package backendtest provides an in-process fake of the image-generation
// server for tests. Its default handlers mirror the real server's session
// rules; individual endpoints can be overridden per test.
package backendtest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/zhubert/imagine/internal/backend"
)

// Default catalog, in tab order.
var (
	ModelNames = []string{
		"Texto a Imagen (v3.1)",
		"Texto a Imagen Ultra (v3.5)",
		"Imagen desde Referencia (V3.5)",
		"Edición Mágica (Nano)",
	}
	DisplayNames = map[string]string{
		"Texto a Imagen (v3.1)":          "IMAGEN_3_1",
		"Texto a Imagen Ultra (v3.5)":    "IMAGEN_3_5",
		"Imagen desde Referencia (V3.5)": "R2I",
		"Edición Mágica (Nano)":          "GEM_PIX",
	}
)

// Response is a canned reply: an HTTP status code and a JSON body.
type Response struct {
	Code int
	Body any
}

// Server is a fake backend. Fields may be changed between requests while
// holding no lock; handlers read them under mu.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	state    backend.SessionState
	calls    map[string]int
	requests []backend.GenerateRequest

	// Optional overrides. A nil func uses the default behaviour.
	OnGenerate func(req backend.GenerateRequest) Response
	OnCheck    func(taskID string, call int) Response
	OnAddRef   func(image string) *Response
	OnSettings func(patch map[string]any) *Response
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		state: backend.SessionState{
			ActiveTab:       ModelNames[0],
			Results:         []string{},
			ReferenceImages: []string{},
		},
		calls: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /check_task/{id}", s.handleCheck)
	mux.HandleFunc("POST /update_session_settings", s.handleSettings)
	mux.HandleFunc("POST /add_reference_image", s.handleAddRef)
	mux.HandleFunc("POST /remove_reference_image/{index}", s.handleRemoveRef)
	mux.HandleFunc("POST /clear_session_results", s.handleClear)
	mux.HandleFunc("POST /improve_prompt", s.handleImprove)
	mux.HandleFunc("POST /generate_magic_prompt", s.handleMagic)

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Client returns a backend client bound to this server.
func (s *Server) Client() *backend.Client {
	return backend.New(s.URL)
}

// Calls returns how many requests hit the endpoint named by its first path
// segment, e.g. "generate" or "check_task".
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

// TotalCalls returns the number of requests of any kind.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// GenerateRequests returns the bodies received by /generate.
func (s *Server) GenerateRequests() []backend.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.GenerateRequest(nil), s.requests...)
}

// State returns a copy of the fake session.
func (s *Server) State() backend.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Results = append([]string{}, s.state.Results...)
	st.ReferenceImages = append([]string{}, s.state.ReferenceImages...)
	return st
}

// SetState replaces the fake session.
func (s *Server) SetState(st backend.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Server) count(r *http.Request) {
	seg := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)[0]
	if seg == "" {
		seg = "index"
	}
	s.mu.Lock()
	s.calls[seg]++
	s.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func success(extra map[string]any) map[string]any {
	out := map[string]any{"status": backend.StatusSuccess}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func failure(msg string) map[string]any {
	return map[string]any{"status": backend.StatusError, "message": msg}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	st := s.State()
	stateJSON, _ := json.Marshal(st)
	namesJSON, _ := json.Marshal(DisplayNames)
	listJSON, _ := json.Marshal(ModelNames)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html><html><head><title>fake</title></head>`+
		`<body data-initial-session-state="%s" data-model-display-names="%s" data-model-names-list="%s"><main></main></body></html>`,
		html.EscapeString(string(stateJSON)), html.EscapeString(string(namesJSON)), html.EscapeString(string(listJSON)))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var req backend.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("bad json"))
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, req)
	hook := s.OnGenerate
	s.mu.Unlock()

	if hook != nil {
		resp := hook(req)
		writeJSON(w, resp.Code, resp.Body)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, failure("Please write a description."))
		return
	}
	n := req.NumImages
	if n <= 0 {
		n = 4
	}
	images := Images(n)
	s.mu.Lock()
	s.state.Results = images
	s.state.SaveImages = req.SaveImages
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, success(map[string]any{"images": images}))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	id := r.PathValue("id")
	s.mu.Lock()
	call := s.calls["check_task"]
	hook := s.OnCheck
	s.mu.Unlock()
	if hook == nil {
		writeJSON(w, http.StatusOK, success(map[string]any{"images": Images(1)}))
		return
	}
	resp := hook(id, call)
	writeJSON(w, resp.Code, resp.Body)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("bad json"))
		return
	}
	s.mu.Lock()
	hook := s.OnSettings
	s.mu.Unlock()
	if hook != nil {
		if resp := hook(patch); resp != nil {
			writeJSON(w, resp.Code, resp.Body)
			return
		}
	}

	s.mu.Lock()
	if tab, ok := patch["active_tab"].(string); ok {
		s.state.ActiveTab = tab
		s.state.Results = []string{}
		s.state.SaveImages = false
		if t := DisplayNames[tab]; t != "R2I" && t != "GEM_PIX" {
			s.state.ReferenceImages = []string{}
		}
	}
	if v, ok := patch["aspect_ratio_index"].(float64); ok {
		s.state.AspectRatioIndex = int(v)
	}
	if v, ok := patch["save_images"].(bool); ok {
		s.state.SaveImages = v
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, success(nil))
}

func (s *Server) handleAddRef(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var body struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("bad json"))
		return
	}
	s.mu.Lock()
	hook := s.OnAddRef
	s.mu.Unlock()
	if hook != nil {
		if resp := hook(body.Image); resp != nil {
			writeJSON(w, resp.Code, resp.Body)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Image == "" || len(s.state.ReferenceImages) >= 3 {
		writeJSON(w, http.StatusBadRequest, failure("Reference limit reached or invalid image."))
		return
	}
	dup := false
	for _, existing := range s.state.ReferenceImages {
		if existing == body.Image {
			dup = true
			break
		}
	}
	if !dup {
		s.state.ReferenceImages = append(s.state.ReferenceImages, body.Image)
	}
	writeJSON(w, http.StatusOK, success(map[string]any{"reference_images": s.state.ReferenceImages}))
}

func (s *Server) handleRemoveRef(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	idx, err := strconv.Atoi(r.PathValue("index"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || idx < 0 || idx >= len(s.state.ReferenceImages) {
		writeJSON(w, http.StatusBadRequest, failure("Invalid reference index."))
		return
	}
	refs := append([]string{}, s.state.ReferenceImages[:idx]...)
	s.state.ReferenceImages = append(refs, s.state.ReferenceImages[idx+1:]...)
	writeJSON(w, http.StatusOK, success(map[string]any{"reference_images": s.state.ReferenceImages}))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	s.mu.Lock()
	s.state.Results = []string{}
	s.state.ReferenceImages = []string{}
	s.state.SaveImages = false
	s.state.AspectRatioIndex = 0
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, success(nil))
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	var body struct {
		Prompt string `json:"prompt"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if strings.TrimSpace(body.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, failure("Write a prompt to improve."))
		return
	}
	writeJSON(w, http.StatusOK, success(map[string]any{"improved_prompt": "improved: " + body.Prompt}))
}

func (s *Server) handleMagic(w http.ResponseWriter, r *http.Request) {
	s.count(r)
	writeJSON(w, http.StatusOK, success(map[string]any{"magic_prompt": "a lighthouse made of glass at dusk"}))
}

// Images returns n distinct valid PNG data URIs.
func Images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = PNG(i + 1)
	}
	return out
}

// PNG returns a data URI for a small solid image whose width is w.
func PNG(w int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, 1))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(40 * x), G: 120, B: 200, A: 255})
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Processing builds a /check_task or 202 body for a queued task.
func Processing(taskID string, position int) map[string]any {
	body := map[string]any{"status": backend.StatusProcessing, "position": position}
	if taskID != "" {
		body["task_id"] = taskID
	}
	return body
}

// Success builds a success body carrying images.
func Success(images []string) map[string]any {
	return success(map[string]any{"images": images})
}

// Failure builds an error body carrying msg.
func Failure(msg string) map[string]any {
	return failure(msg)
}
