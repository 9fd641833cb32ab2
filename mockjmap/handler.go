package mockjmap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmap-tools/jmap-contract-tests/jmap"
)

const accountPathPrefix = "/accounts/"
const apiPath = "/jmap"

// Handler wraps a Server in the HTTP surface the harness expects: the
// test-service provisioning protocol at the root, and a JMAP API endpoint
// at /jmap.
type Handler struct {
	server *Server
}

// NewHandler creates the HTTP facade for a mock server.
func NewHandler(server *Server) *Handler {
	return &Handler{server: server}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch {
	case req.URL.Path == apiPath:
		h.serveAPI(w, req)
	case strings.HasPrefix(req.URL.Path, accountPathPrefix):
		h.serveAccount(w, req)
	case req.URL.Path == "/":
		h.serveRoot(w, req)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) serveRoot(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case "GET":
		info := map[string]interface{}{
			"description":  "in-memory mock JMAP server",
			"capabilities": []string{"pristine-accounts"},
			"apiUrl":       fmt.Sprintf("http://%s%s", req.Host, apiPath),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	case "POST":
		id := h.server.CreateAccount()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Location", accountPathPrefix+id)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"accountId": id})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) serveAccount(w http.ResponseWriter, req *http.Request) {
	if req.Method != "DELETE" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(req.URL.Path, accountPathPrefix)
	if !h.server.DeleteAccount(id) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveAPI(w http.ResponseWriter, req *http.Request) {
	if req.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var request jmap.Request
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "malformed request: %s", err)
		return
	}
	response := h.server.Execute(request)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
