package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuanzhangdck/azure-glass/model"
	azurenuke "github.com/yuanzhangdck/azure-glass/service/azure/nuke"
	"github.com/yuanzhangdck/azure-glass/service/clientcache"
	"github.com/yuanzhangdck/azure-glass/service/proxybind"
	"github.com/yuanzhangdck/azure-glass/service/store"
)

const (
	authCookieName  = "azure_auth"
	authCookieValue = "valid"
	authCookieTTL   = 30 * 24 * time.Hour

	accountHeader = "X-Account-Id"
)

// Server wires the HTTP surface to the domain services. It holds the
// client cache by reference so invalidation on account edits is
// visible to every handler.
type Server struct {
	store  store.StoreService
	proxy  proxybind.ProxyService
	cache  clientcache.CacheService
	nuke   azurenuke.NukeService
	logger *slog.Logger
}

func NewServer(store store.StoreService, proxy proxybind.ProxyService, cache clientcache.CacheService, nuke azurenuke.NukeService, logger *slog.Logger) *Server {
	return &Server{
		store:  store,
		proxy:  proxy,
		cache:  cache,
		nuke:   nuke,
		logger: logger,
	}
}

// Handler returns the full route table behind the auth gate.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/socks5/test", s.handleProxyTest)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/setup/password", s.handleSetPassword)

	mux.HandleFunc("GET /api/instances", s.handleListInstances)
	mux.HandleFunc("POST /api/instances/create", s.handleCreateInstance)
	mux.HandleFunc("POST /api/instances/{action}", s.handleInstanceAction)
	mux.HandleFunc("GET /api/skus", s.handleListSKUs)

	mux.HandleFunc("GET /api/resourceGroups", s.handleListResourceGroups)
	mux.HandleFunc("DELETE /api/resourceGroups/{name}", s.handleDeleteResourceGroup)

	mux.HandleFunc("DELETE /api/nuke", s.handleNuke)
	mux.HandleFunc("GET /api/nuke/status", s.handleNukeStatus)

	mux.HandleFunc("GET /api/costs", s.handleCosts)

	mux.HandleFunc("GET /api/openai/accounts", s.handleListOpenAIAccounts)
	mux.HandleFunc("POST /api/openai/accounts", s.handleCreateOpenAIAccount)
	mux.HandleFunc("DELETE /api/openai/accounts/{name}", s.handleDeleteOpenAIAccount)
	mux.HandleFunc("GET /api/openai/accounts/{name}/deployments", s.handleListDeployments)
	mux.HandleFunc("POST /api/openai/accounts/{name}/deployments", s.handleCreateDeployment)
	mux.HandleFunc("DELETE /api/openai/accounts/{name}/deployments/{deployment}", s.handleDeleteDeployment)
	mux.HandleFunc("GET /api/openai/quotas", s.handleListQuotas)

	return s.withAuth(mux)
}

// withAuth gates everything except login behind the session cookie.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(authCookieName)
		if err != nil || cookie.Value != authCookieValue {
			s.writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolveClients maps the account-selector header to a ClientSet.
func (s *Server) resolveClients(r *http.Request) (*clientcache.ClientSet, error) {
	id := r.Header.Get(accountHeader)
	if id == "" {
		return nil, &model.CredentialError{Reason: "no account selected"}
	}
	account, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return s.cache.Resolve(account)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	s.writeJSON(w, http.StatusOK, body)
}

// writeError converts the error taxonomy to a status code and the
// uniform failure envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var verr *model.ValidationError
	var nferr *model.NotFoundError
	var cerr *model.CredentialError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.As(err, &nferr):
		status = http.StatusNotFound
	case errors.As(err, &cerr):
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &model.ValidationError{Message: "invalid request body"}
	}
	return nil
}
