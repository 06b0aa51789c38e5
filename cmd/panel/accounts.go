package main

import (
	"net/http"
	"time"

	"github.com/yuanzhangdck/azure-glass/model"
	"github.com/yuanzhangdck/azure-glass/service/store"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	password, err := s.store.Password()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Password != password {
		s.writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"error":   "wrong password",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    authCookieValue,
		Path:     "/",
		Expires:  time.Now().Add(authCookieTTL),
		HttpOnly: true,
	})
	s.writeSuccess(w, nil)
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleSetPassword(w http.ResponseWriter, r *http.Request) {
	var req setPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.SetPassword(req.Password); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, nil)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"accounts": accounts})
}

type createAccountRequest struct {
	Name        string            `json:"name"`
	Remark      string            `json:"remark"`
	Credentials model.Credentials `json:"credentials"`
	Socks5      string            `json:"socks5"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	account, err := s.store.Create(req.Name, req.Remark, req.Credentials, req.Socks5)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"account": account})
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"account": account})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var patch store.AccountPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := s.store.Update(id, patch); err != nil {
		s.writeError(w, err)
		return
	}
	// Credentials or proxy may have changed; the next request for the
	// id rebuilds its clients.
	s.cache.Invalidate(id)
	s.writeSuccess(w, nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.store.Delete(id); err != nil {
		s.writeError(w, err)
		return
	}
	s.cache.Invalidate(id)
	s.writeSuccess(w, nil)
}

type proxyTestRequest struct {
	Socks5 string `json:"socks5"`
}

func (s *Server) handleProxyTest(w http.ResponseWriter, r *http.Request) {
	var req proxyTestRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	ip, err := s.proxy.SelfTest(r.Context(), req.Socks5)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"ip": ip})
}

// handleStatus reports readiness of the selected account instead of
// failing, so the panel can poll it while credentials are being set
// up.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"ready": false})
		return
	}

	info, err := set.Identity.GetSubscriptionInfo(r.Context())
	if err != nil {
		s.logger.Warn("subscription lookup failed", "account", set.AccountID, "error", err)
		s.writeJSON(w, http.StatusOK, map[string]any{"ready": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ready":          true,
		"subscriptionId": info.SubscriptionID,
	})
}
