package main

import (
	"net/http"

	"github.com/yuanzhangdck/azure-glass/model"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

func (s *Server) handleListOpenAIAccounts(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	accounts, err := set.OpenAI.ListAccounts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"accounts": accounts})
}

type createOpenAIAccountRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (s *Server) handleCreateOpenAIAccount(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req createOpenAIAccountRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	account, err := set.OpenAI.CreateAccount(r.Context(), req.Name, req.Location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"account": account})
}

func (s *Server) handleDeleteOpenAIAccount(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := set.OpenAI.DeleteAccount(r.Context(), openaiResourceGroup(r), r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, nil)
}

func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	deployments, err := set.OpenAI.ListDeployments(r.Context(), openaiResourceGroup(r), r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"deployments": deployments})
}

type createDeploymentRequest struct {
	Name         string `json:"name"`
	Model        string `json:"model"`
	ModelVersion string `json:"modelVersion"`
	Capacity     int32  `json:"capacity"`
}

func (s *Server) handleCreateDeployment(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req createDeploymentRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	deployment, err := set.OpenAI.CreateDeployment(r.Context(), openaiResourceGroup(r), r.PathValue("name"), req.Name, req.Model, req.ModelVersion, req.Capacity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"deployment": deployment})
}

func (s *Server) handleDeleteDeployment(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := set.OpenAI.DeleteDeployment(r.Context(), openaiResourceGroup(r), r.PathValue("name"), r.PathValue("deployment")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, nil)
}

func (s *Server) handleListQuotas(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	location := r.URL.Query().Get("location")
	if location == "" {
		s.writeError(w, &model.ValidationError{Message: "location query parameter is required"})
		return
	}

	quotas, err := set.OpenAI.ListQuotas(r.Context(), location)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"quotas": quotas})
}

// openaiResourceGroup resolves the resource group for OpenAI routes;
// panel-created accounts all live in the shared group.
func openaiResourceGroup(r *http.Request) string {
	if rg := r.URL.Query().Get("resourceGroup"); rg != "" {
		return rg
	}
	return azureinfra.ResourceGroupName
}
