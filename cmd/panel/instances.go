package main

import (
	"fmt"
	"net/http"

	"github.com/yuanzhangdck/azure-glass/model"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

const minVMPasswordLen = 12

func (s *Server) handleListInstances(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	instances, err := set.Instances.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"instances": instances})
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req model.CreateInstanceRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	// Azure rejects shorter admin passwords at provisioning time,
	// long after this request has already been accepted.
	if len(req.Password) < minVMPasswordLen {
		s.writeError(w, &model.ValidationError{Message: fmt.Sprintf("password must be at least %d characters", minVMPasswordLen)})
		return
	}

	acceptance, err := set.Instances.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{
		"message":    fmt.Sprintf("instance %s creation accepted", req.Name),
		"acceptance": acceptance,
	})
}

type instanceActionRequest struct {
	Name          string `json:"name"`
	ResourceGroup string `json:"resourceGroup"`
}

func (s *Server) handleInstanceAction(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req instanceActionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		s.writeError(w, &model.ValidationError{Message: "instance name is required"})
		return
	}
	if req.ResourceGroup == "" {
		req.ResourceGroup = azureinfra.ResourceGroupName
	}

	action := r.PathValue("action")
	switch action {
	case "start", "stop", "delete":
		var acceptance model.Acceptance
		switch action {
		case "start":
			acceptance, err = set.Instances.Start(r.Context(), req.ResourceGroup, req.Name)
		case "stop":
			acceptance, err = set.Instances.Stop(r.Context(), req.ResourceGroup, req.Name)
		case "delete":
			acceptance, err = set.Instances.Delete(r.Context(), req.ResourceGroup, req.Name)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, map[string]any{
			"message":    fmt.Sprintf("%s accepted for %s", action, req.Name),
			"acceptance": acceptance,
		})

	case "change-ipv4", "change-ipv6":
		var newIP string
		if action == "change-ipv4" {
			newIP, err = set.Instances.ChangeIPv4(r.Context(), req.ResourceGroup, req.Name)
		} else {
			newIP, err = set.Instances.ChangeIPv6(r.Context(), req.ResourceGroup, req.Name)
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeSuccess(w, map[string]any{"newIp": newIP})

	default:
		s.writeError(w, &model.ValidationError{Message: fmt.Sprintf("unknown action %q", action)})
	}
}

func (s *Server) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	skus, err := set.Instances.ListSKUs(r.Context(), r.URL.Query().Get("size"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"skus": skus})
}

func (s *Server) handleListResourceGroups(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	groups, err := set.API.ListResourceGroups(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"resourceGroups": groups})
}

func (s *Server) handleDeleteResourceGroup(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	name := r.PathValue("name")
	if err := set.API.BeginDeleteResourceGroup(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{
		"message": fmt.Sprintf("deletion accepted for %s", name),
	})
}

func (s *Server) handleNuke(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	status, started, err := s.nuke.Start(r.Context(), set.API)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !started {
		s.writeSuccess(w, map[string]any{"status": status})
		return
	}
	s.writeSuccess(w, map[string]any{"message": "nuke started"})
}

func (s *Server) handleNukeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.nuke.Status()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"status": status})
}

func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	set, err := s.resolveClients(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summary, err := set.Costs.CurrentMonthCosts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSuccess(w, map[string]any{"costs": summary})
}
