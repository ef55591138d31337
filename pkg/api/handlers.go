package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/panuwat93/smpk-duty-roster/pkg/core/eligibility"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/model"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
)

type submitExchangeBody struct {
	RequesterID    string `json:"requesterId"`
	TargetID       string `json:"targetId"`
	Date           string `json:"date"`
	MyShiftType    string `json:"myShiftType"`
	OtherShiftType string `json:"otherShiftType"`
}

type submitGiveBody struct {
	RequesterID string `json:"requesterId"`
	TargetID    string `json:"targetId"`
	Date        string `json:"date"`
	MyShiftType string `json:"myShiftType"`
}

type decisionBody struct {
	DecidedBy string `json:"decidedBy"`
}

func (s *Server) handleSubmitExchange(w http.ResponseWriter, r *http.Request) {
	var body submitExchangeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := services.SubmitExchange(r.Context(), s.store, s.hub, s.logger, services.SubmitExchangeParams{
		Department:     s.cfg.Department,
		RequesterID:    body.RequesterID,
		TargetID:       body.TargetID,
		Date:           body.Date,
		MyShiftType:    model.Row(body.MyShiftType),
		OtherShiftType: model.Row(body.OtherShiftType),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Request)
}

func (s *Server) handleSubmitGive(w http.ResponseWriter, r *http.Request) {
	var body submitGiveBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := services.SubmitGive(r.Context(), s.store, s.hub, s.logger, services.SubmitGiveParams{
		Department:  s.cfg.Department,
		RequesterID: body.RequesterID,
		TargetID:    body.TargetID,
		Date:        body.Date,
		MyShiftType: model.Row(body.MyShiftType),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Request)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]
	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := services.Approve(r.Context(), s.store, s.hub, s.logger,
		requestID, body.DecidedBy, s.cfg.ApprovalRetries)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Request)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	requestID := mux.Vars(r)["id"]
	var body decisionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := services.Reject(r.Context(), s.store, s.hub, s.logger, requestID, body.DecidedBy)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Request)
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if requesterID := query.Get("requesterId"); requesterID != "" {
		requests, err := services.ListRequestsByRequester(r.Context(), s.store, s.logger, requesterID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
		return
	}

	status := model.RequestStatus(query.Get("status"))
	requests, err := services.ListRequestsByDepartment(r.Context(), s.store, s.logger, s.cfg.Department, status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request) {
	monthKey := mux.Vars(r)["monthKey"]
	roster, err := services.GetRoster(r.Context(), s.store, s.logger, s.cfg.Department, monthKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	members, err := s.loadTeam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) loadTeam(r *http.Request) ([]model.TeamMember, error) {
	members, err := s.store.GetTeam(r.Context(), s.cfg.Department)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("team %s: %w", s.cfg.Department, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return members, nil
}

// handleCandidates returns the counterpart list the requester may trade
// with, so the submission UI never offers an ineligible member.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requesterId")
	members, err := s.loadTeam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var requester *model.TeamMember
	for i := range members {
		if members[i].ID == requesterID {
			requester = &members[i]
			break
		}
	}
	if requester == nil {
		s.writeError(w, fmt.Errorf("requester %s: %w", requesterID, services.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, eligibility.Candidates(*requester, members))
}
