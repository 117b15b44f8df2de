package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type AnswersRequest struct {
	Answers []string `json:"answers"`
}

type SubmittedResponse struct {
	PostID    string `json:"postId"`
	Submitted bool   `json:"submitted"`
}

func (h *Handlers) GetSubmission(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["id"]

	submitted, err := h.SubmissionService.HasSubmitted(r.Context(), postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, SubmittedResponse{PostID: postID, Submitted: submitted}, http.StatusOK)
}

func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	submission, err := h.SubmissionService.Submit(r.Context(), mux.Vars(r)["id"], req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, submission, http.StatusCreated)
}

func (h *Handlers) Progress(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	progress, err := h.SubmissionService.Progress(r.Context(), mux.Vars(r)["id"], req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, progress, http.StatusOK)
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	dist, err := h.ReportService.AnswerDistribution(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, dist, http.StatusOK)
}
