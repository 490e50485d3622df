package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

const userHeader = "X-User-ID"

// requestContext извлекает пользователя из заголовка и ID изменения из пути
func requestContext(r *http.Request) (string, domain.ChangeID, error) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		return "", 0, domain.NewInvalidInputError(userHeader + " header is required")
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, domain.NewInvalidInputError("invalid change id " + strconv.Quote(r.PathValue("id")))
	}

	return userID, domain.ChangeID(id), nil
}

func (h *Handler) SubmittedTogether(w http.ResponseWriter, r *http.Request) {
	userID, changeID, err := requestContext(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var options []domain.SubmittedTogetherOption
	for _, o := range r.URL.Query()["o"] {
		options = append(options, domain.SubmittedTogetherOption(o))
	}

	result, err := h.submitService.SubmittedTogether(r.Context(), userID, changeID, options...)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmittedTogetherResponse{
		Changes:           domainChangesToHTTP(result.Changes),
		NonVisibleChanges: result.NonVisibleChanges,
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, changeID, err := requestContext(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	set, err := h.submitService.Submit(r.Context(), userID, changeID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitResponse{
		Submitted: domainChangesToHTTP(set.Changes()),
		Projects:  set.Projects(),
	})
}

func (h *Handler) GetSubmitAction(w http.ResponseWriter, r *http.Request) {
	userID, changeID, err := requestContext(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	action, err := h.submitService.DescribeSubmit(r.Context(), userID, changeID)
	if err != nil {
		h.handleError(w, err)
		return
	}
	if action == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, domainSubmitActionToHTTP(action))
}

func (h *Handler) SetTopic(w http.ResponseWriter, r *http.Request) {
	userID, changeID, err := requestContext(r)
	if err != nil {
		h.handleError(w, err)
		return
	}

	var req SetTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, domain.NewInvalidInputError("invalid request body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		h.handleError(w, domain.NewInvalidInputError(err.Error()))
		return
	}

	change, err := h.changeService.SetTopic(r.Context(), userID, changeID, req.Topic)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetTopicResponse{
		Change: domainChangeToHTTP(change),
	})
}
