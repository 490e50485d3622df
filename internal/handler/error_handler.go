package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/logger"
)

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		statusCode := getStatusCode(domainErr.Code)
		if statusCode >= http.StatusInternalServerError {
			logger.Error("request failed", "code", domainErr.Code, "change", domainErr.ChangeID, "error", err)
		}
		writeJSON(w, statusCode, ErrorResponse{
			Error: ErrorDetail{
				Code:     domainErr.Code,
				Message:  domainErr.Message,
				ChangeID: int64(domainErr.ChangeID),
			},
		})
		return
	}

	logger.Error("unexpected error", "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: "internal server error",
		},
	})
}

func getStatusCode(errorCode string) int {
	switch errorCode {
	case domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeRequiredChangeInvisible, domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeChangeClosed:
		return http.StatusConflict
	case domain.CodeRepositoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}
