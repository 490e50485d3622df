package handler

import "github.com/bagdasarian/review-submit/internal/service"

type Handler struct {
	submitService service.SubmitService
	changeService service.ChangeService
}

func NewHandler(
	submitService service.SubmitService,
	changeService service.ChangeService,
) *Handler {
	return &Handler{
		submitService: submitService,
		changeService: changeService,
	}
}
