package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sharedcal/internal/bookings/service"
	apperrors "sharedcal/pkg/errors"
	httputil "sharedcal/pkg/http"
	"sharedcal/pkg/logger"
	"sharedcal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", decodeError(err))
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteAction(w, http.StatusCreated, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteAction", "error", err)
	}
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}

	result, err := h.service.CheckIn(r.Context(), id)
	if err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}

	h.writeAction(w, "CheckIn", result)
}

func (h *BookingHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CheckOut", err)
		return
	}

	result, err := h.service.CheckOut(r.Context(), id)
	if err != nil {
		h.writeError(w, "CheckOut", err)
		return
	}

	h.writeAction(w, "CheckOut", result)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ParseID(ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	result, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	h.writeAction(w, "Delete", result)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := httputil.ExtractDate(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	day, err := h.service.List(r.Context(), date)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteSuccess(w, day); err != nil {
		h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Active(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	active, err := h.service.Active(r.Context())
	if err != nil {
		h.writeError(w, "Active", err)
		return
	}

	if err := httputil.WriteSuccess(w, active); err != nil {
		h.log.Error("failed to write success response", "handler", "Active", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Team(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.Team()); err != nil {
		h.log.Error("failed to write success response", "handler", "Team", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/active", h.Active)
	router.POST("/api/v1/bookings/id/:id/checkin", h.CheckIn)
	router.POST("/api/v1/bookings/id/:id/checkout", h.CheckOut)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
	router.GET("/api/v1/team", h.Team)
}

func (h *BookingHandler) writeAction(w http.ResponseWriter, handler string, result *model.ActionResult) {
	if err := httputil.WriteAction(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write action response", "handler", handler, "operation", "WriteAction", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
	}
	return apperrors.InvalidInput("Invalid request body").WithCause(err)
}
