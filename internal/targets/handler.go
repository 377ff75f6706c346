package targets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lns-erp/lns-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for target slot management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers target routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/targets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/available-months", h.handleAvailableMonths)
		r.Post("/uniform", h.handleAllocateUniform)
		r.Post("/per-unit", h.handleAllocatePerUnit)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.List(r.Context())
	if err != nil {
		h.respondServiceError(w, "list targets", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"targets": slots})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	slot, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get target", err)
		return
	}
	httpx.JSON(w, http.StatusOK, slot)
}

// handleAvailableMonths serves the month/year options for the allocation
// form. When reserve_month and reserve_year are both given (the edit form),
// that taken slot is offered again so the record can keep its own period.
func (h *Handler) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	var reserve *Slot
	monthStr := r.URL.Query().Get("reserve_month")
	yearStr := r.URL.Query().Get("reserve_year")
	if monthStr != "" && yearStr != "" {
		month, errM := strconv.Atoi(monthStr)
		year, errY := strconv.Atoi(yearStr)
		if errM != nil || errY != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "reserve_month and reserve_year must be integers")
			return
		}
		reserve = &Slot{Month: month, Year: year}
	}

	years, err := h.service.AvailableMonths(r.Context(), reserve)
	if err != nil {
		h.respondServiceError(w, "available months", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

func (h *Handler) handleAllocateUniform(w http.ResponseWriter, r *http.Request) {
	var req AllocateUniformRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	result, err := h.service.AllocateUniform(r.Context(), req.Month, req.Year, req.Target)
	if err != nil {
		h.respondServiceError(w, "allocate uniform", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleAllocatePerUnit(w http.ResponseWriter, r *http.Request) {
	var req AllocatePerUnitRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	result, err := h.service.AllocatePerUnit(r.Context(), req.Month, req.Year, req.Units)
	if err != nil {
		h.respondServiceError(w, "allocate per unit", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateSlotRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	slot, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, "update target", err)
		return
	}
	httpx.JSON(w, http.StatusOK, slot)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, "delete target", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body is not valid JSON")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		fields := make(map[string]string)
		for _, fieldErr := range err.(validator.ValidationErrors) {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
		httpx.FieldProblem(w, fields)
		return false
	}
	return true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, context string, err error) {
	switch {
	case errors.Is(err, ErrInvalidPeriod):
		httpx.FieldProblem(w, map[string]string{"period": err.Error()})
	case errors.Is(err, ErrSlotTaken):
		httpx.Problem(w, http.StatusConflict, "Slot Taken", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(context, slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
