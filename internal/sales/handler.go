package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lns-erp/lns-erp/internal/platform/httpx"
	"github.com/lns-erp/lns-erp/internal/shared"
)

// Handler wires HTTP endpoints for the sales pipeline.
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

// MountRoutes registers sales pipeline routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/customers", h.handleListCustomers)
		r.Get("/business-units", h.handleListBusinessUnits)

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", h.handleListInquiries)
			r.Post("/", h.handleCreateInquiry)
			r.Get("/{id}", h.handleGetInquiry)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", h.handleCreateQuotation)
			r.Get("/{id}", h.handleGetQuotation)
			r.Get("/{id}/negotiations", h.handleListNegotiations)
			r.Post("/{id}/negotiations", h.handleRecordNegotiation)
		})

		r.Post("/purchase-orders", h.handleCreatePurchaseOrder)
	})
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.respondServiceError(w, "list customers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *Handler) handleListBusinessUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.service.ListBusinessUnits(r.Context())
	if err != nil {
		h.respondServiceError(w, "list business units", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"business_units": units})
}

func (h *Handler) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req CreateInquiryRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	inquiry, err := h.service.CreateInquiry(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "create inquiry", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inquiry)
}

func (h *Handler) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inquiry, err := h.service.GetInquiry(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get inquiry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inquiry)
}

func (h *Handler) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	req, page, perPage, err := parseInquiryListQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Parameter", err.Error())
		return
	}

	inquiries, total, err := h.service.ListInquiries(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "list inquiries", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"inquiries":  inquiries,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) handleCreateQuotation(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	quotation, err := h.service.CreateQuotation(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quotation)
}

func (h *Handler) handleGetQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	quotation, err := h.service.GetQuotation(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotation)
}

func (h *Handler) handleListNegotiations(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	negotiations, err := h.service.ListNegotiations(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, "list negotiations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"negotiations": negotiations})
}

func (h *Handler) handleRecordNegotiation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req RecordNegotiationRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	outcome, err := h.service.RecordNegotiation(r.Context(), id, req)
	if err != nil {
		h.respondServiceError(w, "record negotiation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, outcome)
}

func (h *Handler) handleCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req CreatePurchaseOrderRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	po, err := h.service.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, "create purchase order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func parseInquiryListQuery(r *http.Request) (ListInquiriesRequest, int, int, error) {
	var req ListInquiriesRequest

	page := 1
	if pageStr := strings.TrimSpace(r.URL.Query().Get("page")); pageStr != "" {
		value, err := strconv.Atoi(pageStr)
		if err != nil || value <= 0 {
			return req, 0, 0, errors.New("page must be a positive integer")
		}
		page = value
	}
	perPage := 50
	if perStr := strings.TrimSpace(r.URL.Query().Get("per_page")); perStr != "" {
		value, err := strconv.Atoi(perStr)
		if err != nil || value <= 0 || value > 200 {
			return req, 0, 0, errors.New("per_page must be between 1 and 200")
		}
		perPage = value
	}
	req.Limit = perPage
	req.Offset = (page - 1) * perPage

	if unitStr := strings.TrimSpace(r.URL.Query().Get("business_unit_id")); unitStr != "" {
		value, err := strconv.ParseInt(unitStr, 10, 64)
		if err != nil || value <= 0 {
			return req, 0, 0, errors.New("business_unit_id must be a positive integer")
		}
		req.BusinessUnitID = &value
	}

	if statusStr := strings.TrimSpace(r.URL.Query().Get("status")); statusStr != "" {
		status := InquiryStatus(statusStr)
		switch status {
		case InquiryStatusPending, InquiryStatusProcess, InquiryStatusCanceled, InquiryStatusNoQuot:
			req.Status = &status
		default:
			return req, 0, 0, errors.New("unknown inquiry status")
		}
	}

	return req, page, perPage, nil
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
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
