package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"atelier-store/internal/middleware"
	"atelier-store/internal/model"
	"atelier-store/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles privileged admin HTTP requests. Every route it
// serves sits behind the admin auth middleware, which resolves the actor.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// reasonRequest is the body of admin user operations.
type reasonRequest struct {
	Reason string `json:"reason"`
}

// productUpdateRequest is the body of PATCH /api/admin/products/{id}.
type productUpdateRequest struct {
	Name   *string `json:"name"`
	Price  *string `json:"price"`
	Stock  *int    `json:"stock"`
	Reason string  `json:"reason"`
}

// actor pulls the authenticated admin out of the request context. The
// middleware guarantees it is present on admin routes.
func (h *AdminHandler) actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "no authenticated actor", h.logger)
	}
	return actor, ok
}

// Users routes /api/admin/users/{id}, /api/admin/users/{id}/suspend and
// /api/admin/users/{id}/activate.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	userID, action, _ := strings.Cut(rest, "/")
	if userID == "" {
		writeError(w, http.StatusNotFound, model.ErrCodeUserNotFound, "user id is required", h.logger)
		return
	}

	switch {
	case r.Method == http.MethodPost && action == "suspend":
		h.suspendUser(w, r, actor, userID)
	case r.Method == http.MethodPost && action == "activate":
		h.activateUser(w, r, actor, userID)
	case r.Method == http.MethodDelete && action == "":
		h.deleteUser(w, r, actor, userID)
	default:
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
	}
}

func (h *AdminHandler) suspendUser(w http.ResponseWriter, r *http.Request, actor model.Actor, userID string) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	user, err := h.service.SuspendUser(r.Context(), actor, userID, req.Reason, middleware.RequestInfo(r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) activateUser(w http.ResponseWriter, r *http.Request, actor model.Actor, userID string) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	user, err := h.service.ActivateUser(r.Context(), actor, userID, req.Reason, middleware.RequestInfo(r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) deleteUser(w http.ResponseWriter, r *http.Request, actor model.Actor, userID string) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, userID, req.Reason, middleware.RequestInfo(r)); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Orders handles PATCH /api/admin/orders/{orderNumber}.
func (h *AdminHandler) Orders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	orderNumber := strings.TrimPrefix(r.URL.Path, "/api/admin/orders/")
	if orderNumber == "" || strings.Contains(orderNumber, "/") {
		writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound, "order number is required", h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.UpdateOrderStatus(r.Context(), actor, orderNumber, req.Status, req.Reason, middleware.RequestInfo(r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Products routes PATCH and DELETE on /api/admin/products/{id}.
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/admin/products/")
	if productID == "" || strings.Contains(productID, "/") {
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product id is required", h.logger)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.updateProduct(w, r, actor, productID)
	case http.MethodDelete:
		h.deleteProduct(w, r, actor, productID)
	default:
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
	}
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request, actor model.Actor, productID string) {
	var req productUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	changes := model.ProductUpdate{Name: req.Name, Price: req.Price, Stock: req.Stock}
	product, err := h.service.UpdateProduct(r.Context(), actor, productID, changes, req.Reason, middleware.RequestInfo(r))
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request, actor model.Actor, productID string) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), actor, productID, req.Reason, middleware.RequestInfo(r)); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// AuditLogs handles GET /api/admin/audit-logs. Unknown action or target
// type values are rejected rather than silently ignored.
func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInvalidJSON, "method not allowed", h.logger)
		return
	}

	if _, ok := h.actor(w, r); !ok {
		return
	}

	filter, err := parseAuditLogFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFilter, err.Error(), h.logger)
		return
	}

	page, err := h.service.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func parseAuditLogFilter(r *http.Request) (model.AuditLogFilter, error) {
	q := r.URL.Query()
	var filter model.AuditLogFilter

	if v := q.Get("action"); v != "" {
		action := model.AuditAction(v)
		if !model.ValidAuditAction(action) {
			return filter, &model.DomainError{Code: model.ErrCodeInvalidFilter, Message: "unknown action: " + v}
		}
		filter.Action = &action
	}

	if v := q.Get("targetType"); v != "" {
		targetType := model.AuditTargetType(v)
		if !model.ValidAuditTargetType(targetType) {
			return filter, &model.DomainError{Code: model.ErrCodeInvalidFilter, Message: "unknown target type: " + v}
		}
		filter.TargetType = &targetType
	}

	filter.TargetEmail = q.Get("targetEmail")
	filter.PerformedByEmail = q.Get("performedByEmail")

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, &model.DomainError{Code: model.ErrCodeInvalidFilter, Message: "limit must be an integer"}
		}
		filter.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, &model.DomainError{Code: model.ErrCodeInvalidFilter, Message: "offset must be an integer"}
		}
		filter.Offset = offset
	}

	return filter, nil
}
