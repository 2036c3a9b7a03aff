package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"atelier-store/internal/middleware"
	"atelier-store/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testActor = model.Actor{ID: "admin-1", Email: "admin@example.com"}

// adminRequest builds a request carrying an authenticated actor, the way
// the admin auth middleware would hand it to the handler.
func adminRequest(method, path string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	return req.WithContext(middleware.WithActor(req.Context(), testActor))
}

func TestAdminHandler_SuspendUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("SuspendUser", mock.Anything, testActor, "u1", "policy violation", mock.Anything).
			Return(&model.User{ID: "u1", IsSuspended: true}, nil)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodPost, "/api/admin/users/u1/suspend", []byte(`{"reason":"policy violation"}`))
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got model.User
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.True(t, got.IsSuspended)
		svc.AssertExpectations(t)
	})

	t.Run("missing reason maps to 400", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("SuspendUser", mock.Anything, testActor, "u1", "", mock.Anything).
			Return(nil, model.ErrMissingReason)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodPost, "/api/admin/users/u1/suspend", []byte(`{}`))
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var got model.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, model.ErrCodeMissingReason, got.Error)
	})

	t.Run("self suspension maps to 409", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("SuspendUser", mock.Anything, testActor, testActor.ID, "cleanup", mock.Anything).
			Return(nil, model.ErrSelfActionForbidden)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodPost, "/api/admin/users/"+testActor.ID+"/suspend", []byte(`{"reason":"cleanup"}`))
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("no actor in context", func(t *testing.T) {
		h := NewAdminHandler(new(MockAdminService), zerolog.Nop())
		req := httptest.NewRequest(http.MethodPost, "/api/admin/users/u1/suspend", bytes.NewReader([]byte(`{"reason":"x"}`)))
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminHandler_ActivateUser(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("ActivateUser", mock.Anything, testActor, "u1", "appeal accepted", mock.Anything).
		Return(&model.User{ID: "u1"}, nil)

	h := NewAdminHandler(svc, zerolog.Nop())
	req := adminRequest(http.MethodPost, "/api/admin/users/u1/activate", []byte(`{"reason":"appeal accepted"}`))
	rec := httptest.NewRecorder()

	h.Users(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("DeleteUser", mock.Anything, testActor, "u1", "gdpr request", mock.Anything).Return(nil)

	h := NewAdminHandler(svc, zerolog.Nop())
	req := adminRequest(http.MethodDelete, "/api/admin/users/u1", []byte(`{"reason":"gdpr request"}`))
	rec := httptest.NewRecorder()

	h.Users(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdminHandler_UsersRouting(t *testing.T) {
	h := NewAdminHandler(new(MockAdminService), zerolog.Nop())

	t.Run("missing user id", func(t *testing.T) {
		req := adminRequest(http.MethodPost, "/api/admin/users/", nil)
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		req := adminRequest(http.MethodPost, "/api/admin/users/u1/promote", []byte(`{"reason":"x"}`))
		rec := httptest.NewRecorder()

		h.Users(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("UpdateOrderStatus", mock.Anything, testActor, "ORD-42", model.OrderStatusConfirmed, "payment received", mock.Anything).
			Return(&model.OrderResponse{OrderNumber: "ORD-42"}, nil)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodPatch, "/api/admin/orders/ORD-42", []byte(`{"status":"confirmed","reason":"payment received"}`))
		rec := httptest.NewRecorder()

		h.Orders(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("illegal transition maps to 409", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("UpdateOrderStatus", mock.Anything, testActor, "ORD-42", model.OrderStatusPending, "rewind", mock.Anything).
			Return(nil, model.ErrInvalidTransition)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodPatch, "/api/admin/orders/ORD-42", []byte(`{"status":"pending","reason":"rewind"}`))
		rec := httptest.NewRecorder()

		h.Orders(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		h := NewAdminHandler(new(MockAdminService), zerolog.Nop())
		req := adminRequest(http.MethodPost, "/api/admin/orders/ORD-42", nil)
		rec := httptest.NewRecorder()

		h.Orders(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestAdminHandler_UpdateProduct(t *testing.T) {
	svc := new(MockAdminService)
	newStock := 12
	svc.On("UpdateProduct", mock.Anything, testActor, "p1",
		mock.MatchedBy(func(c model.ProductUpdate) bool {
			return c.Stock != nil && *c.Stock == newStock && c.Name == nil
		}), "restock", mock.Anything).
		Return(&model.Product{ID: "p1", Stock: newStock}, nil)

	h := NewAdminHandler(svc, zerolog.Nop())
	req := adminRequest(http.MethodPatch, "/api/admin/products/p1", []byte(`{"stock":12,"reason":"restock"}`))
	rec := httptest.NewRecorder()

	h.Products(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAdminHandler_DeleteProduct(t *testing.T) {
	svc := new(MockAdminService)
	svc.On("DeleteProduct", mock.Anything, testActor, "p1", "discontinued", mock.Anything).Return(nil)

	h := NewAdminHandler(svc, zerolog.Nop())
	req := adminRequest(http.MethodDelete, "/api/admin/products/p1", []byte(`{"reason":"discontinued"}`))
	rec := httptest.NewRecorder()

	h.Products(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted": true}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestAdminHandler_AuditLogs(t *testing.T) {
	t.Run("passes filter through", func(t *testing.T) {
		svc := new(MockAdminService)
		svc.On("ListAuditLogs", mock.Anything, mock.MatchedBy(func(f model.AuditLogFilter) bool {
			return f.Action != nil && *f.Action == model.AuditActionSuspend &&
				f.TargetEmail == "user@example.com" && f.Limit == 50 && f.Offset == 10
		})).Return(&model.AuditLogPage{Logs: []model.AuditLogEntry{}, Total: 0, Limit: 50, Offset: 10}, nil)

		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodGet, "/api/admin/audit-logs?action=suspend&targetEmail=user@example.com&limit=50&offset=10", nil)
		rec := httptest.NewRecorder()

		h.AuditLogs(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		svc := new(MockAdminService)
		h := NewAdminHandler(svc, zerolog.Nop())
		req := adminRequest(http.MethodGet, "/api/admin/audit-logs?action=destroy", nil)
		rec := httptest.NewRecorder()

		h.AuditLogs(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var got model.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, model.ErrCodeInvalidFilter, got.Error)
		svc.AssertNotCalled(t, "ListAuditLogs")
	})

	t.Run("unknown target type rejected", func(t *testing.T) {
		h := NewAdminHandler(new(MockAdminService), zerolog.Nop())
		req := adminRequest(http.MethodGet, "/api/admin/audit-logs?targetType=invoice", nil)
		rec := httptest.NewRecorder()

		h.AuditLogs(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non-numeric limit rejected", func(t *testing.T) {
		h := NewAdminHandler(new(MockAdminService), zerolog.Nop())
		req := adminRequest(http.MethodGet, "/api/admin/audit-logs?limit=lots", nil)
		rec := httptest.NewRecorder()

		h.AuditLogs(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
