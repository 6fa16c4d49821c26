package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terraconstructs/skillshare/internal/auth"
	"github.com/terraconstructs/skillshare/internal/db/models"
)

type roleEnforcer map[string]bool

func (e roleEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	return e[rvals[0].(string)], nil
}

func TestRequireRole(t *testing.T) {
	policy := auth.NewPolicy(roleEnforcer{auth.RoleID(models.RoleAdmin): true})
	handler := RequireRole(policy, auth.ObjectTypeAdmin, auth.AdminUserManage)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	tests := []struct {
		name string
		ctx  context.Context
		code int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"user", auth.SetUserContext(context.Background(), auth.AuthenticatedPrincipal{ID: "u1", Role: models.RoleUser}), http.StatusForbidden},
		{"admin", auth.SetUserContext(context.Background(), auth.AuthenticatedPrincipal{ID: "a1", Role: models.RoleAdmin}), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
