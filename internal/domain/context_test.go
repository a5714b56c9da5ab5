package domain

import (
	"context"
	"testing"
)

func TestUserContext(t *testing.T) {
	t.Run("UserFromContext returns nil when no user", func(t *testing.T) {
		ctx := context.Background()
		user := UserFromContext(ctx)
		if user != nil {
			t.Errorf("expected nil user, got %+v", user)
		}
	})

	t.Run("UserFromContext returns user when set", func(t *testing.T) {
		ctx := context.Background()
		expected := &User{
			ID:    "usr-1",
			Name:  "Ana",
			Email: "ana@example.com",
			Role:  RoleCustomer,
		}
		ctx = NewContextWithUser(ctx, expected)

		user := UserFromContext(ctx)
		if user == nil {
			t.Fatal("expected user, got nil")
		}
		if user.ID != expected.ID {
			t.Errorf("expected ID %q, got %q", expected.ID, user.ID)
		}
		if user.Email != expected.Email {
			t.Errorf("expected Email %q, got %q", expected.Email, user.Email)
		}
	})

	t.Run("IsAuthenticated returns false when no user", func(t *testing.T) {
		if IsAuthenticated(context.Background()) {
			t.Error("expected IsAuthenticated to return false")
		}
	})

	t.Run("IsAuthenticated returns true when user set", func(t *testing.T) {
		ctx := NewContextWithUser(context.Background(), &User{ID: "usr-1"})
		if !IsAuthenticated(ctx) {
			t.Error("expected IsAuthenticated to return true")
		}
	})
}

func TestUserCanSell(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleCustomer, false},
		{RoleSeller, true},
		{RoleAdmin, true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			u := &User{ID: "usr-1", Role: tt.role}
			if got := u.CanSell(); got != tt.expected {
				t.Errorf("CanSell() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTokenContext(t *testing.T) {
	t.Run("TokenFromContext returns empty when no token", func(t *testing.T) {
		if token := TokenFromContext(context.Background()); token != "" {
			t.Errorf("expected empty token, got %q", token)
		}
	})

	t.Run("TokenFromContext returns token when set", func(t *testing.T) {
		ctx := NewContextWithToken(context.Background(), "jwt-abc")
		if token := TokenFromContext(ctx); token != "jwt-abc" {
			t.Errorf("expected %q, got %q", "jwt-abc", token)
		}
	})
}

func TestRequestIDContext(t *testing.T) {
	t.Run("RequestIDFromContext returns empty when no request ID", func(t *testing.T) {
		if id := RequestIDFromContext(context.Background()); id != "" {
			t.Errorf("expected empty request ID, got %q", id)
		}
	})

	t.Run("RequestIDFromContext returns ID when set", func(t *testing.T) {
		ctx := NewContextWithRequestID(context.Background(), "req-123")
		if id := RequestIDFromContext(ctx); id != "req-123" {
			t.Errorf("expected %q, got %q", "req-123", id)
		}
	})
}
