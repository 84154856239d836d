package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
	"github.com/phrazzld/slotswap-api/internal/service/auth"
)

type stubJWTService struct {
	tokens map[string]uuid.UUID
	err    error
}

func (s *stubJWTService) GenerateToken(context.Context, uuid.UUID) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	id, ok := s.tokens[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id, TokenType: "access"}, nil
}

func TestAuthenticate(t *testing.T) {
	alice := uuid.New()
	jwt := &stubJWTService{tokens: map[string]uuid.UUID{"good": alice}}

	var seen uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r)
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})
	h := NewAuthMiddleware(jwt).Authenticate(next)

	tests := []struct {
		name    string
		header  string
		query   string
		status  int
		message string
	}{
		{name: "bearer header", header: "Bearer good", status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", status: http.StatusOK},
		{name: "query parameter", query: "good", status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized, message: "Authorization header required"},
		{name: "malformed header", header: "Token good", status: http.StatusUnauthorized, message: "Invalid authorization format"},
		{name: "unknown token", header: "Bearer bad", status: http.StatusUnauthorized, message: "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			target := "/api/slots"
			if tt.query != "" {
				target += "?" + AccessTokenQueryParam + "=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, r)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, alice, seen)
				return
			}
			var resp shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, "UNAUTHENTICATED", resp.Kind)
		})
	}
}

func TestAuthenticate_ExpiredAndInternal(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	})

	expired := NewAuthMiddleware(&stubJWTService{err: auth.ErrExpiredToken}).Authenticate(next)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer x")
	rr := httptest.NewRecorder()
	expired.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Token expired")

	broken := NewAuthMiddleware(&stubJWTService{err: errors.New("keystore offline")}).Authenticate(next)
	rr = httptest.NewRecorder()
	broken.ServeHTTP(rr, r)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "keystore")
}

func TestTraceMiddleware(t *testing.T) {
	var traceID string
	h := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, rr.Header().Get(TraceIDHeader))
}
