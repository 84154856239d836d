package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
)

func TestNotificationHandler(t *testing.T) {
	alice := uuid.New()

	t.Run("hands the connection to the server", func(t *testing.T) {
		var got uuid.UUID
		srv := &mockNotificationServer{ServeFn: func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
			got = userID
			w.WriteHeader(http.StatusSwitchingProtocols)
			return nil
		}}
		h := NewNotificationHandler(srv, testLogger())

		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r = r.WithContext(shared.WithUserID(r.Context(), alice))
		rr := httptest.NewRecorder()
		h.Connect(rr, r)

		assert.Equal(t, alice, got)
		assert.Equal(t, http.StatusSwitchingProtocols, rr.Code)
	})

	t.Run("upgrade failure is logged only", func(t *testing.T) {
		srv := &mockNotificationServer{ServeFn: func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return errors.New("websocket: not a websocket handshake")
		}}
		h := NewNotificationHandler(srv, testLogger())

		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r = r.WithContext(shared.WithUserID(r.Context(), alice))
		rr := httptest.NewRecorder()
		h.Connect(rr, r)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("requires a user", func(t *testing.T) {
		h := NewNotificationHandler(&mockNotificationServer{}, testLogger())
		rr := httptest.NewRecorder()
		h.Connect(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
