package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/slotswap-api/internal/api/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser runs requests as userID, standing in for the auth middleware.
func asUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID != uuid.Nil {
				r = r.WithContext(shared.WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(userID uuid.UUID, slots *SlotHandler, swaps *SwapHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(userID))
	if slots != nil {
		r.Post("/slots", slots.CreateSlot)
		r.Get("/slots", slots.ListMySlots)
		r.Put("/slots/{id}", slots.UpdateSlot)
		r.Delete("/slots/{id}", slots.DeleteSlot)
	}
	if swaps != nil {
		r.Post("/swaps/requests", swaps.ProposeSwap)
		r.Post("/swaps/requests/{id}/response", swaps.RespondSwap)
		r.Get("/swaps/swappable-slots", swaps.ListSwappable)
		r.Get("/swaps/incoming", swaps.ListIncoming)
		r.Get("/swaps/outgoing", swaps.ListOutgoing)
	}
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}
