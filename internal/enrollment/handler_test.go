// internal/enrollment/handler_test.go
package enrollment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bureaudesk/internal/catalog"
)

// downStore fails every membership lookup.
type downStore struct {
	catalog.Store
}

func (downStore) FindMembership(context.Context, string) (*catalog.Membership, error) {
	return nil, errors.New("gateway down")
}

func postEnroll(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/enroll", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleEnroll(rec, req)
	return rec
}

func TestHandleEnrollStatusCodes(t *testing.T) {
	t.Run("missing citizen id is a client error", func(t *testing.T) {
		h := NewHandler(NewService(catalog.NewMemoryStore(), unlimited()))
		rec := postEnroll(t, h, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("already enrolled conflicts", func(t *testing.T) {
		store := catalog.NewMemoryStore()
		require.NoError(t, store.AddCitizen(context.Background(), &catalog.Citizen{ID: "C1"}))
		h := NewHandler(NewService(store, unlimited()))

		rec := postEnroll(t, h, `{"id":"C1"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = postEnroll(t, h, `{"id":"C1"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("gateway failure is a server error", func(t *testing.T) {
		h := NewHandler(NewService(downStore{}, unlimited()))
		rec := postEnroll(t, h, `{"id":"C1"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
