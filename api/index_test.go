package handler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("STORE_URL", "redis://"+mr.Addr())
	t.Setenv("LOG_LEVEL", "error")
	once = sync.Once{}

	rec := httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Handler(rec, httptest.NewRequest(http.MethodGet, "/api/links", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
