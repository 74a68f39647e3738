package adminapi

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoseWrightdev/rtc-signal/internal/room"
	"github.com/RoseWrightdev/rtc-signal/internal/types"
)

var codePattern = regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

func newTestRouter(cap int) (*gin.Engine, *room.Registry) {
	gin.SetMode(gin.TestMode)
	reg := room.NewRegistry(60*time.Second, cap)
	h := NewHandler(reg)

	r := gin.New()
	r.GET("/generate-code", h.GenerateCode)
	r.GET("/", h.Index)
	return r, reg
}

func TestGenerateCode_ReturnsJoinableCode(t *testing.T) {
	router, reg := newTestRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/generate-code", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	code := w.Body.String()
	assert.Regexp(t, codePattern, code)

	r, ok := reg.Lookup(types.RoomCode(code))
	require.True(t, ok, "expected generated code to be pre-created in the registry")
	assert.True(t, r.Empty())
}

func TestGenerateCode_ResourceExhausted(t *testing.T) {
	router, _ := newTestRouter(1)

	req := httptest.NewRequest(http.MethodGet, "/generate-code", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/generate-code", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusServiceUnavailable, w2.Code)
}

func TestIndex(t *testing.T) {
	router, _ := newTestRouter(0)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rtc-signal")
}
