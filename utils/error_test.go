package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestRespondError_MapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantKind  string
		wantField string
	}{
		{"validation", Validation("budget", "budget must be positive"), http.StatusBadRequest, "validation", "budget"},
		{"not found", NotFound("service request not found"), http.StatusNotFound, "not_found", ""},
		{"forbidden", Forbidden("only the owner may do this"), http.StatusForbidden, "forbidden", ""},
		{"conflict", Conflict("already proposed"), http.StatusConflict, "conflict", ""},
		{"invalid state", InvalidState("request is not open"), http.StatusConflict, "invalid_state", ""},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("x")), http.StatusNotFound, "not_found", ""},
		{"plain error", errors.New("mongo down"), http.StatusInternalServerError, "internal", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, zap.NewNop(), tc.err)

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantCode)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.wantKind || body.Field != tc.wantField {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(c, zap.NewNop(), Internal("failed to load", errors.New("secret dsn")))

	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error != "Internal Server Error" {
		t.Fatalf("error = %q; internal detail leaked", body.Error)
	}
}

func TestErrorHandler_RecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Internal("wrapped", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should see the cause")
	}
	if KindOf(err) != KindInternal || !IsKind(Conflict("x"), KindConflict) {
		t.Fatalf("KindOf/IsKind mismatch")
	}
}
