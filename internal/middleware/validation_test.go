package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Quantity *int   `json:"quantity" validate:"required"`
}

func newJSONRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Missing required fields are reported by their JSON name
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each missing required field appears in the field map", prop.ForAll(
		func(includeName, includeEmail, includeQuantity bool) bool {
			reqMap := make(map[string]interface{})
			if includeName {
				reqMap["name"] = "Smartphone"
			}
			if includeEmail {
				reqMap["email"] = "alice@example.com"
			}
			if includeQuantity {
				reqMap["quantity"] = 0
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(reqBody))

			var testReq testRequest
			err := DecodeAndValidate(req, &testReq)

			if includeName && includeEmail && includeQuantity {
				return err == nil
			}

			fields := FormatValidationErrors(err)
			_, nameReported := fields["name"]
			_, emailReported := fields["email"]
			_, quantityReported := fields["quantity"]
			return nameReported == !includeName &&
				emailReported == !includeEmail &&
				quantityReported == !includeQuantity
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_TypeErrorsBecomeFieldErrors(t *testing.T) {
	var req testRequest
	err := DecodeAndValidate(newJSONRequest(`{"name":"x","email":"a@b.co","quantity":"two"}`), &req)
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, map[string]string{"quantity": "Expected a value of type integer"}, fields)
}

func TestDecodeAndValidate_MalformedBody(t *testing.T) {
	var req testRequest
	err := DecodeAndValidate(newJSONRequest(`{"name":`), &req)
	assert.ErrorIs(t, err, ErrMalformedBody)
	assert.Nil(t, FormatValidationErrors(err))
}

func TestDecodeAndValidate_EmptyBodyReportsEveryField(t *testing.T) {
	var req testRequest
	err := DecodeAndValidate(newJSONRequest(``), &req)

	fields := FormatValidationErrors(err)
	assert.Equal(t, "This field is required", fields["name"])
	assert.Equal(t, "This field is required", fields["email"])
	assert.Equal(t, "This field is required", fields["quantity"])
}

func TestValidationMiddleware_RejectsNonJSONBodies(t *testing.T) {
	handler := ValidationMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method      string
		contentType string
		want        int
	}{
		{http.MethodPost, "application/json", http.StatusNoContent},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusNoContent},
		{http.MethodPost, "", http.StatusNoContent},
		{http.MethodPut, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{http.MethodGet, "text/plain", http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/api/users", strings.NewReader(`{}`))
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, "%s %q", tt.method, tt.contentType)
	}
}

type nestedRequest struct {
	Items []struct {
		Quantity *int `json:"quantity" validate:"required"`
	} `json:"items" validate:"omitempty,dive"`
}

func TestFormatValidationErrors_NestedFieldPaths(t *testing.T) {
	var req nestedRequest
	err := DecodeAndValidate(newJSONRequest(`{"items":[{"quantity":1},{}]}`), &req)

	assert.Equal(t, map[string]string{"items[1].quantity": "This field is required"}, FormatValidationErrors(err))
}
