package ai

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v3"
)

func TestExtractAPIError_SDKError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", nil)
	resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"30"}}}
	sdkErr := &openai.Error{StatusCode: http.StatusTooManyRequests, Code: "rate_limit_exceeded", Type: "requests", Message: "slow down", Request: req, Response: resp}

	apiErr := ExtractAPIError(fmt.Errorf("wrapped: %w", sdkErr))
	if apiErr == nil {
		t.Fatal("Expected APIError")
	}
	if apiErr.IsPermanent {
		t.Error("Rate limit should not be permanent")
	}
	if apiErr.RetryAfter == nil || *apiErr.RetryAfter != 30*time.Second {
		t.Errorf("Expected Retry-After 30s, got %v", apiErr.RetryAfter)
	}
	if !errors.Is(apiErr, ErrRateLimited) {
		t.Error("Expected errors.Is(ErrRateLimited)")
	}

	quota := &openai.Error{StatusCode: http.StatusTooManyRequests, Code: "insufficient_quota"}
	apiErr = ExtractAPIError(quota)
	if apiErr == nil || !apiErr.IsPermanent || *apiErr.RetryAfter != time.Hour {
		t.Errorf("Expected permanent quota error with 1h retry, got %+v", apiErr)
	}
	if !errors.Is(apiErr, ErrQuotaExceeded) {
		t.Error("Expected errors.Is(ErrQuotaExceeded)")
	}

	if ExtractAPIError(&openai.Error{StatusCode: http.StatusInternalServerError}) != nil {
		t.Error("Expected nil for non-429 SDK error")
	}
}

func TestExtractAPIError_FromText(t *testing.T) {
	t.Parallel()

	err := errors.New(`POST "/chat/completions": 429 Too Many Requests {"message": "quota gone", "type": "insufficient_quota", "code": "insufficient_quota"}`)
	apiErr := ExtractAPIError(err)
	if apiErr == nil {
		t.Fatal("Expected APIError")
	}
	if apiErr.Code != "insufficient_quota" || !apiErr.IsPermanent {
		t.Errorf("Unexpected APIError %+v", apiErr)
	}

	if ExtractAPIError(errors.New("connection refused")) != nil {
		t.Error("Expected nil for unrelated error")
	}
	if ExtractAPIError(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestGetRetryDelay(t *testing.T) {
	t.Parallel()

	rateLimited := &APIError{StatusCode: http.StatusTooManyRequests}
	quota := &APIError{StatusCode: http.StatusTooManyRequests, IsPermanent: true}
	other := errors.New("connection reset")

	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"generic first attempt", other, 0, 5 * time.Second},
		{"generic backoff", other, 2, 20 * time.Second},
		{"generic capped", other, 50, 5 * time.Minute},
		{"rate limit first attempt", rateLimited, 0, 60 * time.Second},
		{"rate limit capped", rateLimited, 8, 15 * time.Minute},
		{"quota first attempt", quota, 0, time.Hour},
		{"quota capped", quota, 10, 24 * time.Hour},
		{"negative attempt", other, -3, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := GetRetryDelay(tt.err, tt.attempt); got != tt.want {
				t.Errorf("GetRetryDelay(%v, %d) = %v, want %v", tt.err, tt.attempt, got, tt.want)
			}
		})
	}
}
