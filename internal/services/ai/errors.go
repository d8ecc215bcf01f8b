package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrRateLimited indicates the API rate limit was exceeded
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded indicates the API quota was exceeded
	ErrQuotaExceeded = errors.New("quota exceeded")
)

const (
	defaultRateLimitRetry = 60 * time.Second
	defaultQuotaRetry     = time.Hour
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	RetryAfter  *time.Duration
	IsPermanent bool // true for quota errors, false for rate limits
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// Is lets errors.Is match ErrRateLimited and ErrQuotaExceeded
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.IsPermanent
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests && !e.IsPermanent
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent || apiErr.Code == "insufficient_quota"
	}

	errStr := err.Error()
	return strings.Contains(errStr, "insufficient_quota") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "billing")
}

// ExtractAPIError converts rate-limit and quota failures into an APIError.
// It returns nil for any other error.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}

	var own *APIError
	if errors.As(err, &own) {
		return own
	}

	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		if sdkErr.StatusCode != http.StatusTooManyRequests {
			return nil
		}
		apiErr := &APIError{
			StatusCode:  sdkErr.StatusCode,
			Message:     sdkErr.Message,
			Type:        sdkErr.Type,
			Code:        sdkErr.Code,
			IsPermanent: sdkErr.Code == "insufficient_quota",
		}
		var header http.Header
		if sdkErr.Response != nil {
			header = sdkErr.Response.Header
		}
		apiErr.RetryAfter = retryAfter(header, apiErr.IsPermanent)
		return apiErr
	}

	// Fall back to the error text for wrapped or proxied errors
	errStr := err.Error()
	if !strings.Contains(errStr, "429") {
		return nil
	}
	apiErr := &APIError{
		StatusCode: http.StatusTooManyRequests,
		Message:    errStr,
		Type:       "rate_limit_error",
	}
	if jsonStart := strings.Index(errStr, "{"); jsonStart != -1 {
		jsonStr := errStr[jsonStart:]
		if jsonEnd := strings.LastIndex(jsonStr, "}"); jsonEnd != -1 {
			jsonStr = jsonStr[:jsonEnd+1]
			var errorData struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    string `json:"code"`
			}
			if json.Unmarshal([]byte(jsonStr), &errorData) == nil {
				apiErr.Message = errorData.Message
				apiErr.Type = errorData.Type
				apiErr.Code = errorData.Code
				apiErr.IsPermanent = errorData.Code == "insufficient_quota"
			}
		}
	}
	apiErr.RetryAfter = retryAfter(nil, apiErr.IsPermanent)
	return apiErr
}

func retryAfter(header http.Header, permanent bool) *time.Duration {
	d := defaultRateLimitRetry
	if permanent {
		d = defaultQuotaRetry
	}
	if header != nil {
		if secs, err := strconv.Atoi(header.Get("Retry-After")); err == nil && secs > 0 && !permanent {
			d = time.Duration(secs) * time.Second
		}
	}
	return &d
}

// GetRetryDelay calculates the delay before retrying based on error type
func GetRetryDelay(err error, attempt int) time.Duration {
	// Shift is clamped to [0, 10] so the multiplication cannot overflow
	var shift uint
	switch {
	case attempt <= 0:
		shift = 0
	case attempt > 10:
		shift = 10
	default:
		shift = uint(attempt)
	}

	if IsQuotaError(err) {
		delay := time.Hour * time.Duration(1<<shift)
		if delay > 24*time.Hour {
			delay = 24 * time.Hour
		}
		return delay
	}

	if IsRateLimitError(err) {
		delay := 60 * time.Second * time.Duration(1<<shift)
		if delay > 15*time.Minute {
			delay = 15 * time.Minute
		}
		if apiErr := ExtractAPIError(err); apiErr != nil && apiErr.RetryAfter != nil {
			if *apiErr.RetryAfter > delay {
				delay = *apiErr.RetryAfter
			}
		}
		return delay
	}

	delay := 5 * time.Second * time.Duration(1<<shift)
	if delay > 5*time.Minute {
		delay = 5 * time.Minute
	}
	return delay
}
