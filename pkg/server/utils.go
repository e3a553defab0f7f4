package server

import (
	"encoding/json"
	stdliberrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/odvcencio/textgrid/pkg/errors"
)

// respondJSON sends a JSON response with appropriate headers.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

type errorResponse struct {
	Error       string   `json:"error"`
	Status      int      `json:"status"`
	Code        string   `json:"code,omitempty"`
	Message     string   `json:"message"`
	Details     string   `json:"details,omitempty"`
	Field       string   `json:"field,omitempty"`
	Remediation []string `json:"remediation,omitempty"`
	RequestID   string   `json:"requestId,omitempty"`
	Timestamp   string   `json:"timestamp"`
}

// respondError sends a structured JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	response := errorResponse{
		Status:    status,
		Message:   http.StatusText(status),
		RequestID: requestID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	var appErr *errors.Error
	if stdliberrors.As(err, &appErr) {
		response.Code = string(appErr.Code)
		if appErr.UserMessage != "" {
			response.Message = appErr.UserMessage
		} else if appErr.Message != "" {
			response.Message = appErr.Message
		}
		if field, ok := appErr.Context["field"].(string); ok {
			response.Field = field
		}
		response.Remediation = append([]string(nil), appErr.Remediation...)
		response.Details = appErr.Error()
	} else if err != nil {
		response.Message = err.Error()
	}
	if len(response.Remediation) == 0 {
		response.Remediation = defaultRemediation(errors.ErrorCode(response.Code), status)
	}
	response.Error = response.Message
	respondJSON(w, status, response)
}

// defaultRemediation provides hints for common failures.
func defaultRemediation(code errors.ErrorCode, status int) []string {
	switch code {
	case errors.ErrCodeRateLimited:
		return []string{"Retry after a short pause or raise server.rate_limit."}
	case errors.ErrCodeBodyTooLarge:
		return []string{"Send a smaller document or raise server.max_body_bytes."}
	case errors.ErrCodeInvalidWidth:
		return []string{"Pick a width between 1 and server.max_width."}
	}
	if status >= http.StatusInternalServerError {
		return []string{"Check the server log for the request id."}
	}
	return nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInternal, errors.ErrCodeRender:
		return http.StatusInternalServerError
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	if r.Body == nil {
		return errors.New(errors.ErrCodeInvalidInput, "request body required")
	}
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case stdliberrors.As(err, &maxErr):
			return errors.Newf(errors.ErrCodeBodyTooLarge, "request body too large (max %d bytes)", maxBytes).
				WithContext("limit", maxBytes)
		case stdliberrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "request body required")
		}
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "decoding request")
	}
	return nil
}
