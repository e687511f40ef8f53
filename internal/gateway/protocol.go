package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/fast-gateway-protocol/github/internal/service"
)

// ProtocolVersion is the wire protocol revision. Requests may pin a version
// with the "v" field; omitting it means "current".
const ProtocolVersion = 1

// Request is one newline-delimited JSON line from a caller.
type Request struct {
	ID     string         `json:"id"`
	V      int            `json:"v,omitempty"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

// Response is the reply line for a request. Exactly one of Result and Error
// is populated, discriminated by OK.
type Response struct {
	ID     string      `json:"id"`
	OK     bool        `json:"ok"`
	Result any         `json:"result,omitempty"`
	Error  *ErrorShape `json:"error,omitempty"`
}

// ErrorShape is the standard error format in responses.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewResponse creates a success response.
func NewResponse(id string, result any) Response {
	return Response{ID: id, OK: true, Result: result}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id, code, message string) Response {
	return Response{ID: id, OK: false, Error: &ErrorShape{Code: code, Message: message}}
}

// DecodeRequest parses and sanity-checks one request line. A parse or shape
// failure is reported as VALIDATION_FAILED; the request ID is preserved when
// it survived parsing so the caller can correlate the error.
func DecodeRequest(line []byte) (Request, *ErrorShape) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return req, &ErrorShape{
			Code:    string(service.CodeValidationFailed),
			Message: fmt.Sprintf("malformed request: %v", err),
		}
	}
	if req.Method == "" {
		return req, &ErrorShape{
			Code:    string(service.CodeValidationFailed),
			Message: "request is missing a method",
		}
	}
	if req.V != 0 && req.V != ProtocolVersion {
		return req, &ErrorShape{
			Code:    string(service.CodeValidationFailed),
			Message: fmt.Sprintf("unsupported protocol version %d (server speaks %d)", req.V, ProtocolVersion),
		}
	}
	return req, nil
}
