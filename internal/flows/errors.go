package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded or lacks
	// a required field.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrTimeout marks a request that exceeded its deadline.
	ErrTimeout = errors.New("request timed out")
)

const maxErrorBody = 64 << 10

// Error codes reported when the server does not supply one.
const (
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeNetwork     = "ERR_NETWORK"
	CodeCanceled    = "ERR_CANCELED"
	CodeTimeout     = "ECONNABORTED"
	CodeMalformed   = "ERR_BAD_RESPONSE_BODY"
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// Error renders the status, code and message.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s: %s", e.Status, e.Code, e.Message)
}

// Kind is the coarse failure classification.
type Kind uint8

const (
	KindNone Kind = iota
	KindUnauthorized
	KindHTTP
	KindTimeout
	KindNetwork
	KindMalformed
)

// String returns a lower-case name for logs and audit metadata.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthorized:
		return "unauthorized"
	case KindHTTP:
		return "http"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Failure is a classified flow error.
type Failure struct {
	Kind    Kind
	Status  int
	Code    string
	Message string
}

// Text renders the failure as "{code}: {message}".
func (f Failure) Text() string {
	return f.Code + ": " + f.Message
}

// Classify reduces err to a [Failure]. timeout is the deadline that was applied
// to the request and only feeds the timeout message.
func Classify(err error, timeout time.Duration) Failure {
	if err == nil {
		return Failure{Kind: KindNone}
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		kind := KindHTTP
		if httpErr.Status == http.StatusUnauthorized {
			kind = KindUnauthorized
		}
		return Failure{Kind: kind, Status: httpErr.Status, Code: httpErr.Code, Message: httpErr.Message}
	}

	if errors.Is(err, ErrTimeout) {
		return Failure{
			Kind:    KindTimeout,
			Code:    CodeTimeout,
			Message: "timeout of " + strconv.FormatInt(timeout.Milliseconds(), 10) + "ms exceeded",
		}
	}

	if errors.Is(err, ErrMalformedResponse) {
		return Failure{Kind: KindMalformed, Code: CodeMalformed, Message: err.Error()}
	}

	if errors.Is(err, context.Canceled) {
		return Failure{Kind: KindNetwork, Code: CodeCanceled, Message: "canceled"}
	}

	return Failure{Kind: KindNetwork, Code: CodeNetwork, Message: err.Error()}
}

// transportError tags deadline failures with ErrTimeout.
func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

type errorBody struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

// readHTTPError drains a non-2xx response into an [HTTPError]. Code and message
// come from the JSON body when present.
func readHTTPError(resp *http.Response) *HTTPError {
	out := &HTTPError{
		Status:  resp.StatusCode,
		Code:    CodeBadResponse,
		Message: "Request failed with status code " + strconv.Itoa(resp.StatusCode),
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		out.Code = CodeBadRequest
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return out
	}

	var body errorBody
	if json.Unmarshal(data, &body) != nil {
		return out
	}
	if code := rawString(body.Code); code != "" {
		out.Code = code
	}
	switch {
	case strings.TrimSpace(body.Message) != "":
		out.Message = body.Message
	case rawString(body.Detail) != "":
		out.Message = rawString(body.Detail)
	}
	return out
}

// rawString returns a JSON string's value, or a scalar's literal text.
// Objects, arrays and null yield "".
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" || strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return text
}
