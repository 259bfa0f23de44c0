package flows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// ConvertDeps captures conversion flow dependencies.
type ConvertDeps struct {
	Client  HTTPDoer
	BaseURL string
}

// ConvertRequest is one conversion query.
type ConvertRequest struct {
	From      string
	To        string
	Amount    decimal.Decimal
	RequestID string
}

// ConvertResponse is the decoded conversion payload. Converted is invalid when
// the service omitted it or sent null.
type ConvertResponse struct {
	Converted decimal.NullDecimal `json:"converted"`
	To        string              `json:"to,omitempty"`
}

// ConvertURL builds GET {base}/currencies/convert/{from}/{to}?amount={amount}.
func ConvertURL(baseURL string, req ConvertRequest) string {
	q := url.Values{}
	q.Set("amount", req.Amount.String())
	return strings.TrimRight(baseURL, "/") +
		"/currencies/convert/" + url.PathEscape(req.From) + "/" + url.PathEscape(req.To) +
		"?" + q.Encode()
}

// RunConvert performs one conversion request.
func RunConvert(ctx context.Context, req ConvertRequest, deps ConvertDeps) (ConvertResponse, error) {
	if deps.Client == nil {
		return ConvertResponse{}, errors.New("convert flow has no http client")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ConvertURL(deps.BaseURL, req), nil)
	if err != nil {
		return ConvertResponse{}, fmt.Errorf("build convert request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set(RequestIDHeader, req.RequestID)
	}

	resp, err := deps.Client.Do(httpReq)
	if err != nil {
		return ConvertResponse{}, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ConvertResponse{}, readHTTPError(resp)
	}

	var out ConvertResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ConvertResponse{}, transportError(ctx, ctxErr)
		}
		return ConvertResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.To == "" {
		out.To = req.To
	}
	return out, nil
}
