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
)

// TokenDeps captures token exchange flow dependencies.
type TokenDeps struct {
	Client   HTTPDoer
	TokenURL string
}

// TokenRequest holds the form fields sent to the token endpoint.
type TokenRequest struct {
	ClientID     string
	ClientSecret string
	GrantType    string
	Scopes       string
	Username     string
	Password     string
}

// Form encodes the request as the token endpoint expects it. Every field is
// always present, blank or not.
func (r TokenRequest) Form() url.Values {
	return url.Values{
		"client_id":     {r.ClientID},
		"client_secret": {r.ClientSecret},
		"grant_type":    {r.GrantType},
		"scopes":        {r.Scopes},
		"username":      {r.Username},
		"password":      {r.Password},
	}
}

// TokenResponse is the decoded token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// RunTokenExchange posts credentials and returns the issued access token.
func RunTokenExchange(ctx context.Context, req TokenRequest, deps TokenDeps) (TokenResponse, error) {
	if deps.Client == nil {
		return TokenResponse{}, errors.New("token flow has no http client")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, deps.TokenURL, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("build token request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := deps.Client.Do(httpReq)
	if err != nil {
		return TokenResponse{}, transportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TokenResponse{}, readHTTPError(resp)
	}

	var out TokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return TokenResponse{}, transportError(ctx, ctxErr)
		}
		return TokenResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return TokenResponse{}, fmt.Errorf("%w: missing access_token", ErrMalformedResponse)
	}
	return out, nil
}
