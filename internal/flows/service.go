package flows

import "context"

// Service is the centralized flow runner built once by the root client.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Convert.Client != nil && s.deps.Token.Client != nil
}

// Convert runs [RunConvert] with the wired conversion deps.
func (s Service) Convert(ctx context.Context, req ConvertRequest) (ConvertResponse, error) {
	return RunConvert(ctx, req, s.deps.Convert)
}

// ExchangeToken runs [RunTokenExchange] with the wired token deps.
func (s Service) ExchangeToken(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	return RunTokenExchange(ctx, req, s.deps.Token)
}

// Logout runs [RunLogout]; it never touches the network.
func (s Service) Logout(ctx context.Context) error {
	return RunLogout(ctx, s.deps.Logout)
}
