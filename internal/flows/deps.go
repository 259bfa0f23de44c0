package flows

import "net/http"

// HTTPDoer is the subset of *http.Client used by flows.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Deps groups flow dependency sets. The root client builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Convert ConvertDeps
	Token   TokenDeps
	Logout  LogoutDeps
}
