package ports

import "net/http"

// HTTPClient is the transport used by the backend adapter. *http.Client
// satisfies it; tests substitute failing fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
