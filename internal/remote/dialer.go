package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nkiryanov/ministore/internal/apperrors"
)

type lookupResponse struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// HTTPDialer finds the service by name on the server and connects to the endpoint it is served on
// Lookups and all dialed connections reuse one resty client, so reconnects don't leave sockets behind
type HTTPDialer struct {
	serverURL string
	name      string
	http      *resty.Client
}

func NewHTTPDialer(serverURL string, name string, timeout time.Duration) *HTTPDialer {
	return &HTTPDialer{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		name:      name,
		http:      newRestyClient(timeout),
	}
}

func (d *HTTPDialer) Dial(ctx context.Context) (Service, error) {
	var res lookupResponse

	resp, err := d.http.R().
		SetContext(ctx).
		SetPathParam("name", d.name).
		SetResult(&res).
		Get(d.serverURL + "/api/lookup/{name}")
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %q: %w", apperrors.ErrCommunication, d.name, err)
	}
	if resp.IsError() || res.Endpoint == "" {
		return nil, fmt.Errorf("%w: lookup %q: status %d", apperrors.ErrCommunication, d.name, resp.StatusCode())
	}

	return newClient(d.http, d.serverURL+res.Endpoint), nil
}
