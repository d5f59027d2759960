/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Seednode/whosaid/internal/quotes"
)

const maxBody = 1 << 20

// HTTPLoader asks a remote quote API for records with GET <endpoint>?count=N.
type HTTPLoader struct {
	endpoint *url.URL
	client   *http.Client
}

func NewHTTPLoader(endpoint string, timeout time.Duration) (*HTTPLoader, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid source url %q: scheme must be http or https", endpoint)
	}

	return &HTTPLoader{
		endpoint: u,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (l *HTTPLoader) FetchBatch(ctx context.Context, count int) ([]quotes.Record, error) {
	u := *l.endpoint
	q := u.Query()
	q.Set("count", strconv.Itoa(ClampBatch(count)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

		return nil, fmt.Errorf("%w: %s returned %s", ErrNetwork, l.endpoint.Host, resp.Status)
	}

	return decode(io.LimitReader(resp.Body, maxBody))
}
