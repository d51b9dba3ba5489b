package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Source is a datasource.Source reading the body of a GET request.
type Source struct {
	client  *Client
	url     string
	headers http.Header
}

// NewSource returns a Source fetching rawURL through client.
func NewSource(client *Client, rawURL string, headers http.Header) *Source {
	return &Source{client: client, url: rawURL, headers: headers}
}

// String returns the URL with any userinfo and query string removed.
func (s *Source) String() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return "http:<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Open performs the request. Any status outside 2xx is returned as a
// *StatusError and the body is discarded.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, s.url, s.headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %w", s, &StatusError{URL: s.String(), Code: resp.StatusCode})
	}
	return resp.Body, nil
}
