package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"qrmenu/internal/domain"
)

// Candidate relative paths for a restaurant's menu.json, tried in order.
// The filename is fixed; only the directory layout varies by deployment.
func menuCandidates(restaurantID string) []string {
	return []string{
		filepath.Join("restaurants", restaurantID, "menu.json"),
		filepath.Join(restaurantID, "menu.json"),
		filepath.Join("menus", restaurantID, "menu.json"),
	}
}

// StaticFileSource reads menu.json from a local static directory. The first
// candidate that both reads and parses wins; later candidates are not
// touched after a success.
type StaticFileSource struct {
	Dir string
}

func (s *StaticFileSource) Name() string { return "static-file" }

func (s *StaticFileSource) Fetch(_ context.Context, restaurantID string) (*domain.MenuDocument, error) {
	var lastErr error
	for _, candidate := range menuCandidates(restaurantID) {
		data, err := os.ReadFile(filepath.Join(s.Dir, candidate))
		if err != nil {
			continue
		}
		doc, err := domain.ParseStaticMenu(restaurantID, data)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", candidate, err)
			continue
		}
		return doc, nil
	}
	return nil, lastErr
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StaticHTTPSource fetches menu.json candidates from a remote static base
// URL. Responses are parsed as JSON whatever Content-Type the server
// reports; static hosts frequently serve JSON as text/plain.
type StaticHTTPSource struct {
	BaseURL string
	Client  HTTPClient
}

func NewStaticHTTPSource(baseURL string) *StaticHTTPSource {
	return &StaticHTTPSource{
		BaseURL: baseURL,
		Client:  &http.Client{},
	}
}

func (s *StaticHTTPSource) Name() string { return "static-http" }

func (s *StaticHTTPSource) Fetch(ctx context.Context, restaurantID string) (*domain.MenuDocument, error) {
	base := strings.TrimRight(s.BaseURL, "/")
	var lastErr error
	for _, candidate := range menuCandidates(restaurantID) {
		url := base + "/" + filepath.ToSlash(candidate)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			lastErr = err
			continue
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = fmt.Errorf("%s: status %d", url, resp.StatusCode)
			continue
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		doc, err := domain.ParseStaticMenu(restaurantID, data)
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}
	return nil, lastErr
}
