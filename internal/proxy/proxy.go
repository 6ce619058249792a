package proxy

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// forwardedHeaders are copied from the TMDB response to the caller.
var forwardedHeaders = []string{"Content-Type", "Cache-Control", "ETag", "Last-Modified"}

// CatalogProxy is the same-origin path a credential-less catalog client goes
// through. It forwards GET requests to the catalog API and attaches the
// server-side bearer credential, so the token never leaves this process.
type CatalogProxy struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewCatalogProxy creates a proxy to baseURL authenticated with token.
func NewCatalogProxy(baseURL, token string, timeout time.Duration) *CatalogProxy {
	return &CatalogProxy{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// Mount registers the proxy for every method below router. Anything other
// than GET is answered with 405 instead of falling through to a 404.
func (p *CatalogProxy) Mount(router fiber.Router) {
	router.All("/*", p.Handler())
}

// Handler returns a fiber handler for a wildcard route. The wildcard part of
// the path is appended to the catalog base URL.
func (p *CatalogProxy) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
				"error": "only GET is proxied",
			})
		}

		targetURL := p.baseURL + "/" + c.Params("*")
		if q := string(c.Request().URI().QueryString()); q != "" {
			targetURL += "?" + q
		}

		slog.Debug("proxying catalog request", "from", c.Path(), "to", targetURL)

		req, err := http.NewRequestWithContext(c.Context(), http.MethodGet, targetURL, nil)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to create proxy request",
			})
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.token)
		req.Header.Set("X-Forwarded-For", c.IP())

		resp, err := p.client.Do(req)
		if err != nil {
			slog.Error("catalog proxy request failed", "url", targetURL, "error", err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": fmt.Sprintf("catalog unavailable: %s", p.baseURL),
			})
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to read catalog response",
			})
		}

		for _, key := range forwardedHeaders {
			if v := resp.Header.Get(key); v != "" {
				c.Set(key, v)
			}
		}

		return c.Status(resp.StatusCode).Send(body)
	}
}
