package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movie-discovery-client/internal/config"
	"movie-discovery-client/internal/models"
)

// Query constants sent with every request.
const (
	defaultLanguage = "en-US"
	defaultRegion   = "US"
)

// Resource names used in RemoteFetchError messages.
const (
	ResourceNowPlaying = "now playing movies"
	ResourcePopular    = "popular movies"
	ResourceSearch     = "search results"
	ResourceDetails    = "movie details"
	ResourceTrailer    = "movie trailer"
	ResourceCredits    = "movie credits"
)

// maxErrorBody bounds how much of a failed response ends up in a StatusError.
const maxErrorBody = 512

// Client is the TMDB API client.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a new TMDB API client for the given endpoint. A bearer
// header is attached only when the endpoint carries a token.
func NewClient(endpoint config.CatalogEndpoint, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(endpoint.BaseURL, "/"),
		token:   endpoint.BearerToken,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// NowPlaying fetches the movies currently in theatres.
func (c *Client) NowPlaying(ctx context.Context) (*models.MovieListResponse, error) {
	return c.movieList(ctx, ResourceNowPlaying, "/movie/now_playing", firstPage())
}

// Popular fetches the currently popular movies.
func (c *Client) Popular(ctx context.Context) (*models.MovieListResponse, error) {
	return c.movieList(ctx, ResourcePopular, "/movie/popular", firstPage())
}

// SearchMovies searches movies by title. The query is sent as given, an
// empty one included.
func (c *Client) SearchMovies(ctx context.Context, query string) (*models.MovieListResponse, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("include_adult", "false")
	q.Set("language", defaultLanguage)
	q.Set("page", "1")
	return c.movieList(ctx, ResourceSearch, "/search/movie", q)
}

// MovieByID fetches detailed movie info.
func (c *Client) MovieByID(ctx context.Context, id int) (*models.MovieDetails, error) {
	var result models.MovieDetails
	if err := c.getJSON(ctx, ResourceDetails, moviePath(id, ""), languageOnly(), &result); err != nil {
		return nil, err
	}
	NormalizeDetails(&result)
	return &result, nil
}

// MovieTrailer returns the first YouTube trailer of a movie, or nil when the
// movie has none.
func (c *Client) MovieTrailer(ctx context.Context, id int) (*models.Video, error) {
	var result models.VideoListResponse
	if err := c.getJSON(ctx, ResourceTrailer, moviePath(id, "/videos"), languageOnly(), &result); err != nil {
		return nil, err
	}
	return SelectTrailer(result.Results), nil
}

// MovieCredits fetches cast and crew of a movie.
func (c *Client) MovieCredits(ctx context.Context, id int) (*models.CreditsResponse, error) {
	var result models.CreditsResponse
	if err := c.getJSON(ctx, ResourceCredits, moviePath(id, "/credits"), languageOnly(), &result); err != nil {
		return nil, err
	}
	NormalizeCredits(&result)
	return &result, nil
}

// SelectTrailer picks the first video whose type mentions "trailer" and
// whose site mentions "youtube", ignoring case.
func SelectTrailer(videos []models.Video) *models.Video {
	for i := range videos {
		v := videos[i]
		if strings.Contains(strings.ToLower(v.Type), "trailer") &&
			strings.Contains(strings.ToLower(v.Site), "youtube") {
			return &v
		}
	}
	return nil
}

func (c *Client) movieList(ctx context.Context, resource, path string, q url.Values) (*models.MovieListResponse, error) {
	var result models.MovieListResponse
	if err := c.getJSON(ctx, resource, path, q, &result); err != nil {
		return nil, err
	}
	NormalizeMovies(result.Results)
	return &result, nil
}

// getJSON performs one GET and decodes the body into out. Every failure is
// reported as a RemoteFetchError for resource.
func (c *Client) getJSON(ctx context.Context, resource, path string, q url.Values, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	slog.Debug("fetching TMDB resource", "resource", resource, "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &RemoteFetchError{Resource: resource, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteFetchError{Resource: resource, Err: fmt.Errorf("HTTP request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RemoteFetchError{
			Resource: resource,
			Err:      &StatusError{StatusCode: resp.StatusCode, Body: string(body)},
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteFetchError{Resource: resource, Err: fmt.Errorf("read body: %w", err)}
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return &RemoteFetchError{Resource: resource, Err: ErrEmptyResponse}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteFetchError{Resource: resource, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func moviePath(id int, suffix string) string {
	return "/movie/" + strconv.Itoa(id) + suffix
}

func firstPage() url.Values {
	q := url.Values{}
	q.Set("language", defaultLanguage)
	q.Set("page", "1")
	q.Set("region", defaultRegion)
	return q
}

func languageOnly() url.Values {
	q := url.Values{}
	q.Set("language", defaultLanguage)
	return q
}
