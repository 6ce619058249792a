package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-client/internal/models"
	"movie-discovery-client/internal/tmdb"
)

// Catalog is the read side of the remote movie catalog.
type Catalog interface {
	NowPlaying(ctx context.Context) (*models.MovieListResponse, error)
	Popular(ctx context.Context) (*models.MovieListResponse, error)
	SearchMovies(ctx context.Context, query string) (*models.MovieListResponse, error)
	MovieByID(ctx context.Context, id int) (*models.MovieDetails, error)
	MovieTrailer(ctx context.Context, id int) (*models.Video, error)
	MovieCredits(ctx context.Context, id int) (*models.CreditsResponse, error)
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CatalogHandler handles HTTP requests for catalog data.
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *CatalogHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "movie-discovery-client",
	})
}

// NowPlaying returns the movies currently in theatres.
// @Summary Now playing movies
// @Tags movies
// @Produce json
// @Success 200 {object} models.MovieListResponse
// @Failure 502 {object} ErrorResponse
// @Router /movies/now-playing [get]
func (h *CatalogHandler) NowPlaying(c fiber.Ctx) error {
	res, err := h.catalog.NowPlaying(c.Context())
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(res)
}

// Popular returns the currently popular movies.
// @Summary Popular movies
// @Tags movies
// @Produce json
// @Success 200 {object} models.MovieListResponse
// @Failure 502 {object} ErrorResponse
// @Router /movies/popular [get]
func (h *CatalogHandler) Popular(c fiber.Ctx) error {
	res, err := h.catalog.Popular(c.Context())
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(res)
}

// Search searches movies by title. An empty query is forwarded as is.
// @Summary Search movies
// @Tags movies
// @Produce json
// @Param query query string false "Search text"
// @Success 200 {object} models.MovieListResponse
// @Failure 502 {object} ErrorResponse
// @Router /movies/search [get]
func (h *CatalogHandler) Search(c fiber.Ctx) error {
	res, err := h.catalog.SearchMovies(c.Context(), c.Query("query"))
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(res)
}

// MovieDetail returns detailed info for a single movie.
// @Summary Get movie detail
// @Tags movies
// @Produce json
// @Param id path int true "TMDB movie ID"
// @Success 200 {object} models.MovieDetails
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /movies/{id} [get]
func (h *CatalogHandler) MovieDetail(c fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	res, err := h.catalog.MovieByID(c.Context(), id)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(res)
}

// Trailer returns the YouTube trailer of a movie, 404 when there is none.
func (h *CatalogHandler) Trailer(c fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	video, err := h.catalog.MovieTrailer(c.Context(), id)
	if err != nil {
		return fetchFailed(c, err)
	}
	if video == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no trailer available"})
	}
	return c.JSON(video)
}

// Credits returns cast and crew of a movie.
func (h *CatalogHandler) Credits(c fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	res, err := h.catalog.MovieCredits(c.Context(), id)
	if err != nil {
		return fetchFailed(c, err)
	}
	return c.JSON(res)
}

func pathID(c fiber.Ctx) (int, bool) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "invalid movie ID",
	})
}

func fetchFailed(c fiber.Ctx, err error) error {
	var fetchErr *tmdb.RemoteFetchError
	if errors.As(err, &fetchErr) {
		slog.Error("catalog fetch failed", "resource", fetchErr.Resource, "error", fetchErr.Err)
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "failed to fetch " + fetchErr.Resource,
		})
	}
	slog.Error("catalog request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "internal error",
	})
}
