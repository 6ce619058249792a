package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"movie-discovery-client/internal/models"
)

// Favorites is the persisted favorites list.
type Favorites interface {
	List(ctx context.Context) ([]models.Movie, error)
	Save(ctx context.Context, list []models.Movie) error
	Add(ctx context.Context, movie models.Movie) error
	Remove(ctx context.Context, id int) error
	IsFavorite(ctx context.Context, id int) (bool, error)
}

// Favorites outcomes. Favorites are best-effort, so a failed persistence
// call is still answered with 200 and StatusFailed.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Result reports whether a favorites operation reached the backing store.
type Result struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// FavoritesResponse is the list response.
type FavoritesResponse struct {
	Result
	Favorites []models.Movie `json:"favorites"`
}

// MembershipResponse answers whether one movie is a favorite.
type MembershipResponse struct {
	Result
	ID       int  `json:"id"`
	Favorite bool `json:"favorite"`
}

func resultOf(err error) Result {
	if err != nil {
		return Result{Status: StatusFailed, Reason: err.Error()}
	}
	return Result{Status: StatusOK}
}

// FavoritesHandler handles HTTP requests for the favorites list.
type FavoritesHandler struct {
	store Favorites
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(store Favorites) *FavoritesHandler {
	return &FavoritesHandler{store: store}
}

// List returns all favorites.
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {object} FavoritesResponse
// @Router /favorites [get]
func (h *FavoritesHandler) List(c fiber.Ctx) error {
	list, err := h.store.List(c.Context())
	return c.JSON(FavoritesResponse{Result: resultOf(err), Favorites: list})
}

// Replace overwrites the whole list with the request body.
// @Summary Save favorites
// @Tags favorites
// @Accept json
// @Produce json
// @Param favorites body []models.Movie true "Complete list"
// @Success 200 {object} Result
// @Failure 400 {object} ErrorResponse
// @Router /favorites [put]
func (h *FavoritesHandler) Replace(c fiber.Ctx) error {
	var list []models.Movie
	if err := c.Bind().JSON(&list); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	return c.JSON(resultOf(h.store.Save(c.Context(), list)))
}

// Add adds the movie in the request body unless it is already a favorite.
// @Summary Add favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Param movie body models.Movie true "Movie"
// @Success 200 {object} Result
// @Failure 400 {object} ErrorResponse
// @Router /favorites [post]
func (h *FavoritesHandler) Add(c fiber.Ctx) error {
	var movie models.Movie
	if err := c.Bind().JSON(&movie); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if movie.ID <= 0 {
		return invalidID(c)
	}
	return c.JSON(resultOf(h.store.Add(c.Context(), movie)))
}

// Remove drops a movie from the favorites.
func (h *FavoritesHandler) Remove(c fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	return c.JSON(resultOf(h.store.Remove(c.Context(), id)))
}

// Check reports whether a movie is a favorite.
func (h *FavoritesHandler) Check(c fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return invalidID(c)
	}
	fav, err := h.store.IsFavorite(c.Context(), id)
	return c.JSON(MembershipResponse{Result: resultOf(err), ID: id, Favorite: fav})
}
