package handler

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the catalog and favorites API on router.
func RegisterRoutes(router fiber.Router, catalog *CatalogHandler, favorites *FavoritesHandler) {
	router.Get("/health", catalog.Health)

	router.Get("/movies/now-playing", catalog.NowPlaying)
	router.Get("/movies/popular", catalog.Popular)
	router.Get("/movies/search", catalog.Search)
	router.Get("/movies/:id", catalog.MovieDetail)
	router.Get("/movies/:id/trailer", catalog.Trailer)
	router.Get("/movies/:id/credits", catalog.Credits)

	router.Get("/favorites", favorites.List)
	router.Put("/favorites", favorites.Replace)
	router.Post("/favorites", favorites.Add)
	router.Get("/favorites/:id", favorites.Check)
	router.Delete("/favorites/:id", favorites.Remove)
}
