package tmdb

import (
	"strings"

	"movie-discovery-client/internal/models"
)

// resolvePath turns a relative TMDB image path into an absolute CDN URL, or
// into placeholder when the path is empty. Values that are already absolute
// or already a placeholder are returned unchanged, so running the rewrite
// twice is harmless.
func resolvePath(path, base, placeholder string) string {
	if path == "" {
		return placeholder
	}
	if isResolved(path) {
		return path
	}
	return base + path
}

func isResolved(path string) bool {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return true
	}
	switch path {
	case models.PlaceholderPoster, models.PlaceholderDetailPoster,
		models.PlaceholderBackdrop, models.PlaceholderProfile:
		return true
	}
	return false
}

// PosterURL resolves a poster path of a list element.
func PosterURL(path string) string {
	return resolvePath(path, models.TMDBImageBaseW500, models.PlaceholderPoster)
}

// DetailPosterURL resolves the poster path of a single-movie lookup. The
// placeholder differs from the list one only in case.
func DetailPosterURL(path string) string {
	return resolvePath(path, models.TMDBImageBaseW500, models.PlaceholderDetailPoster)
}

// BackdropURL resolves a backdrop path.
func BackdropURL(path string) string {
	return resolvePath(path, models.TMDBImageBaseW780, models.PlaceholderBackdrop)
}

// ProfileURL resolves a cast or crew profile path.
func ProfileURL(path string) string {
	return resolvePath(path, models.TMDBImageBaseW500, models.PlaceholderProfile)
}

// NormalizeMovies rewrites the image paths of every movie in place.
func NormalizeMovies(movies []models.Movie) {
	for i := range movies {
		movies[i].PosterPath = PosterURL(movies[i].PosterPath)
		movies[i].BackdropPath = BackdropURL(movies[i].BackdropPath)
	}
}

// NormalizeDetails rewrites the image paths of a single movie in place.
func NormalizeDetails(d *models.MovieDetails) {
	d.PosterPath = DetailPosterURL(d.PosterPath)
	d.BackdropPath = BackdropURL(d.BackdropPath)
}

// NormalizeCredits rewrites every cast and crew profile path in place.
func NormalizeCredits(c *models.CreditsResponse) {
	for i := range c.Cast {
		c.Cast[i].ProfilePath = ProfileURL(c.Cast[i].ProfilePath)
	}
	for i := range c.Crew {
		c.Crew[i].ProfilePath = ProfileURL(c.Crew[i].ProfilePath)
	}
}
