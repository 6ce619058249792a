package models

// Movie is a catalog movie as returned by list endpoints and as stored in
// the favorites list.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

// MovieListResponse is a page of movies from now-playing, popular or search.
type MovieListResponse struct {
	Page         int     `json:"page"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
	Results      []Movie `json:"results"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProductionCompany is a studio credited on a movie.
type ProductionCompany struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	OriginCountry string `json:"origin_country"`
}

// SpokenLanguage is a language spoken in a movie.
type SpokenLanguage struct {
	ISO6391     string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

// MovieDetails is the single-movie lookup response.
type MovieDetails struct {
	ID                  int                 `json:"id"`
	Title               string              `json:"title"`
	OriginalTitle       string              `json:"original_title"`
	Overview            string              `json:"overview"`
	PosterPath          string              `json:"poster_path"`
	BackdropPath        string              `json:"backdrop_path"`
	ReleaseDate         string              `json:"release_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Popularity          float64             `json:"popularity"`
	OriginalLanguage    string              `json:"original_language"`
	Adult               bool                `json:"adult"`
	Genres              []Genre             `json:"genres"`
	Runtime             int                 `json:"runtime"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Status              string              `json:"status"`
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage"`
	ImdbID              string              `json:"imdb_id"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
}

// Movie projects the details onto the list shape, e.g. for adding a looked-up
// movie to the favorites.
func (d *MovieDetails) Movie() Movie {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}
	return Movie{
		ID:               d.ID,
		Title:            d.Title,
		OriginalTitle:    d.OriginalTitle,
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		ReleaseDate:      d.ReleaseDate,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		GenreIDs:         genreIDs,
		OriginalLanguage: d.OriginalLanguage,
		Adult:            d.Adult,
	}
}

// Video is a clip attached to a movie (trailer, teaser, featurette...).
type Video struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Key         string `json:"key"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at,omitempty"`
}

// VideoListResponse is the /movie/{id}/videos response.
type VideoListResponse struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// CastMember is an actor credited on a movie.
type CastMember struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	Character          string `json:"character"`
	ProfilePath        string `json:"profile_path"`
	Order              int    `json:"order"`
	CreditID           string `json:"credit_id"`
	KnownForDepartment string `json:"known_for_department"`
}

// CrewMember is a non-acting contributor credited on a movie.
type CrewMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Job         string `json:"job"`
	ProfilePath string `json:"profile_path"`
	CreditID    string `json:"credit_id"`
}

// CreditsResponse is the /movie/{id}/credits response.
type CreditsResponse struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

const (
	TMDBImageBaseW500 = "https://image.tmdb.org/t/p/w500"
	TMDBImageBaseW780 = "https://image.tmdb.org/t/p/w780"

	PlaceholderPoster       = "/images/Poster.png"
	PlaceholderDetailPoster = "/images/poster.png"
	PlaceholderBackdrop     = "/images/backdrop.jpg"
	PlaceholderProfile      = "/images/Profile.jpg"
)
