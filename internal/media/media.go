// Package media defines release categories and the media types derived from them.
package media

import "strings"

// Category is the catalog category a release was filed under.
type Category string

const (
	CategoryFilm      Category = "film"
	CategorySerie     Category = "serie"
	CategoryEmission  Category = "emission"
	CategorySpectacle Category = "spectacle"
	CategoryAnimation Category = "animation"
	CategoryAnime     Category = "anime"
	CategoryGame      Category = "game"
	CategoryMusic     Category = "music"
	CategoryBook      Category = "book"
	CategoryComic     Category = "comic"
	CategoryOther     Category = "other"
)

var categoryAliases = map[string]Category{
	"film":      CategoryFilm,
	"films":     CategoryFilm,
	"movie":     CategoryFilm,
	"movies":    CategoryFilm,
	"serie":     CategorySerie,
	"series":    CategorySerie,
	"tv":        CategorySerie,
	"emission":  CategoryEmission,
	"show":      CategoryEmission,
	"spectacle": CategorySpectacle,
	"animation": CategoryAnimation,
	"anime":     CategoryAnime,
	"game":      CategoryGame,
	"games":     CategoryGame,
	"jeu":       CategoryGame,
	"jeux":      CategoryGame,
	"music":     CategoryMusic,
	"musique":   CategoryMusic,
	"audio":     CategoryMusic,
	"book":      CategoryBook,
	"books":     CategoryBook,
	"livre":     CategoryBook,
	"ebook":     CategoryBook,
	"comic":     CategoryComic,
	"comics":    CategoryComic,
	"bd":        CategoryComic,
}

// ParseCategory maps a free-form category label to a Category.
// Unknown labels map to CategoryOther, which routes like video.
func ParseCategory(s string) Category {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryOther
}

// IsSeriesLike reports whether releases in this category are episodic.
func (c Category) IsSeriesLike() bool {
	return c == CategorySerie || c == CategoryEmission
}

// MediaType is the kind of work a release resolves to.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
	MediaTypeAnime  MediaType = "anime"
	MediaTypeGame   MediaType = "game"
	MediaTypeAudio  MediaType = "audio"
	MediaTypeBook   MediaType = "book"
	MediaTypeComic  MediaType = "comic"
)

// MediaTypeFor derives the media type of a release. Video categories resolve
// to series when the category is episodic or a season number is known.
func MediaTypeFor(c Category, season int) MediaType {
	switch c {
	case CategoryAnime:
		return MediaTypeAnime
	case CategoryGame:
		return MediaTypeGame
	case CategoryMusic:
		return MediaTypeAudio
	case CategoryBook:
		return MediaTypeBook
	case CategoryComic:
		return MediaTypeComic
	}
	if c.IsSeriesLike() || season > 0 {
		return MediaTypeSeries
	}
	return MediaTypeMovie
}
