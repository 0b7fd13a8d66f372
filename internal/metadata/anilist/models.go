package anilist

// media is the subset of an AniList Media object the poster lookup needs.
type media struct {
	ID           int      `graphql:"id"`
	Title        title    `graphql:"title"`
	Description  *string  `graphql:"description(asHtml: false)"`
	Genres       []string `graphql:"genres"`
	AverageScore *int     `graphql:"averageScore"`
	SeasonYear   *int     `graphql:"seasonYear"`
	StartDate    struct {
		Year *int `graphql:"year"`
	} `graphql:"startDate"`
	CoverImage coverImage `graphql:"coverImage"`
}

type title struct {
	Romaji  *string `graphql:"romaji"`
	English *string `graphql:"english"`
	Native  *string `graphql:"native"`
}

type coverImage struct {
	ExtraLarge *string `graphql:"extraLarge"`
	Large      *string `graphql:"large"`
}

type searchQuery struct {
	Page struct {
		Media []media `graphql:"media(search: $search, type: ANIME, sort: SEARCH_MATCH)"`
	} `graphql:"Page(perPage: $perPage)"`
}

type searchByYearQuery struct {
	Page struct {
		Media []media `graphql:"media(search: $search, seasonYear: $seasonYear, type: ANIME, sort: SEARCH_MATCH)"`
	} `graphql:"Page(perPage: $perPage)"`
}

// MediaResult is a normalized AniList anime entry.
type MediaResult struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Titles   []string `json:"titles,omitempty"`
	Year     int      `json:"year,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
	Genres   []string `json:"genres,omitempty"`
	Rating   float64  `json:"rating,omitempty"` // 0-10
	CoverURL string   `json:"coverUrl,omitempty"`
}
