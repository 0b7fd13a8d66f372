package poster

import (
	"net/http"
	"unicode/utf8"
)

// FetchResult is the uniform outcome of a poster fetch.
type FetchResult struct {
	OK         bool  `json:"ok"`
	StatusCode int   `json:"statusCode"`
	Body       Body  `json:"body"`
	SourceID   int64 `json:"sourceId,omitempty"`
}

// Body is the payload returned to callers of the synchronous fetch.
type Body struct {
	OK          bool    `json:"ok"`
	Cached      bool    `json:"cached,omitempty"`
	Reused      bool    `json:"reused,omitempty"`
	Provider    string  `json:"provider,omitempty"`
	ProviderID  string  `json:"providerId,omitempty"`
	File        string  `json:"file,omitempty"`
	Lang        string  `json:"lang,omitempty"`
	Size        string  `json:"size,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	MatchSource string  `json:"matchSource,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func success(sourceID int64, body Body) FetchResult {
	body.OK = true
	return FetchResult{OK: true, StatusCode: http.StatusOK, Body: body, SourceID: sourceID}
}

func failure(sourceID int64, status int, provider, providerID, reason string) FetchResult {
	return FetchResult{
		StatusCode: status,
		SourceID:   sourceID,
		Body: Body{
			Provider:   provider,
			ProviderID: providerID,
			Error:      reason,
		},
	}
}

func notFound(sourceID int64, provider, reason string) FetchResult {
	return failure(sourceID, http.StatusNotFound, provider, "", reason)
}

func badGateway(sourceID int64, provider, providerID, reason string) FetchResult {
	return failure(sourceID, http.StatusBadGateway, provider, providerID, reason)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
