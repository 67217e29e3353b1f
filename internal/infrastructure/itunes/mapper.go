package itunes

import (
	"strconv"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	pathResultCount = "resultCount"
	pathFirstResult = "results.0"

	pathTrackID           = "trackId"
	pathTrackName         = "trackName"
	pathArtistName        = "artistName"
	pathCollectionName    = "collectionName"
	pathArtworkURL        = "artworkUrl100"
	pathReleaseDate       = "releaseDate"
	pathTrackTimeMillis   = "trackTimeMillis"
	pathTrackExplicitness = "trackExplicitness"
)

// MapResult converts a search result to a CatalogMatch. Absent fields take
// the query title and the placeholder artist and album.
func MapResult(result gjson.Result, query string) *domain.CatalogMatch {
	match := &domain.CatalogMatch{
		Title:       stringOr(result.Get(pathTrackName), query),
		Artist:      stringOr(result.Get(pathArtistName), domain.PlaceholderArtist),
		Album:       stringOr(result.Get(pathCollectionName), domain.PlaceholderAlbum),
		ImageURL:    UpscaleArtwork(result.Get(pathArtworkURL).String()),
		ReleaseYear: domain.ParseReleaseYear(result.Get(pathReleaseDate).String()),
		Explicit:    result.Get(pathTrackExplicitness).String() == "explicit",
	}

	if id := result.Get(pathTrackID); id.Type == gjson.Number {
		match.TrackID = strconv.FormatInt(id.Int(), 10)
	}

	if millis := result.Get(pathTrackTimeMillis); millis.Type == gjson.Number {
		ms := int(millis.Int())
		match.DurationMs = &ms
	}

	return match
}

// UpscaleArtwork swaps the 100x100 thumbnail size for the 600x600 rendition
func UpscaleArtwork(artworkURL string) string {
	return strings.ReplaceAll(artworkURL, "100x100", "600x600")
}

func stringOr(value gjson.Result, fallback string) string {
	if !value.Exists() {
		return fallback
	}
	return value.String()
}
