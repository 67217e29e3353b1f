package spotify

import (
	"github.com/songlens/enricher/internal/domain"
	"github.com/tidwall/gjson"
)

// JSON paths within a search result track object
const (
	pathTrackID     = "id"
	pathTrackName   = "name"
	pathArtistName  = "artists.0.name"
	pathAlbumName   = "album.name"
	pathAlbumImage  = "album.images.0.url"
	pathReleaseDate = "album.release_date"
	pathDurationMs  = "duration_ms"
	pathExplicit    = "explicit"
)

// MapTrack converts a search result track object to a CatalogMatch
func MapTrack(item gjson.Result) *domain.CatalogMatch {
	match := &domain.CatalogMatch{
		TrackID:     item.Get(pathTrackID).String(),
		Title:       item.Get(pathTrackName).String(),
		Artist:      item.Get(pathArtistName).String(),
		Album:       item.Get(pathAlbumName).String(),
		ImageURL:    item.Get(pathAlbumImage).String(),
		ReleaseYear: domain.ParseReleaseYear(item.Get(pathReleaseDate).String()),
		Explicit:    item.Get(pathExplicit).Bool(),
	}

	if duration := item.Get(pathDurationMs); duration.Type == gjson.Number {
		ms := int(duration.Int())
		match.DurationMs = &ms
	}

	return match
}

// MapFeatures extracts the nine descriptors from an audio-features object.
// A missing or non-numeric field keeps its default value.
func MapFeatures(obj gjson.Result) domain.FeatureVector {
	vector := domain.DefaultFeatureVector()

	for _, name := range domain.FeatureNames {
		if value := obj.Get(name); value.Type == gjson.Number {
			vector.Set(name, value.Float())
		}
	}

	return vector
}
