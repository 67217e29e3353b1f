package domain

import "strconv"

// Placeholder identity values substituted when catalog resolution fails
// under the placeholder fallback policy.
const (
	PlaceholderArtist   = "Unknown Artist"
	PlaceholderAlbum    = "Unknown"
	PlaceholderImageURL = "https://via.placeholder.com/600"
)

// CatalogMatch is the resolved identity of a track
type CatalogMatch struct {
	TrackID     string `json:"trackId,omitempty"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	ImageURL    string `json:"imageUrl"`
	ReleaseYear *int   `json:"releaseYear"`
	DurationMs  *int   `json:"duration_ms"`
	Explicit    bool   `json:"explicit"`

	// Placeholder marks a sentinel record built without a catalog hit
	Placeholder bool `json:"-"`
}

// NewPlaceholderMatch builds the sentinel identity for an unresolved title
func NewPlaceholderMatch(title string) *CatalogMatch {
	return &CatalogMatch{
		Title:       title,
		Artist:      PlaceholderArtist,
		Album:       PlaceholderAlbum,
		ImageURL:    PlaceholderImageURL,
		Placeholder: true,
	}
}

// FeatureVector holds the nine audio descriptors carried by every record.
// Values keep the native range of their source.
type FeatureVector struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	Loudness         float64 `json:"loudness"`
	Speechiness      float64 `json:"speechiness"`
	Liveness         float64 `json:"liveness"`
}

// FeatureNames lists the feature keys in output order
var FeatureNames = []string{
	"danceability", "energy", "acousticness",
	"instrumentalness", "valence", "tempo",
	"loudness", "speechiness", "liveness",
}

// DefaultFeatureVector returns the vector used when no feature source answers
func DefaultFeatureVector() FeatureVector {
	return FeatureVector{
		Danceability:     0.5,
		Energy:           0.5,
		Acousticness:     0.5,
		Instrumentalness: 0.0,
		Valence:          0.5,
		Tempo:            120,
		Loudness:         -10,
		Speechiness:      0.05,
		Liveness:         0.1,
	}
}

// Set assigns a feature by its key name. Unknown names are ignored.
func (v *FeatureVector) Set(name string, value float64) {
	switch name {
	case "danceability":
		v.Danceability = value
	case "energy":
		v.Energy = value
	case "acousticness":
		v.Acousticness = value
	case "instrumentalness":
		v.Instrumentalness = value
	case "valence":
		v.Valence = value
	case "tempo":
		v.Tempo = value
	case "loudness":
		v.Loudness = value
	case "speechiness":
		v.Speechiness = value
	case "liveness":
		v.Liveness = value
	}
}

// FeatureOrigin records where a feature vector came from
type FeatureOrigin string

const (
	FeatureOriginExact    FeatureOrigin = "exact"
	FeatureOriginFallback FeatureOrigin = "fallback"
	FeatureOriginAPI      FeatureOrigin = "api"
	FeatureOriginDefault  FeatureOrigin = "default"
)

// FeatureResult is the output of a feature resolver
type FeatureResult struct {
	Genre    string
	Features FeatureVector
	Origin   FeatureOrigin
}

// SongRecord is one element of the output catalog
type SongRecord struct {
	Title       string        `json:"title"`
	Artist      string        `json:"artist"`
	Album       string        `json:"album"`
	Genre       string        `json:"genre"`
	DurationMs  *int          `json:"duration_ms"`
	Explicit    bool          `json:"explicit"`
	ReleaseYear *int          `json:"releaseYear"`
	ImageURL    string        `json:"imageUrl"`
	TrackID     string        `json:"trackId,omitempty"`
	FileName    string        `json:"fileName"`
	Features    FeatureVector `json:"features"`
}

// NewSongRecord merges a catalog match and feature result for one input file
func NewSongRecord(fileName string, match *CatalogMatch, features *FeatureResult) SongRecord {
	return SongRecord{
		Title:       match.Title,
		Artist:      match.Artist,
		Album:       match.Album,
		Genre:       features.Genre,
		DurationMs:  match.DurationMs,
		Explicit:    match.Explicit,
		ReleaseYear: match.ReleaseYear,
		ImageURL:    match.ImageURL,
		TrackID:     match.TrackID,
		FileName:    fileName,
		Features:    features.Features,
	}
}

// ParseReleaseYear takes the leading four characters of a release date
// ("2019", "2019-05", "2019-05-03T07:00:00Z") as the year. It returns nil
// when the date is absent or does not start with a year.
func ParseReleaseYear(date string) *int {
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}
