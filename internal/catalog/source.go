package catalog

import (
	"context"
	"fmt"
)

// Album is a catalog album as returned by a search.
type Album struct {
	ID          string
	Name        string
	ReleaseDate string
}

// Track is an album track listing entry.
type Track struct {
	ID          string
	Name        string
	Artists     []string
	TrackNumber int
	DurationMs  int
}

// TrackInfo is the part of the full track object the collector keeps.
type TrackInfo struct {
	Popularity  int
	ReleaseDate string
	URL         string
}

// Features are the audio descriptors of one track, keyed by descriptor name.
type Features map[string]float64

// Source is a music catalog. AudioFeatures returns one entry per id, nil
// where the catalog has no analysis for the track.
type Source interface {
	SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error)
	AlbumTracks(ctx context.Context, albumID string) ([]Track, error)
	Track(ctx context.Context, id string) (TrackInfo, error)
	AudioFeatures(ctx context.Context, ids []string) ([]Features, error)
}

// APIError is a catalog error carrying the HTTP status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error %d: %s", e.Status, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}
