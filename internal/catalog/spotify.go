package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials are the app credentials for the client credentials flow.
// From the environment they are read as SOUNDTRACK_SPOTIFYID and
// SOUNDTRACK_SPOTIFYSECRET.
type Credentials struct {
	SpotifyID     string
	SpotifySecret string
}

// CredentialsFromEnv reads Credentials from the environment.
func CredentialsFromEnv() (Credentials, error) {
	var c Credentials
	if err := envconfig.Process("soundtrack", &c); err != nil {
		return c, fmt.Errorf("reading credentials from environment: %w", err)
	}
	return c, nil
}

// Valid reports whether both fields are set.
func (c Credentials) Valid() bool {
	return c.SpotifyID != "" && c.SpotifySecret != ""
}

// SpotifySource is a Source backed by the Spotify Web API.
type SpotifySource struct {
	client *spotify.Client
}

// NewSpotifySource authenticates with the client credentials flow.
func NewSpotifySource(ctx context.Context, creds Credentials) (*SpotifySource, error) {
	if !creds.Valid() {
		return nil, errors.New("spotify client id and secret are required")
	}
	cfg := &clientcredentials.Config{
		ClientID:     creds.SpotifyID,
		ClientSecret: creds.SpotifySecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting spotify token: %w", err)
	}
	httpClient := spotifyauth.New().Client(ctx, token)
	return &SpotifySource{client: spotify.New(httpClient)}, nil
}

func wrapError(err error) error {
	var se spotify.Error
	if errors.As(err, &se) {
		return &APIError{Status: se.Status, Message: se.Message}
	}
	return err
}

func (s *SpotifySource) SearchAlbums(ctx context.Context, query string, limit int) ([]Album, error) {
	res, err := s.client.Search(ctx, query, spotify.SearchTypeAlbum, spotify.Limit(limit))
	if err != nil {
		return nil, wrapError(err)
	}
	if res.Albums == nil {
		return nil, nil
	}
	albums := make([]Album, 0, len(res.Albums.Albums))
	for _, a := range res.Albums.Albums {
		albums = append(albums, Album{ID: string(a.ID), Name: a.Name, ReleaseDate: a.ReleaseDate})
	}
	return albums, nil
}

func (s *SpotifySource) AlbumTracks(ctx context.Context, albumID string) ([]Track, error) {
	page, err := s.client.GetAlbumTracks(ctx, spotify.ID(albumID), spotify.Limit(50))
	if err != nil {
		return nil, wrapError(err)
	}

	var tracks []Track
	for {
		for _, t := range page.Tracks {
			artists := make([]string, len(t.Artists))
			for i, a := range t.Artists {
				artists[i] = a.Name
			}
			tracks = append(tracks, Track{
				ID:          string(t.ID),
				Name:        t.Name,
				Artists:     artists,
				TrackNumber: int(t.TrackNumber),
				DurationMs:  int(t.Duration),
			})
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			return tracks, nil
		}
		if err != nil {
			return nil, wrapError(err)
		}
	}
}

func (s *SpotifySource) Track(ctx context.Context, id string) (TrackInfo, error) {
	t, err := s.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return TrackInfo{}, wrapError(err)
	}
	return TrackInfo{
		Popularity:  int(t.Popularity),
		ReleaseDate: t.Album.ReleaseDate,
		URL:         t.ExternalURLs["spotify"],
	}, nil
}

func (s *SpotifySource) AudioFeatures(ctx context.Context, ids []string) ([]Features, error) {
	sids := make([]spotify.ID, len(ids))
	for i, id := range ids {
		sids[i] = spotify.ID(id)
	}
	res, err := s.client.GetAudioFeatures(ctx, sids...)
	if err != nil {
		return nil, wrapError(err)
	}

	out := make([]Features, len(res))
	for i, f := range res {
		if f == nil {
			continue
		}
		out[i] = Features{
			"danceability":     float64(f.Danceability),
			"energy":           float64(f.Energy),
			"key":              float64(f.Key),
			"loudness":         float64(f.Loudness),
			"mode":             float64(f.Mode),
			"speechiness":      float64(f.Speechiness),
			"acousticness":     float64(f.Acousticness),
			"instrumentalness": float64(f.Instrumentalness),
			"liveness":         float64(f.Liveness),
			"valence":          float64(f.Valence),
			"tempo":            float64(f.Tempo),
			"time_signature":   float64(f.TimeSignature),
		}
	}
	return out, nil
}
