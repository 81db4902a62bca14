// Package lastfm adds listening statistics from last.fm to catalog tracks.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	golastfm "github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

const (
	// PlayCountDescriptor is the descriptor name Enrich adds.
	PlayCountDescriptor = "lastfm_playcount"

	// DefaultCallInterval keeps requests under the API's rate limit.
	DefaultCallInterval = time.Second

	defaultAttempts = 3
)

// Stats are the track counters track.getInfo reports.
type Stats struct {
	PlayCount int64
}

// Client looks up track statistics.
type Client interface {
	TrackStats(ctx context.Context, artist, title string) (Stats, error)
}

// APIClient is a Client backed by the last.fm web API.
type APIClient struct {
	api *golastfm.Api
}

// NewAPIClient returns a client authenticated with the given API key.
func NewAPIClient(apiKey, secret string) *APIClient {
	api := golastfm.New(apiKey, secret)
	api.SetUserAgent("soundtrack-virality/1.0")
	return &APIClient{api: api}
}

func (c *APIClient) TrackStats(ctx context.Context, artist, title string) (Stats, error) {
	info, err := c.api.Track.GetInfo(golastfm.P{
		"artist":      artist,
		"track":       title,
		"autocorrect": 1,
	})
	if err != nil {
		return Stats{}, err
	}
	return parseStats(info)
}

func parseStats(info golastfm.TrackGetInfo) (Stats, error) {
	playCount, err := strconv.ParseInt(strings.TrimSpace(info.PlayCount), 10, 64)
	if err != nil {
		return Stats{}, fmt.Errorf("parsing playcount %q: %w", info.PlayCount, err)
	}
	return Stats{PlayCount: playCount}, nil
}

// retryable reports whether a last.fm error is transient: a 5xx, "service
// offline" (11), "temporary error" (16) or "rate limit exceeded" (29).
func retryable(err error) bool {
	var lerr *golastfm.LastfmError
	if !errors.As(err, &lerr) {
		return false
	}
	switch {
	case lerr.Code/100 == 5, lerr.Code == 11, lerr.Code == 16, lerr.Code == 29:
		return true
	}
	return false
}

// Enricher adds last.fm statistics to tracks as descriptors.
type Enricher struct {
	Client  Client
	Limiter *rate.Limiter
	Log     *zap.SugaredLogger

	Attempts   uint
	RetryDelay time.Duration
}

// NewEnricher returns an Enricher pacing calls at interval.
func NewEnricher(client Client, interval time.Duration, log *zap.SugaredLogger) *Enricher {
	return &Enricher{
		Client:     client,
		Limiter:    rate.NewLimiter(rate.Every(interval), 1),
		Log:        log,
		Attempts:   defaultAttempts,
		RetryDelay: time.Second,
	}
}

// Enrich returns a copy of tracks with play counts added, and
// the number of tracks enriched. The lookup uses the first credited artist
// and the normalized title. Tracks that cannot be looked up are logged and
// left unchanged.
func (e *Enricher) Enrich(ctx context.Context, tracks []analysis.TrackMetadataRecord) ([]analysis.TrackMetadataRecord, int, error) {
	out := make([]analysis.TrackMetadataRecord, len(tracks))
	enriched := 0
	for i, t := range tracks {
		out[i] = t
		artist := firstArtist(t.Artist)
		title := analysis.Normalize(t.Title)
		if artist == "" || title == "" {
			e.Log.Warnw("skipping track without artist or title", "track", t.Title)
			continue
		}

		stats, err := e.lookup(ctx, artist, title)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, ctx.Err()
			}
			e.Log.Warnw("skipping track", "track", title, "artist", artist, "error", err)
			continue
		}

		descriptors := make(map[string]float64, len(t.Descriptors)+1)
		for k, v := range t.Descriptors {
			descriptors[k] = v
		}
		descriptors[PlayCountDescriptor] = float64(stats.PlayCount)
		out[i].Descriptors = descriptors
		enriched++
		e.Log.Debugw("enriched track", "track", title, "playcount", stats.PlayCount)
	}
	return out, enriched, nil
}

func (e *Enricher) lookup(ctx context.Context, artist, title string) (Stats, error) {
	attempts := e.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	var stats Stats
	err := retry.Do(
		func() error {
			if err := e.Limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			stats, err = e.Client.TrackStats(ctx, artist, title)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(e.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if retryable(err) {
				e.Log.Warnw("last.fm errored, retrying", "track", title, "error", err)
				return true
			}
			return false
		}),
	)
	return stats, err
}

func firstArtist(artists string) string {
	first, _, _ := strings.Cut(artists, ",")
	return strings.TrimSpace(first)
}
