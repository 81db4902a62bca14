package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

const (
	// DefaultCallInterval is the delay between catalog calls.
	DefaultCallInterval = 100 * time.Millisecond

	// featuresBatchSize is the most ids one audio features call accepts.
	featuresBatchSize = 100

	defaultAttempts = 3
)

// AlbumRequest names one album to collect, by id or by search query. When
// both are set the id wins.
type AlbumRequest struct {
	Musical string
	AlbumID string
	Query   string
}

// Collector gathers track metadata and audio descriptors from a Source.
type Collector struct {
	Source  Source
	Limiter *rate.Limiter
	Log     *zap.SugaredLogger

	// Attempts bounds retries of 429 and 5xx responses.
	Attempts   uint
	RetryDelay time.Duration
}

// NewCollector returns a Collector pacing calls at interval.
func NewCollector(source Source, interval time.Duration, log *zap.SugaredLogger) *Collector {
	return &Collector{
		Source:     source,
		Limiter:    rate.NewLimiter(rate.Every(interval), 1),
		Log:        log,
		Attempts:   defaultAttempts,
		RetryDelay: time.Second,
	}
}

// call waits for the limiter and runs fn, retrying retryable API errors.
func (c *Collector) call(ctx context.Context, what string, fn func() error) error {
	attempts := c.Attempts
	if attempts == 0 {
		attempts = defaultAttempts
	}
	return retry.Do(
		func() error {
			if err := c.Limiter.Wait(ctx); err != nil {
				return err
			}
			return fn()
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Retryable() {
				c.Log.Warnw("catalog errored, retrying", "call", what, "status", apiErr.Status)
				return true
			}
			return false
		}),
	)
}

// Collect returns one record per album track. Tracks whose details cannot
// be fetched are logged and skipped. If audio features are forbidden the
// records are returned without descriptors.
func (c *Collector) Collect(ctx context.Context, requests []AlbumRequest) ([]analysis.TrackMetadataRecord, error) {
	var records []analysis.TrackMetadataRecord
	for _, req := range requests {
		album, err := c.resolveAlbum(ctx, req)
		if err != nil {
			return nil, err
		}
		if album.ID == "" {
			c.Log.Warnw("no album found", "query", req.Query, "musical", req.Musical)
			continue
		}
		c.Log.Infow("collecting album", "album", album.Name, "id", album.ID, "musical", req.Musical)

		var tracks []Track
		err = c.call(ctx, "album tracks", func() error {
			var err error
			tracks, err = c.Source.AlbumTracks(ctx, album.ID)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching tracks of album %s: %w", album.ID, err)
		}

		for _, t := range tracks {
			var info TrackInfo
			err := c.call(ctx, "track", func() error {
				var err error
				info, err = c.Source.Track(ctx, t.ID)
				return err
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.Log.Warnw("skipping track", "track", t.Name, "id", t.ID, "error", err)
				continue
			}

			releaseDate := info.ReleaseDate
			if releaseDate == "" {
				releaseDate = album.ReleaseDate
			}
			records = append(records, analysis.TrackMetadataRecord{
				TrackID:         t.ID,
				Title:           t.Name,
				Artist:          strings.Join(t.Artists, ", "),
				Album:           album.Name,
				Musical:         req.Musical,
				ReleaseDate:     releaseDate,
				TrackNumber:     t.TrackNumber,
				DurationMinutes: math.Round(float64(t.DurationMs)/60000*100) / 100,
				Popularity:      info.Popularity,
			})
			c.Log.Debugw("collected track", "track", t.Name, "popularity", info.Popularity)
		}
	}

	if err := c.addFeatures(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Collector) resolveAlbum(ctx context.Context, req AlbumRequest) (Album, error) {
	if req.AlbumID != "" {
		return Album{ID: req.AlbumID, Name: req.Query}, nil
	}
	var albums []Album
	err := c.call(ctx, "search", func() error {
		var err error
		albums, err = c.Source.SearchAlbums(ctx, req.Query, 1)
		return err
	})
	if err != nil {
		return Album{}, fmt.Errorf("searching %q: %w", req.Query, err)
	}
	if len(albums) == 0 {
		return Album{}, nil
	}
	return albums[0], nil
}

// addFeatures fills Descriptors in batches. A 403 stops further requests.
func (c *Collector) addFeatures(ctx context.Context, records []analysis.TrackMetadataRecord) error {
	for start := 0; start < len(records); start += featuresBatchSize {
		end := min(start+featuresBatchSize, len(records))
		ids := make([]string, 0, end-start)
		for _, r := range records[start:end] {
			ids = append(ids, r.TrackID)
		}

		var features []Features
		err := c.call(ctx, "audio features", func() error {
			var err error
			features, err = c.Source.AudioFeatures(ctx, ids)
			return err
		})
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 403 {
			c.Log.Warnw("audio features unavailable, continuing without descriptors", "status", apiErr.Status)
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warnw("skipping audio features batch", "from", start, "to", end, "error", err)
			continue
		}

		for i, f := range features {
			if f == nil || start+i >= end {
				continue
			}
			descriptors := make(map[string]float64, len(f))
			for k, v := range f {
				descriptors[k] = v
			}
			records[start+i].Descriptors = descriptors
		}
	}
	return nil
}

// CheckCredentials performs one search to confirm the source accepts the
// configured credentials.
func CheckCredentials(ctx context.Context, source Source) error {
	if _, err := source.SearchAlbums(ctx, "Wicked", 1); err != nil {
		return fmt.Errorf("catalog search failed: %w", err)
	}
	return nil
}
