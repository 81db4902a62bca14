package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

// column names a field and the header spellings accepted for it.
type column struct {
	name    string
	aliases []string
}

var (
	colTrackName   = column{"track_name", []string{"title"}}
	colPopularity  = column{"popularity", nil}
	colDuration    = column{"duration_min", []string{"duration_minutes"}}
	colTrackID     = column{"track_id", nil}
	colArtist      = column{"artist", nil}
	colAlbum       = column{"album", nil}
	colMusical     = column{"musical", nil}
	colReleaseDate = column{"release_date", nil}
	colTrackNumber = column{"track_number", nil}

	colSongName      = column{"song_name", nil}
	colVideoCount    = column{"video_count", []string{"tiktok_video_count"}}
	colViewEstimate  = column{"view_estimate_millions", []string{"tiktok_view_estimate_millions"}}
	colWeeksTrending = column{"weeks_trending", nil}
	colTrendCategory = column{"trend_category", []string{"primary_trend_type"}}
	colPeakDate      = column{"peak_trend_date", nil}
	colViralMoment   = column{"viral_moment", nil}
	colCelebrity     = column{"celebrity_boost", nil}
	colNotes         = column{"notes", nil}
)

// table is a parsed CSV file with a header index.
type table struct {
	file   string
	header []string
	index  map[string]int
	rows   [][]string
	used   map[int]bool
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	t := &table{file: path, header: header, index: map[string]int{}, used: map[int]bool{}}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		t.header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	t.rows, err = r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}

// find returns the index of c, trying its aliases in order.
func (t *table) find(c column) (int, bool) {
	for _, name := range append([]string{c.name}, c.aliases...) {
		if i, ok := t.index[name]; ok {
			t.used[i] = true
			return i, true
		}
	}
	return 0, false
}

func (t *table) require(cols ...column) (map[string]int, error) {
	out := make(map[string]int, len(cols))
	for _, c := range cols {
		i, ok := t.find(c)
		if !ok {
			return nil, &SchemaError{File: t.file, Column: c.name}
		}
		out[c.name] = i
	}
	return out, nil
}

func (t *table) optional(cols ...column) map[string]int {
	out := make(map[string]int, len(cols))
	for _, c := range cols {
		if i, ok := t.find(c); ok {
			out[c.name] = i
		}
	}
	return out
}

// rowReader pulls typed values out of one row and keeps the first error.
type rowReader struct {
	t   *table
	row []string
	n   int
	err error
}

func (t *table) reader(n int) *rowReader {
	return &rowReader{t: t, row: t.rows[n], n: n + 2}
}

func (r *rowReader) fail(col string, err error) {
	if r.err == nil {
		r.err = &ParseError{File: r.t.file, Row: r.n, Column: col, Err: err}
	}
}

func (r *rowReader) cell(cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r *rowReader) decimal(cols map[string]int, name string) float64 {
	s := r.cell(cols, name)
	if s == "" {
		r.fail(name, errEmpty)
		return 0
	}
	v, err := parseFinite(s)
	if err != nil {
		r.fail(name, err)
		return 0
	}
	if v < 0 {
		r.fail(name, errNegative)
	}
	return v
}

// parseFinite parses a decimal, rejecting NaN and infinities, which
// strconv accepts.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// integer accepts "12" and "12.0", which spreadsheet exports produce.
func (r *rowReader) integer(cols map[string]int, name string) int64 {
	s := r.cell(cols, name)
	if s == "" {
		r.fail(name, errEmpty)
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := parseFinite(s)
		if ferr != nil || f != float64(int64(f)) {
			r.fail(name, err)
			return 0
		}
		v = int64(f)
	}
	if v < 0 {
		r.fail(name, errNegative)
	}
	return v
}

// ReadCatalog reads track metadata. The named descriptor columns, or
// analysis.DefaultDescriptors when none are named, must hold numbers: a
// malformed cell there is a *ParseError. Other columns besides the identity
// fields become descriptors when all their non-empty cells are numeric. An
// empty cell leaves the descriptor missing for that track.
func ReadCatalog(path string, descriptors ...string) ([]analysis.TrackMetadataRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	req, err := t.require(colTrackName, colPopularity, colDuration)
	if err != nil {
		return nil, err
	}
	opt := t.optional(colTrackID, colArtist, colAlbum, colMusical, colReleaseDate, colTrackNumber)
	if len(descriptors) == 0 {
		descriptors = analysis.DefaultDescriptors
	}
	declared := t.declaredColumns(descriptors)
	columns := t.numericColumns()
	for name, i := range declared {
		columns[name] = i
	}

	tracks := make([]analysis.TrackMetadataRecord, 0, len(t.rows))
	for n := range t.rows {
		r := t.reader(n)
		track := analysis.TrackMetadataRecord{
			Title:           r.cell(req, colTrackName.name),
			DurationMinutes: r.decimal(req, colDuration.name),
			TrackID:         r.cell(opt, colTrackID.name),
			Artist:          r.cell(opt, colArtist.name),
			Album:           r.cell(opt, colAlbum.name),
			Musical:         r.cell(opt, colMusical.name),
			ReleaseDate:     r.cell(opt, colReleaseDate.name),
		}
		if track.Title == "" {
			r.fail(colTrackName.name, errEmpty)
		}

		popularity := r.integer(req, colPopularity.name)
		if popularity > 100 {
			r.fail(colPopularity.name, errPopularity)
		}
		track.Popularity = int(popularity)

		if s := r.cell(opt, colTrackNumber.name); s != "" {
			track.TrackNumber = int(r.integer(opt, colTrackNumber.name))
		}

		for name, i := range columns {
			if i >= len(r.row) {
				continue
			}
			s := strings.TrimSpace(r.row[i])
			if s == "" {
				continue
			}
			v, err := parseFinite(s)
			if err != nil {
				r.fail(name, err)
				continue
			}
			if track.Descriptors == nil {
				track.Descriptors = make(map[string]float64)
			}
			track.Descriptors[name] = v
		}

		if r.err != nil {
			return nil, r.err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// declaredColumns returns the unused columns among names present in the
// header.
func (t *table) declaredColumns(names []string) map[string]int {
	out := make(map[string]int)
	for _, name := range names {
		i, ok := t.index[strings.ToLower(name)]
		if !ok || t.used[i] {
			continue
		}
		out[strings.ToLower(name)] = i
	}
	return out
}

// numericColumns returns unused columns whose non-empty cells all parse as
// finite numbers and that have at least one value.
func (t *table) numericColumns() map[string]int {
	out := make(map[string]int)
	for i, name := range t.header {
		if t.used[i] || name == "" || t.index[name] != i {
			continue
		}
		numeric, seen := true, false
		for _, row := range t.rows {
			if i >= len(row) {
				continue
			}
			s := strings.TrimSpace(row[i])
			if s == "" {
				continue
			}
			seen = true
			if _, err := parseFinite(s); err != nil {
				numeric = false
				break
			}
		}
		if numeric && seen {
			out[name] = i
		}
	}
	return out
}

// ReadEngagement reads short-video engagement records.
func ReadEngagement(path string) ([]analysis.EngagementRecord, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}

	req, err := t.require(colSongName, colVideoCount, colViewEstimate, colWeeksTrending, colTrendCategory)
	if err != nil {
		return nil, err
	}
	opt := t.optional(colPeakDate, colViralMoment, colCelebrity, colNotes)

	records := make([]analysis.EngagementRecord, 0, len(t.rows))
	for n := range t.rows {
		r := t.reader(n)
		rec := analysis.EngagementRecord{
			SongName:             r.cell(req, colSongName.name),
			VideoCount:           r.integer(req, colVideoCount.name),
			ViewEstimateMillions: r.decimal(req, colViewEstimate.name),
			WeeksTrending:        int(r.integer(req, colWeeksTrending.name)),
			TrendCategory:        r.cell(req, colTrendCategory.name),
			PeakTrendDate:        r.cell(opt, colPeakDate.name),
			ViralMoment:          r.cell(opt, colViralMoment.name),
			CelebrityBoost:       r.cell(opt, colCelebrity.name),
			Notes:                r.cell(opt, colNotes.name),
		}
		if r.err != nil {
			return nil, r.err
		}
		records = append(records, rec)
	}
	return records, nil
}
