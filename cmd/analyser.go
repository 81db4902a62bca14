/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

// Table is one titled result table. The first row of results is the header.
type Table struct {
	title   string
	results [][]string
	summary string
}

func (a Table) String() string {
	out := new(bytes.Buffer)
	fmt.Fprintf(out, "%s\n", a.title)
	if len(a.results) <= 1 {
		fmt.Fprintf(out, "(none)\n%s\n", a.summary)
		return out.String()
	}
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
func f3(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return f1(*v)
}

// resultTables returns the tables printed after a run and embedded in the
// email.
func resultTables(r *analysis.Result) []Table {
	return []Table{
		viralityTable(r),
		correlationTable(r),
		categoryTable(r),
		surpriseTable(r),
	}
}

func viralityTable(r *analysis.Result) Table {
	byRank := make([]analysis.LinkedRecord, len(r.Linked))
	for _, rec := range r.Linked {
		if rec.ViralityRank >= 1 && rec.ViralityRank <= len(byRank) {
			byRank[rec.ViralityRank-1] = rec
		}
	}

	results := [][]string{{"Rank", "Song", "Score", "Videos", "Weeks", "Popularity", "Match"}}
	for _, rec := range byRank {
		if rec.ViralityRank == 0 {
			continue
		}
		results = append(results, []string{
			strconv.Itoa(rec.ViralityRank),
			rec.NormalizedTitle,
			f1(rec.ViralityScore),
			strconv.FormatInt(rec.Engagement.VideoCount, 10),
			strconv.Itoa(rec.Engagement.WeeksTrending),
			strconv.Itoa(rec.Track.Popularity),
			string(rec.MatchType),
		})
	}
	return Table{
		title:   "Virality ranking",
		results: results,
		summary: fmt.Sprintf("%d linked, %d catalog and %d engagement records unmatched",
			len(r.Linked), len(r.Unmatched.Tracks), len(r.Unmatched.Engagement)),
	}
}

func correlationTable(r *analysis.Result) Table {
	results := [][]string{{"Descriptor", "N", "Spearman", "p", "Pearson", "p", "Significant"}}
	for _, c := range r.Correlations.Correlations {
		significant := ""
		if c.Significant {
			significant = "yes"
		}
		results = append(results, []string{
			c.Descriptor, strconv.Itoa(c.Observations),
			f3(c.RankCorrelation), f3(c.RankPValue),
			f3(c.LinearCorrelation), f3(c.LinearPValue),
			significant,
		})
	}
	summary := ""
	if n := len(r.Correlations.Skipped); n > 0 {
		summary = fmt.Sprintf("%d descriptors skipped", n)
	}
	return Table{title: "Descriptor correlations with virality", results: results, summary: summary}
}

func categoryTable(r *analysis.Result) Table {
	results := [][]string{{"Content type", "Avg score", "Songs", "Videos", "Avg weeks"}}
	for _, c := range r.Categories {
		results = append(results, []string{
			c.Category, f1(c.AvgViralityScore), strconv.Itoa(c.NumSongs),
			strconv.FormatInt(c.TotalVideos, 10), f1(c.AvgWeeksTrending),
		})
	}
	return Table{title: "Content type performance", results: results}
}

func surpriseTable(r *analysis.Result) Table {
	results := [][]string{{"", "Song", "Score", "Expected", "Surprise"}}
	add := func(label string, records []analysis.LinkedRecord) {
		for _, rec := range records {
			results = append(results, []string{
				label, rec.NormalizedTitle, f1(rec.ViralityScore),
				optional(rec.ExpectedVirality), optional(rec.SurpriseFactor),
			})
		}
	}
	add("over", r.Surprise.Overperformers)
	add("under", r.Surprise.Underperformers)
	return Table{title: "Surprises", results: results}
}
