// Package engagement scaffolds the manually curated short-video engagement
// dataset: a blank template derived from the catalog, an example dataset and
// a reference table of content types.
package engagement

import (
	"github.com/ademuri/soundtrack-virality/internal/analysis"
)

// Template returns one zero-count row per catalog track, keyed by the
// normalized title so a filled-in template links without edits. Duplicate
// titles produce one row.
func Template(tracks []analysis.TrackMetadataRecord) []analysis.EngagementRecord {
	seen := map[string]bool{}
	var rows []analysis.EngagementRecord
	for _, t := range tracks {
		name := analysis.Normalize(t.Title)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, analysis.EngagementRecord{SongName: name})
	}
	return rows
}

// ContentType describes one trend format.
type ContentType struct {
	Name            string
	Description     string
	TypicalDuration string
}

// ContentTypes returns the reference table of trend formats.
func ContentTypes() []ContentType {
	return []ContentType{
		{"Dance Challenge", "Choreographed dance routines", "30-60 seconds"},
		{"Lip Sync / Vocal Showcase", "Singing along or showcasing vocals", "30-90 seconds"},
		{"POV / Storytelling", "Point of view storytelling videos", "15-60 seconds"},
		{"Duets", "Duet format with split screen", "15-30 seconds"},
		{"Comedy / Parody", "Funny takes or parodies", "15-45 seconds"},
		{"GRWM / Transition", "Get ready with me or outfit transitions", "30-90 seconds"},
		{"Emotional / Sad Content", "Emotional vulnerability or sad content", "30-60 seconds"},
		{"Thirst Edits", "Attractive person edits", "15-30 seconds"},
		{"Friendship Posts", "Celebrating friendships", "30-60 seconds"},
		{"Couple Content", "Romantic couple content", "30-60 seconds"},
		{"Background Music", "Used as background for other content", "Full song or clip"},
	}
}

// ContentTypeRows returns ContentTypes as a CSV header and rows.
func ContentTypeRows() ([]string, [][]string) {
	types := ContentTypes()
	rows := make([][]string, len(types))
	for i, c := range types {
		rows[i] = []string{c.Name, c.Description, c.TypicalDuration}
	}
	return []string{"content_type", "description", "typical_duration"}, rows
}

// Instructions explains how to fill in the template.
const Instructions = `ENGAGEMENT DATA COLLECTION INSTRUCTIONS

For each song, search the short-video platform and record:

1. video_count: number of videos using the sound.
   Open the sound page and copy the video count.

2. view_estimate_millions: rough total views, in millions.
   Estimate from the view counts of the top videos.

3. peak_trend_date: when most videos were posted (YYYY-MM-DD).

4. weeks_trending: number of weeks with significant activity.

5. trend_category: the dominant format, for example
   Dance Challenge, Lip Sync / Vocal Showcase, POV / Storytelling, Duets,
   Comedy / Parody, GRWM / Transition or Other.
   See content_type_reference.csv for the full list.

6. viral_moment: why it took off (release hype, a challenge, a meme format).

7. celebrity_boost: notable creators who used the sound.

8. notes: anything else.

Keep song_name as written in the template so rows link to the catalog.
Save the completed file as the engagement input of the analyze command.
`
