package engagement

import "github.com/ademuri/soundtrack-virality/internal/analysis"

// Example returns an illustrative dataset for the Wicked (2024) soundtrack.
// The figures are estimates for demonstrating the pipeline, not
// measurements.
func Example() []analysis.EngagementRecord {
	return []analysis.EngagementRecord{
		{
			SongName: "Defying Gravity", VideoCount: 287000, ViewEstimateMillions: 850, PeakTrendDate: "2024-11-30", WeeksTrending: 16,
			TrendCategory:  "Vocal Showcase / Lip Sync",
			ViralMoment:    "THE Wicked song - vocal showcases + movie hype",
			CelebrityBoost: "Idina Menzel, Cynthia Erivo, countless Broadway performers",
			Notes:          "Became THE defining Wicked sound",
		},
		{
			SongName: "Popular", VideoCount: 195000, ViewEstimateMillions: 520, PeakTrendDate: "2024-12-05", WeeksTrending: 14,
			TrendCategory:  "Dance / POV",
			ViralMoment:    "Ariana Grande effect + catchy + relatable",
			CelebrityBoost: "Ariana Grande (HUGE), dance creators",
			Notes:          "Second only to Defying Gravity, massive range appeal",
		},
		{
			SongName: "The Wizard and I", VideoCount: 58000, ViewEstimateMillions: 95, PeakTrendDate: "2024-12-10", WeeksTrending: 6,
			TrendCategory:  "Storytelling / Aspiration",
			ViralMoment:    "Aspiration content + dream sequences",
			CelebrityBoost: "Cynthia Erivo performances",
			Notes:          "Moderate trend, aspirational content",
		},
		{
			SongName: "What Is This Feeling?", VideoCount: 142000, ViewEstimateMillions: 310, PeakTrendDate: "2024-11-27", WeeksTrending: 10,
			TrendCategory:  "Duets / Comedy",
			ViralMoment:    "Roommate humor + college content + duet format",
			CelebrityBoost: "College influencers, comedy creators",
			Notes:          "Surprise hit - comedy + relatability > audio features",
		},
		{
			SongName: "Dancing Through Life", VideoCount: 98000, ViewEstimateMillions: 180, PeakTrendDate: "2024-12-03", WeeksTrending: 8,
			TrendCategory:  "Dance",
			ViralMoment:    "Jonathan Bailey thirst edits + dance challenges",
			CelebrityBoost: "Jonathan Bailey edits, dance community",
			Notes:          "Visual appeal (Jonathan Bailey) drove virality",
		},
		{
			SongName: "I'm Not That Girl", VideoCount: 45000, ViewEstimateMillions: 72, PeakTrendDate: "2024-12-15", WeeksTrending: 5,
			TrendCategory:  "Sad POV / Emotional",
			ViralMoment:    "Emotional vulnerability + sad girl hours",
			CelebrityBoost: "Mental health influencers",
			Notes:          "Emotional vulnerability resonated",
		},
		{
			SongName: "One Short Day", VideoCount: 52000, ViewEstimateMillions: 98, PeakTrendDate: "2024-12-08", WeeksTrending: 7,
			TrendCategory:  "GRWM / Transition",
			ViralMoment:    "Emerald City aesthetic + outfit transitions",
			CelebrityBoost: "Fashion/beauty creators",
			Notes:          "Visual/aesthetic focus",
		},
		{
			SongName: "For Good", VideoCount: 91000, ViewEstimateMillions: 165, PeakTrendDate: "2024-12-20", WeeksTrending: 9,
			TrendCategory:  "Friendship Posts",
			ViralMoment:    "End credits boost + friendship appreciation",
			CelebrityBoost: "Friendship content creators",
			Notes:          "Sustained by end credits emotional impact",
		},
		{
			SongName: "No Good Deed", VideoCount: 67000, ViewEstimateMillions: 125, PeakTrendDate: "2024-12-12", WeeksTrending: 8,
			TrendCategory:  "Dramatic Lip Sync",
			ViralMoment:    "Villain arc content + dramatic reveals",
			CelebrityBoost: "Theater kids, dramatic content",
			Notes:          "Villain content popular",
		},
		{
			SongName: "As Long As You're Mine", VideoCount: 38000, ViewEstimateMillions: 65, PeakTrendDate: "2024-12-18", WeeksTrending: 4,
			TrendCategory:  "Romantic POV",
			ViralMoment:    "Romantic edits + couple content",
			CelebrityBoost: "Couple content creators",
			Notes:          "Romantic subplot content",
		},
		{
			SongName: "No One Mourns the Wicked", VideoCount: 71000, ViewEstimateMillions: 142, PeakTrendDate: "2024-11-25", WeeksTrending: 7,
			TrendCategory:  "Storytelling",
			ViralMoment:    "Context setting + movie opening",
			CelebrityBoost: "Movie reviewers",
			Notes:          "Movie opening context",
		},
		{
			SongName: "Wonderful", VideoCount: 29000, ViewEstimateMillions: 48, PeakTrendDate: "2024-12-07", WeeksTrending: 4,
			TrendCategory:  "Comedy / Satire",
			ViralMoment:    "Political satire + authority figures",
			CelebrityBoost: "Political commentary",
			Notes:          "Lower virality despite cultural relevance",
		},
		{
			SongName: "Thank Goodness", VideoCount: 35000, ViewEstimateMillions: 61, PeakTrendDate: "2024-12-14", WeeksTrending: 5,
			TrendCategory:  "Irony / Comedy",
			ViralMoment:    "Graduation / achievement irony",
			CelebrityBoost: "Graduation season creators",
			Notes:          "Ironic use cases",
		},
		{
			SongName: "A Sentimental Man", VideoCount: 15000, ViewEstimateMillions: 28, PeakTrendDate: "2025-01-05", WeeksTrending: 2,
			TrendCategory:  "Background Music",
			ViralMoment:    "Background for other content",
			CelebrityBoost: "General background use",
			Notes:          "Background use, not main focus",
		},
		{
			SongName: "March of the Witch Hunters", VideoCount: 41000, ViewEstimateMillions: 75, PeakTrendDate: "2024-12-09", WeeksTrending: 6,
			TrendCategory:  "Dramatic Edit",
			ViralMoment:    "Dramatic edit music",
			CelebrityBoost: "Edit community",
			Notes:          "Edit community adoption",
		},
	}
}
