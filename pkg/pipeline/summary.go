package pipeline

import (
	"github.com/gnoverse/knowscrape/pkg/analytics"
)

// Summary is the user-visible outcome of a run: every item accounted for
// either under Written or under FailedByStage, plus aggregate statistics
// over the written documents.
type Summary struct {
	TotalItems    int            `yaml:"total_items"`
	Fetched       int            `yaml:"fetched"`
	Extracted     int            `yaml:"extracted"`
	Normalized    int            `yaml:"normalized"`
	Written       int            `yaml:"written"`
	Failed        int            `yaml:"failed"`
	FailedByStage map[string]int `yaml:"failed_by_stage,omitempty"`
	Languages     map[string]int `yaml:"languages,omitempty"`
	TopKeywords   []string       `yaml:"top_keywords,omitempty"`
}

const topKeywordCount = 25

// Summarize folds per-item results into a Summary.
func Summarize(results []Result) *Summary {
	s := &Summary{
		TotalItems:    len(results),
		FailedByStage: make(map[string]int),
		Languages:     make(map[string]int),
	}

	var frequencyMaps []map[string]int
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			s.FailedByStage[r.Stage]++
			// An item counts toward every stage it passed before failing.
			switch r.Stage {
			case StageExtract:
				s.Fetched++
			case StageNormalize:
				s.Fetched++
				s.Extracted++
			case StageWrite:
				s.Fetched++
				s.Extracted++
				s.Normalized++
			}
			continue
		}
		s.Fetched++
		s.Extracted++
		s.Normalized++
		s.Written++
		if r.Language != "" {
			s.Languages[r.Language]++
		}
		if len(r.WordCounts) > 0 {
			frequencyMaps = append(frequencyMaps, r.WordCounts)
		}
	}

	if len(s.FailedByStage) == 0 {
		s.FailedByStage = nil
	}
	if len(s.Languages) == 0 {
		s.Languages = nil
	}
	s.TopKeywords = analytics.TopKeywords(analytics.Merge(frequencyMaps), topKeywordCount)
	return s
}
