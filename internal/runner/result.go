package runner

import (
	"time"

	"themeshot/internal/theme"
)

// CaptureResult is the outcome of one (project, theme) pair after retries.
type CaptureResult struct {
	ProjectID      int         `json:"project_id"`
	ProjectName    string      `json:"project"`
	Theme          theme.Theme `json:"theme"`
	Success        bool        `json:"success"`
	OutputFilename string      `json:"output_filename,omitempty"`
	Error          string      `json:"error,omitempty"`
	AttemptsUsed   int         `json:"attempts"`
	DurationMS     int64       `json:"duration_ms"`
}

// Retried reports whether the pair needed more than one attempt.
func (r CaptureResult) Retried() bool { return r.AttemptsUsed > 1 }

// Summary aggregates every CaptureResult of one run.
type Summary struct {
	TotalExpected int                 `json:"total_expected"`
	Successful    int                 `json:"successful"`
	Failed        []CaptureResult     `json:"failed"`
	RetriedCount  int                 `json:"retried"`
	ByTheme       map[theme.Theme]int `json:"by_theme"`
	Results       []CaptureResult     `json:"results"`
	Duration      time.Duration       `json:"-"`
	DurationMS    int64               `json:"duration_ms"`
}

// Summarize computes the run summary for results captured over
// projectCount projects and themes.
func Summarize(results []CaptureResult, projectCount int, themes []theme.Theme) Summary {
	s := Summary{
		TotalExpected: projectCount * len(themes),
		Failed:        []CaptureResult{},
		ByTheme:       make(map[theme.Theme]int, len(themes)),
		Results:       results,
	}
	for _, t := range themes {
		s.ByTheme[t] = 0
	}
	for _, r := range results {
		if r.Success {
			s.Successful++
			s.ByTheme[r.Theme]++
		} else {
			s.Failed = append(s.Failed, r)
		}
		if r.Retried() {
			s.RetriedCount++
		}
	}
	return s
}

// OK reports whether every expected capture succeeded.
func (s Summary) OK() bool {
	return s.Successful == s.TotalExpected && len(s.Failed) == 0
}
