// Package matching scores candidates (jobs, mentors, connections) against a
// subject profile and ranks them.
package matching

import (
	"math"
	"sort"
	"strings"
)

// Weights of the score components. They sum to 1.
type Weights struct {
	Skills     float64
	Location   float64
	University float64
	JobType    float64
}

// DefaultWeights used by NewEngine when none are given
var DefaultWeights = Weights{Skills: 0.40, Location: 0.30, University: 0.20, JobType: 0.10}

// Sum returns the total weight
func (w Weights) Sum() float64 {
	return w.Skills + w.Location + w.University + w.JobType
}

const remoteLocation = "remote"

// Subject is the profile recommendations are computed for
type Subject struct {
	UserID            int64
	UniversityID      int64
	Skills            []string
	Interests         []string
	Location          string
	PreferredJobTypes []string
}

// Candidate is anything that can be recommended
type Candidate struct {
	ID           int64
	UniversityID int64
	Skills       []string
	Location     string
	JobTypes     []string
	Payload      interface{}
}

// Breakdown holds the per-component factors, each 0..1
type Breakdown struct {
	Skills     float64 `json:"skills"`
	Location   float64 `json:"location"`
	University float64 `json:"university"`
	JobType    float64 `json:"jobType"`
}

// Result is a scored candidate
type Result struct {
	ID            int64       `json:"id"`
	Score         float64     `json:"score"`
	MatchedSkills []string    `json:"matchedSkills"`
	Breakdown     Breakdown   `json:"breakdown"`
	Item          interface{} `json:"item,omitempty"`
}

// Options configures an Engine
type Options struct {
	Weights      Weights
	MinScore     float64
	DefaultLimit int
	MaxLimit     int
}

// Engine is a pure, stateless scorer. Safe for concurrent use.
type Engine struct {
	weights      Weights
	minScore     float64
	defaultLimit int
	maxLimit     int
}

// NewEngine creates an Engine, filling unset options with defaults
func NewEngine(opts Options) *Engine {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &Engine{
		weights:      opts.Weights,
		minScore:     opts.MinScore,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
	}
}

// MinScore is the inclusive cutoff applied by Rank
func (e *Engine) MinScore() float64 {
	return e.minScore
}

// MaxLimit is the largest number of results Rank returns
func (e *Engine) MaxLimit() int {
	return e.maxLimit
}

// ClampLimit maps a requested limit onto [1, maxLimit], 0 or less meaning the default
func (e *Engine) ClampLimit(limit int) int {
	if limit <= 0 {
		return e.defaultLimit
	}
	if limit > e.maxLimit {
		return e.maxLimit
	}
	return limit
}

// Score computes the 0..100 score of one candidate
func (e *Engine) Score(subject Subject, c Candidate) Result {
	skillsFactor, matched := skillOverlap(subject, c.Skills)

	b := Breakdown{
		Skills:     skillsFactor,
		Location:   locationFactor(subject.Location, c.Location),
		University: boolFactor(subject.UniversityID != 0 && subject.UniversityID == c.UniversityID),
		JobType:    boolFactor(anyIn(c.JobTypes, subject.PreferredJobTypes)),
	}

	raw := e.weights.Skills*b.Skills +
		e.weights.Location*b.Location +
		e.weights.University*b.University +
		e.weights.JobType*b.JobType

	return Result{
		ID:            c.ID,
		Score:         round2(100 * raw),
		MatchedSkills: matched,
		Breakdown:     b,
		Item:          c.Payload,
	}
}

// Rank scores all candidates, drops those under the cutoff and returns at most
// limit results ordered by score descending then id ascending.
func (e *Engine) Rank(subject Subject, candidates []Candidate, limit int) []Result {
	limit = e.ClampLimit(limit)

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		r := e.Score(subject, c)
		if r.Score >= e.minScore {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// skillOverlap is the fraction of the candidate's distinct skills found in the
// subject's skills or interests, with the matched names in candidate order.
func skillOverlap(subject Subject, candidateSkills []string) (float64, []string) {
	known := make(map[string]struct{}, len(subject.Skills)+len(subject.Interests))
	for _, s := range subject.Skills {
		if k := normalize(s); k != "" {
			known[k] = struct{}{}
		}
	}
	for _, s := range subject.Interests {
		if k := normalize(s); k != "" {
			known[k] = struct{}{}
		}
	}

	matched := []string{}
	seen := make(map[string]struct{}, len(candidateSkills))
	for _, s := range candidateSkills {
		k := normalize(s)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := known[k]; ok {
			matched = append(matched, strings.TrimSpace(s))
		}
	}

	if len(seen) == 0 {
		return 0, matched
	}
	return float64(len(matched)) / float64(len(seen)), matched
}

func locationFactor(subject, candidate string) float64 {
	c := normalize(candidate)
	if c == remoteLocation {
		return 1
	}
	s := normalize(subject)
	return boolFactor(c != "" && s == c)
}

func anyIn(values, set []string) bool {
	if len(values) == 0 || len(set) == 0 {
		return false
	}
	lookup := make(map[string]struct{}, len(set))
	for _, s := range set {
		lookup[normalize(s)] = struct{}{}
	}
	for _, v := range values {
		if _, ok := lookup[normalize(v)]; ok && normalize(v) != "" {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func boolFactor(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
