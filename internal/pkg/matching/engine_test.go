package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(Options{MinScore: 30, DefaultLimit: 10, MaxLimit: 50})
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights.Sum(), 1e-9)
}

func TestScoreIdenticalProfilesIsHundred(t *testing.T) {
	e := newTestEngine()
	s := Subject{
		UserID:            1,
		UniversityID:      3,
		Skills:            []string{"Go", "SQL"},
		Location:          "Berlin",
		PreferredJobTypes: []string{"FULL_TIME"},
	}
	c := Candidate{ID: 2, UniversityID: 3, Skills: []string{"go", " sql "}, Location: "berlin", JobTypes: []string{"FULL_TIME"}}

	r := e.Score(s, c)
	assert.Equal(t, 100.0, r.Score)
	assert.Equal(t, []string{"go", "sql"}, r.MatchedSkills)
	assert.Equal(t, Breakdown{Skills: 1, Location: 1, University: 1, JobType: 1}, r.Breakdown)
}

func TestScoreComponents(t *testing.T) {
	e := newTestEngine()
	s := Subject{UniversityID: 1, Skills: []string{"Go"}, Interests: []string{"Rust"}, Location: "Paris", PreferredJobTypes: []string{"INTERNSHIP"}}

	tests := []struct {
		name      string
		candidate Candidate
		want      float64
	}{
		{name: "half the skills", candidate: Candidate{Skills: []string{"go", "java"}}, want: 20},
		{name: "interests count as skills", candidate: Candidate{Skills: []string{"rust"}}, want: 40},
		{name: "duplicate candidate skills counted once", candidate: Candidate{Skills: []string{"Go", "go", "Java"}}, want: 20},
		{name: "no candidate skills", candidate: Candidate{Location: "Paris"}, want: 30},
		{name: "remote always matches location", candidate: Candidate{Location: " Remote "}, want: 30},
		{name: "empty locations do not match", candidate: Candidate{}, want: 0},
		{name: "same university", candidate: Candidate{UniversityID: 1}, want: 20},
		{name: "preferred job type", candidate: Candidate{JobTypes: []string{"internship"}}, want: 10},
		{name: "all but job type", candidate: Candidate{UniversityID: 1, Skills: []string{"Go"}, Location: "paris"}, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.Score(s, tt.candidate).Score, 1e-9)
		})
	}
}

func TestScoreEmptyLocationSubjectDoesNotMatchEmptyCandidate(t *testing.T) {
	e := newTestEngine()
	r := e.Score(Subject{}, Candidate{})
	assert.Equal(t, 0.0, r.Breakdown.Location)
	assert.Equal(t, 0.0, r.Breakdown.University)
	assert.NotNil(t, r.MatchedSkills)
}

func TestRankFiltersSortsAndLimits(t *testing.T) {
	e := newTestEngine()
	s := Subject{UniversityID: 1, Skills: []string{"Go", "SQL"}, Location: "Berlin"}

	candidates := []Candidate{
		{ID: 5, UniversityID: 1, Skills: []string{"go"}},                     // 60
		{ID: 3, UniversityID: 2, Skills: []string{"java"}},                   // 0, dropped
		{ID: 4, UniversityID: 1, Skills: []string{"go"}},                     // 60, ties with 5
		{ID: 1, UniversityID: 1, Skills: []string{"go"}, Location: "Berlin"}, // 90
		{ID: 2, UniversityID: 2, Location: "remote"},                         // 30, exactly the cutoff
		{ID: 6, UniversityID: 1},                                             // 20, dropped
	}

	results := e.Rank(s, candidates, 0)
	ids := make([]int64, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	assert.Equal(t, []int64{1, 4, 5, 2}, ids)

	limited := e.Rank(s, candidates, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(1), limited[0].ID)
	assert.Equal(t, int64(4), limited[1].ID)
}

func TestRankIsDeterministic(t *testing.T) {
	e := newTestEngine()
	s := Subject{UniversityID: 1}
	candidates := []Candidate{{ID: 9, UniversityID: 1, Location: "remote"}, {ID: 2, UniversityID: 1, Location: "remote"}, {ID: 7, UniversityID: 1, Location: "remote"}}

	first := e.Rank(s, candidates, 10)
	second := e.Rank(s, []Candidate{candidates[2], candidates[0], candidates[1]}, 10)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2), first[0].ID)
}

func TestClampLimit(t *testing.T) {
	e := newTestEngine()
	assert.Equal(t, 10, e.ClampLimit(0))
	assert.Equal(t, 10, e.ClampLimit(-3))
	assert.Equal(t, 25, e.ClampLimit(25))
	assert.Equal(t, 50, e.ClampLimit(80))
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Options{})
	assert.Equal(t, DefaultWeights, e.weights)
	assert.Equal(t, 10, e.ClampLimit(0))
	assert.Equal(t, 10, e.ClampLimit(11))
}
