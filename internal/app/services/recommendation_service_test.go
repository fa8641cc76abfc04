package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/matching"
)

func newTestRecommendationService() (RecommendationService, *mockProfileRepo, *mockJobRepo, *memoryCache) {
	profiles := &mockProfileRepo{}
	jobs := &mockJobRepo{}
	c := newMemoryCache()
	engine := matching.NewEngine(matching.Options{DefaultLimit: 2, MaxLimit: 5})
	svc := NewRecommendationService(profiles, jobs, engine, c, RecommendationConfig{CandidateCap: 50}, zerolog.Nop())
	return svc, profiles, jobs, c
}

func alumnusProfile() *models.UserProfile {
	return &models.UserProfile{
		User:    models.User{ID: alumnus.UserID, UniversityID: 1, RoleType: models.RoleAlumni},
		Profile: models.Profile{UserID: alumnus.UserID, Skills: []string{"Go", "SQL"}},
	}
}

func candidateJobs() []*models.Job {
	remote := "Remote"
	return []*models.Job{
		{ID: 1, UniversityID: 1, Title: "Backend", RequiredSkills: []string{"go"}, Location: &remote, JobType: models.JobFullTime, IsActive: true},
		{ID: 2, UniversityID: 1, Title: "Android", RequiredSkills: []string{"kotlin"}, JobType: models.JobFullTime, IsActive: true},
		{ID: 3, UniversityID: 1, Title: "Data", RequiredSkills: []string{"sql"}, JobType: models.JobContract, IsActive: true},
	}
}

func resultIDs(results []matching.Result) []int64 {
	ids := make([]int64, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRecommendJobsRanksAndCaches(t *testing.T) {
	svc, profiles, jobs, c := newTestRecommendationService()
	profiles.On("GetByUserID", mock.Anything, alumnus.UserID).Return(alumnusProfile(), nil)
	jobs.On("ListActive", mock.Anything, int64(1), 50).Return(candidateJobs(), nil)

	results, err := svc.Recommend(context.Background(), alumnus, RecommendJobs, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, resultIDs(results))
	assert.Equal(t, 90.0, results[0].Score)
	assert.Equal(t, 60.0, results[1].Score)
	assert.Equal(t, []string{"go"}, results[0].MatchedSkills)

	// served from the cached full ranking
	results, err = svc.Recommend(context.Background(), alumnus, RecommendJobs, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2}, resultIDs(results))
	jobs.AssertNumberOfCalls(t, "ListActive", 1)

	_, cached := c.entries["recommendations:10:jobs"]
	assert.True(t, cached)
}

func TestRecommendMentorsFilter(t *testing.T) {
	svc, profiles, _, _ := newTestRecommendationService()
	profiles.On("GetByUserID", mock.Anything, student.UserID).Return(&models.UserProfile{
		User:    models.User{ID: student.UserID, UniversityID: 1},
		Profile: models.Profile{Skills: []string{"go"}},
	}, nil)
	mentor := alumnusProfile()
	mentor.Email = "mentor@uni.edu"
	now := time.Now()
	mentor.LastLoginAt = &now
	profiles.On("Find", mock.Anything, models.ProfileFilter{
		UniversityID: 1,
		ExcludeUser:  student.UserID,
		Limit:        50,
		Role:         models.RoleAlumni,
		MentorsOnly:  true,
	}).Return([]*models.UserProfile{mentor}, nil)

	results, err := svc.Recommend(context.Background(), student, RecommendMentors, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, alumnus.UserID, results[0].ID)
	profiles.AssertExpectations(t)

	body, err := json.Marshal(results)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "mentor@uni.edu")
	assert.NotContains(t, string(body), "lastLoginAt")
	assert.Contains(t, string(body), `"universityId":1`)
}

func TestRecommendConnectionsStayInUniversity(t *testing.T) {
	svc, profiles, _, _ := newTestRecommendationService()
	profiles.On("GetByUserID", mock.Anything, alumnus.UserID).Return(alumnusProfile(), nil)
	profiles.On("Find", mock.Anything, models.ProfileFilter{
		ExcludeUser:  alumnus.UserID,
		Limit:        50,
		UniversityID: 1,
	}).Return(nil, nil)

	results, err := svc.Recommend(context.Background(), alumnus, RecommendConnections, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRecommendUnknownKind(t *testing.T) {
	svc, profiles, _, _ := newTestRecommendationService()
	profiles.On("GetByUserID", mock.Anything, alumnus.UserID).Return(alumnusProfile(), nil)

	_, err := svc.Recommend(context.Background(), alumnus, RecommendationKind("courses"), 5)
	assert.Error(t, err)
}

func TestInvalidateDropsEveryKind(t *testing.T) {
	svc, _, _, c := newTestRecommendationService()
	require.NoError(t, svc.Invalidate(context.Background(), 10))
	assert.ElementsMatch(t, []string{
		"recommendations:10:jobs",
		"recommendations:10:mentors",
		"recommendations:10:connections",
	}, c.deleted)
}
