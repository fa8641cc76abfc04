package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/eventbus"
)

const testCredentialID = "2f1c6c1e-8d0a-4c3b-9d59-0b7e6b7d9a10"

func newTestExamResultService() (*examResultServiceImpl, *mockExamResultRepo, *recordingBus) {
	repo := &mockExamResultRepo{}
	bus := &recordingBus{}
	svc := NewExamResultService(repo, bus, zerolog.Nop()).(*examResultServiceImpl)
	svc.now = func() time.Time { return testNow }
	svc.newID = func() string { return testCredentialID }
	return svc, repo, bus
}

func studentResult() *models.ExamResult {
	return &models.ExamResult{
		ID:           9,
		UserID:       student.UserID,
		UniversityID: 1,
		ExamName:     "GRE General",
		Score:        320,
		MaxScore:     340,
		TakenAt:      testNow.AddDate(0, -1, 0),
		CredentialID: testCredentialID,
	}
}

func TestCreateExamResultValidation(t *testing.T) {
	svc, repo, _ := newTestExamResultService()
	score := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		req   dto.CreateExamResultRequest
		field string
	}{
		{"score above max", dto.CreateExamResultRequest{ExamName: "GRE", Score: score(400), MaxScore: 340, TakenAt: testNow}, "score"},
		{"negative score", dto.CreateExamResultRequest{ExamName: "GRE", Score: score(-1), MaxScore: 340, TakenAt: testNow}, "score"},
		{"missing score", dto.CreateExamResultRequest{ExamName: "GRE", MaxScore: 340, TakenAt: testNow}, "score"},
		{"zero max", dto.CreateExamResultRequest{ExamName: "GRE", Score: score(0), MaxScore: 0, TakenAt: testNow}, "maxScore"},
		{"taken in the future", dto.CreateExamResultRequest{ExamName: "GRE", Score: score(1), MaxScore: 340, TakenAt: testNow.Add(time.Hour)}, "takenAt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), student, &tt.req)
			require.Error(t, err)

			var custom *apperrors.CustomError
			require.ErrorAs(t, err, &custom)
			assert.Equal(t, apperrors.CodeValidationFailed, custom.Code)
			assert.Equal(t, tt.field, custom.Field)
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateExamResultAssignsCredential(t *testing.T) {
	svc, repo, _ := newTestExamResultService()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.ExamResult) bool {
		return r.UserID == student.UserID && r.CredentialID == testCredentialID && !r.IsVerified
	})).Return(nil)

	score := 320.0
	result, err := svc.Create(context.Background(), student, &dto.CreateExamResultRequest{
		ExamName: " GRE General ",
		Score:    &score,
		MaxScore: 340,
		TakenAt:  testNow.AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "GRE General", result.ExamName)
	assert.Equal(t, testCredentialID, result.CredentialID)
}

func TestDeleteExamResult(t *testing.T) {
	t.Run("verified results are kept", func(t *testing.T) {
		svc, repo, _ := newTestExamResultService()
		verified := studentResult()
		verified.IsVerified = true
		repo.On("GetByID", mock.Anything, int64(9)).Return(verified, nil)

		err := svc.Delete(context.Background(), student, 9)
		assert.ErrorIs(t, err, apperrors.ErrExamResultVerified)
		repo.AssertNotCalled(t, "DeleteUnverified", mock.Anything, mock.Anything)
	})

	t.Run("admins cannot delete", func(t *testing.T) {
		svc, repo, _ := newTestExamResultService()
		repo.On("GetByID", mock.Anything, int64(9)).Return(studentResult(), nil)

		err := svc.Delete(context.Background(), admin, 9)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("owner deletes", func(t *testing.T) {
		svc, repo, _ := newTestExamResultService()
		repo.On("GetByID", mock.Anything, int64(9)).Return(studentResult(), nil)
		repo.On("DeleteUnverified", mock.Anything, int64(9)).Return(nil)

		require.NoError(t, svc.Delete(context.Background(), student, 9))
		repo.AssertExpectations(t)
	})
}

func TestVerifyExamResult(t *testing.T) {
	t.Run("admin only", func(t *testing.T) {
		svc, _, _ := newTestExamResultService()
		_, err := svc.Verify(context.Background(), alumnus, 9)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("already verified", func(t *testing.T) {
		svc, repo, bus := newTestExamResultService()
		verified := studentResult()
		verified.IsVerified = true
		repo.On("GetByID", mock.Anything, int64(9)).Return(verified, nil)

		_, err := svc.Verify(context.Background(), admin, 9)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Empty(t, bus.Published())
	})

	t.Run("verifies and publishes", func(t *testing.T) {
		svc, repo, bus := newTestExamResultService()
		repo.On("GetByID", mock.Anything, int64(9)).Return(studentResult(), nil)
		repo.On("Verify", mock.Anything, int64(9), admin.UserID, testNow).Return(nil)

		result, err := svc.Verify(context.Background(), admin, 9)
		require.NoError(t, err)
		assert.True(t, result.IsVerified)
		require.NotNil(t, result.VerifiedBy)
		assert.Equal(t, admin.UserID, *result.VerifiedBy)

		events := bus.Published()
		require.Len(t, events, 1)
		assert.Equal(t, eventbus.TopicExamResultVerified, events[0].topic)
		assert.Equal(t, student.UserID, events[0].payload.(eventbus.ExamResultVerified).UserID)
	})
}

func TestCredentialLookup(t *testing.T) {
	svc, repo, _ := newTestExamResultService()

	_, err := svc.Credential(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, apperrors.ErrExamResultNotFound)
	repo.AssertNotCalled(t, "GetCredential", mock.Anything, mock.Anything)

	repo.On("GetCredential", mock.Anything, testCredentialID).Return(&models.Credential{CredentialID: testCredentialID, HolderName: "Ada Lovelace"}, nil)
	credential, err := svc.Credential(context.Background(), "  "+testCredentialID+" ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", credential.HolderName)
}
