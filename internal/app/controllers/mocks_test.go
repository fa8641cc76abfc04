package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/mock"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/services"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/matching"
	"github.com/yigit/unilink/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = validation.Register(v)
	}
}

var (
	alumnus = authz.Actor{UserID: 10, UniversityID: 1, Role: models.RoleAlumni}
	admin   = authz.Actor{UserID: 30, UniversityID: 1, Role: models.RoleUniversityAdmin}
)

// newRouter returns an engine that authenticates every request as actor,
// or leaves it anonymous when actor is nil
func newRouter(actor *authz.Actor) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.UserIDKey, actor.UserID)
			c.Set(middleware.UniversityIDKey, actor.UniversityID)
			c.Set(middleware.RoleTypeKey, string(actor.Role))
		}
		c.Next()
	})
	return r
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*dto.AuthResponse)
	return v, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*dto.AuthResponse)
	return v, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	v, _ := args.Get(0).(*dto.TokenResponse)
	return v, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

func (m *mockAuthService) Me(ctx context.Context, userID int64) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*models.UserProfile)
	return v, args.Error(1)
}

type mockEventService struct{ mock.Mock }

func (m *mockEventService) List(ctx context.Context, actor authz.Actor, filter models.EventFilter) ([]*models.Event, int64, error) {
	args := m.Called(ctx, actor, filter)
	v, _ := args.Get(0).([]*models.Event)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventService) Get(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*models.Event)
	return v, args.Error(1)
}

func (m *mockEventService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateEventRequest) (*models.Event, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*models.Event)
	return v, args.Error(1)
}

func (m *mockEventService) Update(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateEventRequest) (*models.Event, error) {
	args := m.Called(ctx, actor, id, req)
	v, _ := args.Get(0).(*models.Event)
	return v, args.Error(1)
}

func (m *mockEventService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockEventService) Cancel(ctx context.Context, actor authz.Actor, id int64) (*models.Event, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*models.Event)
	return v, args.Error(1)
}

func (m *mockEventService) Register(ctx context.Context, actor authz.Actor, eventID int64) (*models.EventRegistration, error) {
	args := m.Called(ctx, actor, eventID)
	v, _ := args.Get(0).(*models.EventRegistration)
	return v, args.Error(1)
}

func (m *mockEventService) CancelRegistration(ctx context.Context, actor authz.Actor, eventID int64) error {
	return m.Called(ctx, actor, eventID).Error(0)
}

func (m *mockEventService) ListRegistrations(ctx context.Context, actor authz.Actor, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error) {
	args := m.Called(ctx, actor, eventID, limit, offset)
	v, _ := args.Get(0).([]*models.EventRegistration)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventService) UpdateRegistration(ctx context.Context, actor authz.Actor, eventID, userID int64, req *dto.UpdateRegistrationRequest) (*models.EventRegistration, error) {
	args := m.Called(ctx, actor, eventID, userID, req)
	v, _ := args.Get(0).(*models.EventRegistration)
	return v, args.Error(1)
}

func (m *mockEventService) ListRegistered(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.Event, int64, error) {
	args := m.Called(ctx, actor, limit, offset)
	v, _ := args.Get(0).([]*models.Event)
	return v, args.Get(1).(int64), args.Error(2)
}

type mockMessagingService struct{ mock.Mock }

func (m *mockMessagingService) ListConversations(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ConversationSummary, int64, error) {
	args := m.Called(ctx, actor, limit, offset)
	v, _ := args.Get(0).([]*models.ConversationSummary)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockMessagingService) CreateConversation(ctx context.Context, actor authz.Actor, req *dto.CreateConversationRequest) (*models.Conversation, bool, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*models.Conversation)
	return v, args.Bool(1), args.Error(2)
}

func (m *mockMessagingService) ListMessages(ctx context.Context, actor authz.Actor, conversationID int64, limit, offset int) ([]*models.Message, int64, error) {
	args := m.Called(ctx, actor, conversationID, limit, offset)
	v, _ := args.Get(0).([]*models.Message)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockMessagingService) SendMessage(ctx context.Context, actor authz.Actor, conversationID int64, req *dto.SendMessageRequest) (*models.Message, error) {
	args := m.Called(ctx, actor, conversationID, req)
	v, _ := args.Get(0).(*models.Message)
	return v, args.Error(1)
}

func (m *mockMessagingService) SendDirect(ctx context.Context, actor authz.Actor, req *dto.DirectMessageRequest) (*models.Message, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*models.Message)
	return v, args.Error(1)
}

func (m *mockMessagingService) MarkRead(ctx context.Context, actor authz.Actor, conversationID int64) (int64, error) {
	args := m.Called(ctx, actor, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessagingService) UnreadCount(ctx context.Context, actor authz.Actor) (int, error) {
	args := m.Called(ctx, actor)
	return args.Int(0), args.Error(1)
}

type mockExamResultService struct{ mock.Mock }

func (m *mockExamResultService) ListMine(ctx context.Context, actor authz.Actor, limit, offset int) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, actor, limit, offset)
	v, _ := args.Get(0).([]*models.ExamResult)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockExamResultService) Create(ctx context.Context, actor authz.Actor, req *dto.CreateExamResultRequest) (*models.ExamResult, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*models.ExamResult)
	return v, args.Error(1)
}

func (m *mockExamResultService) Get(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*models.ExamResult)
	return v, args.Error(1)
}

func (m *mockExamResultService) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockExamResultService) ListForUniversity(ctx context.Context, actor authz.Actor, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, actor, userID, limit, offset)
	v, _ := args.Get(0).([]*models.ExamResult)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockExamResultService) Verify(ctx context.Context, actor authz.Actor, id int64) (*models.ExamResult, error) {
	args := m.Called(ctx, actor, id)
	v, _ := args.Get(0).(*models.ExamResult)
	return v, args.Error(1)
}

func (m *mockExamResultService) Credential(ctx context.Context, credentialID string) (*models.Credential, error) {
	args := m.Called(ctx, credentialID)
	v, _ := args.Get(0).(*models.Credential)
	return v, args.Error(1)
}

type mockRecommendationService struct{ mock.Mock }

func (m *mockRecommendationService) Recommend(ctx context.Context, actor authz.Actor, kind services.RecommendationKind, limit int) ([]matching.Result, error) {
	args := m.Called(ctx, actor, kind, limit)
	v, _ := args.Get(0).([]matching.Result)
	return v, args.Error(1)
}

func (m *mockRecommendationService) Invalidate(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) List(ctx context.Context, actor authz.Actor, filter models.ProfileFilter) ([]*models.UserProfile, int64, error) {
	args := m.Called(ctx, actor, filter)
	v, _ := args.Get(0).([]*models.UserProfile)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileService) Get(ctx context.Context, actor authz.Actor, userID int64) (*models.UserProfile, error) {
	args := m.Called(ctx, actor, userID)
	v, _ := args.Get(0).(*models.UserProfile)
	return v, args.Error(1)
}

func (m *mockProfileService) Update(ctx context.Context, actor authz.Actor, req *dto.UpdateProfileRequest) (*models.UserProfile, error) {
	args := m.Called(ctx, actor, req)
	v, _ := args.Get(0).(*models.UserProfile)
	return v, args.Error(1)
}
