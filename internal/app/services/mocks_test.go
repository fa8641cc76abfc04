package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/email"
	"github.com/yigit/unilink/internal/pkg/matching"
)

type matchingResult = matching.Result

// result helpers keep the typed nil checks out of every mock method

func userOf(args mock.Arguments, i int) *models.User {
	v, _ := args.Get(i).(*models.User)
	return v
}

// mockUserRepo

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	return userOf(args, 0), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return userOf(args, 0), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

func (m *mockUserRepo) UpdateName(ctx context.Context, userID int64, firstName, lastName string) error {
	return m.Called(ctx, userID, firstName, lastName).Error(0)
}

func (m *mockUserRepo) ListByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	v, _ := args.Get(0).([]*models.User)
	return v, args.Error(1)
}

func (m *mockUserRepo) ListActiveByUniversity(ctx context.Context, universityID int64, role models.RoleType) ([]*models.User, error) {
	args := m.Called(ctx, universityID, role)
	v, _ := args.Get(0).([]*models.User)
	return v, args.Error(1)
}

// mockUniversityRepo

type mockUniversityRepo struct{ mock.Mock }

func (m *mockUniversityRepo) Create(ctx context.Context, university *models.University) error {
	return m.Called(ctx, university).Error(0)
}

func (m *mockUniversityRepo) GetByID(ctx context.Context, id int64) (*models.University, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.University)
	return v, args.Error(1)
}

func (m *mockUniversityRepo) GetBySlug(ctx context.Context, slug string) (*models.University, error) {
	args := m.Called(ctx, slug)
	v, _ := args.Get(0).(*models.University)
	return v, args.Error(1)
}

func (m *mockUniversityRepo) List(ctx context.Context, limit, offset int) ([]*models.University, int64, error) {
	args := m.Called(ctx, limit, offset)
	v, _ := args.Get(0).([]*models.University)
	return v, args.Get(1).(int64), args.Error(2)
}

// mockProfileRepo

type mockProfileRepo struct{ mock.Mock }

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID int64) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)
	v, _ := args.Get(0).(*models.UserProfile)
	return v, args.Error(1)
}

func (m *mockProfileRepo) List(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, int64, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*models.UserProfile)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockProfileRepo) Find(ctx context.Context, filter models.ProfileFilter) ([]*models.UserProfile, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*models.UserProfile)
	return v, args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, profile *models.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

// mockTokenRepo

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	return m.Called(ctx, token, userID, expiryDate).Error(0)
}

func (m *mockTokenRepo) Get(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	v, _ := args.Get(0).(*models.RefreshToken)
	return v, args.Error(1)
}

func (m *mockTokenRepo) Rotate(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error {
	return m.Called(ctx, oldToken, newToken, userID, expiryDate).Error(0)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// mockEventRepo runs the registration check against the event and existing
// registration given to On("Register"), the way the repository does under lock.

type mockEventRepo struct{ mock.Mock }

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Event)
	return v, args.Error(1)
}

func (m *mockEventRepo) List(ctx context.Context, filter models.EventFilter) ([]*models.Event, int64, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*models.Event)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockEventRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockEventRepo) Cancel(ctx context.Context, id int64, check repositories.EventCheck) (*models.Event, []int64, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*models.Event)
	registrants, _ := args.Get(1).([]int64)
	if event == nil {
		return nil, nil, args.Error(2)
	}
	if err := check(event); err != nil {
		return nil, nil, err
	}
	event.Status = models.EventStatusCancelled
	return event, registrants, nil
}

func (m *mockEventRepo) Register(ctx context.Context, eventID, userID int64, check repositories.RegistrationCheck) (*models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID)
	event, _ := args.Get(0).(*models.Event)
	existing, _ := args.Get(1).(*models.EventRegistration)
	if event == nil {
		return nil, args.Error(2)
	}
	if err := check(event, existing); err != nil {
		return nil, err
	}
	return &models.EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		Status:    models.RegistrationRegistered,
		FirstName: "Ada",
		LastName:  "Lovelace",
	}, nil
}

func (m *mockEventRepo) CancelRegistration(ctx context.Context, eventID, userID int64) error {
	return m.Called(ctx, eventID, userID).Error(0)
}

func (m *mockEventRepo) GetRegistration(ctx context.Context, eventID, userID int64) (*models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID)
	v, _ := args.Get(0).(*models.EventRegistration)
	return v, args.Error(1)
}

func (m *mockEventRepo) ListRegistrations(ctx context.Context, eventID int64, limit, offset int) ([]*models.EventRegistration, int64, error) {
	args := m.Called(ctx, eventID, limit, offset)
	v, _ := args.Get(0).([]*models.EventRegistration)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockEventRepo) UpdateRegistrationStatus(ctx context.Context, eventID, userID int64, status models.RegistrationStatus) (*models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID, status)
	v, _ := args.Get(0).(*models.EventRegistration)
	return v, args.Error(1)
}

func (m *mockEventRepo) ListRegisteredEvents(ctx context.Context, userID int64, limit, offset int) ([]*models.Event, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	v, _ := args.Get(0).([]*models.Event)
	return v, args.Get(1).(int64), args.Error(2)
}

// mockConversationRepo

type mockConversationRepo struct{ mock.Mock }

func (m *mockConversationRepo) Create(ctx context.Context, conversation *models.Conversation, participantIDs []int64) (*models.Conversation, bool, error) {
	args := m.Called(ctx, conversation, participantIDs)
	v, _ := args.Get(0).(*models.Conversation)
	return v, args.Bool(1), args.Error(2)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Conversation)
	return v, args.Error(1)
}

func (m *mockConversationRepo) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockConversationRepo) ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	args := m.Called(ctx, conversationID)
	v, _ := args.Get(0).([]int64)
	return v, args.Error(1)
}

func (m *mockConversationRepo) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ConversationSummary, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	v, _ := args.Get(0).([]*models.ConversationSummary)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockConversationRepo) CreateMessage(ctx context.Context, message *models.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockConversationRepo) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]*models.Message, int64, error) {
	args := m.Called(ctx, conversationID, limit, offset)
	v, _ := args.Get(0).([]*models.Message)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockConversationRepo) MarkRead(ctx context.Context, conversationID, userID int64, at time.Time) (int64, error) {
	args := m.Called(ctx, conversationID, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockConversationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// mockNewsletterRepo

type mockNewsletterRepo struct{ mock.Mock }

func (m *mockNewsletterRepo) Create(ctx context.Context, newsletter *models.Newsletter) error {
	return m.Called(ctx, newsletter).Error(0)
}

func (m *mockNewsletterRepo) GetByID(ctx context.Context, id int64) (*models.Newsletter, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Newsletter)
	return v, args.Error(1)
}

func (m *mockNewsletterRepo) List(ctx context.Context, universityID int64, includeDrafts bool, limit, offset int) ([]*models.Newsletter, int64, error) {
	args := m.Called(ctx, universityID, includeDrafts, limit, offset)
	v, _ := args.Get(0).([]*models.Newsletter)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockNewsletterRepo) UpdateDraft(ctx context.Context, newsletter *models.Newsletter) error {
	return m.Called(ctx, newsletter).Error(0)
}

func (m *mockNewsletterRepo) DeleteDraft(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockNewsletterRepo) MarkSent(ctx context.Context, id int64, recipientCount int, sentAt time.Time) error {
	return m.Called(ctx, id, recipientCount, sentAt).Error(0)
}

// mockExamResultRepo

type mockExamResultRepo struct{ mock.Mock }

func (m *mockExamResultRepo) Create(ctx context.Context, result *models.ExamResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockExamResultRepo) GetByID(ctx context.Context, id int64) (*models.ExamResult, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.ExamResult)
	return v, args.Error(1)
}

func (m *mockExamResultRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	v, _ := args.Get(0).([]*models.ExamResult)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockExamResultRepo) ListByUniversity(ctx context.Context, universityID, userID int64, limit, offset int) ([]*models.ExamResult, int64, error) {
	args := m.Called(ctx, universityID, userID, limit, offset)
	v, _ := args.Get(0).([]*models.ExamResult)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockExamResultRepo) DeleteUnverified(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockExamResultRepo) Verify(ctx context.Context, id, verifierID int64, at time.Time) error {
	return m.Called(ctx, id, verifierID, at).Error(0)
}

func (m *mockExamResultRepo) GetCredential(ctx context.Context, credentialID string) (*models.Credential, error) {
	args := m.Called(ctx, credentialID)
	v, _ := args.Get(0).(*models.Credential)
	return v, args.Error(1)
}

// mockJobRepo

type mockJobRepo struct{ mock.Mock }

func (m *mockJobRepo) Create(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Job)
	return v, args.Error(1)
}

func (m *mockJobRepo) List(ctx context.Context, filter models.JobFilter) ([]*models.Job, int64, error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).([]*models.Job)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockJobRepo) ListActive(ctx context.Context, universityID int64, limit int) ([]*models.Job, error) {
	args := m.Called(ctx, universityID, limit)
	v, _ := args.Get(0).([]*models.Job)
	return v, args.Error(1)
}

func (m *mockJobRepo) Update(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// mockNotificationRepo

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	return m.Called(ctx, notifications).Error(0)
}

func (m *mockNotificationRepo) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	v, _ := args.Get(0).([]*models.Notification)
	return v, args.Get(1).(int64), args.Error(2)
}

func (m *mockNotificationRepo) UnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id, userID int64) error {
	return m.Called(ctx, id, userID).Error(0)
}

// recordingBus captures published events

type published struct {
	topic   string
	payload interface{}
}

type recordingBus struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBus) Publish(ctx context.Context, topic string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{topic: topic, payload: payload})
	return nil
}

func (b *recordingBus) Published() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.events...)
}

// fakeTokenIssuer hands out predictable tokens

type fakeTokenIssuer struct {
	n int
}

func (f *fakeTokenIssuer) GenerateTokenPair(user *models.User) (*auth.TokenPair, error) {
	f.n++
	return &auth.TokenPair{
		AccessToken:      "access-" + user.Email,
		RefreshToken:     fmt.Sprintf("refresh-%d", f.n),
		ExpiresIn:        3600,
		RefreshExpiresIn: 86400,
		RefreshExpiresAt: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC),
	}, nil
}

// memoryCache is an in-memory cache.Cache

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]interface{}{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if results, ok := dest.(*[]matchingResult); ok {
		*results = v.([]matchingResult)
	}
	return true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memoryCache) Close() error { return nil }

// recordingMailer counts deliveries and the peak number in flight

type recordingMailer struct {
	mu       sync.Mutex
	sent     []string
	inFlight int
	peak     int
	delay    time.Duration
}

func (m *recordingMailer) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.peak {
		m.peak = m.inFlight
	}
	m.mu.Unlock()

	time.Sleep(m.delay)

	m.mu.Lock()
	m.inFlight--
	m.sent = append(m.sent, msg.ToEmail)
	m.mu.Unlock()
	return nil
}
