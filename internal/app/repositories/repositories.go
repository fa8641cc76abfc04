package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UniversityRepository   *UniversityRepository
	UserRepository         *UserRepository
	ProfileRepository      *ProfileRepository
	TokenRepository        *TokenRepository
	EventRepository        *EventRepository
	ConversationRepository *ConversationRepository
	PostRepository         *PostRepository
	NotificationRepository *NotificationRepository
	NewsletterRepository   *NewsletterRepository
	ExamResultRepository   *ExamResultRepository
	JobRepository          *JobRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UniversityRepository:   NewUniversityRepository(db),
		UserRepository:         NewUserRepository(db),
		ProfileRepository:      NewProfileRepository(db),
		TokenRepository:        NewTokenRepository(db),
		EventRepository:        NewEventRepository(db),
		ConversationRepository: NewConversationRepository(db),
		PostRepository:         NewPostRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		NewsletterRepository:   NewNewsletterRepository(db),
		ExamResultRepository:   NewExamResultRepository(db),
		JobRepository:          NewJobRepository(db),
	}
}

var (
	_ IUniversityRepository   = (*UniversityRepository)(nil)
	_ IUserRepository         = (*UserRepository)(nil)
	_ IProfileRepository      = (*ProfileRepository)(nil)
	_ ITokenRepository        = (*TokenRepository)(nil)
	_ IEventRepository        = (*EventRepository)(nil)
	_ IConversationRepository = (*ConversationRepository)(nil)
	_ IPostRepository         = (*PostRepository)(nil)
	_ INotificationRepository = (*NotificationRepository)(nil)
	_ INewsletterRepository   = (*NewsletterRepository)(nil)
	_ IExamResultRepository   = (*ExamResultRepository)(nil)
	_ IJobRepository          = (*JobRepository)(nil)
)
