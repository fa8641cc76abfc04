package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/db"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

var conversationColumns = []string{"id", "university_id", "title", "is_group", "created_by", "last_message_at", "created_at"}

var messageColumns = []string{"id", "conversation_id", "sender_id", "receiver_id", "content", "is_read", "created_at"}

// DirectKey identifies the single direct conversation between two users
func DirectKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// IConversationRepository defines conversation and message persistence
type IConversationRepository interface {
	// Create stores a conversation with its participants. For a direct
	// conversation that already exists the stored one is returned with created=false.
	Create(ctx context.Context, conversation *models.Conversation, participantIDs []int64) (*models.Conversation, bool, error)
	GetByID(ctx context.Context, id int64) (*models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error)
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ConversationSummary, int64, error)

	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]*models.Message, int64, error)
	MarkRead(ctx context.Context, conversationID, userID int64, at time.Time) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// ConversationRepository handles conversation and message database operations
type ConversationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db, sb: newBuilder()}
}

// Create stores a conversation and its participants in one transaction
func (r *ConversationRepository) Create(ctx context.Context, conversation *models.Conversation, participantIDs []int64) (*models.Conversation, bool, error) {
	var directKey *string
	if !conversation.IsGroup {
		if len(participantIDs) != 2 {
			return nil, false, apperrors.NewValidationError("participantIds", "a direct conversation has exactly two participants")
		}
		key := DirectKey(participantIDs[0], participantIDs[1])
		directKey = &key
	}

	result := conversation
	created := true

	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := r.sb.Insert("conversations").
			Columns("university_id", "title", "is_group", "created_by", "direct_key").
			Values(conversation.UniversityID, conversation.Title, conversation.IsGroup, conversation.CreatedBy, directKey).
			Suffix("ON CONFLICT (direct_key) DO NOTHING RETURNING id, created_at")

		err := scanInto(ctx, tx, query, nil, &conversation.ID, &conversation.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// the direct conversation already exists
			existing, err := queryOne[models.Conversation](ctx, tx,
				r.sb.Select(conversationColumns...).From("conversations").Where(squirrel.Eq{"direct_key": *directKey}),
				apperrors.ErrConversationNotFound)
			if err != nil {
				return err
			}
			result = existing
			created = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("error creating conversation: %w", err)
		}

		insert := r.sb.Insert("conversation_participants").Columns("conversation_id", "user_id")
		for _, id := range participantIDs {
			insert = insert.Values(conversation.ID, id)
		}
		if _, err := exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("error adding participants: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// GetByID retrieves a conversation by ID
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*models.Conversation, error) {
	query := r.sb.Select(conversationColumns...).From("conversations").Where(squirrel.Eq{"id": id})
	return queryOne[models.Conversation](ctx, r.db, query, apperrors.ErrConversationNotFound)
}

// IsParticipant reports whether userID belongs to the conversation
func (r *ConversationRepository) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1 AND user_id = $2
		)`, conversationID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking participant: %w", err)
	}
	return exists, nil
}

// ParticipantIDs lists the members of a conversation
func (r *ConversationRepository) ParticipantIDs(ctx context.Context, conversationID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("user_id").
		From("conversation_participants").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// ListForUser returns the conversations of userID, most recently active
// first, each with its participants, last message and unread count.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*models.ConversationSummary, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM conversation_participants WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting conversations: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.university_id, c.title, c.is_group, c.created_by, c.last_message_at, c.created_at,
		       lm.id, lm.sender_id, lm.receiver_id, lm.content, lm.is_read, lm.created_at,
		       (SELECT COUNT(*) FROM messages m
		         WHERE m.conversation_id = c.id AND m.sender_id <> $1
		           AND ((m.receiver_id = $1 AND m.is_read = FALSE)
		             OR (m.receiver_id IS NULL AND m.created_at > COALESCE(cp.last_read_at, cp.joined_at)))) AS unread_count
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, receiver_id, content, is_read, created_at
			FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) lm ON TRUE
		ORDER BY COALESCE(c.last_message_at, c.created_at) DESC, c.id DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing conversations: %w", err)
	}
	defer rows.Close()

	summaries := []*models.ConversationSummary{}
	byID := make(map[int64]*models.ConversationSummary)
	ids := []int64{}

	for rows.Next() {
		s := &models.ConversationSummary{Participants: []models.ConversationParticipant{}}
		var (
			msgID, senderID *int64
			receiverID      *int64
			content         *string
			isRead          *bool
			createdAt       *time.Time
		)
		if err := rows.Scan(
			&s.ID, &s.UniversityID, &s.Title, &s.IsGroup, &s.CreatedBy, &s.LastMessageAt, &s.CreatedAt,
			&msgID, &senderID, &receiverID, &content, &isRead, &createdAt,
			&s.UnreadCount,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning conversation: %w", err)
		}
		if msgID != nil {
			s.LastMessage = &models.Message{
				ID:             *msgID,
				ConversationID: s.ID,
				SenderID:       *senderID,
				ReceiverID:     receiverID,
				Content:        *content,
				IsRead:         *isRead,
				CreatedAt:      *createdAt,
			}
		}
		summaries = append(summaries, s)
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return summaries, total, nil
	}

	participants, err := queryAll[models.ConversationParticipant](ctx, r.db, r.sb.
		Select("cp.conversation_id", "cp.user_id", "u.first_name", "u.last_name", "cp.joined_at", "cp.last_read_at").
		From("conversation_participants cp").
		Join("users u ON u.id = cp.user_id").
		Where(squirrel.Eq{"cp.conversation_id": ids}).
		OrderBy("cp.conversation_id", "cp.user_id"))
	if err != nil {
		return nil, 0, fmt.Errorf("error listing participants: %w", err)
	}
	for _, p := range participants {
		if s, ok := byID[p.ConversationID]; ok {
			s.Participants = append(s.Participants, *p)
		}
	}

	return summaries, total, nil
}

// CreateMessage stores a message and bumps the conversation activity time
func (r *ConversationRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := r.sb.Insert("messages").
			Columns("conversation_id", "sender_id", "receiver_id", "content").
			Values(message.ConversationID, message.SenderID, message.ReceiverID, message.Content).
			Suffix("RETURNING id, is_read, created_at")

		if err := scanInto(ctx, tx, query, nil, &message.ID, &message.IsRead, &message.CreatedAt); err != nil {
			logger.Error().Err(err).Int64("conversationID", message.ConversationID).Msg("Error creating message")
			return fmt.Errorf("error creating message: %w", err)
		}

		if _, err := exec(ctx, tx, r.sb.Update("conversations").
			Set("last_message_at", message.CreatedAt).
			Where(squirrel.Eq{"id": message.ConversationID})); err != nil {
			return fmt.Errorf("error updating conversation: %w", err)
		}
		return nil
	})
}

// ListMessages returns a page of messages, newest first
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]*models.Message, int64, error) {
	total, err := queryCount(ctx, r.db, r.sb.Select("COUNT(*)").
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}))
	if err != nil {
		return nil, 0, fmt.Errorf("error counting messages: %w", err)
	}

	query := r.sb.Select(messageColumns...).
		From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	messages, err := queryAll[models.Message](ctx, r.db, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing messages: %w", err)
	}
	return messages, total, nil
}

// unreadFor matches messages userID has not read. It expects messages as m
// joined with the caller's participant row as cp. Direct messages carry their
// own read flag; group messages are unread until the participant's
// last_read_at passes them.
func unreadFor(userID int64) squirrel.Sqlizer {
	return squirrel.And{
		squirrel.NotEq{"m.sender_id": userID},
		squirrel.Or{
			squirrel.And{squirrel.Eq{"m.receiver_id": userID}, squirrel.Eq{"m.is_read": false}},
			squirrel.And{
				squirrel.Eq{"m.receiver_id": nil},
				squirrel.Expr("m.created_at > COALESCE(cp.last_read_at, cp.joined_at)"),
			},
		},
	}
}

func (r *ConversationRepository) unreadQuery(userID int64) squirrel.SelectBuilder {
	return r.sb.Select("COUNT(*)").
		From("messages m").
		Join("conversation_participants cp ON cp.conversation_id = m.conversation_id AND cp.user_id = ?", userID).
		Where(unreadFor(userID))
}

func (r *ConversationRepository) markDirectReadQuery(conversationID, userID int64) squirrel.UpdateBuilder {
	return r.sb.Update("messages").
		Set("is_read", true).
		Where(squirrel.Eq{"conversation_id": conversationID, "receiver_id": userID, "is_read": false})
}

// advanceLastReadQuery moves last_read_at past every stored message so a
// clock difference between app and database can't leave one unread
func (r *ConversationRepository) advanceLastReadQuery(conversationID, userID int64, at time.Time) squirrel.UpdateBuilder {
	return r.sb.Update("conversation_participants").
		Set("last_read_at", squirrel.Expr(
			"GREATEST(last_read_at, ?::timestamptz, (SELECT MAX(created_at) FROM messages WHERE conversation_id = ?))",
			at, conversationID)).
		Where(squirrel.Eq{"conversation_id": conversationID, "user_id": userID})
}

// MarkRead marks the conversation read for userID only and returns how many
// messages were unread
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, userID int64, at time.Time) (int64, error) {
	var unread int64
	err := db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := queryCount(ctx, tx, r.unreadQuery(userID).Where(squirrel.Eq{"m.conversation_id": conversationID}))
		if err != nil {
			return fmt.Errorf("error counting unread messages: %w", err)
		}
		unread = n

		if _, err := exec(ctx, tx, r.markDirectReadQuery(conversationID, userID)); err != nil {
			return fmt.Errorf("error marking messages read: %w", err)
		}
		if _, err := exec(ctx, tx, r.advanceLastReadQuery(conversationID, userID, at)); err != nil {
			return fmt.Errorf("error updating last read time: %w", err)
		}
		return nil
	})
	return unread, err
}

// UnreadCount counts messages userID has not read across all conversations
func (r *ConversationRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	count, err := queryCount(ctx, r.db, r.unreadQuery(userID))
	if err != nil {
		return 0, fmt.Errorf("error counting unread messages: %w", err)
	}
	return int(count), nil
}
