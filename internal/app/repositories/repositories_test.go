package repositories

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
)

func TestDirectKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "3:9", DirectKey(9, 3))
	assert.Equal(t, DirectKey(3, 9), DirectKey(9, 3))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%go%`, likePattern("go"))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestApplyEventFilter(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := applyEventFilter(newBuilder().Select("id").From("events"), models.EventFilter{
		UniversityID: 4,
		UpcomingOnly: true,
		Now:          now,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM events WHERE university_id = $1 AND status <> $2 AND start_time > $3", sql)
	assert.Equal(t, []interface{}{int64(4), models.EventStatusDraft, now}, args)
}

func TestApplyEventFilterWithDrafts(t *testing.T) {
	sql, _, err := applyEventFilter(newBuilder().Select("id").From("events"), models.EventFilter{
		UniversityID:  4,
		IncludeDrafts: true,
		Status:        models.EventStatusDraft,
		OrganizerID:   7,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM events WHERE university_id = $1 AND status = $2 AND organizer_id = $3", sql)
}

func TestApplyProfileFilter(t *testing.T) {
	sql, args, err := applyProfileFilter(newBuilder().Select("u.id").From("users u"), models.ProfileFilter{
		UniversityID: 2,
		Role:         models.RoleAlumni,
		MentorsOnly:  true,
		ExcludeUser:  5,
		Skill:        "Go",
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "u.is_active = $1")
	assert.Contains(t, sql, "u.university_id = $2")
	assert.Contains(t, sql, "u.role_type = $3")
	assert.Contains(t, sql, "p.is_mentor = $4")
	assert.Contains(t, sql, "u.id <> $5")
	assert.Contains(t, sql, "lower(s) = lower($6)")
	assert.Equal(t, []interface{}{true, int64(2), models.RoleAlumni, true, int64(5), "Go"}, args)
}

func TestApplyJobFilterSearch(t *testing.T) {
	sql, args, err := applyJobFilter(newBuilder().Select("id").From("jobs"), models.JobFilter{
		UniversityID: 1,
		ActiveOnly:   true,
		Search:       "rust",
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM jobs WHERE university_id = $1 AND is_active = $2 AND (title ILIKE $3 OR company ILIKE $4 OR description ILIKE $5)", sql)
	assert.Equal(t, "%rust%", args[2])
}

func TestUnreadCountUsesPerMemberReadState(t *testing.T) {
	r := NewConversationRepository(nil)
	sql, args, err := r.unreadQuery(12).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id AND cp.user_id = $1")
	assert.Contains(t, sql, "m.sender_id <> $2")
	assert.Contains(t, sql, "(m.receiver_id = $3 AND m.is_read = $4)")
	assert.Contains(t, sql, "(m.receiver_id IS NULL AND m.created_at > COALESCE(cp.last_read_at, cp.joined_at))")
	assert.Equal(t, []interface{}{int64(12), int64(12), int64(12), false}, args)
}

// In a group of A, B and C, A reading the conversation must not touch the
// rows C counts as unread: only direct messages addressed to A change, and
// group messages are tracked by A's own participant row.
func TestMarkReadInGroupOnlyAffectsReader(t *testing.T) {
	const conversationID, memberA = int64(5), int64(1)
	r := NewConversationRepository(nil)

	sql, args, err := r.markDirectReadQuery(conversationID, memberA).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE messages SET is_read = $1 WHERE conversation_id = $2 AND is_read = $3 AND receiver_id = $4", sql)
	assert.Equal(t, []interface{}{true, conversationID, false, memberA}, args)

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	sql, args, err = r.advanceLastReadQuery(conversationID, memberA, at).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "UPDATE conversation_participants SET last_read_at = GREATEST(last_read_at, $1::timestamptz, (SELECT MAX(created_at) FROM messages WHERE conversation_id = $2))")
	assert.Contains(t, sql, "WHERE conversation_id = $3 AND user_id = $4")
	assert.Equal(t, []interface{}{at, conversationID, conversationID, memberA}, args)
}

func TestCancelEventQueries(t *testing.T) {
	r := NewEventRepository(nil)

	sql, args, err := r.lockQuery(5).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, "FROM events WHERE id = $1 FOR UPDATE"), sql)
	assert.Equal(t, []interface{}{int64(5)}, args)

	sql, args, err = r.cancelQuery(5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2", sql)
	assert.Equal(t, []interface{}{models.EventStatusCancelled, int64(5)}, args)

	sql, args, err = r.registrantsQuery(5).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT user_id FROM event_registrations WHERE event_id = $1 AND status <> $2 ORDER BY user_id", sql)
	assert.Equal(t, []interface{}{int64(5), models.RegistrationCancelled}, args)
}
