package models

import "time"

// Post is a feed entry
type Post struct {
	ID              int64     `json:"id" db:"id"`
	UniversityID    int64     `json:"universityId" db:"university_id"`
	AuthorID        int64     `json:"authorId" db:"author_id"`
	AuthorFirstName string    `json:"authorFirstName" db:"author_first_name"`
	AuthorLastName  string    `json:"authorLastName" db:"author_last_name"`
	Content         string    `json:"content" db:"content"`
	LikeCount       int       `json:"likeCount" db:"like_count"`
	CommentCount    int       `json:"commentCount" db:"comment_count"`
	LikedByMe       bool      `json:"likedByMe" db:"liked_by_me"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// PostComment is a reply to a post
type PostComment struct {
	ID              int64     `json:"id" db:"id"`
	PostID          int64     `json:"postId" db:"post_id"`
	AuthorID        int64     `json:"authorId" db:"author_id"`
	AuthorFirstName string    `json:"authorFirstName" db:"author_first_name"`
	AuthorLastName  string    `json:"authorLastName" db:"author_last_name"`
	Content         string    `json:"content" db:"content"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// PostFilter narrows the feed
type PostFilter struct {
	UniversityID int64
	AuthorID     int64
	ViewerID     int64
	Limit        int
	Offset       int
}
