package dto

import "github.com/yigit/unilink/internal/app/models"

// PostRequest is the body of POST /posts and PUT /posts/:id
type PostRequest struct {
	Content string `json:"content" binding:"required,min=1,max=10000" example:"Hiring interns this summer!"`
}

// CommentRequest is the body of POST /posts/:id/comments
type CommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=2000" example:"Congrats!"`
}

// PostDetailResponse is a post with its comments
type PostDetailResponse struct {
	*models.Post
	Comments []*models.PostComment `json:"comments"`
}
