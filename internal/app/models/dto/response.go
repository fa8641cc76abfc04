package dto

// APIResponse wraps a single resource
type APIResponse struct {
	Data interface{} `json:"data"`
}

// Pagination describes the window of a list response
type Pagination struct {
	Limit  int   `json:"limit" example:"20"`
	Offset int   `json:"offset" example:"0"`
	Total  int64 `json:"total" example:"42"`
}

// PaginatedResponse wraps a list of resources
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// SuccessResponse represents a standard success response for API endpoints
type SuccessResponse struct {
	Message string `json:"message" example:"ok"`
}

// CountResponse carries a single counter, such as unread messages
type CountResponse struct {
	Count int `json:"count" example:"3"`
}
