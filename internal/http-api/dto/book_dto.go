package dto

type BookURI struct {
	BookID string `uri:"book_id" binding:"required,uuid"`
}

type CreateBookRequest struct {
	Title      string `json:"title" binding:"required"`
	Author     string `json:"author"`
	TotalPages int    `json:"total_pages" binding:"required,gt=0"`
}

type UpdateBookRequest struct {
	Title      string `json:"title" binding:"required"`
	Author     string `json:"author"`
	TotalPages int    `json:"total_pages" binding:"required,gt=0"`
}

// UpdateProgressRequest carries a raw "moved to page N" event. Backward
// corrections and overshoots past the last page are legal inputs the
// ledger clamps, but a page can never be negative.
type UpdateProgressRequest struct {
	Page int `json:"page" binding:"gte=0"`
}
