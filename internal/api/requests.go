package api

// Request bodies. Validation tags are the transport-level rules; the engine
// itself accepts any strings.

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateSubredditRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Description string `json:"description" validate:"max=512"`
}

type CreatePostRequest struct {
	Title     string `json:"title" validate:"max=300"`
	Content   string `json:"content" validate:"required"`
	Subreddit string `json:"subreddit" validate:"required"`
	Repost    bool   `json:"repost"`
}

type CommentRequest struct {
	Content  string `json:"content" validate:"required"`
	ParentID int64  `json:"parent_id,omitempty" validate:"gte=0"`
}

type VoteRequest struct {
	Upvote bool `json:"upvote"`
}

type MessageRequest struct {
	To      string `json:"to" validate:"required"`
	Content string `json:"content" validate:"required"`
}
