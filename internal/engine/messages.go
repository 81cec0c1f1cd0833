package engine

// Command is a message the Processor accepts. CommandName is the label used
// for logs and metrics.
type Command interface {
	CommandName() string
}

// Reply is what the Processor responds with for every command. Err is nil or
// an *Error.
type Reply[T any] struct {
	Value T
	Err   error
}

// Failure returns the error carried by the reply.
func (r *Reply[T]) Failure() error { return r.Err }

type failer interface {
	Failure() error
}

type RegisterUserMessage struct {
	Username string
	Password string
}

type LoginMessage struct {
	Username string
	Password string
}

type LogoutMessage struct {
	Username string
}

type GetUserMessage struct {
	Username string
}

type CreateSubredditMessage struct {
	Name        string
	Description string
	Creator     string
}

type GetSubredditMessage struct {
	Name string
}

type JoinSubredditMessage struct {
	Username  string
	Subreddit string
}

type LeaveSubredditMessage struct {
	Username  string
	Subreddit string
}

type CreatePostMessage struct {
	Author    string
	Subreddit string
	Title     string
	Content   string
	IsRepost  bool
}

type GetPostMessage struct {
	PostID int64
}

type CreateCommentMessage struct {
	Author  string
	PostID  int64
	Content string
}

type ReplyToCommentMessage struct {
	Author          string
	PostID          int64
	TargetCommentID int64
	Content         string
}

type GetCommentsMessage struct {
	PostID int64
}

type VotePostMessage struct {
	Username string
	PostID   int64
	Upvote   bool
}

type VoteCommentMessage struct {
	Username  string
	CommentID int64
	Upvote    bool
}

type GetFeedMessage struct {
	Username string
	Limit    int
}

type SendDMMessage struct {
	From    string
	To      string
	Content string
}

type ReplyToDMMessage struct {
	From              string
	To                string
	OriginalMessageID int64
	Content           string
}

type GetDMsMessage struct {
	Username string
}

type MarkDMReadMessage struct {
	Username  string
	MessageID int64
}

type GetStatsMessage struct{}

func (*RegisterUserMessage) CommandName() string    { return "register_user" }
func (*LoginMessage) CommandName() string           { return "login" }
func (*LogoutMessage) CommandName() string          { return "logout" }
func (*GetUserMessage) CommandName() string         { return "get_user" }
func (*CreateSubredditMessage) CommandName() string { return "create_subreddit" }
func (*GetSubredditMessage) CommandName() string    { return "get_subreddit" }
func (*JoinSubredditMessage) CommandName() string   { return "join_subreddit" }
func (*LeaveSubredditMessage) CommandName() string  { return "leave_subreddit" }
func (*CreatePostMessage) CommandName() string      { return "create_post" }
func (*GetPostMessage) CommandName() string         { return "get_post" }
func (*CreateCommentMessage) CommandName() string   { return "create_comment" }
func (*ReplyToCommentMessage) CommandName() string  { return "reply_to_comment" }
func (*GetCommentsMessage) CommandName() string     { return "get_comments" }
func (*GetFeedMessage) CommandName() string         { return "get_feed" }
func (*SendDMMessage) CommandName() string          { return "send_dm" }
func (*ReplyToDMMessage) CommandName() string       { return "reply_to_dm" }
func (*GetDMsMessage) CommandName() string          { return "get_dms" }
func (*MarkDMReadMessage) CommandName() string      { return "mark_dm_read" }
func (*GetStatsMessage) CommandName() string        { return "get_stats" }

func (m *VotePostMessage) CommandName() string {
	if m.Upvote {
		return "upvote_post"
	}
	return "downvote_post"
}

func (m *VoteCommentMessage) CommandName() string {
	if m.Upvote {
		return "upvote_comment"
	}
	return "downvote_comment"
}
