package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/asynkron/protoactor-go/actor"
)

// Client submits commands to a processor and waits for replies. A Client is
// safe for concurrent use; each request gets its own future.
type Client struct {
	root    *actor.RootContext
	pid     *actor.PID
	timeout time.Duration
}

// NewClient binds a client to the processor at pid.
func NewClient(root *actor.RootContext, pid *actor.PID, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{root: root, pid: pid, timeout: timeout}
}

// WithTimeout returns a copy of c that waits at most d for each reply.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cp := *c
	cp.timeout = d
	return &cp
}

// Submit enqueues cmd without waiting for its reply.
func (c *Client) Submit(cmd Command) {
	c.root.Send(c.pid, cmd)
}

func request[T any](c *Client, cmd Command) (T, error) {
	var zero T
	res, err := c.root.RequestFuture(c.pid, cmd, c.timeout).Result()
	if err != nil {
		if errors.Is(err, actor.ErrTimeout) {
			return zero, fmt.Errorf("%s: %w", cmd.CommandName(), ErrTimeout)
		}
		return zero, fmt.Errorf("%s: %w", cmd.CommandName(), err)
	}
	r, ok := res.(*Reply[T])
	if !ok {
		return zero, fmt.Errorf("%s: unexpected reply %T", cmd.CommandName(), res)
	}
	return r.Value, r.Err
}

func (c *Client) RegisterUser(username, password string) (User, error) {
	return request[User](c, &RegisterUserMessage{Username: username, Password: password})
}

func (c *Client) Login(username, password string) (User, error) {
	return request[User](c, &LoginMessage{Username: username, Password: password})
}

func (c *Client) Logout(username string) (User, error) {
	return request[User](c, &LogoutMessage{Username: username})
}

func (c *Client) GetUser(username string) (User, error) {
	return request[User](c, &GetUserMessage{Username: username})
}

func (c *Client) CreateSubreddit(name, description, creator string) (Subreddit, error) {
	return request[Subreddit](c, &CreateSubredditMessage{Name: name, Description: description, Creator: creator})
}

func (c *Client) GetSubreddit(name string) (Subreddit, error) {
	return request[Subreddit](c, &GetSubredditMessage{Name: name})
}

func (c *Client) JoinSubreddit(username, subreddit string) (Subreddit, error) {
	return request[Subreddit](c, &JoinSubredditMessage{Username: username, Subreddit: subreddit})
}

func (c *Client) LeaveSubreddit(username, subreddit string) (Subreddit, error) {
	return request[Subreddit](c, &LeaveSubredditMessage{Username: username, Subreddit: subreddit})
}

func (c *Client) CreatePost(msg CreatePostMessage) (Post, error) {
	return request[Post](c, &msg)
}

func (c *Client) GetPost(postID int64) (Post, error) {
	return request[Post](c, &GetPostMessage{PostID: postID})
}

func (c *Client) CreateComment(author string, postID int64, content string) (Comment, error) {
	return request[Comment](c, &CreateCommentMessage{Author: author, PostID: postID, Content: content})
}

func (c *Client) ReplyToComment(author string, postID, targetCommentID int64, content string) (Comment, error) {
	return request[Comment](c, &ReplyToCommentMessage{
		Author:          author,
		PostID:          postID,
		TargetCommentID: targetCommentID,
		Content:         content,
	})
}

// GetComments returns the rendered comment tree of a post; an unknown post
// yields an empty list.
func (c *Client) GetComments(postID int64) ([]CommentView, error) {
	return request[[]CommentView](c, &GetCommentsMessage{PostID: postID})
}

func (c *Client) UpvotePost(username string, postID int64) (Post, error) {
	return request[Post](c, &VotePostMessage{Username: username, PostID: postID, Upvote: true})
}

func (c *Client) DownvotePost(username string, postID int64) (Post, error) {
	return request[Post](c, &VotePostMessage{Username: username, PostID: postID})
}

func (c *Client) UpvoteComment(username string, commentID int64) (Comment, error) {
	return request[Comment](c, &VoteCommentMessage{Username: username, CommentID: commentID, Upvote: true})
}

func (c *Client) DownvoteComment(username string, commentID int64) (Comment, error) {
	return request[Comment](c, &VoteCommentMessage{Username: username, CommentID: commentID})
}

func (c *Client) GetFeed(username string, limit int) ([]Post, error) {
	return request[[]Post](c, &GetFeedMessage{Username: username, Limit: limit})
}

func (c *Client) SendDirectMessage(from, to, content string) (DirectMessage, error) {
	return request[DirectMessage](c, &SendDMMessage{From: from, To: to, Content: content})
}

func (c *Client) ReplyToDirectMessage(from, to string, messageID int64, content string) (DirectMessage, error) {
	return request[DirectMessage](c, &ReplyToDMMessage{From: from, To: to, OriginalMessageID: messageID, Content: content})
}

func (c *Client) GetDirectMessages(username string) ([]DirectMessage, error) {
	return request[[]DirectMessage](c, &GetDMsMessage{Username: username})
}

func (c *Client) MarkMessageRead(username string, messageID int64) (DirectMessage, error) {
	return request[DirectMessage](c, &MarkDMReadMessage{Username: username, MessageID: messageID})
}

func (c *Client) GetStatistics() (Statistics, error) {
	return request[Statistics](c, &GetStatsMessage{})
}
