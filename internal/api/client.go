package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reddit-engine/internal/engine"
)

// Client talks to a Server over HTTP on behalf of one user.
type Client struct {
	baseURL  string
	username string
	client   *http.Client
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Kind       engine.ErrorKind
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Kind, e.Message)
}

// NewClient returns a client acting as username.
func NewClient(baseURL, username string) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Register(password string) (engine.User, error) {
	var user engine.User
	err := c.do(http.MethodPost, "/api/register", RegisterRequest{Username: c.username, Password: password}, &user)
	return user, err
}

func (c *Client) CreateSubreddit(name, description string) (engine.Subreddit, error) {
	var sr engine.Subreddit
	err := c.do(http.MethodPost, "/api/subreddits", CreateSubredditRequest{Name: name, Description: description}, &sr)
	return sr, err
}

func (c *Client) JoinSubreddit(name string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/subreddits/%s/join", name), nil, nil)
}

func (c *Client) LeaveSubreddit(name string) error {
	return c.do(http.MethodPost, fmt.Sprintf("/api/subreddits/%s/leave", name), nil, nil)
}

func (c *Client) CreatePost(title, content, subreddit string) (engine.Post, error) {
	var post engine.Post
	err := c.do(http.MethodPost, "/api/posts", CreatePostRequest{Title: title, Content: content, Subreddit: subreddit}, &post)
	return post, err
}

func (c *Client) GetPosts(limit int) ([]engine.Post, error) {
	var posts []engine.Post
	err := c.do(http.MethodGet, fmt.Sprintf("/api/posts?limit=%d", limit), nil, &posts)
	return posts, err
}

func (c *Client) VotePost(postID int64, upvote bool) (engine.Post, error) {
	var post engine.Post
	err := c.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/vote", postID), VoteRequest{Upvote: upvote}, &post)
	return post, err
}

func (c *Client) Comment(postID, parentID int64, content string) (engine.Comment, error) {
	var comment engine.Comment
	err := c.do(http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", postID), CommentRequest{Content: content, ParentID: parentID}, &comment)
	return comment, err
}

func (c *Client) GetComments(postID int64) ([]engine.CommentView, error) {
	var comments []engine.CommentView
	err := c.do(http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", postID), nil, &comments)
	return comments, err
}

func (c *Client) SendMessage(to, content string) (engine.DirectMessage, error) {
	var msg engine.DirectMessage
	err := c.do(http.MethodPost, "/api/messages", MessageRequest{To: to, Content: content}, &msg)
	return msg, err
}

func (c *Client) ReplyMessage(messageID int64, to, content string) (engine.DirectMessage, error) {
	var msg engine.DirectMessage
	err := c.do(http.MethodPost, fmt.Sprintf("/api/messages/%d/reply", messageID), MessageRequest{To: to, Content: content}, &msg)
	return msg, err
}

func (c *Client) GetMessages() ([]engine.DirectMessage, error) {
	var msgs []engine.DirectMessage
	err := c.do(http.MethodGet, "/api/messages", nil, &msgs)
	return msgs, err
}

func (c *Client) GetStats() (engine.Statistics, error) {
	var stats engine.Statistics
	err := c.do(http.MethodGet, "/api/stats", nil, &stats)
	return stats, err
}

// do sends body as JSON and decodes the envelope's data field into out.
func (c *Client) do(method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Username", c.username)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return &APIError{StatusCode: resp.StatusCode, Kind: engine.ErrorKind(errResp.Kind), Message: errResp.Message}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}
