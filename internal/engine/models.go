package engine

import (
	"maps"
	"slices"
	"time"
)

// User is a registered account. Messages holds the ids of received direct
// messages in arrival order.
type User struct {
	Username   string          `json:"username"`
	Password   string          `json:"-"`
	Karma      int             `json:"karma"`
	Connected  bool            `json:"connected"`
	CreatedAt  time.Time       `json:"created_at"`
	Subreddits map[string]bool `json:"subreddits"`
	Messages   []int64         `json:"messages"`
}

func (u *User) clone() User {
	c := *u
	c.Subreddits = maps.Clone(u.Subreddits)
	if c.Subreddits == nil {
		c.Subreddits = map[string]bool{}
	}
	c.Messages = slices.Clone(u.Messages)
	return c
}

// Subreddit is a community. Posts lists post ids in creation order.
type Subreddit struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	CreatedAt   time.Time `json:"created_at"`
	Posts       []int64   `json:"posts"`
	Members     int       `json:"members"`
}

func (s *Subreddit) clone() Subreddit {
	c := *s
	c.Posts = slices.Clone(s.Posts)
	return c
}

// Post is a submission to a subreddit. Comments is the top-level comment tree.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Subreddit string    `json:"subreddit"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	Comments  []Comment `json:"comments"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
	IsRepost  bool      `json:"is_repost"`
}

// Score is upvotes minus downvotes.
func (p *Post) Score() int { return p.Upvotes - p.Downvotes }

func (p *Post) clone() Post {
	c := *p
	c.Comments = cloneComments(p.Comments)
	return c
}

// Comment is a node in a post's comment tree. ParentID is zero for top-level
// comments.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	ParentID  int64     `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies"`
}

// Score is upvotes minus downvotes.
func (c *Comment) Score() int { return c.Upvotes - c.Downvotes }

func cloneComments(tree []Comment) []Comment {
	if tree == nil {
		return []Comment{}
	}
	out := make([]Comment, len(tree))
	for i, c := range tree {
		c.Replies = cloneComments(c.Replies)
		out[i] = c
	}
	return out
}

// DirectMessage is a private message. Replies holds full copies of reply
// messages; each reply is also stored on its own under its own id.
type DirectMessage struct {
	ID        int64           `json:"id"`
	ParentID  int64           `json:"parent_id,omitempty"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Content   string          `json:"content"`
	Replies   []DirectMessage `json:"replies"`
	Seq       int64           `json:"seq"`
	CreatedAt time.Time       `json:"created_at"`
	Read      bool            `json:"read"`
}

func (m *DirectMessage) clone() DirectMessage {
	c := *m
	c.Replies = make([]DirectMessage, len(m.Replies))
	for i := range m.Replies {
		c.Replies[i] = m.Replies[i].clone()
	}
	return c
}

// UserKarma pairs a username with its karma for leaderboards.
type UserKarma struct {
	Username string `json:"username"`
	Karma    int    `json:"karma"`
}

// Statistics is a derived snapshot of engine counters.
type Statistics struct {
	Users             int           `json:"total_users"`
	ConnectedUsers    int           `json:"connected_users"`
	Subreddits        int           `json:"total_subreddits"`
	Posts             int           `json:"total_posts"`
	Comments          int           `json:"total_comments"`
	DirectMessages    int           `json:"total_direct_messages"`
	Upvotes           int64         `json:"total_upvotes"`
	Downvotes         int64         `json:"total_downvotes"`
	CommandsProcessed int64         `json:"commands_processed"`
	Elapsed           time.Duration `json:"elapsed_ns"`
	Throughput        float64       `json:"commands_per_second"`
	TopUsers          []UserKarma   `json:"top_users"`
}
