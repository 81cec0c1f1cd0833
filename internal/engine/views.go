package engine

import (
	"cmp"
	"slices"
	"time"
)

// topUsersLimit caps the karma leaderboard in Statistics.
const topUsersLimit = 10

// CommentView is the rendered form of a comment and its replies.
type CommentView struct {
	ID         int64         `json:"id"`
	Author     string        `json:"author"`
	Content    string        `json:"content"`
	Upvotes    int           `json:"upvotes"`
	Downvotes  int           `json:"downvotes"`
	Score      int           `json:"score"`
	ReplyCount int           `json:"reply_count"`
	Replies    []CommentView `json:"replies"`
}

// RenderComments maps a comment tree onto views, recursively.
func RenderComments(tree []Comment) []CommentView {
	out := make([]CommentView, 0, len(tree))
	for _, c := range tree {
		out = append(out, CommentView{
			ID:         c.ID,
			Author:     c.Author,
			Content:    c.Content,
			Upvotes:    c.Upvotes,
			Downvotes:  c.Downvotes,
			Score:      c.Score(),
			ReplyCount: len(c.Replies),
			Replies:    RenderComments(c.Replies),
		})
	}
	return out
}

// buildFeed collects posts from the subreddits username currently belongs to,
// newest first, truncated to limit. A non-positive limit means no truncation.
func buildFeed(s *Store, username string, limit int) []Post {
	u, ok := s.user(username)
	if !ok {
		return []Post{}
	}
	var picked []*Post
	for name := range u.Subreddits {
		for _, id := range s.postsBySubreddit[name] {
			if p, ok := s.post(id); ok {
				picked = append(picked, p)
			}
		}
	}
	slices.SortFunc(picked, func(a, b *Post) int {
		if c := cmp.Compare(b.Seq, a.Seq); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(picked) > limit {
		picked = picked[:limit]
	}
	feed := make([]Post, len(picked))
	for i, p := range picked {
		feed[i] = p.clone()
	}
	return feed
}

// buildInbox returns the messages received by username, most recent first.
func buildInbox(s *Store, username string) []DirectMessage {
	u, ok := s.user(username)
	if !ok {
		return []DirectMessage{}
	}
	inbox := make([]DirectMessage, 0, len(u.Messages))
	for i := len(u.Messages) - 1; i >= 0; i-- {
		if m, ok := s.messages[u.Messages[i]]; ok {
			inbox = append(inbox, m.clone())
		}
	}
	return inbox
}

func buildStatistics(s *Store, now time.Time) Statistics {
	stats := Statistics{
		Users:             len(s.users),
		Subreddits:        len(s.subreddits),
		Posts:             len(s.posts),
		Comments:          len(s.comments),
		DirectMessages:    len(s.messages),
		Upvotes:           s.upvotes,
		Downvotes:         s.downvotes,
		CommandsProcessed: s.processed,
		Elapsed:           now.Sub(s.startedAt),
	}
	if secs := stats.Elapsed.Seconds(); secs > 0 {
		stats.Throughput = float64(stats.CommandsProcessed) / secs
	}

	ranking := make([]UserKarma, 0, len(s.users))
	for name, u := range s.users {
		if u.Connected {
			stats.ConnectedUsers++
		}
		ranking = append(ranking, UserKarma{Username: name, Karma: u.Karma})
	}
	slices.SortFunc(ranking, func(a, b UserKarma) int {
		if c := cmp.Compare(b.Karma, a.Karma); c != 0 {
			return c
		}
		return cmp.Compare(a.Username, b.Username)
	})
	if len(ranking) > topUsersLimit {
		ranking = ranking[:topUsersLimit]
	}
	stats.TopUsers = ranking
	return stats
}

// RecomputeKarma derives username's karma from scratch: the score of every
// post they wrote plus the score of every comment they wrote at any depth.
// The processor never reads it; it exists to cross-check the incremental
// counter.
func RecomputeKarma(s *Store, username string) int {
	total := 0
	for _, p := range s.posts {
		if p.Author == username {
			total += p.Score()
		}
		total += authoredScore(p.Comments, username)
	}
	return total
}

func authoredScore(tree []Comment, username string) int {
	total := 0
	for _, c := range tree {
		if c.Author == username {
			total += c.Score()
		}
		total += authoredScore(c.Replies, username)
	}
	return total
}
