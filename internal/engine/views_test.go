package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderComments(t *testing.T) {
	tree := []Comment{
		{ID: 1, Author: "alice", Content: "root", Upvotes: 5, Downvotes: 2, Replies: []Comment{
			{ID: 2, Author: "bob", Content: "child", Downvotes: 1},
		}},
	}
	views := RenderComments(tree)
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].Score)
	assert.Equal(t, 1, views[0].ReplyCount)
	require.Len(t, views[0].Replies, 1)
	assert.Equal(t, -1, views[0].Replies[0].Score)
	assert.Equal(t, "bob", views[0].Replies[0].Author)
	assert.NotNil(t, views[0].Replies[0].Replies)
	assert.Empty(t, views[0].Replies[0].Replies)
}

func TestBuildFeed_TiesPreferHigherID(t *testing.T) {
	s := NewStore(time.Now())
	s.users["alice"] = &User{Username: "alice", Subreddits: map[string]bool{"golang": true}}
	s.posts[1] = &Post{ID: 1, Subreddit: "golang", Seq: 7}
	s.posts[2] = &Post{ID: 2, Subreddit: "golang", Seq: 7}
	s.posts[3] = &Post{ID: 3, Subreddit: "golang", Seq: 3}
	s.postsBySubreddit["golang"] = []int64{1, 2, 3}

	feed := buildFeed(s, "alice", 0)
	require.Len(t, feed, 3)
	assert.Equal(t, []int64{2, 1, 3}, []int64{feed[0].ID, feed[1].ID, feed[2].ID})

	assert.Len(t, buildFeed(s, "alice", 2), 2)
}

func TestBuildStatistics_TopUsersCapped(t *testing.T) {
	start := time.Unix(0, 0)
	s := NewStore(start)
	for i := range 15 {
		name := string(rune('a' + i))
		s.users[name] = &User{Username: name, Karma: i}
	}
	stats := buildStatistics(s, start)
	require.Len(t, stats.TopUsers, topUsersLimit)
	assert.Equal(t, UserKarma{Username: "o", Karma: 14}, stats.TopUsers[0])
	assert.Zero(t, stats.Throughput)
}

func TestRecomputeKarma_Deep(t *testing.T) {
	s := NewStore(time.Now())
	s.posts[1] = &Post{ID: 1, Author: "alice", Upvotes: 4, Downvotes: 1, Comments: []Comment{
		{ID: 1, Author: "bob", Upvotes: 2, Replies: []Comment{
			{ID: 2, Author: "alice", Downvotes: 3, Replies: []Comment{
				{ID: 3, Author: "alice", Upvotes: 1},
			}},
		}},
	}}
	assert.Equal(t, 3-3+1, RecomputeKarma(s, "alice"))
	assert.Equal(t, 2, RecomputeKarma(s, "bob"))
	assert.Zero(t, RecomputeKarma(s, "carol"))
}
