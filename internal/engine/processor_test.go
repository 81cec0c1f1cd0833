package engine

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time            { return c.t }
func (c *fakeClock) Advance(d time.Duration)   { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock                 { return &fakeClock{t: time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)} }
func newTestProcessor(t *testing.T) *Processor { return newTestProcessorWithClock(t, newFakeClock()) }

func newTestProcessorWithClock(t *testing.T, clock *fakeClock) *Processor {
	t.Helper()
	return NewProcessor(NewStore(clock.Now()), slog.New(slog.DiscardHandler), clock.Now)
}

func apply[T any](t *testing.T, p *Processor, cmd Command) (T, error) {
	t.Helper()
	r, ok := p.Apply(cmd).(*Reply[T])
	require.True(t, ok, "unexpected reply type for %s", cmd.CommandName())
	return r.Value, r.Err
}

func mustApply[T any](t *testing.T, p *Processor, cmd Command) T {
	t.Helper()
	v, err := apply[T](t, p, cmd)
	require.NoError(t, err, cmd.CommandName())
	return v
}

// seed registers users and creates a subreddit owned by the first one.
func seed(t *testing.T, p *Processor, subreddit string, users ...string) {
	t.Helper()
	for _, u := range users {
		mustApply[User](t, p, &RegisterUserMessage{Username: u, Password: "secret"})
	}
	mustApply[Subreddit](t, p, &CreateSubredditMessage{Name: subreddit, Creator: users[0]})
}

func TestProcessor_RegisterUser(t *testing.T) {
	p := newTestProcessor(t)

	u, err := apply[User](t, p, &RegisterUserMessage{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, 0, u.Karma)
	assert.True(t, u.Connected)
	assert.Empty(t, u.Subreddits)
	assert.Empty(t, u.Messages)

	_, err = apply[User](t, p, &RegisterUserMessage{Username: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func TestProcessor_LoginLogout(t *testing.T) {
	p := newTestProcessor(t)
	mustApply[User](t, p, &RegisterUserMessage{Username: "alice", Password: "hunter2"})

	u := mustApply[User](t, p, &LogoutMessage{Username: "alice"})
	assert.False(t, u.Connected)

	_, err := apply[User](t, p, &LoginMessage{Username: "alice", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u = mustApply[User](t, p, &LoginMessage{Username: "alice", Password: "hunter2"})
	assert.True(t, u.Connected)

	_, err = apply[User](t, p, &LoginMessage{Username: "bob"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = apply[User](t, p, &LogoutMessage{Username: "bob"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProcessor_CreateSubreddit(t *testing.T) {
	p := newTestProcessor(t)

	_, err := apply[Subreddit](t, p, &CreateSubredditMessage{Name: "golang", Creator: "ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	mustApply[User](t, p, &RegisterUserMessage{Username: "alice"})
	sr := mustApply[Subreddit](t, p, &CreateSubredditMessage{Name: "golang", Description: "gophers", Creator: "alice"})
	assert.Equal(t, "golang", sr.Name)
	assert.Equal(t, "gophers", sr.Description)
	assert.Equal(t, 1, sr.Members)

	u := mustApply[User](t, p, &GetUserMessage{Username: "alice"})
	assert.True(t, u.Subreddits["golang"], "creator joins the subreddit")

	_, err = apply[Subreddit](t, p, &CreateSubredditMessage{Name: "golang", Creator: "alice"})
	assert.ErrorIs(t, err, ErrDuplicateSubreddit)
}

func TestProcessor_JoinLeave(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")

	tests := []struct {
		name string
		cmd  Command
		want error
	}{
		{"join unknown user", &JoinSubredditMessage{Username: "ghost", Subreddit: "golang"}, ErrUserNotFound},
		{"join unknown subreddit", &JoinSubredditMessage{Username: "bob", Subreddit: "rust"}, ErrSubredditNotFound},
		{"leave before join", &LeaveSubredditMessage{Username: "bob", Subreddit: "golang"}, ErrNotMember},
		{"join", &JoinSubredditMessage{Username: "bob", Subreddit: "golang"}, nil},
		{"join twice", &JoinSubredditMessage{Username: "bob", Subreddit: "golang"}, ErrAlreadyMember},
		{"leave", &LeaveSubredditMessage{Username: "bob", Subreddit: "golang"}, nil},
		{"leave twice", &LeaveSubredditMessage{Username: "bob", Subreddit: "golang"}, ErrNotMember},
		{"leave unknown user", &LeaveSubredditMessage{Username: "ghost", Subreddit: "golang"}, ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := apply[Subreddit](t, p, tt.cmd)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, ok := p.store.members["golang"]["bob"]
	assert.False(t, ok, "reverse index updated on leave")
	_, ok = p.store.members["golang"]["alice"]
	assert.True(t, ok)
}

func TestProcessor_CreatePost_RequiresMembership(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")

	first := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang", Content: "hello"})
	assert.Equal(t, int64(1), first.ID)

	_, err := apply[Post](t, p, &CreatePostMessage{Author: "bob", Subreddit: "golang", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotMember)

	mustApply[Subreddit](t, p, &JoinSubredditMessage{Username: "bob", Subreddit: "golang"})
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "bob", Subreddit: "golang", Content: "hi", IsRepost: true})
	assert.Equal(t, first.ID+1, post.ID, "failed create must not consume an id")
	assert.True(t, post.IsRepost)

	sr := mustApply[Subreddit](t, p, &GetSubredditMessage{Name: "golang"})
	assert.Equal(t, []int64{1, 2}, sr.Posts)
	assert.Equal(t, []int64{1, 2}, p.store.postsBySubreddit["golang"])
}

func TestProcessor_CreatePost_CheckOrder(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")

	_, err := apply[Post](t, p, &CreatePostMessage{Author: "ghost", Subreddit: "nowhere"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = apply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "nowhere"})
	assert.ErrorIs(t, err, ErrSubredditNotFound)
}

func TestProcessor_MembershipCheckedAtCreation(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")

	mustApply[Subreddit](t, p, &LeaveSubredditMessage{Username: "alice", Subreddit: "golang"})
	_, err := apply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestProcessor_ReplyToReply(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang", Content: "post"})

	c1 := mustApply[Comment](t, p, &CreateCommentMessage{Author: "bob", PostID: post.ID, Content: "c1"})
	c2 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: post.ID, TargetCommentID: c1.ID, Content: "c2"})
	c3 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "bob", PostID: post.ID, TargetCommentID: c2.ID, Content: "c3"})
	require.Equal(t, []int64{1, 2, 3}, []int64{c1.ID, c2.ID, c3.ID})
	assert.Equal(t, c2.ID, c3.ParentID)

	views := mustApply[[]CommentView](t, p, &GetCommentsMessage{PostID: post.ID})
	require.Len(t, views, 1, "c3 must not become a top-level comment")
	require.Equal(t, int64(1), views[0].ID)
	require.Len(t, views[0].Replies, 1, "c3 must not become a sibling of c2")
	assert.Equal(t, int64(2), views[0].Replies[0].ID)
	require.Len(t, views[0].Replies[0].Replies, 1)
	assert.Equal(t, int64(3), views[0].Replies[0].Replies[0].ID)
	assert.Equal(t, "c3", views[0].Replies[0].Replies[0].Content)

	assert.Len(t, p.store.comments, 3)
	assert.Equal(t, []int64{1, 2, 3}, p.store.commentsByPost[post.ID])
}

func TestProcessor_ReplyInsertedFirst(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	root := mustApply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: post.ID, Content: "root"})

	for _, content := range []string{"a", "b", "c"} {
		mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: post.ID, TargetCommentID: root.ID, Content: content})
	}

	views := mustApply[[]CommentView](t, p, &GetCommentsMessage{PostID: post.ID})
	require.Len(t, views, 1)
	var got []string
	for _, r := range views[0].Replies {
		got = append(got, r.Content)
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
	assert.Equal(t, 3, views[0].ReplyCount)
}

func TestProcessor_ReplyToComment_Errors(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")
	p1 := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	p2 := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	other := mustApply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: p2.ID})

	_, err := apply[Comment](t, p, &ReplyToCommentMessage{Author: "ghost", PostID: p1.ID, TargetCommentID: other.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = apply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: 99, TargetCommentID: other.ID})
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = apply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: p1.ID, TargetCommentID: other.ID})
	assert.ErrorIs(t, err, ErrCommentNotFound, "comment belongs to another post")

	next := mustApply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: p1.ID})
	assert.Equal(t, other.ID+1, next.ID, "failed replies must not consume ids")

	_, err = apply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: 99})
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = apply[Comment](t, p, &CreateCommentMessage{Author: "ghost", PostID: p1.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProcessor_VotesAdjustKarma(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob", "carol")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})

	for _, voter := range []string{"bob", "carol", "alice"} {
		mustApply[Post](t, p, &VotePostMessage{Username: voter, PostID: post.ID, Upvote: true})
	}
	got := mustApply[Post](t, p, &GetPostMessage{PostID: post.ID})
	assert.Equal(t, 3, got.Upvotes)
	assert.Equal(t, 3, mustApply[User](t, p, &GetUserMessage{Username: "alice"}).Karma)

	// Same voter repeatedly: every vote counts.
	for range 3 {
		mustApply[Post](t, p, &VotePostMessage{Username: "bob", PostID: post.ID})
	}
	got = mustApply[Post](t, p, &GetPostMessage{PostID: post.ID})
	assert.Equal(t, 3, got.Downvotes)
	assert.Equal(t, 0, mustApply[User](t, p, &GetUserMessage{Username: "alice"}).Karma)
	assert.Equal(t, 0, mustApply[User](t, p, &GetUserMessage{Username: "bob"}).Karma, "voter karma untouched")

	_, err := apply[Post](t, p, &VotePostMessage{Username: "ghost", PostID: post.ID, Upvote: true})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = apply[Post](t, p, &VotePostMessage{Username: "bob", PostID: 42, Upvote: true})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestProcessor_CommentVotes(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	c1 := mustApply[Comment](t, p, &CreateCommentMessage{Author: "bob", PostID: post.ID, Content: "c1"})
	c2 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "bob", PostID: post.ID, TargetCommentID: c1.ID, Content: "c2"})

	mustApply[Comment](t, p, &VoteCommentMessage{Username: "alice", CommentID: c2.ID, Upvote: true})
	mustApply[Comment](t, p, &VoteCommentMessage{Username: "alice", CommentID: c2.ID, Upvote: true})
	voted := mustApply[Comment](t, p, &VoteCommentMessage{Username: "bob", CommentID: c1.ID})
	assert.Equal(t, 1, voted.Downvotes)

	views := mustApply[[]CommentView](t, p, &GetCommentsMessage{PostID: post.ID})
	require.Len(t, views, 1)
	assert.Equal(t, -1, views[0].Score)
	require.Len(t, views[0].Replies, 1)
	assert.Equal(t, 2, views[0].Replies[0].Upvotes)
	assert.Equal(t, 2, views[0].Replies[0].Score)
	assert.Equal(t, 2, p.store.comments[c2.ID].Upvotes, "canonical record updated")

	assert.Equal(t, 1, mustApply[User](t, p, &GetUserMessage{Username: "bob"}).Karma)

	_, err := apply[Comment](t, p, &VoteCommentMessage{Username: "alice", CommentID: 77, Upvote: true})
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = apply[Comment](t, p, &VoteCommentMessage{Username: "ghost", CommentID: c1.ID, Upvote: true})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProcessor_KarmaMatchesRecomputation(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	mustApply[Subreddit](t, p, &JoinSubredditMessage{Username: "bob", Subreddit: "golang"})
	pa := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	pb := mustApply[Post](t, p, &CreatePostMessage{Author: "bob", Subreddit: "golang"})
	c1 := mustApply[Comment](t, p, &CreateCommentMessage{Author: "bob", PostID: pa.ID})
	c2 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: pa.ID, TargetCommentID: c1.ID})
	c3 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "bob", PostID: pa.ID, TargetCommentID: c2.ID})

	votes := []Command{
		&VotePostMessage{Username: "bob", PostID: pa.ID, Upvote: true},
		&VotePostMessage{Username: "alice", PostID: pb.ID},
		&VotePostMessage{Username: "alice", PostID: pb.ID, Upvote: true},
		&VoteCommentMessage{Username: "alice", CommentID: c1.ID, Upvote: true},
		&VoteCommentMessage{Username: "alice", CommentID: c3.ID},
		&VoteCommentMessage{Username: "bob", CommentID: c2.ID, Upvote: true},
		&VoteCommentMessage{Username: "bob", CommentID: c2.ID, Upvote: true},
	}
	for _, v := range votes {
		p.Apply(v)
	}

	for _, name := range []string{"alice", "bob"} {
		u := mustApply[User](t, p, &GetUserMessage{Username: name})
		assert.Equal(t, RecomputeKarma(p.store, name), u.Karma, name)
	}
	assert.Equal(t, 3, mustApply[User](t, p, &GetUserMessage{Username: "alice"}).Karma)
}

func TestProcessor_Feed(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	mustApply[Subreddit](t, p, &CreateSubredditMessage{Name: "rust", Creator: "bob"})
	mustApply[Subreddit](t, p, &CreateSubredditMessage{Name: "zig", Creator: "bob"})
	mustApply[Subreddit](t, p, &JoinSubredditMessage{Username: "alice", Subreddit: "rust"})

	var golangIDs, rustIDs []int64
	for i := range 4 {
		golangIDs = append(golangIDs, mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"}).ID)
		rustIDs = append(rustIDs, mustApply[Post](t, p, &CreatePostMessage{Author: "bob", Subreddit: "rust"}).ID)
		if i == 0 {
			mustApply[Post](t, p, &CreatePostMessage{Author: "bob", Subreddit: "zig"})
		}
	}

	feed := mustApply[[]Post](t, p, &GetFeedMessage{Username: "alice", Limit: 5})
	require.Len(t, feed, 5)
	for i := 1; i < len(feed); i++ {
		assert.Greater(t, feed[i-1].Seq, feed[i].Seq, "newest first")
	}
	for _, post := range feed {
		assert.Contains(t, []string{"golang", "rust"}, post.Subreddit)
	}
	assert.Equal(t, rustIDs[3], feed[0].ID)

	mustApply[Subreddit](t, p, &LeaveSubredditMessage{Username: "alice", Subreddit: "rust"})
	feed = mustApply[[]Post](t, p, &GetFeedMessage{Username: "alice", Limit: 10})
	require.Len(t, feed, 4)
	for i, post := range feed {
		assert.Equal(t, golangIDs[3-i], post.ID)
	}
	_, err := apply[Post](t, p, &GetPostMessage{PostID: rustIDs[0]})
	assert.NoError(t, err, "leaving does not delete posts")

	assert.Empty(t, mustApply[[]Post](t, p, &GetFeedMessage{Username: "ghost", Limit: 5}))
}

func TestProcessor_FeedReflectsCurrentVotes(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})

	assert.Equal(t, 0, mustApply[[]Post](t, p, &GetFeedMessage{Username: "alice", Limit: 1})[0].Upvotes)
	mustApply[Post](t, p, &VotePostMessage{Username: "alice", PostID: post.ID, Upvote: true})
	assert.Equal(t, 1, mustApply[[]Post](t, p, &GetFeedMessage{Username: "alice", Limit: 1})[0].Upvotes)
}

func TestProcessor_DirectMessages(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")

	_, err := apply[DirectMessage](t, p, &SendDMMessage{From: "ghost", To: "bob"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = apply[DirectMessage](t, p, &SendDMMessage{From: "alice", To: "ghost"})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	original := mustApply[DirectMessage](t, p, &SendDMMessage{From: "alice", To: "bob", Content: "hi bob"})
	assert.Equal(t, int64(1), original.ID)

	_, err = apply[DirectMessage](t, p, &ReplyToDMMessage{From: "bob", To: "alice", OriginalMessageID: 9})
	assert.ErrorIs(t, err, ErrMessageNotFound)
	_, err = apply[DirectMessage](t, p, &ReplyToDMMessage{From: "bob", To: "ghost", OriginalMessageID: original.ID})
	assert.ErrorIs(t, err, ErrRecipientNotFound)

	reply := mustApply[DirectMessage](t, p, &ReplyToDMMessage{From: "bob", To: "alice", OriginalMessageID: original.ID, Content: "hi alice"})
	assert.Equal(t, int64(2), reply.ID)
	assert.Equal(t, original.ID, reply.ParentID)

	// The reply lives inside the original...
	bobInbox := mustApply[[]DirectMessage](t, p, &GetDMsMessage{Username: "bob"})
	require.Len(t, bobInbox, 1)
	require.Len(t, bobInbox[0].Replies, 1)
	assert.Equal(t, reply.ID, bobInbox[0].Replies[0].ID)
	assert.Equal(t, "hi alice", bobInbox[0].Replies[0].Content)

	// ...and independently in the recipient's inbox and the canonical table.
	aliceInbox := mustApply[[]DirectMessage](t, p, &GetDMsMessage{Username: "alice"})
	require.Len(t, aliceInbox, 1)
	assert.Equal(t, reply.ID, aliceInbox[0].ID)
	assert.Len(t, p.store.messages, 2)

	stats := mustApply[Statistics](t, p, &GetStatsMessage{})
	assert.Equal(t, 2, stats.DirectMessages)

	assert.Empty(t, mustApply[[]DirectMessage](t, p, &GetDMsMessage{Username: "ghost"}))
}

func TestProcessor_InboxNewestFirst(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	for _, content := range []string{"one", "two", "three"} {
		mustApply[DirectMessage](t, p, &SendDMMessage{From: "alice", To: "bob", Content: content})
	}
	inbox := mustApply[[]DirectMessage](t, p, &GetDMsMessage{Username: "bob"})
	require.Len(t, inbox, 3)
	assert.Equal(t, "three", inbox[0].Content)
	assert.Equal(t, "one", inbox[2].Content)
}

func TestProcessor_MarkMessageRead(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice", "bob")
	dm := mustApply[DirectMessage](t, p, &SendDMMessage{From: "alice", To: "bob"})
	assert.False(t, dm.Read)

	_, err := apply[DirectMessage](t, p, &MarkDMReadMessage{Username: "alice", MessageID: dm.ID})
	assert.ErrorIs(t, err, ErrMessageNotFound, "only the recipient can mark it read")
	_, err = apply[DirectMessage](t, p, &MarkDMReadMessage{Username: "ghost", MessageID: dm.ID})
	assert.ErrorIs(t, err, ErrUserNotFound)

	read := mustApply[DirectMessage](t, p, &MarkDMReadMessage{Username: "bob", MessageID: dm.ID})
	assert.True(t, read.Read)
	assert.True(t, mustApply[[]DirectMessage](t, p, &GetDMsMessage{Username: "bob"})[0].Read)
}

func TestProcessor_Statistics(t *testing.T) {
	clock := newFakeClock()
	p := newTestProcessorWithClock(t, clock)

	stats := mustApply[Statistics](t, p, &GetStatsMessage{})
	assert.Equal(t, int64(1), stats.CommandsProcessed)
	assert.Zero(t, stats.Throughput, "no elapsed time yet")

	cmds := []Command{
		&RegisterUserMessage{Username: "alice"},
		&RegisterUserMessage{Username: "alice"},
		&RegisterUserMessage{Username: "bob"},
		&CreateSubredditMessage{Name: "golang", Creator: "alice"},
		&CreatePostMessage{Author: "bob", Subreddit: "golang"},
		&CreatePostMessage{Author: "alice", Subreddit: "golang"},
		&VotePostMessage{Username: "bob", PostID: 1, Upvote: true},
		&VotePostMessage{Username: "bob", PostID: 1, Upvote: true},
		&VotePostMessage{Username: "bob", PostID: 1},
		&VotePostMessage{Username: "bob", PostID: 5},
		&CreateCommentMessage{Author: "bob", PostID: 1},
		&SendDMMessage{From: "alice", To: "bob"},
		&LogoutMessage{Username: "bob"},
	}
	for _, c := range cmds {
		p.Apply(c)
	}
	clock.Advance(2 * time.Second)

	stats = mustApply[Statistics](t, p, &GetStatsMessage{})
	assert.Equal(t, int64(len(cmds)+2), stats.CommandsProcessed, "failed commands count too")
	assert.Equal(t, 2, stats.Users)
	assert.Equal(t, 1, stats.ConnectedUsers)
	assert.Equal(t, 1, stats.Subreddits)
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, 1, stats.Comments)
	assert.Equal(t, 1, stats.DirectMessages)
	assert.Equal(t, int64(2), stats.Upvotes)
	assert.Equal(t, int64(1), stats.Downvotes)
	assert.Equal(t, 2*time.Second, stats.Elapsed)
	assert.InDelta(t, float64(len(cmds)+2)/2, stats.Throughput, 1e-9)
	require.Len(t, stats.TopUsers, 2)
	assert.Equal(t, UserKarma{Username: "alice", Karma: 1}, stats.TopUsers[0])
	assert.Equal(t, UserKarma{Username: "bob", Karma: 0}, stats.TopUsers[1])
}

func TestProcessor_RepliesAreCopies(t *testing.T) {
	p := newTestProcessor(t)
	seed(t, p, "golang", "alice")
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang"})
	mustApply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: post.ID, Content: "original"})

	got := mustApply[Post](t, p, &GetPostMessage{PostID: post.ID})
	got.Comments[0].Content = "tampered"
	got.Upvotes = 100

	u := mustApply[User](t, p, &GetUserMessage{Username: "alice"})
	u.Subreddits["injected"] = true

	again := mustApply[Post](t, p, &GetPostMessage{PostID: post.ID})
	assert.Equal(t, "original", again.Comments[0].Content)
	assert.Zero(t, again.Upvotes)
	assert.False(t, p.store.users["alice"].Subreddits["injected"])
}

func TestProcessor_RoundTrip(t *testing.T) {
	p := newTestProcessor(t)
	mustApply[User](t, p, &RegisterUserMessage{Username: "alice"})
	mustApply[User](t, p, &RegisterUserMessage{Username: "bob"})
	mustApply[Subreddit](t, p, &CreateSubredditMessage{Name: "golang", Creator: "alice"})
	post := mustApply[Post](t, p, &CreatePostMessage{Author: "alice", Subreddit: "golang", Title: "t", Content: "body"})
	c1 := mustApply[Comment](t, p, &CreateCommentMessage{Author: "bob", PostID: post.ID, Content: "first"})
	c2 := mustApply[Comment](t, p, &ReplyToCommentMessage{Author: "alice", PostID: post.ID, TargetCommentID: c1.ID, Content: "second"})
	c3 := mustApply[Comment](t, p, &CreateCommentMessage{Author: "alice", PostID: post.ID, Content: "third"})
	mustApply[Comment](t, p, &VoteCommentMessage{Username: "alice", CommentID: c1.ID, Upvote: true})
	mustApply[Comment](t, p, &VoteCommentMessage{Username: "bob", CommentID: c2.ID})

	want := []CommentView{
		{
			ID: c1.ID, Author: "bob", Content: "first", Upvotes: 1, Score: 1, ReplyCount: 1,
			Replies: []CommentView{
				{ID: c2.ID, Author: "alice", Content: "second", Downvotes: 1, Score: -1, Replies: []CommentView{}},
			},
		},
		{ID: c3.ID, Author: "alice", Content: "third", Replies: []CommentView{}},
	}
	assert.Equal(t, want, mustApply[[]CommentView](t, p, &GetCommentsMessage{PostID: post.ID}))
	assert.Equal(t, []CommentView{}, mustApply[[]CommentView](t, p, &GetCommentsMessage{PostID: 404}))
}
