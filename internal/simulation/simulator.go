// Package simulation drives an engine with synthetic users whose activity
// follows a Zipf distribution, and reports what the callers observed.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reddit-engine/internal/engine"
)

// Target is the part of the engine client the simulator uses.
type Target interface {
	RegisterUser(username, password string) (engine.User, error)
	Logout(username string) (engine.User, error)
	CreateSubreddit(name, description, creator string) (engine.Subreddit, error)
	JoinSubreddit(username, subreddit string) (engine.Subreddit, error)
	LeaveSubreddit(username, subreddit string) (engine.Subreddit, error)
	CreatePost(msg engine.CreatePostMessage) (engine.Post, error)
	CreateComment(author string, postID int64, content string) (engine.Comment, error)
	ReplyToComment(author string, postID, targetCommentID int64, content string) (engine.Comment, error)
	UpvotePost(username string, postID int64) (engine.Post, error)
	DownvotePost(username string, postID int64) (engine.Post, error)
	UpvoteComment(username string, commentID int64) (engine.Comment, error)
	GetFeed(username string, limit int) ([]engine.Post, error)
	SendDirectMessage(from, to, content string) (engine.DirectMessage, error)
	ReplyToDirectMessage(from, to string, messageID int64, content string) (engine.DirectMessage, error)
	GetDirectMessages(username string) ([]engine.DirectMessage, error)
	GetStatistics() (engine.Statistics, error)
}

const adminUser = "admin"

var commentTemplates = []string{
	"Great post! Really enjoyed reading this.",
	"Interesting perspective on this topic.",
	"I disagree with some points here.",
	"Thanks for sharing this information!",
	"Could you elaborate more on this?",
	"This reminds me of something similar...",
	"Very well written and explained.",
	"Not sure I agree, but interesting viewpoint.",
	"This needs more discussion.",
	"Looking forward to more posts like this!",
}

// OpStats counts what callers saw for one kind of operation.
type OpStats struct {
	OK       int64 `json:"ok"`
	Failed   int64 `json:"failed"`
	TimedOut int64 `json:"timed_out"`
}

// Report summarises a run.
type Report struct {
	RunID      string             `json:"run_id"`
	Duration   time.Duration      `json:"duration_ns"`
	Operations map[string]OpStats `json:"operations"`
	Engine     engine.Statistics  `json:"engine"`
}

// Submitted is the number of commands the simulator issued, the final
// statistics request excluded.
func (r Report) Submitted() int64 {
	var n int64
	for _, op := range r.Operations {
		n += op.OK + op.Failed + op.TimedOut
	}
	return n
}

// OperationNames returns the recorded operation names in sorted order.
func (r Report) OperationNames() []string {
	names := make([]string, 0, len(r.Operations))
	for name := range r.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Simulator runs one workload against a Target.
type Simulator struct {
	target  Target
	profile Profile
	logger  *slog.Logger

	mu    sync.Mutex
	ops   map[string]*OpStats
	posts []int64
}

// New creates a simulator. The profile must be valid.
func New(target Target, profile Profile, logger *slog.Logger) (*Simulator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		target:  target,
		profile: profile,
		logger:  logger,
		ops:     make(map[string]*OpStats),
	}, nil
}

// Run executes the workload. Setup failures abort the run; individual command
// failures are only counted.
func (s *Simulator) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)
	start := time.Now()

	logger.Info("starting simulation", "users", s.profile.Users, "subreddits", s.profile.Subreddits)
	if err := s.setup(); err != nil {
		return Report{}, err
	}

	distribution := zipfActivity(s.profile.Users, s.profile.ZipfAlpha)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.profile.Concurrency)
	for i := range s.profile.Users {
		g.Go(func() error {
			return s.simulateUser(gctx, i, distribution[i])
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("simulation aborted: %w", err)
	}

	stats, err := s.target.GetStatistics()
	if err != nil {
		return Report{}, fmt.Errorf("final statistics: %w", err)
	}
	report := Report{
		RunID:      runID,
		Duration:   time.Since(start),
		Operations: s.snapshot(),
		Engine:     stats,
	}
	logger.Info("simulation completed",
		"duration", report.Duration,
		"submitted", report.Submitted(),
		"commands_processed", stats.CommandsProcessed,
	)
	return report, nil
}

func (s *Simulator) setup() error {
	_, err := s.target.RegisterUser(adminUser, "password")
	s.record("register_user", err)
	if err != nil && !errors.Is(err, engine.ErrDuplicateUser) {
		return fmt.Errorf("register %s: %w", adminUser, err)
	}
	for i := range s.profile.Subreddits {
		name := subredditName(i)
		_, err := s.target.CreateSubreddit(name, fmt.Sprintf("A community for %s", name), adminUser)
		s.record("create_subreddit", err)
		if err != nil && !errors.Is(err, engine.ErrDuplicateSubreddit) {
			return fmt.Errorf("create subreddit %s: %w", name, err)
		}
	}
	return nil
}

func (s *Simulator) simulateUser(ctx context.Context, index, activity int) error {
	p := s.profile
	rng := rand.New(rand.NewPCG(p.Seed, uint64(index)))
	username := userName(index)

	_, err := s.target.RegisterUser(username, "password")
	s.record("register_user", err)
	if err != nil {
		return nil
	}

	joined := make(map[string]bool)
	for range p.JoinsPerUser {
		name := subredditName(rng.IntN(p.Subreddits))
		_, err := s.target.JoinSubreddit(username, name)
		s.record("join_subreddit", err)
		if err == nil {
			joined[name] = true
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	for i := range postsFor(activity, p.Users, p.MaxPostsPerUser) {
		// Random subreddits, joined or not: NotMember failures are part of the load.
		name := subredditName(rng.IntN(p.Subreddits))
		post, err := s.target.CreatePost(engine.CreatePostMessage{
			Author:    username,
			Subreddit: name,
			Title:     fmt.Sprintf("Post %d by %s", i, username),
			Content:   fmt.Sprintf("Content for post %d", i),
		})
		s.record("create_post", err)
		if err != nil {
			continue
		}
		s.trackPost(post.ID)
		s.interact(rng, post.ID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	for range p.MessagesPerUser {
		to := userName(rng.IntN(p.Users))
		_, err := s.target.SendDirectMessage(username, to, fmt.Sprintf("Message from %s to %s", username, to))
		s.record("send_dm", err)
	}
	inbox, err := s.target.GetDirectMessages(username)
	s.record("get_dms", err)
	if len(inbox) > 0 {
		dm := inbox[0]
		_, err := s.target.ReplyToDirectMessage(username, dm.From, dm.ID, "Thanks for the message!")
		s.record("reply_to_dm", err)
	}

	_, err = s.target.GetFeed(username, 10)
	s.record("get_feed", err)

	for name := range joined {
		if rng.Float64() < p.LeaveProbability {
			_, err := s.target.LeaveSubreddit(username, name)
			s.record("leave_subreddit", err)
			break
		}
	}
	if rng.Float64() < p.LogoutProbability {
		_, err := s.target.Logout(username)
		s.record("logout", err)
	}
	return ctx.Err()
}

// interact votes on and comments under a fresh post, and sometimes votes on
// an older one.
func (s *Simulator) interact(rng *rand.Rand, postID int64) {
	p := s.profile
	for range p.VotesPerPost {
		voter := userName(rng.IntN(p.Users))
		target := postID
		if old, ok := s.randomPost(rng); ok && rng.IntN(4) == 0 {
			target = old
		}
		if rng.Float64() < p.UpvoteProbability {
			_, err := s.target.UpvotePost(voter, target)
			s.record("upvote_post", err)
		} else {
			_, err := s.target.DownvotePost(voter, target)
			s.record("downvote_post", err)
		}
	}

	var last int64
	for range p.CommentsPerPost {
		author := userName(rng.IntN(p.Users))
		text := commentTemplates[rng.IntN(len(commentTemplates))]
		if last != 0 && rng.Float64() < p.ReplyProbability {
			c, err := s.target.ReplyToComment(author, postID, last, "Reply: "+text)
			s.record("reply_to_comment", err)
			if err == nil {
				last = c.ID
			}
			continue
		}
		c, err := s.target.CreateComment(author, postID, text)
		s.record("create_comment", err)
		if err == nil {
			last = c.ID
			if rng.Float64() < p.UpvoteProbability {
				_, err := s.target.UpvoteComment(userName(rng.IntN(p.Users)), c.ID)
				s.record("upvote_comment", err)
			}
		}
	}
}

func (s *Simulator) record(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.ops[op]
	if !ok {
		st = &OpStats{}
		s.ops[op] = st
	}
	switch {
	case err == nil:
		st.OK++
	case errors.Is(err, engine.ErrTimeout):
		st.TimedOut++
	default:
		st.Failed++
	}
}

func (s *Simulator) trackPost(id int64) {
	s.mu.Lock()
	s.posts = append(s.posts, id)
	s.mu.Unlock()
}

func (s *Simulator) randomPost(rng *rand.Rand) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posts) == 0 {
		return 0, false
	}
	return s.posts[rng.IntN(len(s.posts))], true
}

func (s *Simulator) snapshot() map[string]OpStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]OpStats, len(s.ops))
	for name, st := range s.ops {
		out[name] = *st
	}
	return out
}

func userName(i int) string      { return fmt.Sprintf("user_%d", i) }
func subredditName(i int) string { return fmt.Sprintf("r_%d", i) }
