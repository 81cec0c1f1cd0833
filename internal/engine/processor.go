package engine

import (
	"log/slog"
	"time"

	"github.com/asynkron/protoactor-go/actor"
)

// Processor is the actor that owns the Store. protoactor delivers one message
// at a time from a FIFO mailbox, so Apply never runs concurrently with itself.
type Processor struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewProcessor creates a processor over store. A nil store is replaced by a
// fresh one started at now().
func NewProcessor(store *Store, logger *slog.Logger, now func() time.Time) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	if store == nil {
		store = NewStore(now())
	}
	return &Processor{
		store:  store,
		logger: logger,
		now:    now,
	}
}

// Receive implements actor.Actor.
func (p *Processor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		p.logger.Info("engine processor started", "pid", ctx.Self().String())
	case *actor.Stopped:
		p.logger.Info("engine processor stopped", "commands_processed", p.store.processed)
	case *actor.Restarting:
		p.logger.Warn("engine processor restarting", "commands_processed", p.store.processed)
	case Command:
		reply := p.Apply(msg)
		ctx.Respond(reply)
	default:
		if ctx.Sender() != nil {
			ctx.Respond(&Reply[struct{}]{Err: newError(KindUnknownCommand, "%T", msg)})
		}
	}
}

// Apply runs a single command to completion and returns its *Reply.
func (p *Processor) Apply(cmd Command) any {
	start := time.Now()
	p.store.processed++

	reply := p.dispatch(cmd)

	var err error
	if f, ok := reply.(failer); ok {
		err = f.Failure()
	}
	name := cmd.CommandName()
	commandsTotal.WithLabelValues(name, resultLabel(err)).Inc()
	commandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Debug("command failed", "command", name, "error", err)
	}
	return reply
}

func (p *Processor) dispatch(cmd Command) any {
	switch msg := cmd.(type) {
	case *RegisterUserMessage:
		return reply[User](p.registerUser(msg))
	case *LoginMessage:
		return reply[User](p.login(msg))
	case *LogoutMessage:
		return reply[User](p.logout(msg))
	case *GetUserMessage:
		return reply[User](p.getUser(msg))
	case *CreateSubredditMessage:
		return reply[Subreddit](p.createSubreddit(msg))
	case *GetSubredditMessage:
		return reply[Subreddit](p.getSubreddit(msg))
	case *JoinSubredditMessage:
		return reply[Subreddit](p.joinSubreddit(msg))
	case *LeaveSubredditMessage:
		return reply[Subreddit](p.leaveSubreddit(msg))
	case *CreatePostMessage:
		return reply[Post](p.createPost(msg))
	case *GetPostMessage:
		return reply[Post](p.getPost(msg))
	case *CreateCommentMessage:
		return reply[Comment](p.createComment(msg))
	case *ReplyToCommentMessage:
		return reply[Comment](p.replyToComment(msg))
	case *GetCommentsMessage:
		return &Reply[[]CommentView]{Value: p.getComments(msg)}
	case *VotePostMessage:
		return reply[Post](p.votePost(msg))
	case *VoteCommentMessage:
		return reply[Comment](p.voteComment(msg))
	case *GetFeedMessage:
		return &Reply[[]Post]{Value: buildFeed(p.store, msg.Username, msg.Limit)}
	case *SendDMMessage:
		return reply[DirectMessage](p.sendDM(msg))
	case *ReplyToDMMessage:
		return reply[DirectMessage](p.replyToDM(msg))
	case *GetDMsMessage:
		return &Reply[[]DirectMessage]{Value: buildInbox(p.store, msg.Username)}
	case *MarkDMReadMessage:
		return reply[DirectMessage](p.markDMRead(msg))
	case *GetStatsMessage:
		return &Reply[Statistics]{Value: buildStatistics(p.store, p.now())}
	default:
		return &Reply[struct{}]{Err: newError(KindUnknownCommand, "%T", cmd)}
	}
}

func reply[T any](v T, err error) *Reply[T] {
	if err != nil {
		var zero T
		return &Reply[T]{Value: zero, Err: err}
	}
	return &Reply[T]{Value: v}
}

// Users

func (p *Processor) registerUser(msg *RegisterUserMessage) (User, error) {
	if _, exists := p.store.user(msg.Username); exists {
		return User{}, newError(KindDuplicateUser, "user %q already exists", msg.Username)
	}
	u := &User{
		Username:   msg.Username,
		Password:   msg.Password,
		Connected:  true,
		CreatedAt:  p.now(),
		Subreddits: make(map[string]bool),
		Messages:   []int64{},
	}
	p.store.users[u.Username] = u
	return u.clone(), nil
}

func (p *Processor) login(msg *LoginMessage) (User, error) {
	u, ok := p.store.user(msg.Username)
	if !ok {
		return User{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	if u.Password != msg.Password {
		return User{}, newError(KindInvalidCredentials, "wrong password for %q", msg.Username)
	}
	u.Connected = true
	return u.clone(), nil
}

func (p *Processor) logout(msg *LogoutMessage) (User, error) {
	u, ok := p.store.user(msg.Username)
	if !ok {
		return User{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	u.Connected = false
	return u.clone(), nil
}

func (p *Processor) getUser(msg *GetUserMessage) (User, error) {
	u, ok := p.store.user(msg.Username)
	if !ok {
		return User{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	return u.clone(), nil
}

// Subreddits

func (p *Processor) createSubreddit(msg *CreateSubredditMessage) (Subreddit, error) {
	creator, ok := p.store.user(msg.Creator)
	if !ok {
		return Subreddit{}, newError(KindUserNotFound, "creator %q not found", msg.Creator)
	}
	if _, exists := p.store.subreddit(msg.Name); exists {
		return Subreddit{}, newError(KindDuplicateSubreddit, "subreddit %q already exists", msg.Name)
	}
	sr := &Subreddit{
		Name:        msg.Name,
		Description: msg.Description,
		Creator:     msg.Creator,
		CreatedAt:   p.now(),
		Posts:       []int64{},
	}
	p.store.subreddits[sr.Name] = sr
	p.store.addMember(creator, sr)
	return sr.clone(), nil
}

func (p *Processor) getSubreddit(msg *GetSubredditMessage) (Subreddit, error) {
	sr, ok := p.store.subreddit(msg.Name)
	if !ok {
		return Subreddit{}, newError(KindSubredditNotFound, "subreddit %q not found", msg.Name)
	}
	return sr.clone(), nil
}

func (p *Processor) joinSubreddit(msg *JoinSubredditMessage) (Subreddit, error) {
	u, sr, err := p.userAndSubreddit(msg.Username, msg.Subreddit)
	if err != nil {
		return Subreddit{}, err
	}
	if u.Subreddits[sr.Name] {
		return Subreddit{}, newError(KindAlreadyMember, "%q already joined %q", u.Username, sr.Name)
	}
	p.store.addMember(u, sr)
	return sr.clone(), nil
}

func (p *Processor) leaveSubreddit(msg *LeaveSubredditMessage) (Subreddit, error) {
	u, sr, err := p.userAndSubreddit(msg.Username, msg.Subreddit)
	if err != nil {
		return Subreddit{}, err
	}
	if !u.Subreddits[sr.Name] {
		return Subreddit{}, newError(KindNotMember, "%q is not a member of %q", u.Username, sr.Name)
	}
	p.store.removeMember(u, sr)
	return sr.clone(), nil
}

func (p *Processor) userAndSubreddit(username, name string) (*User, *Subreddit, error) {
	u, ok := p.store.user(username)
	if !ok {
		return nil, nil, newError(KindUserNotFound, "user %q not found", username)
	}
	sr, ok := p.store.subreddit(name)
	if !ok {
		return nil, nil, newError(KindSubredditNotFound, "subreddit %q not found", name)
	}
	return u, sr, nil
}

// Posts

func (p *Processor) createPost(msg *CreatePostMessage) (Post, error) {
	u, sr, err := p.userAndSubreddit(msg.Author, msg.Subreddit)
	if err != nil {
		return Post{}, err
	}
	if !p.store.isMember(u.Username, sr.Name) {
		return Post{}, newError(KindNotMember, "%q must join %q before posting", u.Username, sr.Name)
	}
	post := &Post{
		ID:        p.store.allocPostID(),
		Title:     msg.Title,
		Content:   msg.Content,
		Author:    u.Username,
		Subreddit: sr.Name,
		Comments:  []Comment{},
		Seq:       p.store.nextSeq(),
		CreatedAt: p.now(),
		IsRepost:  msg.IsRepost,
	}
	p.store.addPost(post, sr)
	return post.clone(), nil
}

func (p *Processor) getPost(msg *GetPostMessage) (Post, error) {
	post, ok := p.store.post(msg.PostID)
	if !ok {
		return Post{}, newError(KindPostNotFound, "post %d not found", msg.PostID)
	}
	return post.clone(), nil
}

func (p *Processor) votePost(msg *VotePostMessage) (Post, error) {
	if _, ok := p.store.user(msg.Username); !ok {
		return Post{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	post, ok := p.store.post(msg.PostID)
	if !ok {
		return Post{}, newError(KindPostNotFound, "post %d not found", msg.PostID)
	}
	delta := p.countVote(msg.Upvote)
	if msg.Upvote {
		post.Upvotes++
	} else {
		post.Downvotes++
	}
	p.store.adjustKarma(post.Author, delta)
	return post.clone(), nil
}

// countVote bumps the global vote counters and returns the karma delta.
func (p *Processor) countVote(upvote bool) int {
	if upvote {
		p.store.upvotes++
		return 1
	}
	p.store.downvotes++
	return -1
}

// Comments

func (p *Processor) createComment(msg *CreateCommentMessage) (Comment, error) {
	if _, ok := p.store.user(msg.Author); !ok {
		return Comment{}, newError(KindUserNotFound, "user %q not found", msg.Author)
	}
	post, ok := p.store.post(msg.PostID)
	if !ok {
		return Comment{}, newError(KindPostNotFound, "post %d not found", msg.PostID)
	}
	c := Comment{
		ID:        p.store.allocCommentID(),
		PostID:    post.ID,
		Content:   msg.Content,
		Author:    msg.Author,
		CreatedAt: p.now(),
		Replies:   []Comment{},
	}
	post.Comments = appendComment(post.Comments, c)
	p.store.indexComment(c)
	return cloneComments([]Comment{c})[0], nil
}

func (p *Processor) replyToComment(msg *ReplyToCommentMessage) (Comment, error) {
	if _, ok := p.store.user(msg.Author); !ok {
		return Comment{}, newError(KindUserNotFound, "user %q not found", msg.Author)
	}
	post, ok := p.store.post(msg.PostID)
	if !ok {
		return Comment{}, newError(KindPostNotFound, "post %d not found", msg.PostID)
	}
	if _, found := findComment(post.Comments, msg.TargetCommentID); !found {
		return Comment{}, newError(KindCommentNotFound, "comment %d not found on post %d", msg.TargetCommentID, post.ID)
	}
	c := Comment{
		ID:        p.store.allocCommentID(),
		PostID:    post.ID,
		ParentID:  msg.TargetCommentID,
		Content:   msg.Content,
		Author:    msg.Author,
		CreatedAt: p.now(),
		Replies:   []Comment{},
	}
	post.Comments, _ = rewriteComment(post.Comments, msg.TargetCommentID, prependReply(c))
	p.store.indexComment(c)
	return cloneComments([]Comment{c})[0], nil
}

func (p *Processor) getComments(msg *GetCommentsMessage) []CommentView {
	post, ok := p.store.post(msg.PostID)
	if !ok {
		return []CommentView{}
	}
	return RenderComments(post.Comments)
}

func (p *Processor) voteComment(msg *VoteCommentMessage) (Comment, error) {
	if _, ok := p.store.user(msg.Username); !ok {
		return Comment{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	rec, ok := p.store.comments[msg.CommentID]
	if !ok {
		return Comment{}, newError(KindCommentNotFound, "comment %d not found", msg.CommentID)
	}
	post, ok := p.store.post(rec.PostID)
	if !ok {
		return Comment{}, newError(KindPostNotFound, "post %d not found", rec.PostID)
	}
	delta := p.countVote(msg.Upvote)
	bump := voteComment(delta)
	*rec = bump(*rec)
	post.Comments, _ = rewriteComment(post.Comments, rec.ID, bump)
	p.store.adjustKarma(rec.Author, delta)

	node, _ := findComment(post.Comments, rec.ID)
	return cloneComments([]Comment{node})[0], nil
}

// Direct messages

func (p *Processor) sendDM(msg *SendDMMessage) (DirectMessage, error) {
	if _, ok := p.store.user(msg.From); !ok {
		return DirectMessage{}, newError(KindUserNotFound, "sender %q not found", msg.From)
	}
	recipient, ok := p.store.user(msg.To)
	if !ok {
		return DirectMessage{}, newError(KindRecipientNotFound, "recipient %q not found", msg.To)
	}
	dm := &DirectMessage{
		ID:        p.store.allocMessageID(),
		From:      msg.From,
		To:        msg.To,
		Content:   msg.Content,
		Replies:   []DirectMessage{},
		Seq:       p.store.nextSeq(),
		CreatedAt: p.now(),
	}
	p.store.deliverMessage(dm, recipient)
	return dm.clone(), nil
}

// replyToDM stores the reply three times: inside the original's reply list,
// in the canonical table under its own id, and in the recipient's inbox.
func (p *Processor) replyToDM(msg *ReplyToDMMessage) (DirectMessage, error) {
	original, ok := p.store.messages[msg.OriginalMessageID]
	if !ok {
		return DirectMessage{}, newError(KindMessageNotFound, "message %d not found", msg.OriginalMessageID)
	}
	recipient, ok := p.store.user(msg.To)
	if !ok {
		return DirectMessage{}, newError(KindRecipientNotFound, "recipient %q not found", msg.To)
	}
	dm := &DirectMessage{
		ID:        p.store.allocMessageID(),
		ParentID:  original.ID,
		From:      msg.From,
		To:        msg.To,
		Content:   msg.Content,
		Replies:   []DirectMessage{},
		Seq:       p.store.nextSeq(),
		CreatedAt: p.now(),
	}
	original.Replies = append(original.Replies, dm.clone())
	p.store.deliverMessage(dm, recipient)
	return dm.clone(), nil
}

func (p *Processor) markDMRead(msg *MarkDMReadMessage) (DirectMessage, error) {
	u, ok := p.store.user(msg.Username)
	if !ok {
		return DirectMessage{}, newError(KindUserNotFound, "user %q not found", msg.Username)
	}
	dm, ok := p.store.messages[msg.MessageID]
	if !ok || dm.To != u.Username {
		return DirectMessage{}, newError(KindMessageNotFound, "message %d not found for %q", msg.MessageID, u.Username)
	}
	dm.Read = true
	return dm.clone(), nil
}
