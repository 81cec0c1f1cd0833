package engine

import "time"

// Store holds every entity and the cross-reference indices between them. It
// has no locking of its own: only the Processor that owns it may touch it.
type Store struct {
	users      map[string]*User
	subreddits map[string]*Subreddit
	posts      map[int64]*Post
	// comments is the canonical lookup table by id. Records carry no replies;
	// the tree lives on the owning post.
	comments map[int64]*Comment
	messages map[int64]*DirectMessage

	members          map[string]map[string]struct{} // subreddit -> usernames
	postsBySubreddit map[string][]int64
	commentsByPost   map[int64][]int64

	nextPostID    int64
	nextCommentID int64
	nextMessageID int64
	seq           int64

	upvotes   int64
	downvotes int64
	processed int64
	startedAt time.Time
}

// NewStore creates an empty store whose clock starts at startedAt.
func NewStore(startedAt time.Time) *Store {
	return &Store{
		users:            make(map[string]*User),
		subreddits:       make(map[string]*Subreddit),
		posts:            make(map[int64]*Post),
		comments:         make(map[int64]*Comment),
		messages:         make(map[int64]*DirectMessage),
		members:          make(map[string]map[string]struct{}),
		postsBySubreddit: make(map[string][]int64),
		commentsByPost:   make(map[int64][]int64),
		startedAt:        startedAt,
	}
}

// Identifier allocation. Callers allocate only after validation succeeded so
// failed commands never consume an id.

func (s *Store) allocPostID() int64 {
	s.nextPostID++
	return s.nextPostID
}

func (s *Store) allocCommentID() int64 {
	s.nextCommentID++
	return s.nextCommentID
}

func (s *Store) allocMessageID() int64 {
	s.nextMessageID++
	return s.nextMessageID
}

// nextSeq is the creation-order clock shared by posts and messages.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Store) user(name string) (*User, bool) {
	u, ok := s.users[name]
	return u, ok
}

func (s *Store) subreddit(name string) (*Subreddit, bool) {
	sr, ok := s.subreddits[name]
	return sr, ok
}

func (s *Store) post(id int64) (*Post, bool) {
	p, ok := s.posts[id]
	return p, ok
}

func (s *Store) isMember(username, subreddit string) bool {
	u, ok := s.users[username]
	if !ok {
		return false
	}
	return u.Subreddits[subreddit]
}

func (s *Store) addMember(u *User, sr *Subreddit) {
	u.Subreddits[sr.Name] = true
	set, ok := s.members[sr.Name]
	if !ok {
		set = make(map[string]struct{})
		s.members[sr.Name] = set
	}
	set[u.Username] = struct{}{}
	sr.Members = len(set)
}

func (s *Store) removeMember(u *User, sr *Subreddit) {
	delete(u.Subreddits, sr.Name)
	set := s.members[sr.Name]
	delete(set, u.Username)
	sr.Members = len(set)
}

func (s *Store) addPost(p *Post, sr *Subreddit) {
	s.posts[p.ID] = p
	sr.Posts = append(sr.Posts, p.ID)
	s.postsBySubreddit[sr.Name] = append(s.postsBySubreddit[sr.Name], p.ID)
}

// indexComment records c in the canonical table and the post index.
func (s *Store) indexComment(c Comment) {
	rec := c
	rec.Replies = nil
	s.comments[c.ID] = &rec
	s.commentsByPost[c.PostID] = append(s.commentsByPost[c.PostID], c.ID)
}

func (s *Store) deliverMessage(m *DirectMessage, recipient *User) {
	s.messages[m.ID] = m
	recipient.Messages = append(recipient.Messages, m.ID)
}

// adjustKarma changes the karma of username by delta if the user exists.
func (s *Store) adjustKarma(username string, delta int) {
	if u, ok := s.users[username]; ok {
		u.Karma += delta
	}
}
