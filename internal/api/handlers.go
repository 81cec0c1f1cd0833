package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"reddit-engine/internal/engine"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.engine.RegisterUser(req.Username, req.Password)
	if err != nil {
		writeEngineError(w, "register user", err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("%s registered successfully", user.Username), user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.engine.Login(req.Username, req.Password)
	if err != nil {
		writeEngineError(w, "log in", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s logged in", user.Username), user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	user, err := s.engine.Logout(username)
	if err != nil {
		writeEngineError(w, "log out", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s logged out", user.Username), user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.GetUser(mux.Vars(r)["username"])
	if err != nil {
		writeEngineError(w, "get user", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved %s", user.Username), user)
}

func (s *Server) handleCreateSubreddit(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateSubredditRequest
	if !s.decode(w, r, &req) {
		return
	}
	sr, err := s.engine.CreateSubreddit(req.Name, req.Description, username)
	if err != nil {
		writeEngineError(w, fmt.Sprintf("create subreddit '%s'", req.Name), err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Subreddit '%s' created by %s", sr.Name, username), sr)
}

func (s *Server) handleGetSubreddit(w http.ResponseWriter, r *http.Request) {
	sr, err := s.engine.GetSubreddit(mux.Vars(r)["name"])
	if err != nil {
		writeEngineError(w, "get subreddit", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved subreddit '%s'", sr.Name), sr)
}

func (s *Server) handleJoinSubreddit(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	sr, err := s.engine.JoinSubreddit(username, name)
	if err != nil {
		writeEngineError(w, "join subreddit", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s joined subreddit '%s'", username, name), sr)
}

func (s *Server) handleLeaveSubreddit(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	name := mux.Vars(r)["name"]
	sr, err := s.engine.LeaveSubreddit(username, name)
	if err != nil {
		writeEngineError(w, "leave subreddit", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s left subreddit '%s'", username, name), sr)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreatePostRequest
	if !s.decode(w, r, &req) {
		return
	}
	post, err := s.engine.CreatePost(engine.CreatePostMessage{
		Author:    username,
		Subreddit: req.Subreddit,
		Title:     req.Title,
		Content:   req.Content,
		IsRepost:  req.Repost,
	})
	if err != nil {
		writeEngineError(w, "create post", err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("Post created by %s in %s", username, req.Subreddit), post)
}

func (s *Server) handleGetFeed(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	limit := s.feedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	posts, err := s.engine.GetFeed(username, limit)
	if err != nil {
		writeEngineError(w, "get posts", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved %d posts for %s", len(posts), username), posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	post, err := s.engine.GetPost(id)
	if err != nil {
		writeEngineError(w, "get post", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved post %d", id), post)
}

func (s *Server) handleVotePost(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	vote := s.engine.DownvotePost
	if req.Upvote {
		vote = s.engine.UpvotePost
	}
	post, err := vote(username, id)
	if err != nil {
		writeEngineError(w, "vote on post", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s %s post %d", username, voteVerb(req.Upvote), id), post)
}

func (s *Server) handleVoteComment(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req VoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	vote := s.engine.DownvoteComment
	if req.Upvote {
		vote = s.engine.UpvoteComment
	}
	comment, err := vote(username, id)
	if err != nil {
		writeEngineError(w, "vote on comment", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("%s %s comment %d", username, voteVerb(req.Upvote), id), comment)
}

func voteVerb(upvote bool) string {
	if upvote {
		return "upvoted"
	}
	return "downvoted"
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	postID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CommentRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		comment engine.Comment
		err     error
	)
	if req.ParentID > 0 {
		comment, err = s.engine.ReplyToComment(username, postID, req.ParentID, req.Content)
	} else {
		comment, err = s.engine.CreateComment(username, postID, req.Content)
	}
	if err != nil {
		writeEngineError(w, "add comment", err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("%s commented on post %d", username, postID), comment)
}

func (s *Server) handleGetComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}
	comments, err := s.engine.GetComments(postID)
	if err != nil {
		writeEngineError(w, "get comments", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved %d comments for post %d", len(comments), postID), comments)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := s.engine.SendDirectMessage(username, req.To, req.Content)
	if err != nil {
		writeEngineError(w, "send message", err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("%s sent a message to %s", username, req.To), msg)
}

func (s *Server) handleReplyMessage(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req MessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := s.engine.ReplyToDirectMessage(username, req.To, id, req.Content)
	if err != nil {
		writeEngineError(w, "reply to message", err)
		return
	}
	writeSuccess(w, http.StatusCreated, fmt.Sprintf("%s replied to message %d", username, id), msg)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	msg, err := s.engine.MarkMessageRead(username, id)
	if err != nil {
		writeEngineError(w, "mark message read", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Message %d marked read", id), msg)
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	username, ok := caller(w, r)
	if !ok {
		return
	}
	messages, err := s.engine.GetDirectMessages(username)
	if err != nil {
		writeEngineError(w, "get messages", err)
		return
	}
	writeSuccess(w, http.StatusOK, fmt.Sprintf("Retrieved %d messages for %s", len(messages), username), messages)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.GetStatistics()
	if err != nil {
		writeEngineError(w, "get statistics", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Statistics retrieved successfully", stats)
}
