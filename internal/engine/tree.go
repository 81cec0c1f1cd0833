package engine

// Comment trees are never mutated in place. Every change builds a new slice
// for each level on the path from the root to the changed node; subtrees off
// that path are shared with the previous version.

// findComment searches tree depth-first for id.
func findComment(tree []Comment, id int64) (Comment, bool) {
	for _, c := range tree {
		if c.ID == id {
			return c, true
		}
		if found, ok := findComment(c.Replies, id); ok {
			return found, true
		}
	}
	return Comment{}, false
}

// rewriteComment returns a copy of tree in which the node with the given id
// has been replaced by fn(node). It reports false, and returns tree unchanged,
// if no node has that id at any depth.
func rewriteComment(tree []Comment, id int64, fn func(Comment) Comment) ([]Comment, bool) {
	for i, c := range tree {
		if c.ID == id {
			out := make([]Comment, len(tree))
			copy(out, tree)
			out[i] = fn(c)
			return out, true
		}
		if replies, ok := rewriteComment(c.Replies, id, fn); ok {
			out := make([]Comment, len(tree))
			copy(out, tree)
			c.Replies = replies
			out[i] = c
			return out, true
		}
	}
	return tree, false
}

// appendComment returns a fresh slice with c after the existing top-level
// comments.
func appendComment(tree []Comment, c Comment) []Comment {
	out := make([]Comment, 0, len(tree)+1)
	out = append(out, tree...)
	return append(out, c)
}

// prependReply inserts child as the first reply of its target, keeping the
// order of the earlier replies.
func prependReply(child Comment) func(Comment) Comment {
	return func(parent Comment) Comment {
		replies := make([]Comment, 0, len(parent.Replies)+1)
		replies = append(replies, child)
		parent.Replies = append(replies, parent.Replies...)
		return parent
	}
}

func voteComment(delta int) func(Comment) Comment {
	return func(c Comment) Comment {
		if delta > 0 {
			c.Upvotes++
		} else {
			c.Downvotes++
		}
		return c
	}
}

// countComments counts every node in tree.
func countComments(tree []Comment) int {
	n := len(tree)
	for _, c := range tree {
		n += countComments(c.Replies)
	}
	return n
}
