package service

import (
	"sort"

	"learnhub/internal/model"
)

// MoveItem removes the element at from and re-inserts it at to, returning a new slice.
func MoveItem[T any](items []T, from, to int) ([]T, error) {
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
		return nil, invalidInput("position out of range: from=%d to=%d len=%d", from, to, len(items))
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out, nil
}

// ReplyNode is a reply with its nested children.
type ReplyNode struct {
	model.Reply
	Children []*ReplyNode
}

// CommentThread is a top-level comment with its nested replies.
type CommentThread struct {
	model.Comment
	Replies []*ReplyNode
}

// NestComments groups replies under their comment, and under their parent reply
// when it belongs to the same comment. Replies whose parent is unknown attach to
// the comment. Siblings keep created_at ascending order.
func NestComments(comments []model.Comment, replies []model.Reply) []CommentThread {
	sorted := make([]model.Reply, len(replies))
	copy(sorted, replies)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	nodes := make(map[string]*ReplyNode, len(sorted))
	for i := range sorted {
		nodes[sorted[i].ID] = &ReplyNode{Reply: sorted[i], Children: []*ReplyNode{}}
	}

	roots := make(map[string][]*ReplyNode, len(comments))
	for i := range sorted {
		node := nodes[sorted[i].ID]
		if pid := node.ParentReplyID; pid != nil {
			if parent, ok := nodes[*pid]; ok && parent.CommentID == node.CommentID && parent.ID != node.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots[node.CommentID] = append(roots[node.CommentID], node)
	}

	threads := make([]CommentThread, 0, len(comments))
	for _, c := range comments {
		r := roots[c.ID]
		if r == nil {
			r = []*ReplyNode{}
		}
		threads = append(threads, CommentThread{Comment: c, Replies: r})
	}
	return threads
}
