// Package platform defines the uniform gateway contract over each social
// backend and the registry the engine resolves platform tags through.
package platform

import (
	"context"
	"time"
)

// PublishRequest carries resolved content into a gateway's publish call.
// Config holds per-post overrides the backend may understand (link,
// published flag, alt text).
type PublishRequest struct {
	Body      string
	MediaRefs []string
	Config    map[string]string
}

// PublishResult is the platform-assigned outcome of a successful publish.
type PublishResult struct {
	PlatformPostID string
	URL            string
	PublishedAt    time.Time
}

// Post is a recently published item as reported by the backend.
type Post struct {
	ID        string
	Body      string
	CreatedAt time.Time
	Likes     int
	Comments  int
	Shares    int
}

// Comment is a comment on a platform post.
type Comment struct {
	ID        string
	PostID    string
	Author    string
	AuthorID  string
	Body      string
	CreatedAt time.Time
}

// Message is a direct message received by the page account.
type Message struct {
	ID        string
	SenderID  string
	Sender    string
	Body      string
	CreatedAt time.Time
}

// Metrics is a flat set of engagement counters for one post.
type Metrics map[string]int

// Gateway is the capability interface every social backend exposes. Each
// operation fails independently; a failed call does not poison the client
// for subsequent calls.
type Gateway interface {
	Name() string

	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
	ListRecentPosts(ctx context.Context, limit int) ([]Post, error)
	ListComments(ctx context.Context, postID string) ([]Comment, error)
	ReplyToComment(ctx context.Context, commentID, text string) (string, error)
	ListMessages(ctx context.Context) ([]Message, error)
	SendMessage(ctx context.Context, recipientID, text string) (string, error)
	Analytics(ctx context.Context, postID string) (Metrics, error)
}
