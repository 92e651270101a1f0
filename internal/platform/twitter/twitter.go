// Package twitter is a thin wrapper over the Twitter API v2.
// Media upload is not wired; tweets are text only.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
)

const maxTweetLength = 280

type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger

	// resolved lazily from /2/users/me
	userID string
}

func New(cfg *config.TwitterConfig, logger *zap.Logger) *Client {
	return &Client{
		accessToken: cfg.AccessToken,
		baseURL:     "https://api.twitter.com/2",
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

func (c *Client) Name() string { return "twitter" }

func (c *Client) Publish(ctx context.Context, req platform.PublishRequest) (*platform.PublishResult, error) {
	text := req.Body
	if len(text) > maxTweetLength {
		text = text[:maxTweetLength-3] + "..."
	}

	payload := map[string]interface{}{"text": text}
	if replyTo := req.Config["in_reply_to"]; replyTo != "" {
		payload["reply"] = map[string]string{"in_reply_to_tweet_id": replyTo}
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "tweets", payload, &resp); err != nil {
		return nil, fmt.Errorf("twitter publish failed: %w", err)
	}

	c.logger.Info("Tweet created", zap.String("tweet_id", resp.Data.ID))
	return &platform.PublishResult{
		PlatformPostID: resp.Data.ID,
		URL:            "https://twitter.com/i/web/status/" + resp.Data.ID,
		PublishedAt:    time.Now(),
	}, nil
}

func (c *Client) ListRecentPosts(ctx context.Context, limit int) ([]platform.Post, error) {
	userID, err := c.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"max_results":  {fmt.Sprintf("%d", limit)},
		"tweet.fields": {"created_at,public_metrics"},
	}

	var resp struct {
		Data []struct {
			ID            string    `json:"id"`
			Text          string    `json:"text"`
			CreatedAt     time.Time `json:"created_at"`
			PublicMetrics struct {
				LikeCount    int `json:"like_count"`
				ReplyCount   int `json:"reply_count"`
				RetweetCount int `json:"retweet_count"`
			} `json:"public_metrics"`
		} `json:"data"`
	}
	if err := c.get(ctx, "users/"+userID+"/tweets", params, &resp); err != nil {
		return nil, fmt.Errorf("twitter list tweets failed: %w", err)
	}

	posts := make([]platform.Post, 0, len(resp.Data))
	for _, t := range resp.Data {
		posts = append(posts, platform.Post{
			ID:        t.ID,
			Body:      t.Text,
			CreatedAt: t.CreatedAt,
			Likes:     t.PublicMetrics.LikeCount,
			Comments:  t.PublicMetrics.ReplyCount,
			Shares:    t.PublicMetrics.RetweetCount,
		})
	}
	return posts, nil
}

// ListComments returns direct replies, found through the recent-search
// conversation_id filter.
func (c *Client) ListComments(ctx context.Context, postID string) ([]platform.Comment, error) {
	params := url.Values{
		"query":        {"conversation_id:" + postID},
		"tweet.fields": {"author_id,created_at"},
	}

	var resp struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			AuthorID  string    `json:"author_id"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}
	if err := c.get(ctx, "tweets/search/recent", params, &resp); err != nil {
		return nil, fmt.Errorf("twitter list replies failed: %w", err)
	}

	comments := make([]platform.Comment, 0, len(resp.Data))
	for _, t := range resp.Data {
		comments = append(comments, platform.Comment{
			ID:        t.ID,
			PostID:    postID,
			AuthorID:  t.AuthorID,
			Body:      t.Text,
			CreatedAt: t.CreatedAt,
		})
	}
	return comments, nil
}

func (c *Client) ReplyToComment(ctx context.Context, commentID, text string) (string, error) {
	payload := map[string]interface{}{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": commentID},
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "tweets", payload, &resp); err != nil {
		return "", fmt.Errorf("twitter reply failed: %w", err)
	}
	return resp.Data.ID, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]platform.Message, error) {
	params := url.Values{
		"dm_event.fields": {"id,text,sender_id,created_at"},
	}

	var resp struct {
		Data []struct {
			ID        string    `json:"id"`
			Text      string    `json:"text"`
			SenderID  string    `json:"sender_id"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"data"`
	}
	if err := c.get(ctx, "dm_events", params, &resp); err != nil {
		return nil, fmt.Errorf("twitter list messages failed: %w", err)
	}

	messages := make([]platform.Message, 0, len(resp.Data))
	for _, m := range resp.Data {
		messages = append(messages, platform.Message{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Body:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, recipientID, text string) (string, error) {
	payload := map[string]interface{}{"text": text}

	var resp struct {
		Data struct {
			DMEventID string `json:"dm_event_id"`
		} `json:"data"`
	}
	if err := c.postJSON(ctx, "dm_conversations/with/"+recipientID+"/messages", payload, &resp); err != nil {
		return "", fmt.Errorf("twitter send message failed: %w", err)
	}
	return resp.Data.DMEventID, nil
}

// Analytics maps the tweet's public metrics onto the generic metric set.
func (c *Client) Analytics(ctx context.Context, postID string) (platform.Metrics, error) {
	params := url.Values{
		"tweet.fields": {"public_metrics"},
	}

	var resp struct {
		Data struct {
			PublicMetrics map[string]int `json:"public_metrics"`
		} `json:"data"`
	}
	if err := c.get(ctx, "tweets/"+postID, params, &resp); err != nil {
		return nil, fmt.Errorf("twitter analytics failed: %w", err)
	}

	return platform.Metrics(resp.Data.PublicMetrics), nil
}

func (c *Client) resolveUserID(ctx context.Context) (string, error) {
	if c.userID != "" {
		return c.userID, nil
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.get(ctx, "users/me", nil, &resp); err != nil {
		return "", fmt.Errorf("twitter user lookup failed: %w", err)
	}
	c.userID = resp.Data.ID
	return c.userID, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Title != "" {
			return fmt.Errorf("twitter api error %s: %s", apiErr.Title, apiErr.Detail)
		}
		return fmt.Errorf("twitter api returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
