// Package instagram is a thin wrapper over the Instagram Graph API
// (business accounts). Publishing goes through the two-step media
// container flow and requires at least one media reference.
package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
)

const maxCaptionLength = 2200

// ErrMessagingUnsupported is returned for the direct-message operations,
// which the Instagram Graph API does not expose to this integration.
var ErrMessagingUnsupported = errors.New("instagram messaging is not supported")

type Client struct {
	accessToken string
	accountID   string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
}

func New(cfg *config.InstagramConfig, logger *zap.Logger) *Client {
	return &Client{
		accessToken: cfg.AccessToken,
		accountID:   cfg.BusinessAccountID,
		baseURL:     "https://graph.facebook.com/" + cfg.APIVersion,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

func (c *Client) Name() string { return "instagram" }

func (c *Client) Publish(ctx context.Context, req platform.PublishRequest) (*platform.PublishResult, error) {
	if len(req.MediaRefs) == 0 && req.Config["image_url"] == "" {
		return nil, errors.New("instagram publish requires media")
	}

	caption := req.Body
	if len(caption) > maxCaptionLength {
		caption = caption[:maxCaptionLength-3] + "..."
	}

	// Instagram only ingests media by URL; local refs must be passed as a
	// reachable image_url in the per-post config.
	imageURL := req.Config["image_url"]
	if imageURL == "" {
		imageURL = req.MediaRefs[0]
	}

	form := url.Values{
		"image_url":    {imageURL},
		"caption":      {caption},
		"access_token": {c.accessToken},
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, c.accountID+"/media", form, &container); err != nil {
		return nil, fmt.Errorf("instagram media container failed: %w", err)
	}

	publishForm := url.Values{
		"creation_id":  {container.ID},
		"access_token": {c.accessToken},
	}
	var published struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, c.accountID+"/media_publish", publishForm, &published); err != nil {
		return nil, fmt.Errorf("instagram media publish failed: %w", err)
	}

	c.logger.Info("Instagram post created", zap.String("post_id", published.ID))
	return &platform.PublishResult{
		PlatformPostID: published.ID,
		PublishedAt:    time.Now(),
	}, nil
}

func (c *Client) ListRecentPosts(ctx context.Context, limit int) ([]platform.Post, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"limit":        {fmt.Sprintf("%d", limit)},
		"fields":       {"id,caption,timestamp,like_count,comments_count"},
	}

	var resp struct {
		Data []struct {
			ID            string `json:"id"`
			Caption       string `json:"caption"`
			Timestamp     string `json:"timestamp"`
			LikeCount     int    `json:"like_count"`
			CommentsCount int    `json:"comments_count"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.accountID+"/media", params, &resp); err != nil {
		return nil, fmt.Errorf("instagram list posts failed: %w", err)
	}

	posts := make([]platform.Post, 0, len(resp.Data))
	for _, p := range resp.Data {
		created, _ := time.Parse("2006-01-02T15:04:05-0700", p.Timestamp)
		posts = append(posts, platform.Post{
			ID:        p.ID,
			Body:      p.Caption,
			CreatedAt: created,
			Likes:     p.LikeCount,
			Comments:  p.CommentsCount,
		})
	}
	return posts, nil
}

func (c *Client) ListComments(ctx context.Context, postID string) ([]platform.Comment, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"fields":       {"id,text,username,timestamp"},
	}

	var resp struct {
		Data []struct {
			ID        string `json:"id"`
			Text      string `json:"text"`
			Username  string `json:"username"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := c.get(ctx, postID+"/comments", params, &resp); err != nil {
		return nil, fmt.Errorf("instagram list comments failed: %w", err)
	}

	comments := make([]platform.Comment, 0, len(resp.Data))
	for _, cm := range resp.Data {
		created, _ := time.Parse("2006-01-02T15:04:05-0700", cm.Timestamp)
		comments = append(comments, platform.Comment{
			ID:        cm.ID,
			PostID:    postID,
			Author:    cm.Username,
			Body:      cm.Text,
			CreatedAt: created,
		})
	}
	return comments, nil
}

func (c *Client) ReplyToComment(ctx context.Context, commentID, text string) (string, error) {
	form := url.Values{
		"message":      {text},
		"access_token": {c.accessToken},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, commentID+"/replies", form, &resp); err != nil {
		return "", fmt.Errorf("instagram reply failed: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]platform.Message, error) {
	return nil, ErrMessagingUnsupported
}

func (c *Client) SendMessage(ctx context.Context, recipientID, text string) (string, error) {
	return "", ErrMessagingUnsupported
}

func (c *Client) Analytics(ctx context.Context, postID string) (platform.Metrics, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"metric":       {"impressions,reach,saved"},
	}

	var resp struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := c.get(ctx, postID+"/insights", params, &resp); err != nil {
		return nil, fmt.Errorf("instagram analytics failed: %w", err)
	}

	metrics := make(platform.Metrics, len(resp.Data))
	for _, d := range resp.Data {
		if len(d.Values) > 0 {
			metrics[d.Name] = d.Values[0].Value
		}
	}
	return metrics, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var graphErr struct {
			Error struct {
				Message string `json:"message"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
			return fmt.Errorf("graph api error %d: %s", graphErr.Error.Code, graphErr.Error.Message)
		}
		return fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
