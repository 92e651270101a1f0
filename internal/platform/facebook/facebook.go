// Package facebook is a thin wrapper over the Facebook Graph API.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
)

const maxPostLength = 63206

type Client struct {
	appID       string
	appSecret   string
	accessToken string
	pageID      string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
}

func New(cfg *config.FacebookConfig, logger *zap.Logger) *Client {
	return &Client{
		appID:       cfg.AppID,
		appSecret:   cfg.AppSecret,
		accessToken: cfg.AccessToken,
		pageID:      cfg.PageID,
		baseURL:     "https://graph.facebook.com/" + cfg.APIVersion,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

func (c *Client) Name() string { return "facebook" }

func (c *Client) Publish(ctx context.Context, req platform.PublishRequest) (*platform.PublishResult, error) {
	body := req.Body
	if len(body) > maxPostLength {
		body = body[:maxPostLength-3] + "..."
	}

	if len(req.MediaRefs) > 0 {
		return c.publishPhoto(ctx, body, req.MediaRefs[0])
	}

	form := url.Values{
		"message":      {body},
		"access_token": {c.accessToken},
	}
	if link := req.Config["link"]; link != "" {
		form.Set("link", link)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, c.feedTarget()+"/feed", form, &resp); err != nil {
		return nil, fmt.Errorf("facebook publish failed: %w", err)
	}

	c.logger.Info("Facebook post created", zap.String("post_id", resp.ID))
	return &platform.PublishResult{
		PlatformPostID: resp.ID,
		URL:            "https://www.facebook.com/" + resp.ID,
		PublishedAt:    time.Now(),
	}, nil
}

// publishPhoto uploads a single local media file with the message attached.
// Multi-image albums need the unpublished-photos flow and are not supported.
func (c *Client) publishPhoto(ctx context.Context, message, mediaPath string) (*platform.PublishResult, error) {
	f, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("facebook media open failed: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("message", message); err != nil {
		return nil, err
	}
	if err := w.WriteField("access_token", c.accessToken); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("source", filepath.Base(mediaPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("facebook media read failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+c.feedTarget()+"/photos", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := c.do(httpReq, &resp); err != nil {
		return nil, fmt.Errorf("facebook photo upload failed: %w", err)
	}

	postID := resp.PostID
	if postID == "" {
		postID = resp.ID
	}
	c.logger.Info("Facebook photo post created", zap.String("post_id", postID))
	return &platform.PublishResult{
		PlatformPostID: postID,
		URL:            "https://www.facebook.com/" + postID,
		PublishedAt:    time.Now(),
	}, nil
}

func (c *Client) ListRecentPosts(ctx context.Context, limit int) ([]platform.Post, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"limit":        {fmt.Sprintf("%d", limit)},
		"fields":       {"id,message,created_time,likes.summary(true),comments.summary(true),shares"},
	}

	var resp struct {
		Data []struct {
			ID          string `json:"id"`
			Message     string `json:"message"`
			CreatedTime string `json:"created_time"`
			Likes       struct {
				Summary struct {
					TotalCount int `json:"total_count"`
				} `json:"summary"`
			} `json:"likes"`
			Comments struct {
				Summary struct {
					TotalCount int `json:"total_count"`
				} `json:"summary"`
			} `json:"comments"`
			Shares struct {
				Count int `json:"count"`
			} `json:"shares"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.feedTarget()+"/posts", params, &resp); err != nil {
		return nil, fmt.Errorf("facebook list posts failed: %w", err)
	}

	posts := make([]platform.Post, 0, len(resp.Data))
	for _, p := range resp.Data {
		posts = append(posts, platform.Post{
			ID:        p.ID,
			Body:      p.Message,
			CreatedAt: parseGraphTime(p.CreatedTime),
			Likes:     p.Likes.Summary.TotalCount,
			Comments:  p.Comments.Summary.TotalCount,
			Shares:    p.Shares.Count,
		})
	}
	return posts, nil
}

func (c *Client) ListComments(ctx context.Context, postID string) ([]platform.Comment, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"fields":       {"id,message,from,created_time"},
	}

	var resp struct {
		Data []struct {
			ID      string `json:"id"`
			Message string `json:"message"`
			From    struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"from"`
			CreatedTime string `json:"created_time"`
		} `json:"data"`
	}
	if err := c.get(ctx, postID+"/comments", params, &resp); err != nil {
		return nil, fmt.Errorf("facebook list comments failed: %w", err)
	}

	comments := make([]platform.Comment, 0, len(resp.Data))
	for _, cm := range resp.Data {
		comments = append(comments, platform.Comment{
			ID:        cm.ID,
			PostID:    postID,
			Author:    cm.From.Name,
			AuthorID:  cm.From.ID,
			Body:      cm.Message,
			CreatedAt: parseGraphTime(cm.CreatedTime),
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
	if err := c.postForm(ctx, commentID+"/comments", form, &resp); err != nil {
		return "", fmt.Errorf("facebook reply failed: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]platform.Message, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"fields":       {"messages{id,message,from,created_time}"},
	}

	var resp struct {
		Data []struct {
			Messages struct {
				Data []struct {
					ID      string `json:"id"`
					Message string `json:"message"`
					From    struct {
						ID   string `json:"id"`
						Name string `json:"name"`
					} `json:"from"`
					CreatedTime string `json:"created_time"`
				} `json:"data"`
			} `json:"messages"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.feedTarget()+"/conversations", params, &resp); err != nil {
		return nil, fmt.Errorf("facebook list messages failed: %w", err)
	}

	var messages []platform.Message
	for _, conv := range resp.Data {
		for _, m := range conv.Messages.Data {
			messages = append(messages, platform.Message{
				ID:        m.ID,
				SenderID:  m.From.ID,
				Sender:    m.From.Name,
				Body:      m.Message,
				CreatedAt: parseGraphTime(m.CreatedTime),
			})
		}
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, recipientID, text string) (string, error) {
	form := url.Values{
		"recipient":    {fmt.Sprintf(`{"id":%q}`, recipientID)},
		"message":      {fmt.Sprintf(`{"text":%q}`, text)},
		"access_token": {c.accessToken},
	}

	var resp struct {
		MessageID string `json:"message_id"`
	}
	if err := c.postForm(ctx, "me/messages", form, &resp); err != nil {
		return "", fmt.Errorf("facebook send message failed: %w", err)
	}
	return resp.MessageID, nil
}

func (c *Client) Analytics(ctx context.Context, postID string) (platform.Metrics, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"metric":       {"post_impressions,post_engaged_users,post_clicks"},
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
		return nil, fmt.Errorf("facebook analytics failed: %w", err)
	}

	metrics := make(platform.Metrics, len(resp.Data))
	for _, d := range resp.Data {
		if len(d.Values) > 0 {
			metrics[d.Name] = d.Values[0].Value
		}
	}
	return metrics, nil
}

func (c *Client) feedTarget() string {
	if c.pageID != "" {
		return c.pageID
	}
	return "me"
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
				Type    string `json:"type"`
				Code    int    `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
			return fmt.Errorf("graph api error %d (%s): %s",
				graphErr.Error.Code, graphErr.Error.Type, graphErr.Error.Message)
		}
		return fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func parseGraphTime(s string) time.Time {
	// Graph API uses RFC 3339 with a numeric zone offset
	t, err := time.Parse("2006-01-02T15:04:05-0700", s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}
