// Package youtube is a thin REST client for the YouTube Data API v3,
// covering only the resources the analysis pipeline touches: videos,
// comment threads, comments, and the authenticated user's channel.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	ErrVideoNotFound    = errors.New("youtube: video not found")
	ErrCommentNotFound  = errors.New("youtube: comment not found")
	ErrNotCommentOwner  = errors.New("youtube: authenticated channel is not the comment author")
	ErrQuotaExceeded    = errors.New("youtube: api quota exceeded")
	ErrCommentsDisabled = errors.New("youtube: comments are disabled for this video")
	ErrNoChannel        = errors.New("youtube: authenticated account has no channel")
)

// Video holds the subset of video metadata the app records.
type Video struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	CommentCount int64
}

// Comment is one raw comment record, top-level or reply.
type Comment struct {
	ID                string
	ParentID          string // empty for top-level comments
	VideoID           string
	TextOriginal      string
	TextDisplay       string
	AuthorDisplayName string
	AuthorChannelID   string
	AuthorAvatarURL   string
	PublishedAt       time.Time
	UpdatedAt         time.Time
	LikeCount         int64
	TotalReplyCount   int64
}

// Client issues authenticated calls against the Data API. The HTTP client
// must carry the user's OAuth credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

type Option func(*Client)

// WithBaseURL points the client at a different API host. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VideoDetails fetches the snippet and statistics of a single video.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*Video, error) {
	q := url.Values{}
	q.Set("part", "snippet,statistics")
	q.Set("id", videoID)

	var out struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				ChannelID    string `json:"channelId"`
				ChannelTitle string `json:"channelTitle"`
			} `json:"snippet"`
			Statistics struct {
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/videos", q, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := out.Items[0]
	commentCount, _ := strconv.ParseInt(item.Statistics.CommentCount, 10, 64)
	return &Video{
		ID:           item.ID,
		Title:        item.Snippet.Title,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		CommentCount: commentCount,
	}, nil
}

type commentSnippet struct {
	VideoID           string `json:"videoId"`
	TextOriginal      string `json:"textOriginal"`
	TextDisplay       string `json:"textDisplay"`
	AuthorDisplayName string `json:"authorDisplayName"`
	AuthorChannelID   struct {
		Value string `json:"value"`
	} `json:"authorChannelId"`
	AuthorProfileImageURL string    `json:"authorProfileImageUrl"`
	ParentID              string    `json:"parentId"`
	LikeCount             int64     `json:"likeCount"`
	PublishedAt           time.Time `json:"publishedAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type apiComment struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

func (a *apiComment) toComment(videoID string, replyCount int64) Comment {
	return Comment{
		ID:                a.ID,
		ParentID:          a.Snippet.ParentID,
		VideoID:           videoID,
		TextOriginal:      a.Snippet.TextOriginal,
		TextDisplay:       a.Snippet.TextDisplay,
		AuthorDisplayName: a.Snippet.AuthorDisplayName,
		AuthorChannelID:   a.Snippet.AuthorChannelID.Value,
		AuthorAvatarURL:   a.Snippet.AuthorProfileImageURL,
		PublishedAt:       a.Snippet.PublishedAt,
		UpdatedAt:         a.Snippet.UpdatedAt,
		LikeCount:         a.Snippet.LikeCount,
		TotalReplyCount:   replyCount,
	}
}

// ListCommentThreads pages through a video's comment threads in time order
// and returns the flattened top-level comments plus the replies YouTube
// bundles into each thread. maxThreads caps the number of top-level
// comments fetched, not the replies that come along with them.
func (c *Client) ListCommentThreads(ctx context.Context, videoID string, pageSize, maxThreads int) ([]Comment, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	if maxThreads <= 0 {
		maxThreads = 1000
	}

	var comments []Comment
	fetched := 0
	pageToken := ""

	for {
		perPage := pageSize
		if remaining := maxThreads - fetched; remaining < perPage {
			perPage = remaining
		}
		if perPage <= 0 {
			break
		}

		q := url.Values{}
		q.Set("part", "snippet,replies")
		q.Set("videoId", videoID)
		q.Set("maxResults", strconv.Itoa(perPage))
		q.Set("textFormat", "plainText")
		q.Set("order", "time")
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}

		var out struct {
			NextPageToken string `json:"nextPageToken"`
			Items         []struct {
				Snippet struct {
					TopLevelComment apiComment `json:"topLevelComment"`
					TotalReplyCount int64      `json:"totalReplyCount"`
				} `json:"snippet"`
				Replies struct {
					Comments []apiComment `json:"comments"`
				} `json:"replies"`
			} `json:"items"`
		}
		if err := c.get(ctx, "/commentThreads", q, &out); err != nil {
			return nil, err
		}

		for _, thread := range out.Items {
			top := thread.Snippet.TopLevelComment
			if top.ID == "" {
				continue
			}
			comments = append(comments, top.toComment(videoID, thread.Snippet.TotalReplyCount))
			fetched++

			for _, reply := range thread.Replies.Comments {
				if reply.ID == "" {
					continue
				}
				comments = append(comments, reply.toComment(videoID, 0))
			}
		}

		pageToken = out.NextPageToken
		if pageToken == "" || fetched >= maxThreads {
			break
		}
	}

	return comments, nil
}

// Channel identifies the authenticated user's YouTube channel.
type Channel struct {
	ID    string
	Title string
}

// MyChannel resolves the channel of the authenticated user.
func (c *Client) MyChannel(ctx context.Context) (*Channel, error) {
	q := url.Values{}
	q.Set("part", "id,snippet")
	q.Set("mine", "true")

	var out struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title string `json:"title"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/channels", q, &out); err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, ErrNoChannel
	}
	return &Channel{ID: out.Items[0].ID, Title: out.Items[0].Snippet.Title}, nil
}

// MyChannelID resolves just the channel ID.
func (c *Client) MyChannelID(ctx context.Context) (string, error) {
	ch, err := c.MyChannel(ctx)
	if err != nil {
		return "", err
	}
	return ch.ID, nil
}

// CommentAuthorChannelID looks up who wrote a comment.
func (c *Client) CommentAuthorChannelID(ctx context.Context, commentID string) (string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", commentID)

	var out struct {
		Items []apiComment `json:"items"`
	}
	if err := c.get(ctx, "/comments", q, &out); err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", ErrCommentNotFound
	}
	return out.Items[0].Snippet.AuthorChannelID.Value, nil
}

// DeleteComment permanently removes a comment. YouTube only allows the
// comment's author to do this, so the author channel is verified against
// the authenticated channel first and a mismatch fails without spending
// the delete call's quota.
func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	authorChannel, err := c.CommentAuthorChannelID(ctx, commentID)
	if err != nil {
		return err
	}

	myChannel, err := c.MyChannelID(ctx)
	if err != nil {
		return err
	}
	if authorChannel == "" || authorChannel != myChannel {
		return ErrNotCommentOwner
	}

	q := url.Values{}
	q.Set("id", commentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/comments?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("youtube api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode youtube response: %w", err)
	}
	return nil
}

// apiError maps a Data API error payload onto the package's typed errors.
func (c *Client) apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	for _, e := range payload.Error.Errors {
		switch e.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return ErrQuotaExceeded
		case "commentsDisabled":
			return ErrCommentsDisabled
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrVideoNotFound
	case http.StatusForbidden:
		if strings.Contains(strings.ToLower(payload.Error.Message), "disabled comments") {
			return ErrCommentsDisabled
		}
	}

	if payload.Error.Message != "" {
		return fmt.Errorf("youtube api error %d: %s", resp.StatusCode, payload.Error.Message)
	}
	return fmt.Errorf("youtube api error %d: %s", resp.StatusCode, string(body))
}
