package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), WithBaseURL(srv.URL))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func apiErrorBody(code int, message, reason string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"errors":  []map[string]any{{"reason": reason}},
		},
	}
}

func TestVideoDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		writeJSON(w, map[string]any{
			"items": []map[string]any{{
				"id": "dQw4w9WgXcQ",
				"snippet": map[string]any{
					"title":        "Test Video",
					"channelId":    "UCchannel",
					"channelTitle": "Test Channel",
				},
				"statistics": map[string]any{"commentCount": "321"},
			}},
		})
	}))

	video, err := c.VideoDetails(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Test Video", video.Title)
	assert.Equal(t, "UCchannel", video.ChannelID)
	assert.Equal(t, int64(321), video.CommentCount)
}

func TestVideoDetails_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{}})
	}))

	_, err := c.VideoDetails(context.Background(), "missing00000")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestListCommentThreads_FlattensReplies(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commentThreads", r.URL.Path)
		assert.Equal(t, "plainText", r.URL.Query().Get("textFormat"))
		assert.Equal(t, "time", r.URL.Query().Get("order"))
		writeJSON(w, map[string]any{
			"items": []map[string]any{{
				"snippet": map[string]any{
					"totalReplyCount": 1,
					"topLevelComment": map[string]any{
						"id": "c1",
						"snippet": map[string]any{
							"videoId":           "vid12345678",
							"textOriginal":      "top comment",
							"authorDisplayName": "alice",
							"authorChannelId":   map[string]any{"value": "UCa"},
							"likeCount":         3,
						},
					},
				},
				"replies": map[string]any{
					"comments": []map[string]any{{
						"id": "c1.r1",
						"snippet": map[string]any{
							"textOriginal":      "reply",
							"authorDisplayName": "bob",
							"authorChannelId":   map[string]any{"value": "UCb"},
							"parentId":          "c1",
						},
					}},
				},
			}},
		})
	}))

	comments, err := c.ListCommentThreads(context.Background(), "vid12345678", 100, 1000)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	assert.Equal(t, "c1", comments[0].ID)
	assert.Empty(t, comments[0].ParentID)
	assert.Equal(t, int64(1), comments[0].TotalReplyCount)
	assert.Equal(t, "vid12345678", comments[0].VideoID)

	assert.Equal(t, "c1.r1", comments[1].ID)
	assert.Equal(t, "c1", comments[1].ParentID)
}

func TestListCommentThreads_Pagination(t *testing.T) {
	page := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		switch page {
		case 1:
			assert.Empty(t, r.URL.Query().Get("pageToken"))
			writeJSON(w, map[string]any{
				"nextPageToken": "page2",
				"items": []map[string]any{{
					"snippet": map[string]any{
						"topLevelComment": map[string]any{
							"id":      "c1",
							"snippet": map[string]any{"textOriginal": "one"},
						},
					},
				}},
			})
		case 2:
			assert.Equal(t, "page2", r.URL.Query().Get("pageToken"))
			writeJSON(w, map[string]any{
				"items": []map[string]any{{
					"snippet": map[string]any{
						"topLevelComment": map[string]any{
							"id":      "c2",
							"snippet": map[string]any{"textOriginal": "two"},
						},
					},
				}},
			})
		default:
			t.Fatal("unexpected third page request")
		}
	}))

	comments, err := c.ListCommentThreads(context.Background(), "vid12345678", 1, 1000)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, 2, page)
}

func TestListCommentThreads_RespectsMaxThreads(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
		writeJSON(w, map[string]any{
			"nextPageToken": "more",
			"items": []map[string]any{
				{"snippet": map[string]any{"topLevelComment": map[string]any{"id": "c1", "snippet": map[string]any{}}}},
				{"snippet": map[string]any{"topLevelComment": map[string]any{"id": "c2", "snippet": map[string]any{}}}},
			},
		})
	}))

	comments, err := c.ListCommentThreads(context.Background(), "vid12345678", 100, 2)
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestListCommentThreads_CommentsDisabled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, apiErrorBody(403, "The video identified by the videoId parameter has disabled comments.", "commentsDisabled"))
	}))

	_, err := c.ListCommentThreads(context.Background(), "vid12345678", 100, 1000)
	assert.ErrorIs(t, err, ErrCommentsDisabled)
}

func TestListCommentThreads_QuotaExceeded(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, apiErrorBody(403, "Quota exceeded.", "quotaExceeded"))
	}))

	_, err := c.ListCommentThreads(context.Background(), "vid12345678", 100, 1000)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestDeleteComment_OwnComment(t *testing.T) {
	deleted := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/comments" && r.Method == http.MethodGet:
			writeJSON(w, map[string]any{
				"items": []map[string]any{{
					"id":      "comment1",
					"snippet": map[string]any{"authorChannelId": map[string]any{"value": "UCmine"}},
				}},
			})
		case r.URL.Path == "/channels":
			writeJSON(w, map[string]any{"items": []map[string]any{{"id": "UCmine"}}})
		case r.URL.Path == "/comments" && r.Method == http.MethodDelete:
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	err := c.DeleteComment(context.Background(), "comment1")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestDeleteComment_NotOwner(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/comments":
			require.Equal(t, http.MethodGet, r.Method, "delete must not be attempted for foreign comments")
			writeJSON(w, map[string]any{
				"items": []map[string]any{{
					"id":      "comment1",
					"snippet": map[string]any{"authorChannelId": map[string]any{"value": "UCsomeoneelse"}},
				}},
			})
		case "/channels":
			writeJSON(w, map[string]any{"items": []map[string]any{{"id": "UCmine"}}})
		}
	}))

	err := c.DeleteComment(context.Background(), "comment1")
	assert.ErrorIs(t, err, ErrNotCommentOwner)
}

func TestDeleteComment_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{}})
	}))

	err := c.DeleteComment(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestMyChannelID_NoChannel(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []any{}})
	}))

	_, err := c.MyChannelID(context.Background())
	assert.ErrorIs(t, err, ErrNoChannel)
}
