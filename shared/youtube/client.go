// Package youtube exports the videos and comments datasets from the YouTube
// Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"video-recommender/internal/models"
	"video-recommender/shared/config"
	"video-recommender/shared/dataset"
	"video-recommender/shared/logging"
)

const batchSize = 50

type Client struct {
	service *youtube.Service
	config  *config.YouTubeConfig
	oauth   bool
}

// NewClient authenticates with the API key when one is configured, otherwise
// with OAuth (device flow on first use, token cached in TokenFile).
func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	if cfg.APIKey != "" {
		return newClient(ctx, cfg, false, option.WithAPIKey(cfg.APIKey))
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{youtube.YoutubeReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	token, err := getToken(ctx, oauthConfig, cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: cfg.TokenFile,
	})
	return newClient(ctx, cfg, true, option.WithHTTPClient(httpClient))
}

func newClient(ctx context.Context, cfg *config.YouTubeConfig, oauth bool, opts ...option.ClientOption) (*Client, error) {
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service, config: cfg, oauth: oauth}, nil
}

// ResolveVideoIDs returns the configured IDs, else search results for the
// configured keyword, else (OAuth only) recent uploads from subscriptions.
func (c *Client) ResolveVideoIDs(ctx context.Context) ([]string, error) {
	switch {
	case len(c.config.VideoIDs) > 0:
		return c.config.VideoIDs, nil
	case c.config.Keyword != "":
		return c.searchVideoIDs(ctx, c.config.Keyword, c.config.MaxVideos)
	case c.oauth:
		return c.subscriptionVideoIDs(ctx, c.config.MaxVideos)
	default:
		return nil, fmt.Errorf("no video source configured")
	}
}

func (c *Client) searchVideoIDs(ctx context.Context, keyword string, maxResults int64) ([]string, error) {
	var ids []string
	pageToken := ""
	for int64(len(ids)) < maxResults {
		call := c.service.Search.List([]string{"id"}).
			Q(keyword).
			Type("video").
			MaxResults(min(batchSize, maxResults-int64(len(ids))))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to search videos for %q: %w", keyword, err)
		}
		for _, item := range resp.Items {
			if item.Id != nil && item.Id.VideoId != "" {
				ids = append(ids, item.Id.VideoId)
			}
		}

		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	logging.Info().Str("keyword", keyword).Int("videos", len(ids)).Msg("Search complete")
	return ids, nil
}

func (c *Client) subscriptionVideoIDs(ctx context.Context, maxResults int64) ([]string, error) {
	subs, err := c.service.Subscriptions.List([]string{"snippet"}).Mine(true).MaxResults(batchSize).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}

	var channelIDs []string
	for _, sub := range subs.Items {
		channelIDs = append(channelIDs, sub.Snippet.ResourceId.ChannelId)
	}
	if len(channelIDs) == 0 {
		return nil, nil
	}

	channels, err := c.service.Channels.List([]string{"contentDetails"}).Id(strings.Join(channelIDs, ",")).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get channel details: %w", err)
	}

	perChannel := max(1, min(5, maxResults/int64(max(1, len(channels.Items)))))

	var ids []string
	for _, ch := range channels.Items {
		if ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil || ch.ContentDetails.RelatedPlaylists.Uploads == "" {
			continue
		}
		items, err := c.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(ch.ContentDetails.RelatedPlaylists.Uploads).
			MaxResults(perChannel).
			Context(ctx).Do()
		if err != nil {
			logging.Warn().Err(err).Str("channel", ch.Id).Msg("Failed to get playlist items")
			continue
		}
		for _, item := range items.Items {
			ids = append(ids, item.Snippet.ResourceId.VideoId)
		}
		if int64(len(ids)) >= maxResults {
			break
		}
	}

	if int64(len(ids)) > maxResults {
		ids = ids[:maxResults]
	}
	logging.Info().Int("subscriptions", len(subs.Items)).Int("videos", len(ids)).Msg("Resolved subscription uploads")
	return ids, nil
}

// FetchVideos returns title, keyword, statistics and publish time for ids, in
// API order, 50 IDs per request.
func (c *Client) FetchVideos(ctx context.Context, ids []string) ([]models.Video, error) {
	var videos []models.Video

	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		resp, err := c.service.Videos.List([]string{"snippet", "statistics"}).
			Id(strings.Join(ids[start:end], ",")).
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get video details: %w", err)
		}

		for _, item := range resp.Items {
			videos = append(videos, c.toVideo(item))
		}
	}

	return videos, nil
}

func (c *Client) toVideo(item *youtube.Video) models.Video {
	v := models.Video{ID: item.Id}

	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		switch {
		case c.config.Keyword != "":
			v.Keyword = c.config.Keyword
		case len(item.Snippet.Tags) > 0:
			v.Keyword = item.Snippet.Tags[0]
		}
		if ts, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			v.PublishedAt = &ts
		}
	}

	if item.Statistics != nil {
		v.Views = int64(item.Statistics.ViewCount)
		v.Likes = int64(item.Statistics.LikeCount)
		v.Comments = int64(item.Statistics.CommentCount)
	}
	return v
}

// FetchComments returns up to maxPerVideo top-level comments per video,
// fetched concurrently and returned grouped in ids order. Videos with
// comments disabled are skipped.
func (c *Client) FetchComments(ctx context.Context, ids []string, maxPerVideo int64) ([]models.Comment, error) {
	if maxPerVideo <= 0 {
		return nil, nil
	}

	perVideo := make([][]models.Comment, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.config.Concurrency))

	for i, id := range ids {
		g.Go(func() error {
			comments, err := c.fetchVideoComments(gctx, id, maxPerVideo)
			if err != nil {
				if isCommentsDisabled(err) {
					logging.Debug().Str("video_id", id).Msg("Comments disabled, skipping")
					return nil
				}
				return fmt.Errorf("failed to get comments for %s: %w", id, err)
			}
			perVideo[i] = comments
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.Comment
	for _, cs := range perVideo {
		all = append(all, cs...)
	}
	return all, nil
}

func (c *Client) fetchVideoComments(ctx context.Context, videoID string, maxResults int64) ([]models.Comment, error) {
	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(min(100, maxResults)).
		Order("relevance").
		TextFormat("plainText").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(resp.Items))
	for _, thread := range resp.Items {
		if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
			continue
		}
		s := thread.Snippet.TopLevelComment.Snippet
		comments = append(comments, models.Comment{
			VideoID: videoID,
			Text:    s.TextOriginal,
			Likes:   s.LikeCount,
		})
	}
	return comments, nil
}

func isCommentsDisabled(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, e := range apiErr.Errors {
		if e.Reason == "commentsDisabled" {
			return true
		}
	}
	return false
}

// Export resolves the video list, fetches statistics and comments, and
// writes both CSV files.
func (c *Client) Export(ctx context.Context, videosPath, commentsPath string, cols dataset.Columns) error {
	ids, err := c.ResolveVideoIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no videos to export")
	}

	videos, err := c.FetchVideos(ctx, ids)
	if err != nil {
		return err
	}
	comments, err := c.FetchComments(ctx, ids, c.config.MaxCommentsPerItem)
	if err != nil {
		return err
	}

	if err := writeCSV(videosPath, func(f *os.File) error { return dataset.WriteVideos(f, videos, cols) }); err != nil {
		return fmt.Errorf("failed to write videos: %w", err)
	}
	if err := writeCSV(commentsPath, func(f *os.File) error { return dataset.WriteComments(f, comments, cols, false) }); err != nil {
		return fmt.Errorf("failed to write comments: %w", err)
	}

	logging.Info().
		Int("videos", len(videos)).
		Int("comments", len(comments)).
		Str("videos_path", videosPath).
		Str("comments_path", commentsPath).
		Msg("Export complete")
	return nil
}

// writeCSV writes to a temp file and renames it over path; on error the
// existing file is left untouched.
func writeCSV(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
