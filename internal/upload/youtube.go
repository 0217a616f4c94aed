package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/idea"
)

const uploadChunkSize = 5 * 1024 * 1024

// Uploader publishes finished videos via the YouTube Data API using a
// resumable chunked transfer, retrying transient server errors.
type Uploader struct {
	cfg *config.Config
}

// New creates a new Uploader.
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Configured reports whether the OAuth credentials are present in the
// environment.
func Configured() bool {
	return os.Getenv("YOUTUBE_CLIENT_ID") != "" &&
		os.Getenv("YOUTUBE_CLIENT_SECRET") != "" &&
		os.Getenv("YOUTUBE_REFRESH_TOKEN") != ""
}

// Upload sends the video and optional thumbnail, returning the
// platform-assigned video id.
func (u *Uploader) Upload(ctx context.Context, videoFile string, best *idea.Idea, thumbnailPath string) (string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	client, err := u.oauthClient(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       best.Title,
			Description: buildDescription(best),
			Tags:        buildTags(best.Keywords),
			CategoryId:  u.cfg.Upload.CategoryID,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: u.cfg.Upload.Visibility,
		},
	}

	var videoID string
	for attempt := 1; attempt <= 3; attempt++ {
		videoID, err = u.insert(ctx, svc, video, videoFile)
		if err == nil {
			break
		}
		if !isTransient(err) || attempt == 3 {
			return "", fmt.Errorf("youtube upload: %w", err)
		}
		log.Printf("[upload] ⚠️  Transient upload error (attempt %d): %v — retrying...", attempt, err)
		time.Sleep(time.Duration(attempt) * 5 * time.Second)
	}

	log.Printf("[upload] ✅ Uploaded: https://www.youtube.com/shorts/%s", videoID)

	if thumbnailPath != "" {
		if err := u.setThumbnail(svc, videoID, thumbnailPath); err != nil {
			log.Printf("[upload] ⚠️  Thumbnail set failed: %v — video was uploaded successfully", err)
		}
	}
	return videoID, nil
}

func (u *Uploader) insert(ctx context.Context, svc *youtube.Service, video *youtube.Video, videoFile string) (string, error) {
	f, err := os.Open(videoFile)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] Uploading %q (%.1f MB)", video.Snippet.Title, float64(fi.Size())/1024/1024)
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f, googleapi.ChunkSize(uploadChunkSize))

	uploaded, err := call.Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return uploaded.Id, nil
}

func (u *Uploader) setThumbnail(svc *youtube.Service, videoID, thumbnailPath string) error {
	f, err := os.Open(thumbnailPath)
	if err != nil {
		return fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	_, err = svc.Thumbnails.Set(videoID).Media(f).Do()
	return err
}

// oauthClient builds an HTTP client from the refresh-token credential
// in the environment.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope, youtube.YoutubeScope},
	}

	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return &http.Client{
		Transport: &oauth2.Transport{Source: conf.TokenSource(ctx, token)},
	}, nil
}

// isTransient reports whether an upload error is worth retrying.
func isTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}

// buildDescription appends the short-form hashtags plus up to five
// topic hashtags derived from the keywords.
func buildDescription(best *idea.Idea) string {
	var sb strings.Builder
	sb.WriteString(best.Description)
	sb.WriteString("\n\n#Shorts #YouTubeShorts")

	added := 0
	for _, kw := range best.Keywords {
		if added == 5 {
			break
		}
		lower := strings.ToLower(kw)
		if lower == "shorts" || lower == "youtubeshorts" || lower == "shortvideo" {
			continue
		}
		sb.WriteString(" #" + strings.ReplaceAll(kw, " ", ""))
		added++
	}
	return sb.String()
}

func buildTags(keywords []string) []string {
	tags := append([]string{}, keywords...)
	if !containsFold(tags, "shorts") {
		tags = append(tags, "shorts")
	}
	if !containsFold(tags, "youtubeshorts") {
		tags = append(tags, "YouTubeShorts")
	}
	return tags
}

func containsFold(items []string, want string) bool {
	for _, item := range items {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}
