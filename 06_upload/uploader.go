// Package upload pushes the finished video to YouTube via the Data API v3.
// Upload failure is non-fatal to the pipeline; the local file is always kept.
package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"horror-quote-pipeline/config"
	"horror-quote-pipeline/types"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Uploader handles YouTube video upload
type Uploader struct {
	cfg *config.Config
}

// New creates a new Uploader
func New(cfg *config.Config) *Uploader {
	return &Uploader{cfg: cfg}
}

// Run uploads the video and returns its ID and watch URL
func (u *Uploader) Run(ctx context.Context, videoFile string, meta *types.VideoMetadata) (string, string, error) {
	log.Println("[upload] Authenticating with YouTube API...")

	client, err := u.oauthClient(ctx)
	if err != nil {
		return "", "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", "", fmt.Errorf("youtube service: %w", err)
	}

	log.Printf("[upload] Uploading: %q", meta.Title)

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                meta.Title,
			Description:          meta.Description,
			Tags:                 meta.Tags,
			CategoryId:           meta.CategoryID,
			DefaultLanguage:      u.cfg.Upload.DefaultLanguage,
			DefaultAudioLanguage: u.cfg.Upload.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           meta.Visibility,
			SelfDeclaredMadeForKids: u.cfg.Upload.MadeForKids,
		},
	}

	f, err := os.Open(videoFile)
	if err != nil {
		return "", "", fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, _ := f.Stat()
	log.Printf("[upload] File size: %.1f MB", float64(fi.Size())/1024/1024)

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.NotifySubscribers(u.cfg.Upload.NotifySubscribers)
	call.Media(f)

	uploaded, err := call.Do()
	if err != nil {
		return "", "", fmt.Errorf("youtube upload: %w", err)
	}

	videoID := uploaded.Id
	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	log.Printf("[upload] ✅ Uploaded: %s", videoURL)
	return videoID, videoURL, nil
}

// oauthClient resolves credentials in two ways: a refresh token from the
// environment (CI), else client_secret.json plus a cached token.json with a
// console auth-code exchange on first use.
func (u *Uploader) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")

	if clientID != "" && clientSecret != "" && refreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{youtube.YoutubeUploadScope},
		}
		tok := &oauth2.Token{
			RefreshToken: refreshToken,
			Expiry:       time.Now().Add(-time.Hour), // force refresh
		}
		return conf.Client(ctx, tok), nil
	}

	secretFile := u.cfg.Upload.ClientSecretFile
	b, err := os.ReadFile(secretFile)
	if err != nil {
		return nil, fmt.Errorf("read %s (download it from Google Cloud Console): %w", secretFile, err)
	}
	conf, err := google.ConfigFromJSON(b, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", secretFile, err)
	}

	tok, err := tokenFromFile(u.cfg.Upload.TokenFile)
	if err != nil {
		tok, err = tokenFromConsole(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(u.cfg.Upload.TokenFile, tok); err != nil {
			log.Printf("[upload] Warning: could not cache token: %v", err)
		}
	}

	return conf.Client(ctx, tok), nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	return tok, json.NewDecoder(f).Decode(tok)
}

// tokenFromConsole walks the user through the installed-app OAuth flow
func tokenFromConsole(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL in your browser, authorize the app, then paste the code here:\n%s\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read auth code: %w", err)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange auth code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

// LogUpload saves the upload result to the logs directory
func LogUpload(videoID, videoURL, videoFile, logsDir string, meta *types.VideoMetadata) error {
	entry := map[string]interface{}{
		"video_id":    videoID,
		"video_url":   videoURL,
		"title":       meta.Title,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339),
		"video_file":  videoFile,
	}

	logFile := filepath.Join(logsDir, fmt.Sprintf("upload_%s.json", time.Now().Format("20060102_150405")))
	data, _ := json.MarshalIndent(entry, "", "  ")
	if err := os.WriteFile(logFile, data, 0644); err != nil {
		return err
	}

	log.Printf("[upload] Upload log saved: %s", logFile)
	return nil
}
