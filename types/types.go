package types

// Quote is one horror movie quote with its attribution.
// Raw is the full line as produced by the source ('QUOTE' - MOVIE TITLE (YEAR));
// the history file stores Raw, the renderer uses Text and Title.
type Quote struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Title     string `json:"title"`
	Raw       string `json:"raw"`
	FramePath string `json:"frame_path,omitempty"`
}

// VideoMetadata holds all YouTube upload metadata
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Visibility  string   `json:"visibility"`
}

// PipelineState tracks the full state of one pipeline run
type PipelineState struct {
	RunID       string         `json:"run_id"`
	StartedAt   string         `json:"started_at"`
	CompletedAt string         `json:"completed_at"`
	Quotes      []Quote        `json:"quotes"`
	AudioFile   string         `json:"audio_file,omitempty"`
	VideoFile   string         `json:"video_file,omitempty"`
	Metadata    *VideoMetadata `json:"metadata,omitempty"`
	YouTubeID   string         `json:"youtube_id,omitempty"`
	YouTubeURL  string         `json:"youtube_url,omitempty"`
	Error       string         `json:"error,omitempty"`
}
