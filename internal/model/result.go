package model

// SearchResult is the first YouTube hit for a track query
type SearchResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"webpage_url"`
	Duration   float64 `json:"duration"`
	Uploader   string  `json:"uploader"`
	ViewCount  int64   `json:"view_count"`
	LikeCount  int64   `json:"like_count"`
	UploadDate string  `json:"upload_date"`
}

// DownloadResult is the outcome of processing one track
type DownloadResult struct {
	Success      bool              `json:"success"`
	FilePath     string            `json:"file_path,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Duration     float64           `json:"duration,omitempty"`
	FileSize     int64             `json:"filesize,omitempty"`
	Format       map[string]string `json:"format_info,omitempty"`
}
