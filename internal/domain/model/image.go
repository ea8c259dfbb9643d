package model

import "time"

// Image is the record of an uploaded file. Filename is always server generated.
type Image struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	DownloadName string    `json:"download_name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	UserID       *string   `json:"user_id,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
	URL          string    `json:"url,omitempty"`
}
