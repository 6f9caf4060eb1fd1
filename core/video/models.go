package video

import (
	"fmt"
	"net/url"
	"time"
)

const (
	thumbnailHost = "https://image.mux.com"
	streamHost    = "https://stream.mux.com"

	DefaultThumbnailWidth = 640
)

type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusErrored Status = "errored"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusErrored:
		return true
	}
	return false
}

// Video is a lesson's video, processed by the video host.
type Video struct {
	ID               string    `json:"id"`
	LessonID         int       `json:"lesson_id"`
	OwnerID          string    `json:"owner_id"`
	UploadID         string    `json:"upload_id,omitempty"`
	AssetID          string    `json:"asset_id,omitempty"`
	Status           Status    `json:"status"`
	PublicPlaybackID string    `json:"public_playback_id,omitempty"` // set once Status is ready
	Duration         float64   `json:"duration,omitempty"`
	AspectRatio      string    `json:"aspect_ratio,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Playable reports whether the video can be streamed.
func (v *Video) Playable() bool {
	return v != nil && v.Status == StatusReady && v.PublicPlaybackID != ""
}

// HasThumbnail reports whether a thumbnail can be shown, which only needs a playback id.
func (v *Video) HasThumbnail() bool {
	return v != nil && v.PublicPlaybackID != ""
}

// ThumbnailURL returns `{host}/{playbackId}/thumbnail.jpg?width={width}`.
func ThumbnailURL(playbackID string, width int) string {
	if width <= 0 {
		width = DefaultThumbnailWidth
	}
	return fmt.Sprintf("%s/%s/thumbnail.jpg?width=%d", thumbnailHost, url.PathEscape(playbackID), width)
}

// StreamURL returns the HLS playlist of a ready video.
func StreamURL(playbackID string) string {
	return fmt.Sprintf("%s/%s.m3u8", streamHost, url.PathEscape(playbackID))
}

type GetFilter struct {
	ID       string
	AssetID  string
	UploadID string
	LessonID int
}
