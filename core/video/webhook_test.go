package video

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"video.asset.ready"}`)
	now := time.Unix(1700000000, 0)
	valid := Sign(body, "s3cr3t", now)

	tests := []struct {
		name    string
		header  string
		body    []byte
		secret  string
		wantErr error
	}{
		{name: "valid", header: valid, body: body, secret: "s3cr3t"},
		{name: "valid among several", header: "t=1700000000,v1=deadbeef," + valid[len("t=1700000000,"):], body: body, secret: "s3cr3t"},
		{name: "wrong secret", header: valid, body: body, secret: "lol", wantErr: ErrInvalidSignature},
		{name: "tampered body", header: valid, body: []byte(`{"type":"video.asset.errored"}`), secret: "s3cr3t", wantErr: ErrInvalidSignature},
		{name: "empty header", header: "", body: body, secret: "s3cr3t", wantErr: ErrInvalidSignature},
		{name: "no timestamp", header: "v1=abc", body: body, secret: "s3cr3t", wantErr: ErrInvalidSignature},
		{name: "bad timestamp", header: "t=lol,v1=abc", body: body, secret: "s3cr3t", wantErr: ErrInvalidSignature},
		{name: "stale", header: Sign(body, "s3cr3t", now.Add(-10*time.Minute)), body: body, secret: "s3cr3t", wantErr: ErrStaleSignature},
		{name: "from the future", header: Sign(body, "s3cr3t", now.Add(10*time.Minute)), body: body, secret: "s3cr3t", wantErr: ErrStaleSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySignature(tt.header, tt.body, tt.secret, now)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestParseEvent(t *testing.T) {
	evt, err := ParseEvent([]byte(`{
		"type": "video.asset.ready",
		"data": {
			"id": "asset-1",
			"passthrough": " 42 ",
			"playback_ids": [{"id": "p-signed", "policy": "signed"}, {"id": "p-public", "policy": "public"}]
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, EventAssetReady, evt.Type)
	assert.Equal(t, "p-public", evt.Data.PublicPlaybackID())

	lessonID, err := evt.Data.LessonID()
	require.NoError(t, err)
	assert.Equal(t, 42, lessonID)

	_, err = ParseEvent([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEventData_asAsset(t *testing.T) {
	upload := EventData{ID: "upload-1", AssetID: "asset-1"}
	upload.NewAssetSettings.Passthrough = "7"

	asset := upload.asAsset()
	assert.Equal(t, "asset-1", asset.ID)
	assert.Equal(t, "upload-1", asset.UploadID)
	assert.Equal(t, "7", asset.Passthrough)
}

func TestURLs(t *testing.T) {
	assert.Equal(t, "https://image.mux.com/abc/thumbnail.jpg?width=320", ThumbnailURL("abc", 320))
	assert.Equal(t, "https://image.mux.com/abc/thumbnail.jpg?width=640", ThumbnailURL("abc", 0))
	assert.Equal(t, "https://stream.mux.com/abc.m3u8", StreamURL("abc"))

	var v *Video
	assert.False(t, v.Playable())
	assert.True(t, (&Video{Status: StatusErrored, PublicPlaybackID: "abc"}).HasThumbnail())
	assert.False(t, (&Video{Status: StatusPending, PublicPlaybackID: "abc"}).Playable())
}
