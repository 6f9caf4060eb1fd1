package video

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	EventUploadAssetCreated = "video.upload.asset_created"
	EventAssetCreated       = "video.asset.created"
	EventAssetReady         = "video.asset.ready"
	EventAssetErrored       = "video.asset.errored"

	SignatureHeader = "Mux-Signature"

	signatureTolerance = 5 * time.Minute
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleSignature   = errors.New("webhook signature timestamp out of tolerance")
)

// Event is a video host webhook notification.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData is an asset, or an upload for EventUploadAssetCreated.
type EventData struct {
	ID          string       `json:"id"`
	UploadID    string       `json:"upload_id"`
	AssetID     string       `json:"asset_id"` // uploads only
	Status      string       `json:"status"`
	Passthrough string       `json:"passthrough"` // lesson id
	PlaybackIDs []PlaybackID `json:"playback_ids"`
	Duration    float64      `json:"duration"`
	AspectRatio string       `json:"aspect_ratio"`

	NewAssetSettings struct {
		Passthrough string `json:"passthrough"`
	} `json:"new_asset_settings"` // uploads only
}

type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// PublicPlaybackID returns the first playback id with a public policy.
func (d EventData) PublicPlaybackID() string {
	for _, p := range d.PlaybackIDs {
		if p.Policy == "public" {
			return p.ID
		}
	}
	return ""
}

// asAsset returns the asset described by an upload event.
func (d EventData) asAsset() EventData {
	passthrough := d.Passthrough
	if passthrough == "" {
		passthrough = d.NewAssetSettings.Passthrough
	}
	return EventData{ID: d.AssetID, UploadID: d.ID, Passthrough: passthrough}
}

// LessonID parses the passthrough value set on upload.
func (d EventData) LessonID() (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(d.Passthrough))
	if err != nil {
		return 0, errors.Wrapf(err, "parsing passthrough %q", d.Passthrough)
	}
	return id, nil
}

func ParseEvent(body []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return Event{}, errors.Wrap(err, "decoding webhook event")
	}
	return evt, nil
}

// Sign returns a signature header value for body, in the `t=<unix>,v1=<hex hmac>` format.
func Sign(body []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "t=" + ts + ",v1=" + computeSignature(ts, body, secret)
}

// VerifySignature checks a `t=<unix>,v1=<hex hmac>` header against body.
func VerifySignature(header string, body []byte, secret string, now time.Time) error {
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if d := now.Sub(time.Unix(unix, 0)); d > signatureTolerance || d < -signatureTolerance {
		return ErrStaleSignature
	}

	expected := computeSignature(ts, body, secret)
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(ts string, body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
