package video

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
)

var (
	ErrNotFound       = errors.New("video not found")
	ErrLessonHasVideo = errors.New("lesson already has a video")
)

type (
	Repository interface {
		CreateVideo(ctx context.Context, v Video) (Video, error)
		GetVideo(ctx context.Context, filter GetFilter) (Video, error)
		UpdateVideo(ctx context.Context, v Video) (Video, error)
	}

	// Owner describes the lesson a video belongs to and who authored it.
	Owner struct {
		UserID     string
		Name       string
		Email      string
		CourseID   int
		LessonName string
	}

	// Lessons finds the owner of a lesson.
	Lessons interface {
		LessonOwner(ctx context.Context, lessonID int) (Owner, error)
	}

	Service interface {
		HandleEvent(ctx context.Context, evt Event) (Video, error)
	}

	service struct {
		repo    Repository
		lessons Lessons
		mailSvc core.EmailService
		logger  core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, lessons Lessons, mailSvc core.EmailService, logger core.Logger) Service {
	return &service{repo: repo, lessons: lessons, mailSvc: mailSvc, logger: logger}
}

// HandleEvent applies a video host notification to the matching Video, creating it on first sight.
// Unknown event types are ignored and return a zero Video.
func (svc *service) HandleEvent(ctx context.Context, evt Event) (Video, error) {
	var status Status
	switch evt.Type {
	case EventUploadAssetCreated:
		evt.Data = evt.Data.asAsset()
		status = StatusPending
	case EventAssetCreated:
		status = StatusPending
	case EventAssetReady:
		status = StatusReady
	case EventAssetErrored:
		status = StatusErrored
	default:
		return Video{}, nil
	}

	v, owner, err := svc.findOrCreate(ctx, evt.Data, status == StatusPending)
	if err != nil || v.ID == "" {
		return Video{}, err
	}
	if status == StatusPending && v.Status != StatusPending {
		// late creation notice for an asset that already moved on
		return v, nil
	}
	wasReady := v.Status == StatusReady

	v.Status = status
	v.UpdatedAt = time.Now().UTC()
	if evt.Data.UploadID != "" {
		v.UploadID = evt.Data.UploadID
	}
	switch status {
	case StatusReady:
		v.PublicPlaybackID = evt.Data.PublicPlaybackID()
		v.Duration = evt.Data.Duration
		v.AspectRatio = evt.Data.AspectRatio
	case StatusErrored:
		v.PublicPlaybackID = ""
	}

	if v, err = svc.repo.UpdateVideo(ctx, v); err != nil {
		return Video{}, errors.Wrap(err, "updating video")
	}

	if status == StatusReady && !wasReady {
		svc.notifyReady(ctx, v, owner)
	}
	return v, nil
}

// findOrCreate returns the video of the event's asset. An unknown asset is attached to its lesson's video only
// when attach is set (creation events); otherwise the zero Video is returned if the lesson holds another asset.
func (svc *service) findOrCreate(ctx context.Context, data EventData, attach bool) (Video, *Owner, error) {
	v, err := svc.repo.GetVideo(ctx, GetFilter{AssetID: data.ID})
	if err == nil {
		return v, nil, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Video{}, nil, errors.Wrap(err, "finding video by asset id")
	}

	lessonID, err := data.LessonID()
	if err != nil {
		return Video{}, nil, core.NewValidationError(err, core.FieldError{Field: "passthrough", Error: "invalid lesson id"})
	}
	owner, err := svc.lessons.LessonOwner(ctx, lessonID)
	if err != nil {
		return Video{}, nil, errors.Wrap(err, "finding lesson owner")
	}

	// a lesson keeps a single video: a new asset replaces the previous one
	if prev, err := svc.repo.GetVideo(ctx, GetFilter{LessonID: lessonID}); err == nil {
		if !attach && prev.AssetID != "" {
			svc.logger.Info(fmt.Sprintf("ignoring event of superseded asset %s (lesson %d has %s)", data.ID, lessonID, prev.AssetID))
			return Video{}, nil, nil
		}
		prev.AssetID = data.ID
		prev.Status = StatusPending
		prev.PublicPlaybackID = ""
		return prev, &owner, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Video{}, nil, errors.Wrap(err, "finding lesson video")
	}

	now := time.Now().UTC()
	v, err = svc.repo.CreateVideo(ctx, Video{
		ID:        uuid.New().String(),
		LessonID:  lessonID,
		OwnerID:   owner.UserID,
		AssetID:   data.ID,
		UploadID:  data.UploadID,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Video{}, nil, errors.Wrap(err, "creating video")
	}
	return v, &owner, nil
}

func (svc *service) notifyReady(ctx context.Context, v Video, owner *Owner) {
	if owner == nil {
		o, err := svc.lessons.LessonOwner(ctx, v.LessonID)
		if err != nil {
			svc.logger.Error("finding lesson owner for ready video", errors.Wrap(err, "notifying video ready"))
			return
		}
		owner = &o
	}
	if owner.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject:      "Tu video está listo",
		TemplateName: "video_ready",
		TemplateData: map[string]interface{}{
			"Name":         owner.Name,
			"LessonName":   owner.LessonName,
			"CourseID":     owner.CourseID,
			"LessonID":     v.LessonID,
			"ThumbnailURL": ThumbnailURL(v.PublicPlaybackID, DefaultThumbnailWidth),
		},
	})
}
