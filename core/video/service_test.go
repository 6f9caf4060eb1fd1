package video_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	emailsvc "github.com/trezcool/profeweb/services/email"
	"github.com/trezcool/profeweb/tests"
)

type fixture struct {
	repos   *testutil.Repos
	svc     video.Service
	mailSvc *emailsvc.ConsoleServiceMock
	author  user.User
	lesson  course.Lesson
}

func setup(t *testing.T) *fixture {
	conf := testutil.Config()
	logger := testutil.NopLogger{}
	core.ParseEmailTemplates(conf, logger)

	repos := testutil.OpenRepos()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	crsSvc := course.NewService(repos.Courses, user.NewService(repos.Users))

	author := testutil.CreateUser(t, repos.Users, "Ana", "ana@test.cd")
	crs := testutil.CreateCourse(t, repos.Courses, author, "Go", false)
	return &fixture{
		repos:   repos,
		svc:     video.NewService(repos.Videos, crsSvc, mailSvc, logger),
		mailSvc: mailSvc,
		author:  author,
		lesson:  testutil.CreateLesson(t, repos.Courses, crs, "Intro"),
	}
}

func assetEvent(typ, assetID string, lessonID int, playbackID string) video.Event {
	evt := video.Event{Type: typ, Data: video.EventData{
		ID:          assetID,
		Passthrough: strconv.Itoa(lessonID),
		Duration:    12.5,
		AspectRatio: "16:9",
	}}
	if playbackID != "" {
		evt.Data.PlaybackIDs = []video.PlaybackID{{ID: "signed-1", Policy: "signed"}, {ID: playbackID, Policy: "public"}}
	}
	return evt
}

func TestService_HandleEvent_lifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	v, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetCreated, "asset-1", f.lesson.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, video.StatusPending, v.Status)
	assert.Equal(t, f.lesson.ID, v.LessonID)
	assert.Equal(t, f.author.ID, v.OwnerID)
	assert.False(t, v.Playable())

	v, err = f.svc.HandleEvent(ctx, assetEvent(video.EventAssetReady, "asset-1", f.lesson.ID, "play-1"))
	require.NoError(t, err)
	assert.Equal(t, video.StatusReady, v.Status)
	assert.Equal(t, "play-1", v.PublicPlaybackID)
	assert.Equal(t, 12.5, v.Duration)
	assert.True(t, v.Playable())

	sent := f.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@test.cd", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Intro")

	t.Run("late creation notice is ignored", func(t *testing.T) {
		v, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetCreated, "asset-1", f.lesson.ID, ""))
		require.NoError(t, err)
		assert.Equal(t, video.StatusReady, v.Status)
	})

	t.Run("ready twice notifies once", func(t *testing.T) {
		_, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetReady, "asset-1", f.lesson.ID, "play-1"))
		require.NoError(t, err)
		assert.Len(t, f.mailSvc.SentMessages(), 1)
	})

	t.Run("errored clears the playback id", func(t *testing.T) {
		v, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetErrored, "asset-1", f.lesson.ID, ""))
		require.NoError(t, err)
		assert.Equal(t, video.StatusErrored, v.Status)
		assert.Empty(t, v.PublicPlaybackID)
		assert.False(t, v.HasThumbnail())
	})

	t.Run("a new asset replaces the lesson video", func(t *testing.T) {
		v, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetCreated, "asset-2", f.lesson.ID, ""))
		require.NoError(t, err)
		assert.Equal(t, "asset-2", v.AssetID)
		assert.Equal(t, video.StatusPending, v.Status)

		got, err := f.repos.Videos.GetVideo(ctx, video.GetFilter{LessonID: f.lesson.ID})
		require.NoError(t, err)
		assert.Equal(t, "asset-2", got.AssetID)
	})

	t.Run("late events of the replaced asset are ignored", func(t *testing.T) {
		for _, typ := range []string{video.EventAssetReady, video.EventAssetErrored} {
			v, err := f.svc.HandleEvent(ctx, assetEvent(typ, "asset-1", f.lesson.ID, "play-1"))
			require.NoError(t, err, typ)
			assert.Empty(t, v.ID, typ)
		}

		got, err := f.repos.Videos.GetVideo(ctx, video.GetFilter{LessonID: f.lesson.ID})
		require.NoError(t, err)
		assert.Equal(t, "asset-2", got.AssetID)
		assert.Equal(t, video.StatusPending, got.Status)
		assert.Empty(t, got.PublicPlaybackID)
		assert.Len(t, f.mailSvc.SentMessages(), 1, "no email for the replaced asset")

		v, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetReady, "asset-2", f.lesson.ID, "play-2"))
		require.NoError(t, err)
		assert.Equal(t, "play-2", v.PublicPlaybackID)
		assert.Len(t, f.mailSvc.SentMessages(), 2)
	})
}

func TestService_HandleEvent_upload(t *testing.T) {
	f := setup(t)

	evt := video.Event{Type: video.EventUploadAssetCreated, Data: video.EventData{
		ID:      "upload-1",
		AssetID: "asset-1",
	}}
	evt.Data.NewAssetSettings.Passthrough = strconv.Itoa(f.lesson.ID)

	v, err := f.svc.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, "asset-1", v.AssetID)
	assert.Equal(t, "upload-1", v.UploadID)
	assert.Equal(t, video.StatusPending, v.Status)
}

func TestService_HandleEvent_errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	t.Run("ignored type", func(t *testing.T) {
		v, err := f.svc.HandleEvent(ctx, video.Event{Type: "video.asset.deleted"})
		require.NoError(t, err)
		assert.Equal(t, video.Video{}, v)
	})

	t.Run("bad passthrough", func(t *testing.T) {
		evt := assetEvent(video.EventAssetCreated, "asset-1", 0, "")
		evt.Data.Passthrough = "lol"
		_, err := f.svc.HandleEvent(ctx, evt)
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "invalid lesson id", verr.FieldMap()["passthrough"])
	})

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := f.svc.HandleEvent(ctx, assetEvent(video.EventAssetCreated, "asset-1", 999, ""))
		assert.ErrorIs(t, err, course.ErrLessonNotFound)
	})
}
