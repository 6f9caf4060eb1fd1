package gormrepos_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
	"github.com/trezcool/profeweb/storage/database"
	gormrepos "github.com/trezcool/profeweb/storage/database/gorm"
	"github.com/trezcool/profeweb/tests"
)

// prepareDB migrates the database at TEST_DATABASE_HOST and empties it.
// These tests are skipped without it.
func prepareDB(t *testing.T) *gorm.DB {
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.Database.Host = host

	ctx := context.Background()
	require.NoError(t, database.CreateIfNotExist(ctx, conf))
	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, "up"))

	_, err = db.ExecContext(ctx, "TRUNCATE videos, lessons, courses, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	gdb, err := database.WrapGorm(conf, db)
	require.NoError(t, err)
	return gdb
}

func TestRepositories(t *testing.T) {
	gdb := prepareDB(t)
	ctx := context.Background()
	users := gormrepos.NewUserRepository(gdb)
	courses := gormrepos.NewCourseRepository(gdb)
	videos := gormrepos.NewVideoRepository(gdb)

	ana := testutil.CreateUser(t, users, "Ana", "ana@test.cd")
	bob := testutil.CreateUser(t, users, "Bob", "bob@test.cd")

	_, err := users.CreateUser(ctx, user.User{ID: "dup", Email: "ana@test.cd"})
	assert.ErrorIs(t, err, user.ErrEmailExists)

	crs := testutil.CreateCourse(t, courses, ana, "Go", false)
	testutil.CreateCourse(t, courses, bob, "Rust", true)

	t.Run("query and get", func(t *testing.T) {
		published := true
		crss, err := courses.QueryCourses(ctx, course.QueryFilter{Published: &published}, nil)
		require.NoError(t, err)
		require.Len(t, crss, 1)
		assert.Equal(t, "Rust", crss[0].Name)

		got, err := courses.GetCourse(ctx, course.GetFilter{ID: crs.ID, AuthorEmail: "ANA@test.cd"})
		require.NoError(t, err)
		assert.Empty(t, got.Lessons)

		_, err = courses.GetCourse(ctx, course.GetFilter{ID: crs.ID, AuthorEmail: "bob@test.cd"})
		assert.ErrorIs(t, err, course.ErrNotFound)
		_, err = courses.GetCourse(ctx, course.GetFilter{ID: crs.ID, PublishedOnly: true})
		assert.ErrorIs(t, err, course.ErrNotFound)
	})

	t.Run("lessons and videos", func(t *testing.T) {
		lsn := testutil.CreateLesson(t, courses, crs, "Intro")
		v := testutil.CreateVideo(t, videos, lsn, ana, "asset-1", video.StatusPending, "")

		v.Status = video.StatusReady
		v.PublicPlaybackID = "play-1"
		_, err := videos.UpdateVideo(ctx, v)
		require.NoError(t, err)

		got, err := courses.GetCourse(ctx, course.GetFilter{ID: crs.ID})
		require.NoError(t, err)
		require.Len(t, got.Lessons, 1)
		require.NotNil(t, got.Lessons[0].Video)
		assert.True(t, got.Lessons[0].Video.Playable())

		_, err = courses.GetLesson(ctx, course.LessonFilter{ID: lsn.ID, AuthorID: bob.ID})
		assert.ErrorIs(t, err, course.ErrLessonNotFound)

		assert.Equal(t, course.ErrHasLessons, courses.DeleteCourse(ctx, crs.ID))
		require.NoError(t, courses.DeleteLesson(ctx, lsn.ID))
		_, err = videos.GetVideo(ctx, video.GetFilter{AssetID: "asset-1"})
		assert.ErrorIs(t, err, video.ErrNotFound)
		require.NoError(t, courses.DeleteCourse(ctx, crs.ID))
	})
}
