package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
	inmemdb "github.com/trezcool/profeweb/storage/database/inmem"
)

// testClient connects to TEST_REDIS_ADDR, these tests are skipped without it.
func testClient(t *testing.T) *redis.Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := NewClient(context.Background(), &core.Config{Redis: core.RedisConfig{Addr: addr, DB: 15}})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return rdb
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestNewClient_disabled(t *testing.T) {
	rdb, err := NewClient(context.Background(), &core.Config{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	rdb := testClient(t)
	db := inmemdb.Open()
	repo := NewCourseRepository(inmemdb.NewCourseRepository(db), rdb, time.Minute, nopLogger{})

	crs, err := repo.CreateCourse(ctx, course.Course{Name: "Álgebra", Description: "Intro", AuthorID: "a1"})
	require.NoError(t, err)

	got, err := repo.GetCourse(ctx, course.GetFilter{ID: crs.ID})
	require.NoError(t, err)
	assert.Equal(t, "Álgebra", got.Name)
	n, err := rdb.Exists(ctx, courseKey(crs.ID)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.GetCourse(ctx, course.GetFilter{ID: crs.ID, AuthorID: "someone-else"})
	assert.Equal(t, course.ErrNotFound, err)
	_, err = repo.GetCourse(ctx, course.GetFilter{ID: crs.ID, PublishedOnly: true})
	assert.Equal(t, course.ErrNotFound, err)

	_, err = repo.CreateLesson(ctx, course.Lesson{Name: "Uno", Description: "d", CourseID: crs.ID})
	require.NoError(t, err)
	got, err = repo.GetCourse(ctx, course.GetFilter{ID: crs.ID})
	require.NoError(t, err)
	assert.Len(t, got.Lessons, 1, "creating a lesson invalidates its course")
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	rdb := testClient(t)
	l1 := NewRedisLocker(rdb, time.Minute)
	l2 := NewRedisLocker(rdb, time.Minute)

	ok, err := l1.TryLock(ctx, "course:delete:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l2.TryLock(ctx, "course:delete:1")
	require.NoError(t, err)
	assert.False(t, ok, "the key is held by another instance")

	require.NoError(t, l2.Unlock(ctx, "course:delete:1"))
	locked, err := l1.Locked(ctx, "course:delete:1")
	require.NoError(t, err)
	assert.True(t, locked, "only the holder releases a lock")

	require.NoError(t, l1.Unlock(ctx, "course:delete:1"))
	locked, err = l2.Locked(ctx, "course:delete:1")
	require.NoError(t, err)
	assert.False(t, locked)

	var _ mutation.Locker = l1
}
