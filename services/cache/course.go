package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/video"
)

const courseKeyPrefix = "course:detail:"

func courseKey(id int) string {
	return courseKeyPrefix + strconv.Itoa(id)
}

// courseRepository caches courses with their lessons, by id.
// Lookups by author email always hit the database.
type courseRepository struct {
	course.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger core.Logger
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(next course.Repository, rdb *redis.Client, ttl time.Duration, logger core.Logger) course.Repository {
	return &courseRepository{Repository: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (repo *courseRepository) GetCourse(ctx context.Context, filter course.GetFilter) (course.Course, error) {
	if filter.AuthorEmail != "" {
		return repo.Repository.GetCourse(ctx, filter)
	}

	crs, ok := repo.get(ctx, filter.ID)
	if !ok {
		var err error
		crs, err = repo.Repository.GetCourse(ctx, course.GetFilter{ID: filter.ID})
		if err != nil {
			return course.Course{}, err
		}
		repo.set(ctx, crs)
	}

	if filter.AuthorID != "" && crs.AuthorID != filter.AuthorID {
		return course.Course{}, course.ErrNotFound
	}
	if filter.PublishedOnly && !crs.Published {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	defer repo.Invalidate(ctx, crs.ID)
	return repo.Repository.UpdateCourse(ctx, crs)
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	defer repo.Invalidate(ctx, id)
	return repo.Repository.DeleteCourse(ctx, id)
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	defer repo.Invalidate(ctx, lsn.CourseID)
	return repo.Repository.CreateLesson(ctx, lsn)
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	lsn, err := repo.Repository.UpdateLesson(ctx, lsn)
	if err == nil {
		repo.Invalidate(ctx, lsn.CourseID)
	}
	return lsn, err
}

func (repo *courseRepository) DeleteLesson(ctx context.Context, id int) error {
	lsn, err := repo.Repository.GetLesson(ctx, course.LessonFilter{ID: id})
	if err != nil {
		return err
	}
	defer repo.Invalidate(ctx, lsn.CourseID)
	return repo.Repository.DeleteLesson(ctx, id)
}

// Invalidate drops the cached course. Failures are logged: the entry expires with its TTL anyway.
func (repo *courseRepository) Invalidate(ctx context.Context, courseID int) {
	if err := repo.rdb.Del(ctx, courseKey(courseID)).Err(); err != nil {
		repo.logger.Warn("cache: invalidating course", errors.Wrap(err, courseKey(courseID)))
	}
}

func (repo *courseRepository) get(ctx context.Context, id int) (course.Course, bool) {
	val, err := repo.rdb.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			repo.logger.Warn("cache: reading course", errors.Wrap(err, courseKey(id)))
		}
		return course.Course{}, false
	}
	var crs course.Course
	if err = json.Unmarshal(val, &crs); err != nil {
		return course.Course{}, false
	}
	return crs, true
}

func (repo *courseRepository) set(ctx context.Context, crs course.Course) {
	data, err := json.Marshal(crs)
	if err != nil {
		return
	}
	if err = repo.rdb.Set(ctx, courseKey(crs.ID), data, repo.ttl).Err(); err != nil {
		repo.logger.Warn("cache: writing course", errors.Wrap(err, courseKey(crs.ID)))
	}
}

// videoRepository drops the cached course of a lesson whose video changed.
type videoRepository struct {
	video.Repository
	lessons course.Repository
	courses *courseRepository
}

var _ video.Repository = (*videoRepository)(nil)

// NewVideoRepository wraps next so that video changes invalidate the course cached by courses,
// which must come from NewCourseRepository.
func NewVideoRepository(next video.Repository, courses course.Repository) video.Repository {
	cached, ok := courses.(*courseRepository)
	if !ok {
		return next
	}
	return &videoRepository{Repository: next, lessons: cached.Repository, courses: cached}
}

func (repo *videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	v, err := repo.Repository.CreateVideo(ctx, v)
	if err == nil {
		repo.invalidate(ctx, v.LessonID)
	}
	return v, err
}

func (repo *videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	v, err := repo.Repository.UpdateVideo(ctx, v)
	if err == nil {
		repo.invalidate(ctx, v.LessonID)
	}
	return v, err
}

func (repo *videoRepository) invalidate(ctx context.Context, lessonID int) {
	lsn, err := repo.lessons.GetLesson(ctx, course.LessonFilter{ID: lessonID})
	if err != nil {
		return
	}
	repo.courses.Invalidate(ctx, lsn.CourseID)
}
