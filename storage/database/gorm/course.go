package gormrepos

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
)

type courseRepository struct {
	db *gorm.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *gorm.DB) course.Repository {
	return &courseRepository{db: db}
}

// withLessons preloads lessons, by id, and their video.
func withLessons(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("lessons.id ASC") }).
		Preload("Lessons.Video")
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	q := repo.db.WithContext(ctx).Model(&courseRow{})
	if filter.AuthorID != "" {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Published != nil {
		q = q.Where("published = ?", *filter.Published)
	}
	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, "courses."+ord.String())
		}
		q = q.Order(strings.Join(orderList, ", "))
	} else {
		q = q.Order("courses.id ASC")
	}

	var rows []courseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCourse())
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, filter course.GetFilter) (course.Course, error) {
	q := withLessons(repo.db.WithContext(ctx)).Model(&courseRow{}).Where("courses.id = ?", filter.ID)
	if filter.AuthorID != "" {
		q = q.Where("courses.author_id = ?", filter.AuthorID)
	}
	if filter.AuthorEmail != "" {
		q = q.Joins("JOIN users ON users.id = courses.author_id").
			Where("LOWER(users.email) = LOWER(?)", filter.AuthorEmail).
			Select("courses.*")
	}
	if filter.PublishedOnly {
		q = q.Where("courses.published = ?", true)
	}

	var row courseRow
	if err := q.First(&row).Error; err != nil {
		return course.Course{}, trapNotFound(err, course.ErrNotFound, "finding course")
	}
	crs := row.toCourse()
	if crs.Lessons == nil {
		crs.Lessons = make([]course.Lesson, 0)
	}
	return crs, nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := toCourseRow(crs)
	row.ID = 0
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := toCourseRow(crs)
	res := repo.db.WithContext(ctx).Model(&courseRow{ID: crs.ID}).
		Select("name", "description", "published", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return course.Course{}, errors.Wrap(res.Error, "updating course")
	}
	if res.RowsAffected == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourse(ctx, course.GetFilter{ID: crs.ID})
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	res := repo.db.WithContext(ctx).Delete(&courseRow{}, id)
	if res.Error != nil {
		if pqErrorCode(res.Error) == pqForeignKeyViolation {
			return course.ErrHasLessons
		}
		return errors.Wrap(res.Error, "deleting course")
	}
	if res.RowsAffected == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo *courseRepository) GetLesson(ctx context.Context, filter course.LessonFilter) (course.Lesson, error) {
	q := repo.db.WithContext(ctx).Model(&lessonRow{}).Preload("Video").Where("lessons.id = ?", filter.ID)
	if filter.CourseID != 0 {
		q = q.Where("lessons.course_id = ?", filter.CourseID)
	}
	if filter.AuthorID != "" {
		q = q.Joins("JOIN courses ON courses.id = lessons.course_id").
			Where("courses.author_id = ?", filter.AuthorID).
			Select("lessons.*")
	}

	var row lessonRow
	if err := q.First(&row).Error; err != nil {
		return course.Lesson{}, trapNotFound(err, course.ErrLessonNotFound, "finding lesson")
	}
	return row.toLesson(), nil
}

func (repo *courseRepository) CreateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	row := toLessonRow(lsn)
	row.ID = 0
	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		if pqErrorCode(err) == pqForeignKeyViolation {
			return course.Lesson{}, course.ErrNotFound
		}
		return course.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return row.toLesson(), nil
}

func (repo *courseRepository) UpdateLesson(ctx context.Context, lsn course.Lesson) (course.Lesson, error) {
	row := toLessonRow(lsn)
	res := repo.db.WithContext(ctx).Model(&lessonRow{ID: lsn.ID}).
		Select("name", "description", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return course.Lesson{}, errors.Wrap(res.Error, "updating lesson")
	}
	if res.RowsAffected == 0 {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	return repo.GetLesson(ctx, course.LessonFilter{ID: lsn.ID})
}

// DeleteLesson deletes the lesson; its video goes with it (ON DELETE CASCADE).
func (repo *courseRepository) DeleteLesson(ctx context.Context, id int) error {
	res := repo.db.WithContext(ctx).Delete(&lessonRow{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting lesson")
	}
	if res.RowsAffected == 0 {
		return course.ErrLessonNotFound
	}
	return nil
}
