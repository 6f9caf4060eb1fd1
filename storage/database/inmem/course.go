package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) QueryCourses(_ context.Context, filter course.QueryFilter, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.courses {
		if filter.AuthorID != "" && crs.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Published != nil && crs.Published != *filter.Published {
			continue
		}
		courses = append(courses, *crs)
	}
	sortCourses(courses, ordering)
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, filter course.GetFilter) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	crs, ok := repo.db.courses[filter.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if filter.AuthorID != "" && crs.AuthorID != filter.AuthorID {
		return course.Course{}, course.ErrNotFound
	}
	if filter.AuthorEmail != "" {
		author, ok := repo.db.users[crs.AuthorID]
		if !ok || !strings.EqualFold(author.Email, filter.AuthorEmail) {
			return course.Course{}, course.ErrNotFound
		}
	}
	if filter.PublishedOnly && !crs.Published {
		return course.Course{}, course.ErrNotFound
	}
	return repo.withLessons(*crs), nil
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.coursePK++
	crs.ID = repo.db.coursePK
	crs.Lessons = nil
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Name = crs.Name
	orig.Description = crs.Description
	orig.Published = crs.Published
	orig.UpdatedAt = crs.UpdatedAt
	return repo.withLessons(*orig), nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[id]; !ok {
		return course.ErrNotFound
	}
	for _, lsn := range repo.db.lessons {
		if lsn.CourseID == id {
			return course.ErrHasLessons
		}
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) GetLesson(_ context.Context, filter course.LessonFilter) (course.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	lsn, ok := repo.db.lessons[filter.ID]
	if !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	if filter.CourseID != 0 && lsn.CourseID != filter.CourseID {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	if filter.AuthorID != "" {
		crs, ok := repo.db.courses[lsn.CourseID]
		if !ok || crs.AuthorID != filter.AuthorID {
			return course.Lesson{}, course.ErrLessonNotFound
		}
	}
	return repo.withVideo(*lsn), nil
}

func (repo *courseRepository) CreateLesson(_ context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[lsn.CourseID]; !ok {
		return course.Lesson{}, course.ErrNotFound
	}
	repo.db.lessonPK++
	lsn.ID = repo.db.lessonPK
	lsn.Video = nil
	repo.db.lessons[lsn.ID] = &lsn
	return lsn, nil
}

func (repo *courseRepository) UpdateLesson(_ context.Context, lsn course.Lesson) (course.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.lessons[lsn.ID]
	if !ok {
		return course.Lesson{}, course.ErrLessonNotFound
	}
	orig.Name = lsn.Name
	orig.Description = lsn.Description
	orig.UpdatedAt = lsn.UpdatedAt
	return repo.withVideo(*orig), nil
}

func (repo *courseRepository) DeleteLesson(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lessons[id]; !ok {
		return course.ErrLessonNotFound
	}
	delete(repo.db.lessons, id)
	for vid, v := range repo.db.videos {
		if v.LessonID == id {
			delete(repo.db.videos, vid)
		}
	}
	return nil
}

// withLessons and withVideo expect the lock to be held.

func (repo *courseRepository) withLessons(crs course.Course) course.Course {
	crs.Lessons = make([]course.Lesson, 0)
	for _, lsn := range repo.db.lessons {
		if lsn.CourseID == crs.ID {
			crs.Lessons = append(crs.Lessons, repo.withVideo(*lsn))
		}
	}
	sort.Slice(crs.Lessons, func(i, j int) bool { return crs.Lessons[i].ID < crs.Lessons[j].ID })
	return crs
}

func (repo *courseRepository) withVideo(lsn course.Lesson) course.Lesson {
	lsn.Video = nil
	for _, v := range repo.db.videos {
		if v.LessonID == lsn.ID {
			v := *v
			lsn.Video = &v
			break
		}
	}
	return lsn
}

func sortCourses(courses []course.Course, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "id", Ascending: true}}
	}
	sort.SliceStable(courses, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareCourses(courses[i], courses[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return courses[i].ID < courses[j].ID
	})
}

func compareCourses(a, b course.Course, field string) int {
	switch field {
	case "id":
		return a.ID - b.ID
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case "published":
		switch {
		case a.Published == b.Published:
			return 0
		case a.Published:
			return 1
		default:
			return -1
		}
	}
	return 0
}
