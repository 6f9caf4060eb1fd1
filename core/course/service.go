package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/core/video"
)

var (
	ErrNotFound       = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrHasLessons is returned when deleting a course that still has lessons.
	ErrHasLessons = core.NewDomainError("No se puede eliminar un curso con clases!")
)

type (
	Repository interface {
		QueryCourses(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, filter GetFilter) (Course, error)
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// DeleteCourse returns ErrHasLessons when the course has lessons.
		DeleteCourse(ctx context.Context, id int) error

		GetLesson(ctx context.Context, filter LessonFilter) (Lesson, error)
		CreateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		UpdateLesson(ctx context.Context, lsn Lesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id int) error
	}

	// Service scopes every author operation to the courses the author owns:
	// a course owned by someone else is reported as not found.
	Service interface {
		ListPublished(ctx context.Context) ([]Course, error)
		GetPublished(ctx context.Context, id int) (Course, error)

		ListForAuthor(ctx context.Context, author user.User, ordering []core.DBOrdering) ([]Course, error)
		GetForAuthor(ctx context.Context, id int, author user.User) (Course, error)
		Create(ctx context.Context, author user.User, nc NewCourse) (Course, error)
		Update(ctx context.Context, id int, author user.User, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id int, author user.User) error

		GetLessonForAuthor(ctx context.Context, id int, author user.User) (Lesson, error)
		CreateLesson(ctx context.Context, courseID int, author user.User, nl NewLesson) (Lesson, error)
		UpdateLesson(ctx context.Context, id int, author user.User, ul UpdateLesson) (Lesson, error)
		DeleteLesson(ctx context.Context, id int, author user.User) (Lesson, error)

		video.Lessons
	}

	service struct {
		repo  Repository
		users user.Service
	}
)

var _ Service = (*service)(nil)

// courses are listed in creation order unless asked otherwise
var defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: true}, {Field: "id", Ascending: true}}

func NewService(repo Repository, users user.Service) Service {
	return &service{repo: repo, users: users}
}

func (svc *service) ListPublished(ctx context.Context) ([]Course, error) {
	published := true
	courses, err := svc.repo.QueryCourses(ctx, QueryFilter{Published: &published}, defaultOrdering)
	return courses, errors.Wrap(err, "querying published courses")
}

func (svc *service) GetPublished(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, GetFilter{ID: id, PublishedOnly: true})
}

func (svc *service) ListForAuthor(ctx context.Context, author user.User, ordering []core.DBOrdering) ([]Course, error) {
	ordering = core.CleanOrderings(ordering, OrderingFields...)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	courses, err := svc.repo.QueryCourses(ctx, QueryFilter{AuthorID: author.ID}, ordering)
	return courses, errors.Wrap(err, "querying author courses")
}

// GetForAuthor finds a course by id among the courses authored by the user with author's email.
func (svc *service) GetForAuthor(ctx context.Context, id int, author user.User) (Course, error) {
	if author.Email == "" {
		return Course{}, core.NewAuthorizationError("no session")
	}
	return svc.repo.GetCourse(ctx, GetFilter{ID: id, AuthorEmail: author.Email})
}

func (svc *service) Create(ctx context.Context, author user.User, nc NewCourse) (Course, error) {
	if author.ID == "" {
		return Course{}, core.NewAuthorizationError("no session")
	}
	now := time.Now().UTC()
	crs, err := svc.repo.CreateCourse(ctx, Course{
		Name:        nc.Name,
		Description: nc.Description,
		AuthorID:    author.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return crs, errors.Wrap(err, "creating course")
}

func (svc *service) Update(ctx context.Context, id int, author user.User, uc UpdateCourse) (Course, error) {
	crs, err := svc.GetForAuthor(ctx, id, author)
	if err != nil {
		return Course{}, err
	}
	crs.Name = uc.Name
	crs.Description = uc.Description
	crs.Published = uc.Published
	crs.UpdatedAt = time.Now().UTC()

	crs, err = svc.repo.UpdateCourse(ctx, crs)
	return crs, errors.Wrap(err, "updating course")
}

func (svc *service) Delete(ctx context.Context, id int, author user.User) error {
	crs, err := svc.GetForAuthor(ctx, id, author)
	if err != nil {
		return err
	}
	if len(crs.Lessons) > 0 {
		return ErrHasLessons
	}
	return errors.Wrap(svc.repo.DeleteCourse(ctx, crs.ID), "deleting course")
}

// GetLessonForAuthor finds a lesson by id among the lessons of courses authored by author.
func (svc *service) GetLessonForAuthor(ctx context.Context, id int, author user.User) (Lesson, error) {
	if author.ID == "" {
		return Lesson{}, core.NewAuthorizationError("no session")
	}
	return svc.repo.GetLesson(ctx, LessonFilter{ID: id, AuthorID: author.ID})
}

func (svc *service) CreateLesson(ctx context.Context, courseID int, author user.User, nl NewLesson) (Lesson, error) {
	crs, err := svc.GetForAuthor(ctx, courseID, author)
	if err != nil {
		return Lesson{}, err
	}
	now := time.Now().UTC()
	lsn, err := svc.repo.CreateLesson(ctx, Lesson{
		Name:        nl.Name,
		Description: nl.Description,
		CourseID:    crs.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return lsn, errors.Wrap(err, "creating lesson")
}

func (svc *service) UpdateLesson(ctx context.Context, id int, author user.User, ul UpdateLesson) (Lesson, error) {
	lsn, err := svc.GetLessonForAuthor(ctx, id, author)
	if err != nil {
		return Lesson{}, err
	}
	lsn.Name = ul.Name
	lsn.Description = ul.Description
	lsn.UpdatedAt = time.Now().UTC()

	lsn, err = svc.repo.UpdateLesson(ctx, lsn)
	return lsn, errors.Wrap(err, "updating lesson")
}

// DeleteLesson deletes the lesson and returns it, so callers know which course it belonged to.
func (svc *service) DeleteLesson(ctx context.Context, id int, author user.User) (Lesson, error) {
	lsn, err := svc.GetLessonForAuthor(ctx, id, author)
	if err != nil {
		return Lesson{}, err
	}
	if err = svc.repo.DeleteLesson(ctx, lsn.ID); err != nil {
		return Lesson{}, errors.Wrap(err, "deleting lesson")
	}
	return lsn, nil
}

func (svc *service) LessonOwner(ctx context.Context, lessonID int) (video.Owner, error) {
	lsn, err := svc.repo.GetLesson(ctx, LessonFilter{ID: lessonID})
	if err != nil {
		return video.Owner{}, errors.Wrap(err, "finding lesson")
	}
	crs, err := svc.repo.GetCourse(ctx, GetFilter{ID: lsn.CourseID})
	if err != nil {
		return video.Owner{}, errors.Wrap(err, "finding course")
	}
	author, err := svc.users.GetByID(ctx, crs.AuthorID)
	if err != nil {
		return video.Owner{}, errors.Wrap(err, "finding author")
	}
	return video.Owner{
		UserID:     author.ID,
		Name:       author.Name,
		Email:      author.Email,
		CourseID:   crs.ID,
		LessonName: lsn.Name,
	}, nil
}
