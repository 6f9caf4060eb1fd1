package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
)

type courseAPI struct {
	*Server
}

func registerCourseAPI(g *echo.Group, s *Server) {
	h := courseAPI{s}
	auth := requireAPIUser(s.deps.UserSvc)

	g.GET("/courses", h.listCourses, auth)
	g.POST("/courses", h.createCourse, auth)
	g.GET("/courses/:id", h.retrieveCourse, auth)
	g.PUT("/courses/:id", h.updateCourse, auth)
	g.DELETE("/courses/:id", h.deleteCourse, auth)

	g.POST("/courses/:id/lessons", h.createLesson, auth)
	g.GET("/lessons/:id", h.retrieveLesson, auth)
	g.PUT("/lessons/:id", h.updateLesson, auth)
	g.DELETE("/lessons/:id", h.deleteLesson, auth)
}

// runMutation runs fn as the mutation named key and waits for its outcome.
// A mutation already pending under key makes it fail with errInProgress.
func runMutation[O any](ctx echo.Context, locker mutation.Locker, key string, fn func(context.Context) (O, error)) (O, error) {
	var (
		result O
		runErr error
	)
	m := mutation.New(func(ctx context.Context, _ struct{}) (O, error) { return fn(ctx) }, mutation.Options[O]{
		Key:       key,
		Locker:    locker,
		OnSuccess: func(r O) { result = r },
		OnError:   func(err error) { runErr = err },
	})
	if !m.MutateAndWait(ctx.Request().Context(), struct{}{}) {
		return result, errInProgress
	}
	return result, runErr
}

func (h courseAPI) listCourses(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	var ord Ordering
	ord.Bind(ctx)

	courses, err := h.deps.CourseSvc.ListForAuthor(ctx.Request().Context(), usr, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (h courseAPI) createCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	var nc course.NewCourse
	if err = ctx.Bind(&nc); err != nil {
		return errInvalidPayload
	}
	if err = nc.Validate(h.deps.Validate); err != nil {
		return err
	}

	crs, err := runMutation(ctx, h.deps.Locker, "course:create:"+usr.ID, func(c context.Context) (course.Course, error) {
		return h.deps.CourseSvc.Create(c, usr, nc)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (h courseAPI) retrieveCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	crs, err := h.deps.CourseSvc.GetForAuthor(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (h courseAPI) updateCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var uc course.UpdateCourse
	if err = ctx.Bind(&uc); err != nil {
		return errInvalidPayload
	}
	if err = uc.Validate(h.deps.Validate); err != nil {
		return err
	}

	crs, err := runMutation(ctx, h.deps.Locker, fmt.Sprintf("course:update:%d", id), func(c context.Context) (course.Course, error) {
		return h.deps.CourseSvc.Update(c, id, usr, uc)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (h courseAPI) deleteCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	_, err = runMutation(ctx, h.deps.Locker, fmt.Sprintf("course:delete:%d", id), func(c context.Context) (struct{}, error) {
		return struct{}{}, h.deps.CourseSvc.Delete(c, id, usr)
	})
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (h courseAPI) createLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	courseID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var nl course.NewLesson
	if err = ctx.Bind(&nl); err != nil {
		return errInvalidPayload
	}
	if err = nl.Validate(h.deps.Validate); err != nil {
		return err
	}

	lsn, err := runMutation(ctx, h.deps.Locker, fmt.Sprintf("lesson:create:%d", courseID), func(c context.Context) (course.Lesson, error) {
		return h.deps.CourseSvc.CreateLesson(c, courseID, usr, nl)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (h courseAPI) retrieveLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lsn, err := h.deps.CourseSvc.GetLessonForAuthor(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (h courseAPI) updateLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	var ul course.UpdateLesson
	if err = ctx.Bind(&ul); err != nil {
		return errInvalidPayload
	}
	if err = ul.Validate(h.deps.Validate); err != nil {
		return err
	}

	lsn, err := runMutation(ctx, h.deps.Locker, fmt.Sprintf("lesson:update:%d", id), func(c context.Context) (course.Lesson, error) {
		return h.deps.CourseSvc.UpdateLesson(c, id, usr, ul)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (h courseAPI) deleteLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	_, err = runMutation(ctx, h.deps.Locker, fmt.Sprintf("lesson:delete:%d", id), func(c context.Context) (course.Lesson, error) {
		return h.deps.CourseSvc.DeleteLesson(c, id, usr)
	})
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
