package echoapi

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/confirm"
	"github.com/trezcool/profeweb/core/course"
	"github.com/trezcool/profeweb/core/mutation"
	"github.com/trezcool/profeweb/core/user"
	"github.com/trezcool/profeweb/ui"
	"github.com/trezcool/profeweb/ui/forms"
)

const (
	msgCourseCreated = "Curso creado correctamente"
	msgCourseUpdated = "Curso actualizado correctamente"
	msgCourseDeleted = "Curso eliminado correctamente"
	msgLessonCreated = "Clase creada correctamente"
	msgLessonUpdated = "Clase actualizada correctamente"
	msgLessonDeleted = "Clase eliminada correctamente"
	msgFailed        = "Algo salió mal"

	askDeleteCourse = "Seguro que querés eliminar este curso?"
	askDeleteLesson = "Seguro que querés eliminar esta clase?"
)

type (
	adminContent struct {
		Courses   []course.Course
		NewButton template.HTML
	}

	courseFormContent struct {
		Heading      string
		Course       *course.Course
		Form         template.HTML
		DeleteAction string
		DeleteButton template.HTML
		AddLesson    template.HTML
	}

	lessonFormContent struct {
		Heading      string
		CourseID     int
		Lesson       *course.Lesson
		Form         template.HTML
		DeleteAction string
		DeleteButton template.HTML
	}

	// pageAction is where a confirmed (or cancelled) action leaves its outcome.
	pageAction struct {
		toaster  *ui.Toaster
		redirect string
	}

	promptActions struct {
		mu      sync.Mutex
		actions map[string]*pageAction // {promptID: action}
	}
)

func newPromptActions() *promptActions {
	return &promptActions{actions: make(map[string]*pageAction)}
}

func (pa *promptActions) put(id string, action *pageAction) {
	pa.mu.Lock()
	pa.actions[id] = action
	pa.mu.Unlock()
}

func (pa *promptActions) drop(id string) {
	pa.mu.Lock()
	delete(pa.actions, id)
	pa.mu.Unlock()
}

func (pa *promptActions) take(id string) (*pageAction, bool) {
	pa.mu.Lock()
	defer pa.mu.Unlock()
	action, ok := pa.actions[id]
	delete(pa.actions, id)
	return action, ok
}

type pages struct {
	*Server
}

func registerPublicPages(e *echo.Echo, s *Server) {
	h := pages{s}
	e.GET("/", h.home)
	e.GET("/courses/:courseId", h.publicCourse)
}

func registerAdminPages(g *echo.Group, s *Server) {
	h := pages{s}
	g.GET("", h.adminHome)

	g.GET("/courses/new", h.newCourse)
	g.POST("/courses/new", h.newCourse)
	g.GET("/courses/:courseId", h.editCourse)
	g.POST("/courses/:courseId", h.editCourse)
	g.POST("/courses/:courseId/delete", h.askDeleteCourse)

	g.GET("/courses/:courseId/lessons/new", h.newLesson)
	g.POST("/courses/:courseId/lessons/new", h.newLesson)
	g.GET("/courses/:courseId/lessons/:lessonId", h.editLesson)
	g.POST("/courses/:courseId/lessons/:lessonId", h.editLesson)
	g.POST("/courses/:courseId/lessons/:lessonId/delete", h.askDeleteLesson)

	g.POST("/confirm/:promptId", h.resolvePrompt)
}

func (h pages) formDeps() forms.Deps {
	return forms.Deps{Validate: h.deps.Validate, Translator: h.deps.Translator}
}

// failureMessage is the toast text of a failed mutation: business rule messages are shown as is.
func (h pages) failureMessage(err error) string {
	var derr *core.DomainError
	if errors.As(err, &derr) {
		return derr.Message
	}
	h.deps.Logger.Error(msgFailed, err)
	return msgFailed
}

func (h pages) home(ctx echo.Context) error {
	courses, err := h.deps.CourseSvc.ListPublished(ctx.Request().Context())
	if err != nil {
		return err
	}
	return h.renderPage(ctx, http.StatusOK, "home", "", takeFlash(ctx), courses)
}

func (h pages) publicCourse(ctx echo.Context) error {
	id, err := intParam(ctx, "courseId")
	if err != nil {
		return err
	}
	crs, err := h.deps.CourseSvc.GetPublished(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return h.renderPage(ctx, http.StatusOK, "course", crs.Name, takeFlash(ctx), crs)
}

func (h pages) adminHome(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	courses, err := h.deps.CourseSvc.ListForAuthor(ctx.Request().Context(), usr, nil)
	if err != nil {
		return err
	}
	newBtn, err := ui.Button(ui.ButtonConfig{Href: "/admin/courses/new"}, "Crear curso")
	if err != nil {
		return err
	}
	return h.renderPage(ctx, http.StatusOK, "admin", "Admin", takeFlash(ctx), adminContent{Courses: courses, NewButton: newBtn})
}

// authorCourse loads the course of the path for the session's user.
func (h pages) authorCourse(ctx echo.Context) (user.User, course.Course, error) {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return user.User{}, course.Course{}, err
	}
	id, err := intParam(ctx, "courseId")
	if err != nil {
		return user.User{}, course.Course{}, err
	}
	crs, err := h.deps.CourseSvc.GetForAuthor(ctx.Request().Context(), id, usr)
	return usr, crs, err
}

// authorLesson loads the lesson of the path for the session's user. It must belong to the course of the path.
func (h pages) authorLesson(ctx echo.Context) (user.User, course.Lesson, error) {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return user.User{}, course.Lesson{}, err
	}
	courseID, err := intParam(ctx, "courseId")
	if err != nil {
		return user.User{}, course.Lesson{}, err
	}
	id, err := intParam(ctx, "lessonId")
	if err != nil {
		return user.User{}, course.Lesson{}, err
	}
	lsn, err := h.deps.CourseSvc.GetLessonForAuthor(ctx.Request().Context(), id, usr)
	if err != nil {
		return user.User{}, course.Lesson{}, err
	}
	if lsn.CourseID != courseID {
		return user.User{}, course.Lesson{}, course.ErrLessonNotFound
	}
	return usr, lsn, nil
}

// submission is the outcome of posting an entity form.
type submission[O any] struct {
	result O
	ran    bool // the mutation ran (and completed)
	busy   bool // the mutation was already pending
	failed bool
}

// submitForm runs the mutation with the posted input once the form is valid.
func submitForm[I, O any](ctx echo.Context, m *mutation.Mutation[I, O], sub *submission[O]) func(I) error {
	return func(in I) error {
		if !m.MutateAndWait(ctx.Request().Context(), in) {
			sub.busy = true
			return nil
		}
		sub.ran = true
		if m.Status() == mutation.StatusSuccess {
			sub.result = m.Data()
		} else {
			sub.failed = true
		}
		return nil
	}
}

// formStatus is the status of a re-rendered form page.
func formStatus(f *forms.EntityForm, busy bool) int {
	switch {
	case !f.Valid():
		return http.StatusUnprocessableEntity
	case busy:
		return http.StatusConflict
	default:
		return http.StatusOK
	}
}

func (h pages) newCourse(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	toaster := ui.NewToaster()
	m := mutation.New(func(c context.Context, in forms.CourseInput) (course.Course, error) {
		return h.deps.CourseSvc.Create(c, usr, in.NewCourse())
	}, mutation.Options[course.Course]{
		Key:       "course:create:" + usr.ID,
		Locker:    h.deps.Locker,
		OnSuccess: func(course.Course) { toaster.Success(msgCourseCreated) },
		OnError:   func(err error) { toaster.Error(h.failureMessage(err)) },
	})

	var sub submission[course.Course]
	f := forms.NewCourseForm(h.formDeps(), nil, submitForm(ctx, m, &sub), false)

	code := http.StatusOK
	if ctx.Request().Method == http.MethodPost {
		posted, err := ctx.FormParams()
		if err != nil {
			return errors.Wrap(err, "reading form")
		}
		if err = f.Submit(posted); err != nil {
			return err
		}
		if sub.ran && !sub.failed {
			setFlash(ctx, h.deps.Conf, toaster)
			return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/courses/%d", sub.result.ID))
		}
		f.SetLoading(sub.busy)
		code = formStatus(f, sub.busy)
	}

	form, err := f.Render()
	if err != nil {
		return err
	}
	return h.renderPage(ctx, code, "course_form", "Nuevo curso", toaster, courseFormContent{Heading: "Nuevo curso", Form: form})
}

func (h pages) editCourse(ctx echo.Context) error {
	usr, crs, err := h.authorCourse(ctx)
	if err != nil {
		return err
	}
	toaster := takeFlash(ctx)
	m := mutation.New(func(c context.Context, in forms.CourseInput) (course.Course, error) {
		return h.deps.CourseSvc.Update(c, crs.ID, usr, in.UpdateCourse())
	}, mutation.Options[course.Course]{
		Key:       fmt.Sprintf("course:update:%d", crs.ID),
		Locker:    h.deps.Locker,
		OnSuccess: func(course.Course) { toaster.Success(msgCourseUpdated) },
		OnError:   func(err error) { toaster.Error(h.failureMessage(err)) },
	})

	var sub submission[course.Course]
	f := forms.NewCourseForm(h.formDeps(), &crs, submitForm(ctx, m, &sub), false)

	code := http.StatusOK
	if ctx.Request().Method == http.MethodPost {
		posted, err := ctx.FormParams()
		if err != nil {
			return errors.Wrap(err, "reading form")
		}
		if err = f.Submit(posted); err != nil {
			return err
		}
		if sub.ran && !sub.failed {
			setFlash(ctx, h.deps.Conf, toaster)
			return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/courses/%d", crs.ID))
		}
		f.SetLoading(sub.busy)
		code = formStatus(f, sub.busy)
	}
	return h.renderCourseEdit(ctx, code, crs, f, toaster)
}

func (h pages) renderCourseEdit(ctx echo.Context, code int, crs course.Course, f *forms.EntityForm, toaster *ui.Toaster) error {
	form, err := f.Render()
	if err != nil {
		return err
	}
	deleteBtn, err := ui.Button(ui.ButtonConfig{Type: ui.TypeSubmit, Intent: ui.IntentDanger}, "Eliminar curso")
	if err != nil {
		return err
	}
	addLesson, err := ui.Button(ui.ButtonConfig{Href: fmt.Sprintf("/admin/courses/%d/lessons/new", crs.ID)}, "Agregar una clase")
	if err != nil {
		return err
	}
	return h.renderPage(ctx, code, "course_form", crs.Name, toaster, courseFormContent{
		Heading:      crs.Name,
		Course:       &crs,
		Form:         form,
		DeleteAction: fmt.Sprintf("/admin/courses/%d/delete", crs.ID),
		DeleteButton: deleteBtn,
		AddLesson:    addLesson,
	})
}

// askConfirmation registers the prompt for the session's user and adds its toast to toaster.
// The user's earlier unanswered prompt with the same key is replaced.
func (h pages) askConfirmation(usr user.User, key string, p *confirm.Prompt, action *pageAction, toaster *ui.Toaster) error {
	id, replaced, err := h.deps.Prompts.Add(usr.ID, key, p)
	if err != nil {
		return errors.Wrap(err, "asking confirmation")
	}
	if replaced != "" {
		h.actions.drop(replaced)
	}
	h.actions.put(id, action)

	content, err := ui.ConfirmPrompt(p, "/admin/confirm/"+id)
	if err != nil {
		return err
	}
	toaster.Custom(content)
	return nil
}

func (h pages) askDeleteCourse(ctx echo.Context) error {
	usr, crs, err := h.authorCourse(ctx)
	if err != nil {
		return err
	}
	back := fmt.Sprintf("/admin/courses/%d", crs.ID)
	action := &pageAction{toaster: ui.NewToaster(), redirect: back}

	key := fmt.Sprintf("course:delete:%d", crs.ID)
	del := mutation.New(func(c context.Context, id int) (struct{}, error) {
		return struct{}{}, h.deps.CourseSvc.Delete(c, id, usr)
	}, mutation.Options[struct{}]{
		Key:    key,
		Locker: h.deps.Locker,
		OnSuccess: func(struct{}) {
			action.toaster.Success(msgCourseDeleted)
			action.redirect = "/admin"
		},
		OnError: func(err error) { action.toaster.Error(h.failureMessage(err)) },
	})
	p := confirm.NewPrompt(askDeleteCourse, func() {
		del.MutateAndWait(context.Background(), crs.ID)
	}, nil)

	toaster := ui.NewToaster()
	if err = h.askConfirmation(usr, key, p, action, toaster); err != nil {
		return err
	}
	f := forms.NewCourseForm(h.formDeps(), &crs, func(forms.CourseInput) error { return nil }, false)
	f.Action = back
	return h.renderCourseEdit(ctx, http.StatusOK, crs, f, toaster)
}

func (h pages) newLesson(ctx echo.Context) error {
	usr, crs, err := h.authorCourse(ctx)
	if err != nil {
		return err
	}
	toaster := ui.NewToaster()
	m := mutation.New(func(c context.Context, in forms.LessonInput) (course.Lesson, error) {
		return h.deps.CourseSvc.CreateLesson(c, crs.ID, usr, in.NewLesson())
	}, mutation.Options[course.Lesson]{
		Key:       fmt.Sprintf("lesson:create:%d", crs.ID),
		Locker:    h.deps.Locker,
		OnSuccess: func(course.Lesson) { toaster.Success(msgLessonCreated) },
		OnError:   func(err error) { toaster.Error(h.failureMessage(err)) },
	})

	var sub submission[course.Lesson]
	f := forms.NewLessonForm(h.formDeps(), nil, submitForm(ctx, m, &sub), false)

	code := http.StatusOK
	if ctx.Request().Method == http.MethodPost {
		posted, err := ctx.FormParams()
		if err != nil {
			return errors.Wrap(err, "reading form")
		}
		if err = f.Submit(posted); err != nil {
			return err
		}
		if sub.ran && !sub.failed {
			setFlash(ctx, h.deps.Conf, toaster)
			return ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/admin/courses/%d/lessons/%d", crs.ID, sub.result.ID))
		}
		f.SetLoading(sub.busy)
		code = formStatus(f, sub.busy)
	}

	form, err := f.Render()
	if err != nil {
		return err
	}
	return h.renderPage(ctx, code, "lesson_form", "Nueva clase", toaster, lessonFormContent{
		Heading:  "Nueva clase",
		CourseID: crs.ID,
		Form:     form,
	})
}

func (h pages) editLesson(ctx echo.Context) error {
	usr, lsn, err := h.authorLesson(ctx)
	if err != nil {
		return err
	}
	toaster := takeFlash(ctx)
	m := mutation.New(func(c context.Context, in forms.LessonInput) (course.Lesson, error) {
		return h.deps.CourseSvc.UpdateLesson(c, lsn.ID, usr, in.UpdateLesson())
	}, mutation.Options[course.Lesson]{
		Key:       fmt.Sprintf("lesson:update:%d", lsn.ID),
		Locker:    h.deps.Locker,
		OnSuccess: func(course.Lesson) { toaster.Success(msgLessonUpdated) },
		OnError:   func(err error) { toaster.Error(h.failureMessage(err)) },
	})

	var sub submission[course.Lesson]
	f := forms.NewLessonForm(h.formDeps(), &lsn, submitForm(ctx, m, &sub), false)

	code := http.StatusOK
	if ctx.Request().Method == http.MethodPost {
		posted, err := ctx.FormParams()
		if err != nil {
			return errors.Wrap(err, "reading form")
		}
		if err = f.Submit(posted); err != nil {
			return err
		}
		if sub.ran && !sub.failed {
			setFlash(ctx, h.deps.Conf, toaster)
			return ctx.Redirect(http.StatusSeeOther, lessonPath(lsn))
		}
		f.SetLoading(sub.busy)
		code = formStatus(f, sub.busy)
	}
	return h.renderLessonEdit(ctx, code, lsn, f, toaster)
}

func lessonPath(lsn course.Lesson) string {
	return fmt.Sprintf("/admin/courses/%d/lessons/%d", lsn.CourseID, lsn.ID)
}

func (h pages) renderLessonEdit(ctx echo.Context, code int, lsn course.Lesson, f *forms.EntityForm, toaster *ui.Toaster) error {
	form, err := f.Render()
	if err != nil {
		return err
	}
	deleteBtn, err := ui.Button(ui.ButtonConfig{Type: ui.TypeSubmit, Intent: ui.IntentDanger}, "Eliminar clase")
	if err != nil {
		return err
	}
	return h.renderPage(ctx, code, "lesson_form", lsn.Name, toaster, lessonFormContent{
		Heading:      lsn.Name,
		CourseID:     lsn.CourseID,
		Lesson:       &lsn,
		Form:         form,
		DeleteAction: lessonPath(lsn) + "/delete",
		DeleteButton: deleteBtn,
	})
}

func (h pages) askDeleteLesson(ctx echo.Context) error {
	usr, lsn, err := h.authorLesson(ctx)
	if err != nil {
		return err
	}
	action := &pageAction{toaster: ui.NewToaster(), redirect: lessonPath(lsn)}

	key := fmt.Sprintf("lesson:delete:%d", lsn.ID)
	del := mutation.New(func(c context.Context, id int) (course.Lesson, error) {
		return h.deps.CourseSvc.DeleteLesson(c, id, usr)
	}, mutation.Options[course.Lesson]{
		Key:    key,
		Locker: h.deps.Locker,
		OnSuccess: func(deleted course.Lesson) {
			action.toaster.Success(msgLessonDeleted)
			action.redirect = fmt.Sprintf("/admin/courses/%d", deleted.CourseID)
		},
		OnError: func(err error) { action.toaster.Error(h.failureMessage(err)) },
	})
	p := confirm.NewPrompt(askDeleteLesson, func() {
		del.MutateAndWait(context.Background(), lsn.ID)
	}, nil)

	toaster := ui.NewToaster()
	if err = h.askConfirmation(usr, key, p, action, toaster); err != nil {
		return err
	}
	f := forms.NewLessonForm(h.formDeps(), &lsn, func(forms.LessonInput) error { return nil }, false)
	f.Action = lessonPath(lsn)
	return h.renderLessonEdit(ctx, http.StatusOK, lsn, f, toaster)
}

// resolvePrompt answers a confirmation prompt of the session's user with `choice=confirm|cancel`,
// then sends the user where the action leads.
func (h pages) resolvePrompt(ctx echo.Context) error {
	usr, err := getContextUser(ctx, h.deps.UserSvc)
	if err != nil {
		return err
	}
	id := ctx.Param("promptId")
	confirmed := ctx.FormValue("choice") == "confirm"

	if _, err = h.deps.Prompts.Resolve(usr.ID, id, confirmed); err != nil {
		return err
	}
	action, ok := h.actions.take(id)
	if !ok {
		return ctx.Redirect(http.StatusSeeOther, "/admin")
	}
	setFlash(ctx, h.deps.Conf, action.toaster)
	return ctx.Redirect(http.StatusSeeOther, action.redirect)
}
