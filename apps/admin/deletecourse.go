package main

import (
	"context"
	"fmt"

	"github.com/trezcool/profeweb/core/course"
)

const deleteCoursePrompt = "Seguro que querés eliminar este curso?"

type courseDeleter interface {
	GetCourse(ctx context.Context, id int) (course.Course, error)
	DeleteCourse(ctx context.Context, id int) error
}

// deleteCourse deletes a course through the JSON API of a running server, after confirmation.
func (cli *commandLine) deleteCourse(id int, baseURL, email string, yes bool) error {
	token, err := cli.token(email)
	if err != nil {
		return err
	}
	api, err := newAPIClientFunc(baseURL, token)
	if err != nil {
		return err
	}

	ctx := context.Background()
	crs, err := api.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	if !yes && !cli.confirm(fmt.Sprintf("%s (%d: %s)", deleteCoursePrompt, crs.ID, crs.Name)) {
		fmt.Fprintln(cli.out, "Cancelado")
		return nil
	}
	if err := api.DeleteCourse(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Curso eliminado correctamente")
	return nil
}
