package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulalink/backend/core/student"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{deps: deps}

	sg := g.Group("/students", jwt, teacherMiddleware())
	sg.POST("", api.onboard)
	sg.GET("", api.query)
	sg.GET("/unassigned", api.queryUnassigned)
	sg.POST("/:id/assign", api.assign)
}

// Handlers

// onboard runs the enrollment workflow for the acting teacher. Class-booking
// and notification sub-failures surface as warnings, not errors.
func (api *studentApi) onboard(ctx echo.Context) error {
	var data student.EnrollStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollStudent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.deps.StudentSvc.Onboard(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "onboarding student")
	}

	return ctx.JSON(http.StatusCreated, EnrollmentResponse{
		Enrollment: enr,
		Warnings:   enr.Warnings(),
	})
}

func (api *studentApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	students, err := api.deps.StudentSvc.QueryByTeacher(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Info{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) queryUnassigned(ctx echo.Context) error {
	students, err := api.deps.StudentSvc.QueryUnassigned(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying unassigned students")
	}
	if students == nil {
		students = []student.Info{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) assign(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.deps.StudentSvc.Assign(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "assigning student")
	}
	return ctx.JSON(http.StatusOK, std)
}

type EnrollmentResponse struct {
	student.Enrollment
	Warnings []string `json:"warnings"`
}
