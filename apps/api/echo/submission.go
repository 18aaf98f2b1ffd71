package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core/assignment"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/submission"
	"github.com/acadyo/acadyo/core/user"
)

type submissionApi struct {
	svc      submission.Service
	asgSvc   assignment.Service
	roomSvc  classroom.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerSubmissionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc submission.Service,
	asgSvc assignment.Service,
	roomSvc classroom.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := submissionApi{
		svc:      svc,
		asgSvc:   asgSvc,
		roomSvc:  roomSvc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	sg := g.Group("/submissions", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query, teacherMiddleware())
	sg.GET("/mine", api.mine)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id/grade", api.grade, teacherMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())
}

// Handlers

// create records the requester's submission; a file may be attached under
// the "file" form field.
func (api *submissionApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data submission.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := formFile(ctx, "file")
	if err != nil {
		return err
	}

	sub, err := api.svc.Create(reqCtx, data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating submission")
	}

	if fh != nil {
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer src.Close()

		if sub, err = api.svc.AttachFile(reqCtx, sub.ID, src, fh.Filename); err != nil {
			return errors.Wrap(err, "attaching submission file")
		}
	}

	return ctx.JSON(http.StatusCreated, sub)
}

// query lists submissions for an assignment; only the assignment's teacher
// (or an admin) may see them.
func (api *submissionApi) query(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}
	filter.Clean()
	if filter.AssignmentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "assignment query parameter is required")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	asgmt, err := api.asgSvc.GetByID(reqCtx, filter.AssignmentID)
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, asgmt.ClassroomID); err != nil {
		return err
	}

	subs, err := api.svc.Query(reqCtx, filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *submissionApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(submission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []submission.Submission{})
	}
	filter.Clean()
	filter.StudentID = claims.Subject
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

// retrieve returns a submission to its student, the assignment's teacher or an admin.
func (api *submissionApi) retrieve(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	sub, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding submission by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if sub.StudentID != claims.Subject && !claims.IsAdmin {
		asgmt, err := api.asgSvc.GetByID(reqCtx, sub.AssignmentID)
		if err != nil {
			return errors.Wrap(err, "finding assignment by ID")
		}
		if err := checkClassroomOwner(ctx, api.roomSvc, asgmt.ClassroomID); err != nil {
			return err
		}
	}

	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data submission.GradeSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeSubmission")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sub, err := api.svc.Grade(reqCtx, ctx.Param("id"), data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}

	return ctx.JSON(http.StatusOK, sub)
}

func (api *submissionApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting submission")
	}
	return ctx.NoContent(http.StatusNoContent)
}
