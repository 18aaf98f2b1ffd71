package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/lesson"
)

type lessonApi struct {
	svc      lesson.Service
	roomSvc  classroom.Service
	validate *validator.Validate
}

func registerLessonAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc lesson.Service,
	roomSvc classroom.Service,
	validate *validator.Validate,
) {
	api := lessonApi{
		svc:      svc,
		roomSvc:  roomSvc,
		validate: validate,
	}

	lg := g.Group("/lessons", jwt)
	lg.POST("", api.create, teacherMiddleware())
	lg.GET("", api.query)
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update, teacherMiddleware())
	lg.DELETE("/:id", api.destroy, teacherMiddleware())
}

// Handlers

// create accepts JSON or multipart form data; a lesson file may be attached
// under the "file" form field.
func (api *lessonApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, data.ClassroomID); err != nil {
		return err
	}

	fh, err := formFile(ctx, "file")
	if err != nil {
		return err
	}

	lsn, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating lesson")
	}

	if fh != nil {
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer src.Close()

		if lsn, err = api.svc.AttachFile(reqCtx, lsn.ID, src, fh.Filename); err != nil {
			return errors.Wrap(err, "attaching lesson file")
		}
	}

	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *lessonApi) query(ctx echo.Context) error {
	filter := new(lesson.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []lesson.Lesson{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	lessons, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []lesson.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	lsn, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lesson by ID")
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	lsn, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lesson by ID")
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, lsn.ClassroomID); err != nil {
		return err
	}

	var data lesson.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(lsn, api.validate); err != nil {
		return err
	}

	if lsn, err = api.svc.Update(reqCtx, lsn.ID, data); err != nil {
		return errors.Wrap(err, "updating lesson")
	}

	// replacing the file deletes the previous one from the media host
	fh, err := formFile(ctx, "file")
	if err != nil {
		return err
	}
	if fh != nil {
		src, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		defer src.Close()

		if lsn, err = api.svc.AttachFile(reqCtx, lsn.ID, src, fh.Filename); err != nil {
			return errors.Wrap(err, "attaching lesson file")
		}
	}

	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	lsn, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding lesson by ID")
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, lsn.ClassroomID); err != nil {
		return err
	}

	if err := api.svc.Delete(reqCtx, lsn.ID); err != nil {
		return errors.Wrap(err, "deleting lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}
