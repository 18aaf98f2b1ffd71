package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core/assignment"
	"github.com/acadyo/acadyo/core/classroom"
)

type assignmentApi struct {
	svc      assignment.Service
	roomSvc  classroom.Service
	validate *validator.Validate
}

func registerAssignmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc assignment.Service,
	roomSvc classroom.Service,
	validate *validator.Validate,
) {
	api := assignmentApi{
		svc:      svc,
		roomSvc:  roomSvc,
		validate: validate,
	}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("", api.query)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update, teacherMiddleware())
	ag.DELETE("/:id", api.destroy, teacherMiddleware())
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, data.ClassroomID); err != nil {
		return err
	}

	asgmt, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}

	return ctx.JSON(http.StatusCreated, asgmt)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	asgmts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if asgmts == nil {
		asgmts = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, asgmts)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	asgmt, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, asgmt)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	asgmt, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, asgmt.ClassroomID); err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := data.Validate(asgmt, api.validate); err != nil {
		return err
	}

	if asgmt, err = api.svc.Update(reqCtx, asgmt.ID, data); err != nil {
		return errors.Wrap(err, "updating assignment")
	}

	return ctx.JSON(http.StatusOK, asgmt)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	asgmt, err := api.svc.GetByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	if err := checkClassroomOwner(ctx, api.roomSvc, asgmt.ClassroomID); err != nil {
		return err
	}

	if err := api.svc.Delete(reqCtx, asgmt.ID); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
