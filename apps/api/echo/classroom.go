package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/acadyo/acadyo/core"
	"github.com/acadyo/acadyo/core/classroom"
	"github.com/acadyo/acadyo/core/user"
)

var errRoomNotFoundInCtx = errors.New("classroom object not found in echo.Context")

type classroomApi struct {
	svc      classroom.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerClassroomAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc classroom.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := classroomApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	cg := g.Group("/classrooms", jwt)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("", api.query, teacherMiddleware())

	// detail endpoints
	dg := cg.Group("/:id", ctxClassroomOwnerOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *classroomApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data classroom.NewClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassroom")
	}
	if err := data.Validate(reqCtx, ctxUsr.ID, api.validate, api.svc); err != nil {
		return err
	}

	room, err := api.svc.Create(reqCtx, data, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "creating classroom")
	}

	return ctx.JSON(http.StatusCreated, room)
}

// query returns the requester's own classrooms; admins see them all.
func (api *classroomApi) query(ctx echo.Context) error {
	filter := new(classroom.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []classroom.Classroom{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin {
		filter.TeacherID = claims.Subject
	}

	rooms, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classrooms")
	}
	if rooms == nil {
		rooms = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *classroomApi) retrieve(ctx echo.Context) error {
	room, ok := ctx.Get("object").(classroom.Classroom)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, room)
}

func (api *classroomApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	room, ok := ctx.Get("object").(classroom.Classroom)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}

	var data classroom.UpdateClassroom
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassroom")
	}
	if err := data.Validate(reqCtx, room, api.validate, api.svc); err != nil {
		return err
	}

	room, err := api.svc.Update(reqCtx, room.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}

	return ctx.JSON(http.StatusOK, room)
}

func (api *classroomApi) destroy(ctx echo.Context) error {
	room, ok := ctx.Get("object").(classroom.Classroom)
	if !ok {
		return errors.Wrap(errRoomNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), room.ID); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ctxClassroomOwnerOrAdminMiddleware loads the classroom into the context and
// lets only its owning teacher or an admin through.
func ctxClassroomOwnerOrAdminMiddleware(svc classroom.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}

			room, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == classroom.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding classroom by ID")
			}

			if room.TeacherID == claims.Subject || claims.IsAdmin {
				ctx.Set("object", room)
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

// checkClassroomOwner ensures the requester owns the classroom; admins pass.
func checkClassroomOwner(ctx echo.Context, svc classroom.Service, classroomID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return nil
	}

	room, err := svc.GetByID(ctx.Request().Context(), classroomID)
	if err != nil {
		return errors.Wrap(err, "finding classroom by ID")
	}
	if room.TeacherID != claims.Subject {
		return errHttpForbidden
	}
	return nil
}

type enrollmentApi struct {
	svc      classroom.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerEnrollmentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc classroom.Service,
	usrSvc user.Service,
	validate *validator.Validate,
) {
	api := enrollmentApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	eg := g.Group("/enrollment", jwt)
	eg.POST("/join", api.join)
	eg.DELETE("/leave/:id", api.leave)
	eg.GET("/my-classrooms", api.myClassrooms)
	eg.GET("/classrooms/:id/students", api.students)
	eg.DELETE("/classrooms/:id/students/:studentID", api.removeStudent)
}

// Handlers

func (api *enrollmentApi) join(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data JoinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	room, err := api.svc.Join(reqCtx, data.Code, ctxUsr)
	if err != nil {
		return errors.Wrap(err, "joining classroom")
	}

	return ctx.JSON(http.StatusOK, room)
}

func (api *enrollmentApi) leave(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Leave(ctx.Request().Context(), ctx.Param("id"), ctxUsr); err != nil {
		return errors.Wrap(err, "leaving classroom")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollmentApi) myClassrooms(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := &classroom.QueryFilter{StudentID: claims.Subject}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	rooms, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying enrolled classrooms")
	}
	if rooms == nil {
		rooms = []classroom.Classroom{}
	}
	return ctx.JSON(http.StatusOK, rooms)
}

func (api *enrollmentApi) students(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying classroom students")
	}
	if students == nil {
		students = []user.User{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *enrollmentApi) removeStudent(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	err = api.svc.RemoveStudent(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID"), ctxUsr)
	if err != nil {
		return errors.Wrap(err, "removing student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type JoinRequest struct {
	Code string `json:"code" validate:"required"`
}

func (jr *JoinRequest) Validate(validate *validator.Validate) error {
	jr.Code = core.CleanString(jr.Code)
	return validate.Struct(jr)
}
