package attendance

import (
	"net/http"

	"guesthouse/infras/otel"
	"guesthouse/internal/domains/attendance/model/dto"
	"guesthouse/internal/domains/attendance/service"
	"guesthouse/shared/constant"
	gDto "guesthouse/shared/dto"
	"guesthouse/shared/principal"
	"guesthouse/shared/validator"
	"guesthouse/transport/http/response"

	"github.com/go-chi/chi/v5"
)

const (
	queryParamFrom = "from"
	queryParamTo   = "to"
)

type Handler struct {
	service service.Attendance
	otel    otel.Otel
}

func New(service service.Attendance, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts the attendance routes. scanner guards the scan endpoint, which is
// reachable with either a staff token or the shared scanner key.
func (handler *Handler) Router(router chi.Router, scanner func(http.Handler) http.Handler) {
	router.Route("/attendance", func(routerGroup chi.Router) {
		routerGroup.With(scanner).Post("/scan", handler.Scan)
		routerGroup.Post("/", handler.CreateAttendance)
		routerGroup.Get("/", handler.GetAttendance)
		routerGroup.Get("/{id}", handler.GetAttendanceByID)
		routerGroup.Patch("/{id}", handler.UpdateAttendance)
		routerGroup.Delete("/{id}", handler.DeleteAttendance)
	})
}

// Scan toggles the staff member's attendance for the current local day.
// @Summary Scan a staff barcode
// @Description First scan of the day checks in, the second checks out, later scans report ALREADY_CHECKED_OUT.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body dto.ScanRequest true "Barcode"
// @Success 200 {object} response.Data[dto.ScanResponse]
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/attendance/scan [post]
// @Security BearerAuth
// @Security ApiKeyAuth
func (handler *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "Scan")
	defer scope.End()

	req := dto.ScanRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	actor := principal.FromContext(ctx)

	res, err := handler.service.Scan(ctx, actor, req.Badge())
	if err != nil {
		response.Fail(w, scope, err, "failed to scan attendance from "+string(actor.Source))

		return
	}

	scope.AddEvent("Attendance " + res.Action + " for staff " + res.Staff.ID)

	response.WithJSON(w, http.StatusOK, res)
}

// CreateAttendance records attendance manually.
// @Summary Create an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body dto.CreateAttendanceRequest true "Create Attendance Request"
// @Success 201 {object} response.Data[dto.AttendanceResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/attendance [post]
// @Security BearerAuth
func (handler *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "CreateAttendance")
	defer scope.End()

	req := dto.CreateAttendanceRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Create(ctx, principal.FromContext(ctx), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to create attendance")

		return
	}

	response.WithJSON(w, http.StatusCreated, res)
}

// GetAttendance lists attendance records.
// @Summary List attendance
// @Tags Attendance
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param staffId query string false "Filter by staff ID"
// @Param from query string false "First local day (YYYY-MM-DD) or instant"
// @Param to query string false "Last local day (YYYY-MM-DD) or instant"
// @Success 200 {object} response.Data[dto.GetAttendanceResponse]
// @Failure 400 {object} response.Error
// @Router /v1/attendance [get]
// @Security BearerAuth
func (handler *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetAttendance")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	query := r.URL.Query()

	res, err := handler.service.GetAll(ctx, queryParams, dto.AttendanceQuery{
		StaffID: query.Get(constant.RequestParamStaffID),
		From:    query.Get(queryParamFrom),
		To:      query.Get(queryParamTo),
	})
	if err != nil {
		response.Fail(w, scope, err, "failed to get attendance")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetAttendanceByID retrieves an attendance record.
// @Summary Get an attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Data[dto.AttendanceResponse]
// @Failure 404 {object} response.Error
// @Router /v1/attendance/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAttendanceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "GetAttendanceByID")
	defer scope.End()

	res, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		response.Fail(w, scope, err, "failed to get attendance by ID")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateAttendance corrects check-in or check-out times.
// @Summary Update an attendance record
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param request body dto.UpdateAttendanceRequest true "Update Attendance Request"
// @Success 200 {object} response.Data[dto.AttendanceResponse]
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/attendance/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "UpdateAttendance")
	defer scope.End()

	req := dto.UpdateAttendanceRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		response.Fail(w, scope, err, "failed to validate request body")

		return
	}

	res, err := handler.service.Update(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID), req)
	if err != nil {
		response.Fail(w, scope, err, "failed to update attendance")

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// DeleteAttendance deletes an attendance record.
// @Summary Delete an attendance record
// @Tags Attendance
// @Produce json
// @Param id path string true "Attendance ID"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.Error
// @Router /v1/attendance/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := otel.HandlerScope(handler.otel, r, "DeleteAttendance")
	defer scope.End()

	if err := handler.service.Delete(ctx, principal.FromContext(ctx), chi.URLParam(r, constant.RequestParamID)); err != nil {
		response.Fail(w, scope, err, "failed to delete attendance")

		return
	}

	response.WithMessage(w, http.StatusOK, "Attendance deleted successfully")
}
