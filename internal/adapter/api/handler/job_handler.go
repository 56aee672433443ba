package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"securehire/internal/adapter/api/middleware"
	"securehire/internal/domain/entity"
	"securehire/internal/usecase"
	"securehire/pkg/response"
)

type JobHandler struct {
	jobUseCase     *usecase.JobUseCase
	checkInUseCase *usecase.CheckInUseCase
	notifier       *usecase.Notifier
}

func NewJobHandler(jobUseCase *usecase.JobUseCase, checkInUseCase *usecase.CheckInUseCase, notifier *usecase.Notifier) *JobHandler {
	return &JobHandler{
		jobUseCase:     jobUseCase,
		checkInUseCase: checkInUseCase,
		notifier:       notifier,
	}
}

type postJobRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Address     string    `json:"address" validate:"required,max=500"`
	Latitude    *float64  `json:"latitude" validate:"required,latitude"`
	Longitude   *float64  `json:"longitude" validate:"required,longitude"`
	PayRate     float64   `json:"pay_rate" validate:"gte=0"`
	ShiftStart  time.Time `json:"shift_start"`
	ShiftEnd    time.Time `json:"shift_end"`
	Guards      int       `json:"guards_required" validate:"gte=0,lte=500"`
}

type applyRequest struct {
	CoverNote string `json:"cover_note" validate:"max=2000"`
}

func (h *JobHandler) PostJob(c echo.Context) error {
	uid := middleware.UserID(c)

	var req postJobRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	job, err := h.jobUseCase.PostJob(c.Request().Context(), uid, usecase.PostJobInput{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		PayRate:     req.PayRate,
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
		Guards:      req.Guards,
	})
	if err != nil {
		h.notifier.Failure(uid, err)
		return response.Error(c, err)
	}

	h.notifier.Toast(uid, entity.ToastSuccess, "Job posted")
	return response.Created(c, job)
}

func (h *JobHandler) ListJobs(c echo.Context) error {
	mine := c.QueryParam("mine") == "true"

	jobs, err := h.jobUseCase.ListJobs(c.Request().Context(), middleware.UserID(c), middleware.UserRole(c), mine)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, jobs)
}

func (h *JobHandler) GetJob(c echo.Context) error {
	job, err := h.jobUseCase.GetJob(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, job)
}

func (h *JobHandler) Apply(c echo.Context) error {
	uid := middleware.UserID(c)

	var req applyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	app, err := h.jobUseCase.Apply(c.Request().Context(), uid, c.Param("id"), req.CoverNote)
	if err != nil {
		h.notifier.Failure(uid, err)
		return response.Error(c, err)
	}

	h.notifier.Toast(uid, entity.ToastSuccess, "Application sent")
	return response.Created(c, app)
}

// CheckInQRCode returns the job's check-in poster as a PNG, or as JSON with the stored
// URL when ?format=json.
func (h *JobHandler) CheckInQRCode(c echo.Context) error {
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size > 1024 {
		size = 1024
	}

	code, err := h.checkInUseCase.CheckInCode(c.Request().Context(), middleware.UserID(c), c.Param("id"), size)
	if err != nil {
		return response.Error(c, err)
	}

	if c.QueryParam("format") == "json" {
		return response.Success(c, code)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, "image/png", code.PNG)
}
