package handler

import (
	"github.com/gin-gonic/gin"

	"course-ledger/internal/dto"
	"course-ledger/internal/service"
	"course-ledger/pkg/response"
)

// ────────────────────── 空闲教师 ──────────────────────

// AvailabilityHandler 空闲教师查询处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// FreeTeachers 查询时间窗口内的空闲教师
// GET /api/v1/availability/free-teachers?date=&start_time=&end_time=[&end_date=]
func (h *AvailabilityHandler) FreeTeachers(c *gin.Context) {
	var req dto.FreeTeachersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	resp, err := h.availabilitySvc.FreeTeachers(c.Request.Context(), &req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.OK(c, resp)
}

// ────────────────────── 周课表 ──────────────────────

// TimetableHandler 教师周课表处理器
type TimetableHandler struct {
	timetableSvc service.TimetableService
}

// NewTimetableHandler 创建 TimetableHandler
func NewTimetableHandler(timetableSvc service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetableSvc: timetableSvc}
}

// Weekly 教师周课表
// GET /api/v1/timetables/weekly?teacher=&week_start=
func (h *TimetableHandler) Weekly(c *gin.Context) {
	var req dto.WeeklyTimetableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	resp, err := h.timetableSvc.Weekly(c.Request.Context(), &req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.OK(c, resp)
}

// ExportICS 导出周课表为 iCalendar
// GET /api/v1/timetables/weekly/export.ics?teacher=&week_start=
func (h *TimetableHandler) ExportICS(c *gin.Context) {
	var req dto.WeeklyTimetableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	data, filename, err := h.timetableSvc.ExportICS(c.Request.Context(), &req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.Attachment(c, "text/calendar; charset=utf-8", filename, data)
}

// ExportExcel 导出周课表为 Excel
// GET /api/v1/timetables/weekly/export.xlsx?teacher=&week_start=
func (h *TimetableHandler) ExportExcel(c *gin.Context) {
	var req dto.WeeklyTimetableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	buf, filename, err := h.timetableSvc.ExportExcel(c.Request.Context(), &req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

// ────────────────────── 课时统计 ──────────────────────

// StatisticsHandler 课时统计处理器
type StatisticsHandler struct {
	statisticsSvc service.StatisticsService
}

// NewStatisticsHandler 创建 StatisticsHandler
func NewStatisticsHandler(statisticsSvc service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsSvc: statisticsSvc}
}

// bindHourStatistics 未携带 teacher 参数表示统计全部教师；
// 携带但全为空值时交由业务层报错
func bindHourStatistics(c *gin.Context) (*dto.HourStatisticsRequest, bool) {
	var req dto.HourStatisticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return nil, false
	}
	_, present := c.GetQueryArray("teacher")
	req.AllTeachers = !present
	return &req, true
}

// Hours 按教师与课程类型汇总课时
// GET /api/v1/statistics/hours?from=&to=[&teacher=...]
func (h *StatisticsHandler) Hours(c *gin.Context) {
	req, ok := bindHourStatistics(c)
	if !ok {
		return
	}

	resp, err := h.statisticsSvc.Hours(c.Request.Context(), req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.OK(c, resp)
}

// ExportHours 导出课时统计 Excel
// GET /api/v1/statistics/hours/export?from=&to=[&teacher=...]
func (h *StatisticsHandler) ExportHours(c *gin.Context) {
	req, ok := bindHourStatistics(c)
	if !ok {
		return
	}

	buf, filename, err := h.statisticsSvc.ExportHours(c.Request.Context(), req)
	if err != nil {
		handleQueryError(c, err)
		return
	}
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}
