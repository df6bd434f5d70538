package handler

import (
	"github.com/gin-gonic/gin"

	"course-ledger/internal/dto"
	"course-ledger/internal/service"
	"course-ledger/pkg/response"
)

// RecordHandler 课程记录 HTTP 处理器
type RecordHandler struct {
	recordSvc service.RecordService
}

// NewRecordHandler 创建 RecordHandler
func NewRecordHandler(recordSvc service.RecordService) *RecordHandler {
	return &RecordHandler{recordSvc: recordSvc}
}

// ListRecords 课程记录列表（支持筛选与分页）
// GET /api/v1/records?from=&to=&teacher=&class=&subject=&course_type=&week=&weekday=&keyword=&page=&page_size=
func (h *RecordHandler) ListRecords(c *gin.Context) {
	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	list, total, err := h.recordSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleRecordError(c, err)
		return
	}
	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// UpdateRecord 按派生键编辑单条记录
// PUT /api/v1/records
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	var req dto.UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadParam, err.Error())
		return
	}

	resp, err := h.recordSvc.Update(c.Request.Context(), &req)
	if err != nil {
		handleRecordError(c, err)
		return
	}
	response.OK(c, resp)
}

// ListTeachers 实际上课教师列表
// GET /api/v1/teachers
func (h *RecordHandler) ListTeachers(c *gin.Context) {
	teachers, err := h.recordSvc.Teachers(c.Request.Context())
	if err != nil {
		handleRecordError(c, err)
		return
	}
	response.OK(c, gin.H{"list": teachers})
}

// ListCourseTypes 课程类型列表
// GET /api/v1/course-types
func (h *RecordHandler) ListCourseTypes(c *gin.Context) {
	types, err := h.recordSvc.CourseTypes(c.Request.Context())
	if err != nil {
		handleRecordError(c, err)
		return
	}
	response.OK(c, gin.H{"list": types})
}
