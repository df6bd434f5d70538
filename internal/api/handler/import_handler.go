package handler

import (
	"github.com/gin-gonic/gin"

	"course-ledger/internal/service"
	"course-ledger/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportHandler 课程数据导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// Upload 上传 Excel 并暂存，返回预览
// POST /api/v1/imports  multipart/form-data, field="file"
func (h *ImportHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			handleImportError(c, err)
			return
		}
		response.BadRequest(c, codeBadParam, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	resp, err := h.importSvc.Stage(c.Request.Context(), header.Filename, file)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.Created(c, resp)
}

// GetPreview 获取暂存导入的预览
// GET /api/v1/imports/:id
func (h *ImportHandler) GetPreview(c *gin.Context) {
	resp, err := h.importSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// Confirm 确认导入，整体替换现有课程数据
// POST /api/v1/imports/:id/confirm
func (h *ImportHandler) Confirm(c *gin.Context) {
	resp, err := h.importSvc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// Template 下载导入模版
// GET /api/v1/imports/template
func (h *ImportHandler) Template(c *gin.Context) {
	buf, filename, err := h.importSvc.Template(c.Request.Context())
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}
