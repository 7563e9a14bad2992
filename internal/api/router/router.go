package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shift-kanri/config"
	"shift-kanri/internal/api/handler"
	"shift-kanri/internal/api/middleware"
	"shift-kanri/pkg/redis"
)

// Setup Gin ルータを初期化して返す
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── グローバルミドルウェア ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.RateLimit(rdb, 300, time.Minute))

	// ── ヘルスチェック ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// グループモジュール
		groups := v1.Group("/groups")
		{
			groups.GET("", h.Group.ListGroups)
			groups.POST("", h.Group.CreateGroup)
			groups.PUT("/:id", h.Group.UpdateGroup)
			groups.DELETE("/:id", h.Group.DeleteGroup)
		}

		// 役割マスタ
		v1.GET("/function-roles", h.Employee.ListFunctionRoles)

		// 従業員モジュール（氏名履歴・役割割当のサブリソース込み）
		employees := v1.Group("/employees")
		{
			employees.GET("", h.Employee.ListEmployees)
			employees.POST("", h.Employee.CreateEmployee)
			employees.GET("/:id", h.Employee.GetEmployee)
			employees.PUT("/:id", h.Employee.UpdateEmployee)

			employees.GET("/:id/name-history", h.Employee.ListNameHistory)
			employees.POST("/:id/name-history", h.Employee.CreateNameChange)
			employees.PUT("/:id/name-history/:entryId", h.Employee.UpdateNameHistory)
			employees.DELETE("/:id/name-history/:entryId", h.Employee.DeleteNameHistory)

			employees.GET("/:id/roles", h.Employee.ListEmployeeRoles)
			employees.POST("/:id/roles", h.Employee.AssignRole)
			employees.PUT("/:id/roles/:assignmentId", h.Employee.UpdateRoleAssignment)
			employees.DELETE("/:id/roles/:assignmentId", h.Employee.DeleteRoleAssignment)
		}

		// シフトモジュール
		shifts := v1.Group("/shifts")
		{
			shifts.GET("/calendar", h.Shift.GetCalendar)
			shifts.POST("", h.Shift.CreateShift)
			shifts.PUT("/bulk", h.Shift.BulkUpdateShifts)
			shifts.PUT("/:id", h.Shift.UpdateShift)
			shifts.DELETE("/:id", h.Shift.DeleteShift)
			shifts.POST("/:id/restore", h.Shift.RestoreShift)
		}

		// 変更履歴モジュール
		histories := v1.Group("/shift-histories")
		{
			histories.GET("", h.Shift.ListShiftHistory)
			histories.DELETE("/:id", h.Shift.DeleteShiftHistory)
		}

		// エクスポートモジュール
		export := v1.Group("/export")
		{
			export.GET("/shifts.xlsx", h.Export.ExportMonthlyXLSX)
			export.GET("/employees/:id/shifts.ics", h.Export.ExportEmployeeICS)
		}
	}

	return r
}
