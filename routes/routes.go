package routes

import (
	"keycabinet/app"
	"keycabinet/controllers"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	opCtl := controllers.NewOperatorController(s)
	personCtl := controllers.NewPersonController(s)
	catalogCtl := controllers.NewCatalogController(s)
	loanCtl := controllers.NewLoanController(s)
	reportCtl := controllers.NewReportController(s)
	importCtl := controllers.NewImportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// 登录/登出（公开 + 受保护）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", opCtl.Login)
	}
	authed := auth.Group("", authMW, seenMW)
	{
		authed.POST("/logout", opCtl.Logout)
		authed.GET("/whoami", opCtl.WhoAmI)
	}

	// ------------------------------
	// 人员（借钥匙的人）
	// ------------------------------
	persons := r.Group("/api/persons", authMW, seenMW)
	{
		persons.GET("", personCtl.ListPersons) // ?q=&page=&size=
		persons.POST("", personCtl.RegisterPerson)
		persons.GET("/:id", personCtl.GetPerson)
		persons.PUT("/:id", personCtl.UpdatePerson)
		persons.DELETE("/:id", personCtl.DeactivatePerson)
		persons.GET("/:id/history", personCtl.History)
	}

	// ------------------------------
	// 地点
	// ------------------------------
	locations := r.Group("/api/locations", authMW, seenMW)
	{
		locations.GET("", catalogCtl.ListLocations)
		locations.POST("", catalogCtl.CreateLocation)
		locations.PUT("/:id", catalogCtl.UpdateLocation)
		locations.DELETE("/:id", catalogCtl.DeactivateLocation)
	}

	// ------------------------------
	// 钥匙
	// ------------------------------
	keys := r.Group("/api/keys", authMW, seenMW)
	{
		keys.GET("", catalogCtl.ListKeys) // ?locationId=&available=true
		keys.GET("/admin", catalogCtl.ListKeysAdmin)
		keys.POST("", catalogCtl.CreateKey)
		keys.PUT("/:id", catalogCtl.UpdateKey)
		keys.DELETE("/:id", catalogCtl.DeactivateKey)
		keys.GET("/:id/history", catalogCtl.History)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	loans := r.Group("/api/loans", authMW, seenMW)
	{
		loans.POST("", loanCtl.Checkout) // 取钥匙（带 PIN）
		loans.POST("/:loanId/return", loanCtl.Return)
		loans.GET("", loanCtl.ListLoans) // ?status=pending|returned&personId=&keyId=&start=&end=
		loans.GET("/open", loanCtl.ListOpenLoans)
	}

	// ------------------------------
	// 报表
	// ------------------------------
	reports := r.Group("/api", authMW, seenMW)
	{
		reports.GET("/reports/analytics", reportCtl.Analytics) // ?start=&end=&groupBy=&locationId=&keyId=
		reports.GET("/dashboard", reportCtl.Dashboard)
	}

	// ------------------------------
	// 导入（仅管理员）
	// ------------------------------
	imports := r.Group("/api/import", authMW, adminMW)
	{
		imports.POST("/persons", importCtl.ImportPersons)
		imports.POST("/keys", importCtl.ImportKeys)
	}

	// ------------------------------
	// 账号管理（仅管理员）
	// ------------------------------
	operators := r.Group("/api/operators", authMW, adminMW)
	{
		operators.GET("", opCtl.ListOperators) // ?q=&page=&size=
		operators.POST("", opCtl.CreateOperator)
		operators.PUT("/:id", opCtl.UpdateOperator)
		operators.DELETE("/:id", opCtl.DeactivateOperator)
	}
}
