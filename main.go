package main

import (
	"context"
	"keycabinet/app"
	"keycabinet/routes"
	"log"
	"os"

	"keycabinet/config"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	// 首次启动：按需创建第一个管理员账号
	app.BootstrapFirstAdmin(context.Background(), application.Config, application.Repo())

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
