// app/bootstrap.go
package app

import (
	"context"
	"log"

	"keycabinet/db"
)

// BootstrapFirstAdmin 库里一个账号都没有时，用环境变量建第一个管理员
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapUsername == "" || cfg.BootstrapPassword == "" {
		return
	}
	n, err := repo.CountOperators(ctx)
	if err != nil {
		log.Printf("bootstrap: count operators: %v", err)
		return
	}
	if n > 0 {
		return // 已经有账号，跳过
	}

	o, err := repo.CreateOperator(ctx, db.CreateOperatorInput{
		Username: cfg.BootstrapUsername,
		Password: cfg.BootstrapPassword,
		IsAdmin:  true,
	})
	if err != nil {
		log.Printf("bootstrap: create admin failed: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first admin operator %q", o.Username)
}
