package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 读取 .env（生产环境用真实环境变量，文件不存在不算错误）
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("load .env: %v", err)
		}
	}
}
