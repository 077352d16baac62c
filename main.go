package main

import (
	"flag"
	"log"

	"eduquiz_backend/internal/app"
	"eduquiz_backend/internal/config"
)

// @title EduQuiz Backend API
// @version 1.0
// @description 在线测验与班级管理服务
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	var (
		configPath  = flag.String("config", "./configs", "配置文件目录")
		migrate     = flag.Bool("migrate", false, "启动前执行数据库迁移")
		migrateOnly = flag.Bool("migrate-only", false, "仅执行数据库迁移后退出")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ForceMigrate = *migrate
	cfg.MigrateOnly = *migrateOnly

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(*configPath + "/config.yaml"); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
