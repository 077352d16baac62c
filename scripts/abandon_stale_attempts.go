// 手动清理滞留的进行中作答
//
// 学生中途关闭浏览器后作答会一直停留在进行中状态，占用单活槽位并
// 阻塞测验下架。本脚本把开始时间早于阈值的进行中作答批量废弃
// （计零分、置完成、释放唯一索引占位）。
//
// 用法: go run scripts/abandon_stale_attempts.go -hours 24
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"eduquiz_backend/internal/config"
	"eduquiz_backend/internal/model"
	"eduquiz_backend/pkg/database"

	"gopkg.in/yaml.v3"
)

func main() {
	hours := flag.Int("hours", 24, "开始时间早于 N 小时的进行中作答视为滞留")
	dryRun := flag.Bool("dry-run", false, "仅统计不写入")
	flag.Parse()

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	cutoff := time.Now().Add(-time.Duration(*hours) * time.Hour)

	var stale int64
	err = db.Model(&model.QuizAttempt{}).
		Where("completed_at IS NULL AND started_at < ?", cutoff).
		Count(&stale).Error
	if err != nil {
		log.Fatalf("统计失败: %v", err)
	}
	log.Printf("发现 %d 条滞留作答（早于 %s）", stale, cutoff.Format("2006-01-02 15:04:05"))

	if *dryRun || stale == 0 {
		return
	}

	now := time.Now()
	result := db.Model(&model.QuizAttempt{}).
		Where("completed_at IS NULL AND started_at < ?", cutoff).
		Updates(map[string]interface{}{
			"completed_at": now,
			"score":        0,
			"abandoned":    true,
			"active_token": nil,
		})
	if result.Error != nil {
		log.Fatalf("清理失败: %v", result.Error)
	}
	log.Printf("已废弃 %d 条滞留作答", result.RowsAffected)
}
