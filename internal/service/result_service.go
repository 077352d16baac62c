package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"eduquiz_backend/internal/model"
	"eduquiz_backend/internal/repository"
	"eduquiz_backend/internal/util"
	"eduquiz_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const quizStatsCacheTTL = 5 * time.Minute

type ResultService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	AnswerRepo  *repository.AnswerRepository
	Redis       *redis.Client
	DB          *gorm.DB
}

func NewResultService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, answerRepo *repository.AnswerRepository, rdb *redis.Client, db *gorm.DB) *ResultService {
	return &ResultService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		Redis:       rdb,
		DB:          db,
	}
}

type AttemptSummary struct {
	model.QuizAttempt
	QuizTitle string `json:"quizTitle"`
}

// StudentResults 学生自己的作答历史
func (s *ResultService) StudentResults(userID uint, page, limit int) ([]AttemptSummary, int64, error) {
	attempts, total, err := s.AttemptRepo.ListByUser(userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	titles := make(map[uint]string)
	for _, a := range attempts {
		title, ok := titles[a.QuizID]
		if !ok {
			if quiz, err := s.QuizRepo.FindByID(a.QuizID); err == nil {
				title = quiz.Title
			}
			titles[a.QuizID] = title
		}
		summaries = append(summaries, AttemptSummary{QuizAttempt: a, QuizTitle: title})
	}
	return summaries, total, nil
}

type QuizStats struct {
	QuizID         uint    `json:"quizId"`
	TotalAttempts  int64   `json:"totalAttempts"`
	Completed      int64   `json:"completed"`
	InProgress     int64   `json:"inProgress"`
	AvgScore       float64 `json:"avgScore"`
	CompletionRate float64 `json:"completionRate"`
}

// QuizStatsForTeacher 教师侧单测验统计，结果在 Redis 缓存 5 分钟
func (s *ResultService) QuizStatsForTeacher(requesterID uint, role model.UserRole, quizID uint) (*QuizStats, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.CreatorID != requesterID && role != model.Admin {
		return nil, util.ErrPermissionDenied
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("quiz:stats:%d", quizID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats QuizStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats := &QuizStats{QuizID: quizID}
	if err := s.DB.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID).Count(&stats.TotalAttempts).Error; err != nil {
		return nil, err
	}
	if stats.TotalAttempts > 0 {
		if err := s.DB.Model(&model.QuizAttempt{}).
			Where("quiz_id = ? AND completed_at IS NOT NULL", quizID).
			Count(&stats.Completed).Error; err != nil {
			return nil, err
		}
		stats.InProgress = stats.TotalAttempts - stats.Completed

		if stats.Completed > 0 {
			var avg *float64
			err := s.DB.Model(&model.QuizAttempt{}).
				Where("quiz_id = ? AND completed_at IS NOT NULL AND abandoned = ?", quizID, false).
				Select("AVG(score)").Scan(&avg).Error
			if err != nil {
				return nil, err
			}
			if avg != nil {
				stats.AvgScore = *avg
			}
			stats.CompletionRate = float64(stats.Completed) / float64(stats.TotalAttempts)
		}
	}

	if s.Redis != nil {
		if b, err := json.Marshal(stats); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, b, quizStatsCacheTTL).Err(); err != nil {
				// 缓存失败不影响返回
				logger.Log.Warn("quiz stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// AttemptDetail 作答详情：本人、出题教师、管理员可见
func (s *ResultService) AttemptDetail(requesterID uint, role model.UserRole, attemptID uint) (*model.QuizAttempt, []model.AttemptAnswer, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrAttemptNotFound
		}
		return nil, nil, err
	}

	if attempt.UserID != requesterID && role != model.Admin {
		quiz, err := s.QuizRepo.FindByID(attempt.QuizID)
		if err != nil || quiz.CreatorID != requesterID {
			return nil, nil, util.ErrPermissionDenied
		}
	}

	answers, err := s.AnswerRepo.ListByAttempt(attemptID)
	if err != nil {
		return nil, nil, err
	}
	return attempt, answers, nil
}

// QuizAttemptsForTeacher 教师查看某测验的全部作答
func (s *ResultService) QuizAttemptsForTeacher(requesterID uint, role model.UserRole, quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrQuizNotFound
		}
		return nil, 0, err
	}
	if quiz.CreatorID != requesterID && role != model.Admin {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.AttemptRepo.ListByQuiz(quizID, page, limit)
}
