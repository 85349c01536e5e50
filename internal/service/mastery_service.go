package service

import (
	"context"

	"codeshin_backend/internal/repository"
	"codeshin_backend/pkg/logger"

	"go.uber.org/zap"
)

type MasteryOverview struct {
	Topics       []repository.TopicMasteryView `json:"topics"`
	LearningPath []string                      `json:"learningPath"`
}

type MasteryService struct {
	MasteryRepo *repository.MasteryRepository
}

func NewMasteryService(masteryRepo *repository.MasteryRepository) *MasteryService {
	return &MasteryService{MasteryRepo: masteryRepo}
}

// Overview 返回用户所有主题的掌握程度和学习路径（掌握程度从低到高）
func (s *MasteryService) Overview(ctx context.Context, userID uint) (*MasteryOverview, error) {
	topics, err := s.MasteryRepo.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	path, err := s.MasteryRepo.LearningPath(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MasteryOverview{Topics: topics, LearningPath: path}, nil
}

// Init 为新用户创建所有主题的初始记录，返回新建的记录数
func (s *MasteryService) Init(ctx context.Context, userID uint) (int64, error) {
	created, err := s.MasteryRepo.InitTopics(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("初始化主题掌握程度",
		zap.Uint("userID", userID),
		zap.Int64("created", created))
	return created, nil
}
