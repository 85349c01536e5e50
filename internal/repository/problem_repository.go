package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"
	"codeshin_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// ProblemRepository 题目目录，实现 recommend.Catalog
type ProblemRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	TTL   time.Duration
}

func NewProblemRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *ProblemRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProblemRepository{DB: db, Redis: rdb, TTL: ttl}
}

var _ recommend.Catalog = (*ProblemRepository)(nil)

func (r *ProblemRepository) FindByID(ctx context.Context, id uint) (*model.Problem, error) {
	var p model.Problem
	err := r.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", util.ErrProblemNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDs 按传入顺序返回题目，不存在的 ID 被忽略
func (r *ProblemRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Problem, error) {
	if len(ids) == 0 {
		return []model.Problem{}, nil
	}
	var rows []model.Problem
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Problem, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]model.Problem, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProblemRepository) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.WithContext(ctx).Order("name asc").Find(&topics).Error
	return topics, err
}

func (r *ProblemRepository) RelatedTopics(ctx context.Context, problemID uint) ([]string, error) {
	return readThrough(ctx, r.Redis, fmt.Sprintf("catalog:problem:%d:topics", problemID), r.TTL, func() ([]string, error) {
		return problemTopics(r.DB.WithContext(ctx), problemID)
	})
}

func (r *ProblemRepository) SimilarProblems(ctx context.Context, problemID uint) ([]uint, error) {
	return readThrough(ctx, r.Redis, fmt.Sprintf("catalog:problem:%d:similar", problemID), r.TTL, func() ([]uint, error) {
		p, err := r.FindByID(ctx, problemID)
		if err != nil {
			return nil, err
		}
		return p.SimilarIDs(), nil
	})
}

func (r *ProblemRepository) ProblemDifficulty(ctx context.Context, problemID uint) (recommend.Difficulty, error) {
	label, err := readThrough(ctx, r.Redis, fmt.Sprintf("catalog:problem:%d:difficulty", problemID), r.TTL, func() (string, error) {
		p, err := r.FindByID(ctx, problemID)
		if err != nil {
			return "", err
		}
		return p.Difficulty, nil
	})
	if err != nil {
		return recommend.DifficultyUnknown, err
	}
	return recommend.ParseDifficulty(label), nil
}

// DifficultyBucket 按难度分桶：Easy -> 1, Medium -> 2, Hard -> 3
func (r *ProblemRepository) DifficultyBucket(ctx context.Context, topic string) (map[recommend.Level][]uint, error) {
	return readThrough(ctx, r.Redis, "catalog:topic:"+topic+":buckets", r.TTL, func() (map[recommend.Level][]uint, error) {
		var rows []struct {
			ProblemID  uint
			Difficulty string
		}
		err := r.DB.WithContext(ctx).Model(&model.TopicProblem{}).
			Select("topic_problems.problem_id, topic_problems.difficulty").
			Joins("JOIN topics ON topics.id = topic_problems.topic_id AND topics.deleted_at IS NULL").
			Where("topics.name = ?", topic).
			Order("topic_problems.problem_id asc").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		buckets := make(map[recommend.Level][]uint)
		for _, row := range rows {
			d := recommend.ParseDifficulty(row.Difficulty)
			if d == recommend.DifficultyUnknown {
				continue
			}
			lvl := recommend.Level(d)
			buckets[lvl] = append(buckets[lvl], row.ProblemID)
		}
		return buckets, nil
	})
}

// problemTopics 题目关联的主题名，按名称排序
func problemTopics(db *gorm.DB, problemID uint) ([]string, error) {
	var names []string
	err := db.Model(&model.Topic{}).
		Joins("JOIN topic_problems ON topic_problems.topic_id = topics.id AND topic_problems.deleted_at IS NULL").
		Where("topic_problems.problem_id = ?", problemID).
		Order("topics.name asc").
		Pluck("topics.name", &names).Error
	return names, err
}

// topicsByProblem 批量查询多个题目的主题
func topicsByProblem(db *gorm.DB, problemIDs []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(problemIDs))
	if len(problemIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ProblemID uint
		Name      string
	}
	err := db.Model(&model.TopicProblem{}).
		Select("topic_problems.problem_id, topics.name").
		Joins("JOIN topics ON topics.id = topic_problems.topic_id AND topics.deleted_at IS NULL").
		Where("topic_problems.problem_id IN ?", problemIDs).
		Order("topic_problems.problem_id asc, topics.name asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ProblemID] = append(out[row.ProblemID], row.Name)
	}
	return out, nil
}
