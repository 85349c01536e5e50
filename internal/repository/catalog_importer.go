package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeshin_backend/internal/model"
	"codeshin_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogImporter 从 CSV 导入题目目录
type CatalogImporter struct {
	DB *gorm.DB
}

func NewCatalogImporter(db *gorm.DB) *CatalogImporter {
	return &CatalogImporter{DB: db}
}

type ImportStats struct {
	Problems int `json:"problems"`
	Topics   int `json:"topics"`
	Links    int `json:"links"`
	Missing  int `json:"missing"`
}

// csvRows 读取带表头的 CSV，按列名返回每一行
func csvRows(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	for _, col := range required {
		found := false
		for _, h := range header {
			if h == col {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var rows []map[string]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportProblems 导入题目表。列：id, title, description, is_premium, difficulty,
// acceptance_rate, url, similar_questions, related_topics。
// related_topics 中的主题以 Difficulty 列的难度关联到题目。已存在的题目按 id 覆盖。
func (i *CatalogImporter) ImportProblems(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	rows, err := csvRows(r, "id", "title", "difficulty")
	if err != nil {
		return stats, err
	}

	err = i.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics := make(map[string]uint)
		for n, row := range rows {
			id, err := strconv.ParseUint(row["id"], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("row %d: invalid id %q", n+2, row["id"])
			}
			acceptance, _ := strconv.ParseFloat(strings.TrimSuffix(row["acceptance_rate"], "%"), 64)
			premium, _ := strconv.ParseBool(row["is_premium"])

			p := model.Problem{
				BaseModel:        model.BaseModel{ID: uint(id)},
				Title:            row["title"],
				Description:      row["description"],
				IsPremium:        premium,
				Difficulty:       row["difficulty"],
				AcceptanceRate:   acceptance,
				URL:              row["url"],
				SimilarQuestions: model.FormatIDList(model.ParseIDList(row["similar_questions"])),
			}
			err = tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title", "description", "is_premium", "difficulty",
					"acceptance_rate", "url", "similar_questions", "updated_at",
				}),
			}).Create(&p).Error
			if err != nil {
				return fmt.Errorf("row %d: %w", n+2, err)
			}
			stats.Problems++

			for _, name := range strings.Split(row["related_topics"], ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				topicID, created, err := ensureTopic(tx, topics, name)
				if err != nil {
					return err
				}
				if created {
					stats.Topics++
				}
				linked, err := linkTopic(tx, topicID, p.ID, p.Difficulty)
				if err != nil {
					return err
				}
				stats.Links += linked
			}
		}
		return nil
	})
	return stats, err
}

// ImportTopicBuckets 导入按难度分好组的主题表。列：topics, EasyQuestions,
// MediumQuestions, HardQuestions，后三列为逗号分隔的题目 ID。不存在的题目被跳过。
func (i *CatalogImporter) ImportTopicBuckets(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	rows, err := csvRows(r, "topics")
	if err != nil {
		return stats, err
	}
	columns := []struct{ col, difficulty string }{
		{"EasyQuestions", "Easy"},
		{"MediumQuestions", "Medium"},
		{"HardQuestions", "Hard"},
	}

	err = i.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics := make(map[string]uint)
		for _, row := range rows {
			name := row["topics"]
			if name == "" {
				continue
			}
			topicID, created, err := ensureTopic(tx, topics, name)
			if err != nil {
				return err
			}
			if created {
				stats.Topics++
			}

			for _, c := range columns {
				ids := model.ParseIDList(row[c.col])
				if len(ids) == 0 {
					continue
				}
				var existing []uint
				if err := tx.Model(&model.Problem{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
					return err
				}
				found := make(map[uint]bool, len(existing))
				for _, id := range existing {
					found[id] = true
				}
				for _, id := range ids {
					if !found[id] {
						stats.Missing++
						logger.Log.Warn("题目不存在，跳过",
							zap.String("topic", name),
							zap.Uint("problemID", id),
							zap.String("difficulty", c.difficulty))
						continue
					}
					linked, err := linkTopic(tx, topicID, id, c.difficulty)
					if err != nil {
						return err
					}
					stats.Links += linked
				}
			}
		}
		return nil
	})
	return stats, err
}

func ensureTopic(tx *gorm.DB, cache map[string]uint, name string) (uint, bool, error) {
	if id, ok := cache[name]; ok {
		return id, false, nil
	}
	var topic model.Topic
	found := tx.Where("name = ?", name).Limit(1).Find(&topic)
	if found.Error != nil {
		return 0, false, fmt.Errorf("topic %q: %w", name, found.Error)
	}
	created := false
	if found.RowsAffected == 0 {
		topic = model.Topic{Name: name}
		if err := tx.Create(&topic).Error; err != nil {
			return 0, false, fmt.Errorf("topic %q: %w", name, err)
		}
		created = true
	}
	cache[name] = topic.ID
	return topic.ID, created, nil
}

// linkTopic 已有关联时更新难度
func linkTopic(tx *gorm.DB, topicID, problemID uint, difficulty string) (int, error) {
	link := model.TopicProblem{TopicID: topicID, ProblemID: problemID, Difficulty: difficulty}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "topic_id"}, {Name: "problem_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"difficulty", "updated_at"}),
	}).Create(&link).Error
	if err != nil {
		return 0, err
	}
	return 1, nil
}
