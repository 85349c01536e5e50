package repository

import (
	"context"
	"fmt"

	"codeshin_backend/internal/model"
	"codeshin_backend/internal/recommend"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WindowRepository 持久化每个用户的指标窗口，实现 recommend.WindowStore。
// 窗口头行在事务内加行锁，同一用户的并发推荐依次执行。
type WindowRepository struct {
	DB *gorm.DB
}

func NewWindowRepository(db *gorm.DB) *WindowRepository {
	return &WindowRepository{DB: db}
}

var _ recommend.WindowStore = (*WindowRepository)(nil)

func (r *WindowRepository) Advance(ctx context.Context, userID uint, fresh []recommend.MetricVector, capacity int, scale float64) ([]recommend.MetricVector, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", capacity)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("window scale must be positive, got %v", scale)
	}
	var out []recommend.MetricVector
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 确保窗口头存在并加锁
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.RecommendationWindow{UserID: userID, Capacity: capacity, Scale: scale}).Error
		if err != nil {
			return err
		}
		var hdr model.RecommendationWindow
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&hdr).Error
		if err != nil {
			return err
		}

		// 2. 容量或指标上限变化时重建，旧向量换算到新上限
		if hdr.Capacity != capacity || hdr.Scale != scale {
			entries, err := loadWindow(tx, &hdr)
			if err != nil {
				return err
			}
			entries = recommend.Rescale(entries, hdr.Scale, scale)
			if err := tx.Where("user_id = ?", userID).Delete(&model.RecommendationWindowSlot{}).Error; err != nil {
				return err
			}
			hdr.Seq = 0
			hdr.Capacity = capacity
			hdr.Scale = scale
			fresh = append(entries, fresh...)
		}

		// 3. 写入新向量，被同批覆盖的旧槽位不落库
		start := 0
		if len(fresh) > capacity {
			start = len(fresh) - capacity
		}
		for i, v := range fresh {
			seq := hdr.Seq + uint64(i)
			if i < start {
				continue
			}
			slot := model.RecommendationWindowSlot{
				UserID:  userID,
				Slot:    recommend.SlotFor(seq, capacity),
				Seq:     seq,
				Metrics: append([]float64(nil), v[:]...),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "slot"}},
				DoUpdates: clause.AssignmentColumns([]string{"seq", "metrics"}),
			}).Create(&slot).Error
			if err != nil {
				return err
			}
		}
		hdr.Seq += uint64(len(fresh))

		err = tx.Model(&model.RecommendationWindow{}).
			Where("id = ?", hdr.ID).
			Updates(map[string]interface{}{"seq": hdr.Seq, "capacity": hdr.Capacity, "scale": hdr.Scale}).Error
		if err != nil {
			return err
		}

		out, err = loadWindow(tx, &hdr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Entries 读取用户当前窗口（旧到新）
func (r *WindowRepository) Entries(ctx context.Context, userID uint) ([]recommend.MetricVector, error) {
	var hdr model.RecommendationWindow
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&hdr).Error
	if err != nil || hdr.ID == 0 {
		return nil, err
	}
	return loadWindow(r.DB.WithContext(ctx), &hdr)
}

func loadWindow(db *gorm.DB, hdr *model.RecommendationWindow) ([]recommend.MetricVector, error) {
	held := uint64(hdr.Capacity)
	if hdr.Seq < held {
		held = hdr.Seq
	}
	var slots []model.RecommendationWindowSlot
	err := db.Where("user_id = ? AND seq >= ? AND seq < ?", hdr.UserID, hdr.Seq-held, hdr.Seq).
		Order("seq asc").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	out := make([]recommend.MetricVector, 0, len(slots))
	for _, s := range slots {
		var v recommend.MetricVector
		copy(v[:], s.Metrics)
		out = append(out, v)
	}
	return out, nil
}
