package manifest

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/docshelf/pkg/internal/model"
)

// DBStore 把清单保存在 file_records 表中.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore 创建数据库清单并自动迁移表结构.
func NewDBStore(ctx context.Context, db *gorm.DB) (*DBStore, error) {
	if db == nil {
		return nil, errors.New("manifest db is nil")
	}

	if err := db.WithContext(ctx).AutoMigrate(&model.FileRecord{}); err != nil {
		return nil, fmt.Errorf("migrate file_records: %w", err)
	}

	return &DBStore{db: db}, nil
}

// Load 实现 Store，按上传时间与 id 排序即插入顺序.
func (s *DBStore) Load(ctx context.Context) ([]model.FileRecord, error) {
	records := []model.FileRecord{}

	if err := s.db.WithContext(ctx).Order("uploaded_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}

	return records, nil
}

// Get 实现 Store.
func (s *DBStore) Get(ctx context.Context, id string) (model.FileRecord, error) {
	var rec model.FileRecord

	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FileRecord{}, ErrNotFound
	}

	if err != nil {
		return model.FileRecord{}, fmt.Errorf("get record: %w", err)
	}

	return rec, nil
}

// Append 实现 Store.
func (s *DBStore) Append(ctx context.Context, rec model.FileRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.FileRecord{}).Where("id = ?", rec.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("check record id: %w", err)
		}

		if n > 0 {
			return ErrDuplicateID
		}

		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateID
			}

			return fmt.Errorf("insert record: %w", err)
		}

		return nil
	})
}

// Remove 实现 Store.
func (s *DBStore) Remove(ctx context.Context, id string) (model.FileRecord, error) {
	var removed model.FileRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&removed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("get record: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&model.FileRecord{})
		if res.Error != nil {
			return fmt.Errorf("delete record: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return nil
	})
	if err != nil {
		return model.FileRecord{}, err
	}

	return removed, nil
}

// Close 实现 Store；连接由存储管理器负责关闭.
func (s *DBStore) Close() error {
	return nil
}
