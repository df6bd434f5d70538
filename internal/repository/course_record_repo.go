package repository

import (
	"context"

	"gorm.io/gorm"

	"course-ledger/internal/model"
	pkgerrors "course-ledger/pkg/errors"
)

// replaceBatchSize 整体替换时的批量插入大小
const replaceBatchSize = 500

// CourseRecordRepository 课程记录数据访问接口
type CourseRecordRepository interface {
	// List 按导入顺序返回全部记录
	List(ctx context.Context) ([]model.CourseRecord, error)
	// ReplaceAll 在事务中全量替换：先删除旧数据，再批量插入新数据
	ReplaceAll(ctx context.Context, records []model.CourseRecord) error
	// Update 按主键覆盖业务字段
	Update(ctx context.Context, record *model.CourseRecord) error
}

type courseRecordRepo struct {
	db *gorm.DB
}

// NewCourseRecordRepo 创建 CourseRecordRepository 实例
func NewCourseRecordRepo(db *gorm.DB) CourseRecordRepository {
	return &courseRecordRepo{db: db}
}

func (r *courseRecordRepo) List(ctx context.Context) ([]model.CourseRecord, error) {
	var records []model.CourseRecord
	err := r.db.WithContext(ctx).
		Order("seq ASC").
		Find(&records).Error
	return records, err
}

func (r *courseRecordRepo) ReplaceAll(ctx context.Context, records []model.CourseRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 硬删除：导入确认即整体替换，无需保留旧数据
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.CourseRecord{}).Error; err != nil {
			return err
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, replaceBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// editableColumns 编辑时允许覆盖的列
var editableColumns = []string{
	"date", "start_time", "end_time", "week", "session", "period", "weekday",
	"grade", "class", "subject", "course_type", "planned_teacher", "actual_teacher",
	"type", "reason", "hours", "updated_at",
}

func (r *courseRecordRepo) Update(ctx context.Context, record *model.CourseRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Select(editableColumns).
		Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrRecordNotFound
	}
	return nil
}
