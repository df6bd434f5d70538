package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"course-ledger/internal/model"
)

// 查询结果状态
const (
	StatusOK         = "ok"
	StatusEmptyStore = "empty_store"
)

// ── 课程记录 ──

// CourseRecordResponse 课程记录响应
type CourseRecordResponse struct {
	Key            string  `json:"key"`
	ID             string  `json:"id"`
	Seq            int     `json:"seq"`
	Date           string  `json:"date"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Week           int     `json:"week"`
	Weekday        string  `json:"weekday"`
	Period         string  `json:"period"`
	Session        string  `json:"session"`
	Grade          string  `json:"grade"`
	Class          string  `json:"class"`
	Subject        string  `json:"subject"`
	CourseType     string  `json:"course_type"`
	Hours          float64 `json:"hours"`
	PlannedTeacher string  `json:"planned_teacher"`
	ActualTeacher  string  `json:"actual_teacher"`
	Type           string  `json:"type"`
	Reason         string  `json:"reason"`
}

// NewCourseRecordResponse 转换课程记录
func NewCourseRecordResponse(r *model.CourseRecord) CourseRecordResponse {
	return CourseRecordResponse{
		Key:            r.Key().String(),
		ID:             r.ID,
		Seq:            r.Seq,
		Date:           r.Date.Format(model.DateLayout),
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Week:           r.Week,
		Weekday:        r.Weekday,
		Period:         r.Period,
		Session:        r.Session,
		Grade:          r.Grade,
		Class:          r.Class,
		Subject:        r.Subject,
		CourseType:     r.CourseType,
		Hours:          r.Hours.InexactFloat64(),
		PlannedTeacher: r.PlannedTeacher,
		ActualTeacher:  r.ActualTeacher,
		Type:           r.Type,
		Reason:         r.Reason,
	}
}

// RecordListRequest 课程记录列表筛选（各条件之间为 AND）
type RecordListRequest struct {
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Teacher    string `form:"teacher" binding:"omitempty,max=50"`
	Class      string `form:"class" binding:"omitempty,max=100"`
	Subject    string `form:"subject" binding:"omitempty,max=100"`
	CourseType string `form:"course_type" binding:"omitempty,max=50"`
	Week       int    `form:"week" binding:"omitempty,min=0"`
	Weekday    string `form:"weekday" binding:"omitempty,max=20"`
	Keyword    string `form:"keyword" binding:"omitempty,max=50"`
	PaginationRequest
}

// RecordKeyRequest 记录派生键
type RecordKeyRequest struct {
	Date          string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime     string `json:"start_time"`
	Class         string `json:"class"`
	Subject       string `json:"subject"`
	ActualTeacher string `json:"actual_teacher"`
	CourseType    string `json:"course_type"`
}

// ToModel 转为模型层派生键
func (k *RecordKeyRequest) ToModel() model.RecordKey {
	return model.RecordKey{
		Date:          k.Date,
		StartTime:     k.StartTime,
		Class:         k.Class,
		Subject:       k.Subject,
		ActualTeacher: k.ActualTeacher,
		CourseType:    k.CourseType,
	}
}

// UpdateRecordRequest 编辑单条记录；未出现的字段保持不变
type UpdateRecordRequest struct {
	Key            RecordKeyRequest `json:"key" binding:"required"`
	Date           *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	StartTime      *string          `json:"start_time"`
	EndTime        *string          `json:"end_time"`
	Week           *int             `json:"week" binding:"omitempty,min=0"`
	Weekday        *string          `json:"weekday" binding:"omitempty,max=20"`
	Period         *string          `json:"period" binding:"omitempty,max=20"`
	Session        *string          `json:"session" binding:"omitempty,max=20"`
	Grade          *string          `json:"grade" binding:"omitempty,max=50"`
	Class          *string          `json:"class" binding:"omitempty,max=100"`
	Subject        *string          `json:"subject" binding:"omitempty,max=100"`
	CourseType     *string          `json:"course_type" binding:"omitempty,max=50"`
	Hours          *decimal.Decimal `json:"hours"`
	PlannedTeacher *string          `json:"planned_teacher" binding:"omitempty,max=50"`
	ActualTeacher  *string          `json:"actual_teacher" binding:"omitempty,max=50"`
	Type           *string          `json:"type" binding:"omitempty,max=50"`
	Reason         *string          `json:"reason" binding:"omitempty,max=200"`
}

// ── 导入 ──

// RowIssue 导入时单行的错误或警告
type RowIssue struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ImportPreviewResponse 暂存导入的预览
type ImportPreviewResponse struct {
	ID        string                 `json:"id"`
	FileName  string                 `json:"file_name"`
	Total     int                    `json:"total"`  // 非空数据行数
	Valid     int                    `json:"valid"`  // 可导入记录数
	Failed    int                    `json:"failed"` // 日期无法解析而被跳过的行数
	ExpiresAt time.Time              `json:"expires_at"`
	Errors    []RowIssue             `json:"errors"`
	Warnings  []RowIssue             `json:"warnings"`
	Preview   []CourseRecordResponse `json:"preview"`
}

// ConfirmImportResponse 确认导入结果
type ConfirmImportResponse struct {
	Imported int    `json:"imported"`
	Version  uint64 `json:"version"`
}

// ── 空闲教师 ──

// FreeTeachersRequest 空闲教师查询；end_date 缺省时与 date 相同
type FreeTeachersRequest struct {
	Date      string `form:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `form:"start_time" binding:"required"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	EndTime   string `form:"end_time" binding:"required"`
}

// FreeTeachersResponse 空闲教师查询结果
type FreeTeachersResponse struct {
	Status  string    `json:"status"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Free    []string  `json:"free"`
	Busy    []string  `json:"busy"`
	Skipped int       `json:"skipped"`
}

// ── 周课表 ──

// WeeklyTimetableRequest 周课表查询
type WeeklyTimetableRequest struct {
	Teacher   string `form:"teacher" binding:"required,max=50"`
	WeekStart string `form:"week_start" binding:"required,datetime=2006-01-02"`
}

// TimetableDay 课表列
type TimetableDay struct {
	Label string `json:"label"`
	Date  string `json:"date"`
}

// TimetableCell 课表单元格
type TimetableCell struct {
	Class      string `json:"class"`
	Subject    string `json:"subject"`
	CourseType string `json:"course_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// TimetableRow 课表行
type TimetableRow struct {
	Period  string           `json:"period"`
	Session string           `json:"session"`
	Cells   []*TimetableCell `json:"cells"` // 长度 7，空格子为 null
}

// WeeklyTimetableResponse 周课表
type WeeklyTimetableResponse struct {
	Status    string         `json:"status"`
	Teacher   string         `json:"teacher"`
	WeekStart string         `json:"week_start"`
	Empty     bool           `json:"empty"`
	Days      []TimetableDay `json:"days"`
	Rows      []TimetableRow `json:"rows"`
}

// ── 课时统计 ──

// HourStatisticsRequest 课时统计；teacher 可重复，缺省为全部教师
type HourStatisticsRequest struct {
	From     string   `form:"from" binding:"required,datetime=2006-01-02"`
	To       string   `form:"to" binding:"required,datetime=2006-01-02"`
	Teachers []string `form:"teacher"`
	// AllTeachers 由 handler 根据是否携带 teacher 参数填充
	AllTeachers bool `form:"-"`
}

// HourStatRow 单个教师的课时
type HourStatRow struct {
	Teacher string             `json:"teacher"`
	Hours   map[string]float64 `json:"hours"`
	Total   float64            `json:"total"`
}

// HourStatisticsResponse 课时统计结果
type HourStatisticsResponse struct {
	Status      string        `json:"status"`
	From        string        `json:"from"`
	To          string        `json:"to"`
	CourseTypes []string      `json:"course_types"`
	Rows        []HourStatRow `json:"rows"`
	GrandTotal  float64       `json:"grand_total"`
}
