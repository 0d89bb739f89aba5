package dto

// ── 班级模块 DTO ──

// ClassListRequest 班级列表查询参数
type ClassListRequest struct {
	PaginationRequest
	Search          string `form:"search"     binding:"omitempty,max=100"`
	CenterID        string `form:"center_id"  binding:"omitempty,uuid"`
	TeacherID       string `form:"teacher_id" binding:"omitempty,uuid"`
	IncludeInactive bool   `form:"include_inactive"`
}

// CreateClassRequest 创建班级请求
type CreateClassRequest struct {
	Name         string   `json:"name"           binding:"required,max=100"`
	Description  string   `json:"description"    binding:"omitempty,max=1000"`
	CenterID     string   `json:"center_id"      binding:"omitempty,uuid"`
	AgeMinMonths int      `json:"age_min_months" binding:"min=0"`
	AgeMaxMonths int      `json:"age_max_months" binding:"required,min=1"`
	Capacity     int      `json:"capacity"       binding:"required,min=1"`
	ScheduleDays []string `json:"schedule_days"  binding:"required,min=1,dive,weekday"`
	StartTime    string   `json:"start_time"     binding:"required,hhmm"`
	EndTime      string   `json:"end_time"       binding:"required,hhmm"`
	Room         string   `json:"room"           binding:"omitempty,max=50"`
	StartDate    string   `json:"start_date"     binding:"required,datetime=2006-01-02"`
	EndDate      string   `json:"end_date"       binding:"required,datetime=2006-01-02"`
	TeacherIDs   []string `json:"teacher_ids"    binding:"required,min=1,dive,uuid"`
}

// UpdateClassRequest 更新班级请求
type UpdateClassRequest struct {
	Name         *string  `json:"name"           binding:"omitempty,max=100"`
	Description  *string  `json:"description"    binding:"omitempty,max=1000"`
	AgeMinMonths *int     `json:"age_min_months" binding:"omitempty,min=0"`
	AgeMaxMonths *int     `json:"age_max_months" binding:"omitempty,min=1"`
	Capacity     *int     `json:"capacity"       binding:"omitempty,min=1"`
	ScheduleDays []string `json:"schedule_days"  binding:"omitempty,min=1,dive,weekday"`
	StartTime    *string  `json:"start_time"     binding:"omitempty,hhmm"`
	EndTime      *string  `json:"end_time"       binding:"omitempty,hhmm"`
	Room         *string  `json:"room"           binding:"omitempty,max=50"`
	StartDate    *string  `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string  `json:"end_date"       binding:"omitempty,datetime=2006-01-02"`
}

// SetTeachersRequest 替换班级教师
type SetTeachersRequest struct {
	TeacherIDs []string `json:"teacher_ids" binding:"required,min=1,dive,uuid"`
}
