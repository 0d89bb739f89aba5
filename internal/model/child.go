package model

import (
	"time"

	"gorm.io/datatypes"
)

// 在园状态
const (
	EnrollmentEnrolled   = "enrolled"
	EnrollmentWaitlisted = "waitlisted"
	EnrollmentWithdrawn  = "withdrawn"
	EnrollmentGraduated  = "graduated"
)

// ValidEnrollmentStatus 是否为合法在园状态
func ValidEnrollmentStatus(s string) bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentWaitlisted, EnrollmentWithdrawn, EnrollmentGraduated:
		return true
	}
	return false
}

// MedicalInfo 医疗信息
type MedicalInfo struct {
	Allergies       []string `json:"allergies,omitempty"`
	Medications     []string `json:"medications,omitempty"`
	Conditions      []string `json:"conditions,omitempty"`
	DoctorName      string   `json:"doctor_name,omitempty"`
	DoctorPhone     string   `json:"doctor_phone,omitempty"`
	InsuranceNumber string   `json:"insurance_number,omitempty"`
	BloodType       string   `json:"blood_type,omitempty"`
}

// DietaryInfo 饮食信息
type DietaryInfo struct {
	Restrictions []string `json:"restrictions,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// BehavioralInfo 行为信息
type BehavioralInfo struct {
	Strengths  []string `json:"strengths,omitempty"`
	Challenges []string `json:"challenges,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// EmergencyContact 紧急联系人
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	IsPrimary    bool   `json:"is_primary"`
	CanPickup    bool   `json:"can_pickup"`
}

// Child 儿童表 — 对应 children
type Child struct {
	ChildID           string                                `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"child_id"`
	FirstName         string                                `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName          string                                `gorm:"type:varchar(100);not null"                     json:"last_name"`
	DateOfBirth       time.Time                             `gorm:"type:date;not null"                             json:"date_of_birth"`
	Gender            string                                `gorm:"type:varchar(20)"                               json:"gender,omitempty"`
	CenterID          string                                `gorm:"type:uuid;not null;index"                       json:"center_id"`
	CurrentClassID    *string                               `gorm:"type:uuid;index"                                json:"current_class_id,omitempty"`
	EnrollmentStatus  string                                `gorm:"type:varchar(20);not null;default:'enrolled'"   json:"enrollment_status"`
	EnrollmentDate    *time.Time                            `gorm:"type:date"                                      json:"enrollment_date,omitempty"`
	Medical           datatypes.JSONType[MedicalInfo]       `gorm:"type:jsonb"                                     json:"medical"`
	Dietary           datatypes.JSONType[DietaryInfo]       `gorm:"type:jsonb"                                     json:"dietary"`
	Behavioral        datatypes.JSONType[BehavioralInfo]    `gorm:"type:jsonb"                                     json:"behavioral"`
	EmergencyContacts datatypes.JSONSlice[EmergencyContact] `gorm:"type:jsonb"                                     json:"emergency_contacts"`
	ActiveModel

	// 关联
	Parents      []User `gorm:"many2many:child_parents;joinForeignKey:ChildID;joinReferences:UserID" json:"parents,omitempty"`
	CurrentClass *Class `gorm:"foreignKey:CurrentClassID;references:ClassID"                         json:"current_class,omitempty"`
}

// TableName 指定表名
func (Child) TableName() string { return "children" }

// ParentIDs 家长 ID 列表
func (c *Child) ParentIDs() []string {
	ids := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasParent 是否为该儿童的家长
func (c *Child) HasParent(userID string) bool {
	for _, p := range c.Parents {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
