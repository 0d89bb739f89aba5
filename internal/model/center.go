package model

import (
	"gorm.io/datatypes"
)

// Address 地址（嵌入，列前缀 address_）
type Address struct {
	Street     string `gorm:"type:varchar(255)" json:"street"`
	City       string `gorm:"type:varchar(100)" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	PostalCode string `gorm:"type:varchar(20)"  json:"postal_code"`
	Country    string `gorm:"type:varchar(100)" json:"country"`
}

// DayHours 单日营业时间（HH:MM）
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// OperatingHours 按星期（monday..sunday）索引的营业时间
type OperatingHours map[string]DayHours

// Center 托育中心表 — 对应 centers
type Center struct {
	CenterID         string                             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"center_id"`
	Name             string                             `gorm:"type:varchar(200);not null"                     json:"name"`
	Code             string                             `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Address          Address                            `gorm:"embedded;embeddedPrefix:address_"               json:"address"`
	Phone            string                             `gorm:"type:varchar(30)"                               json:"phone"`
	Email            string                             `gorm:"type:varchar(255)"                              json:"email"`
	Timezone         string                             `gorm:"type:varchar(64);not null;default:'UTC'"        json:"timezone"`
	Capacity         int                                `gorm:"not null"                                       json:"capacity"`
	CurrentOccupancy int                                `gorm:"not null;default:0"                             json:"current_occupancy"`
	OccupancyRate    int                                `gorm:"not null;default:0"                             json:"occupancy_rate"`
	AdminID          *string                            `gorm:"type:uuid"                                      json:"admin_id,omitempty"`
	OperatingHours   datatypes.JSONType[OperatingHours] `gorm:"type:jsonb"                                     json:"operating_hours"`
	ActiveModel
}

// TableName 指定表名
func (Center) TableName() string { return "centers" }

// Recompute 重新计算派生的入托率，每次保存前调用
func (c *Center) Recompute() {
	c.OccupancyRate = OccupancyRate(c.CurrentOccupancy, c.Capacity)
}

// IsFull 是否已满
func (c *Center) IsFull() bool {
	return c.Capacity > 0 && c.CurrentOccupancy >= c.Capacity
}
