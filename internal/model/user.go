package model

import "time"

// UserModel 用户数据模型
// 认证与会话机制由外部系统负责,这里仅用于外键存在性校验与展示
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	RealName  string    `gorm:"type:varchar(64)" json:"real_name"`
	Status    int       `gorm:"not null;default:1" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}
