package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string     `gorm:"size:100;not null" json:"name"`
	Email    string     `gorm:"size:100;unique;not null" json:"email"`
	Password string     `gorm:"size:100;not null" json:"-"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserPreference 用户偏好设置，每个用户最多一行
// swagger:model UserPreference
type UserPreference struct {
	BaseModel
	UserID              uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Theme               string `gorm:"size:20;default:'system'" json:"theme"`
	Timezone            string `gorm:"size:64;default:'UTC'" json:"timezone"`
	WeekStartsOn        string `gorm:"size:10;default:'sunday'" json:"weekStartsOn"`
	DailyReminderTime   string `gorm:"size:5;default:'09:00'" json:"dailyReminderTime"`
	EmailNotifications  bool   `gorm:"not null" json:"emailNotifications"`
	DefaultTaskDuration int    `gorm:"default:30" json:"defaultTaskDuration"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

// DefaultPreferences 表不存在或用户未保存过偏好时的默认值
func DefaultPreferences(userID uint) *UserPreference {
	return &UserPreference{
		UserID:              userID,
		Theme:               "system",
		Timezone:            "UTC",
		WeekStartsOn:        "sunday",
		DailyReminderTime:   "09:00",
		EmailNotifications:  true,
		DefaultTaskDuration: 30,
	}
}
