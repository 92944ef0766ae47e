package service

import (
	"errors"
	"fmt"
	"goal_pilot_backend/internal/model"
	"goal_pilot_backend/internal/repository"
	"goal_pilot_backend/internal/util"
	"goal_pilot_backend/pkg/logger"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProfileInput 个人资料修改
type ProfileInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// PreferencesInput 偏好设置，未提交的字段保持原值
type PreferencesInput struct {
	Theme               *string `json:"theme"`
	Timezone            *string `json:"timezone"`
	WeekStartsOn        *string `json:"weekStartsOn"`
	DailyReminderTime   *string `json:"dailyReminderTime"`
	EmailNotifications  *bool   `json:"emailNotifications"`
	DefaultTaskDuration *int    `json:"defaultTaskDuration"`
}

// UserService 处理个人资料与偏好设置
type UserService struct {
	UserRepo       *repository.UserRepository
	PreferenceRepo *repository.PreferenceRepository
}

func NewUserService(userRepo *repository.UserRepository, preferenceRepo *repository.PreferenceRepository) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		PreferenceRepo: preferenceRepo,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(userID uint, in ProfileInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrInvalidProfile)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", util.ErrInvalidProfile)
	}

	taken, err := s.UserRepo.EmailTakenByOther(email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrEmailRegistered
	}

	if err := s.UserRepo.UpdateProfile(userID, name, email); err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

// GetPreferences 偏好表不存在或用户没有记录时返回默认值
func (s *UserService) GetPreferences(userID uint) (*model.UserPreference, error) {
	pref, err := s.PreferenceRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if pref == nil {
		return model.DefaultPreferences(userID), nil
	}
	return pref, nil
}

var (
	validThemes    = map[string]bool{"light": true, "dark": true, "system": true}
	validWeekStart = map[string]bool{"sunday": true, "monday": true}
)

func (in PreferencesInput) applyTo(pref *model.UserPreference) error {
	if in.Theme != nil {
		if !validThemes[*in.Theme] {
			return fmt.Errorf("%w: theme must be light, dark or system", util.ErrInvalidProfile)
		}
		pref.Theme = *in.Theme
	}
	if in.Timezone != nil {
		pref.Timezone = *in.Timezone
	}
	if in.WeekStartsOn != nil {
		if !validWeekStart[*in.WeekStartsOn] {
			return fmt.Errorf("%w: weekStartsOn must be sunday or monday", util.ErrInvalidProfile)
		}
		pref.WeekStartsOn = *in.WeekStartsOn
	}
	if in.DailyReminderTime != nil {
		if err := validReminderTime(*in.DailyReminderTime); err != nil {
			return err
		}
		pref.DailyReminderTime = *in.DailyReminderTime
	}
	if in.EmailNotifications != nil {
		pref.EmailNotifications = *in.EmailNotifications
	}
	if in.DefaultTaskDuration != nil {
		if *in.DefaultTaskDuration < MinDailyCommitment || *in.DefaultTaskDuration > MaxDailyCommitment {
			return fmt.Errorf("%w: defaultTaskDuration out of range", util.ErrInvalidProfile)
		}
		pref.DefaultTaskDuration = *in.DefaultTaskDuration
	}
	return nil
}

func validReminderTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("%w: dailyReminderTime must be HH:MM", util.ErrInvalidProfile)
	}
	return nil
}

// UpdatePreferences 合并后写入；偏好表不存在时只返回合并结果，不落库
func (s *UserService) UpdatePreferences(userID uint, in PreferencesInput) (*model.UserPreference, error) {
	pref, err := s.GetPreferences(userID)
	if err != nil {
		return nil, err
	}
	if err := in.applyTo(pref); err != nil {
		return nil, err
	}

	if !s.PreferenceRepo.TableExists() {
		logger.L().Warn("user_preferences table missing, preferences not persisted", zap.Uint("user_id", userID))
		return pref, nil
	}
	// 按 user_id 冲突更新，不带主键插入
	pref.ID = 0
	pref.UserID = userID
	if err := s.PreferenceRepo.Upsert(pref); err != nil {
		return nil, err
	}
	return s.GetPreferences(userID)
}
