package util

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailRegistered        = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrGoalNotFound           = errors.New("goal not found")
	ErrRoadmapNotFound        = errors.New("roadmap not found")
	ErrStageNotFound          = errors.New("progress stage not found")
	ErrTaskNotFound           = errors.New("task not found")
	ErrNoTemplate             = errors.New("no matching template")
	ErrInvalidSchedule        = errors.New("weekly schedule must include at least one day")
	ErrInvalidGoal            = errors.New("invalid goal")
	ErrInvalidDate            = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidExportFormat    = errors.New("unsupported export format")
	ErrInvalidStrategy        = errors.New("unsupported generation strategy")
	ErrInvalidTaskInput       = errors.New("invalid task input")
	ErrInvalidProfile         = errors.New("invalid profile")
	ErrGenerationInProgress   = errors.New("roadmap generation already in progress")
	ErrStagesAlreadyGenerated = errors.New("roadmap stages already generated")
	ErrMalformedModelOutput   = errors.New("model returned malformed JSON")
	ErrEmptyModelOutput       = errors.New("model returned no content")
)
