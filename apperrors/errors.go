package apperrors

import "net/http"

// Code is a stable machine-readable failure identifier. Frontends match on
// codes; messages are for humans and may change.
type Code string

const (
	// Resource not found (404)
	CodeQuestNotFound         Code = "QUEST_NOT_FOUND"
	CodeQuestTemplateNotFound Code = "QUEST_TEMPLATE_NOT_FOUND"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeHomeNotFound          Code = "HOME_NOT_FOUND"
	CodeRewardNotFound        Code = "REWARD_NOT_FOUND"
	CodeAchievementNotFound   Code = "ACHIEVEMENT_NOT_FOUND"
	CodeBountyNotFound        Code = "BOUNTY_NOT_FOUND"
	CodeSubscriptionNotFound  Code = "SUBSCRIPTION_NOT_FOUND"

	// Validation (400)
	CodeInvalidInput      Code = "INVALID_INPUT"
	CodeInvalidSchedule   Code = "INVALID_SCHEDULE"
	CodeDuplicateHomeName Code = "DUPLICATE_HOME_NAME"
	CodeDuplicateUsername Code = "DUPLICATE_USERNAME"
	CodeNegativeXP        Code = "NEGATIVE_XP"
	CodeInsufficientGold  Code = "INSUFFICIENT_GOLD"
	CodeNegativeAmount    Code = "NEGATIVE_AMOUNT"

	// State (400)
	CodeQuestAlreadyCompleted      Code = "QUEST_ALREADY_COMPLETED"
	CodeConsumableAlreadyActive    Code = "CONSUMABLE_ALREADY_ACTIVE"
	CodeAchievementAlreadyUnlocked Code = "ACHIEVEMENT_ALREADY_UNLOCKED"

	// Authorization (403)
	CodeUnauthorizedAccess Code = "UNAUTHORIZED_ACCESS"
	CodeForbidden          Code = "FORBIDDEN"

	// Authentication (401)
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeMissingToken       Code = "MISSING_TOKEN"
	CodeInvalidToken       Code = "INVALID_TOKEN"
)

var defaultMessages = map[Code]string{
	CodeQuestNotFound:              "Quest not found",
	CodeQuestTemplateNotFound:      "Quest template not found",
	CodeUserNotFound:               "User not found",
	CodeHomeNotFound:               "Home not found",
	CodeRewardNotFound:             "Reward not found",
	CodeAchievementNotFound:        "Achievement not found",
	CodeBountyNotFound:             "Daily bounty not found",
	CodeSubscriptionNotFound:       "Subscription not found",
	CodeInvalidInput:               "Invalid input provided",
	CodeInvalidSchedule:            "Invalid quest schedule",
	CodeDuplicateHomeName:          "A home with this name already exists",
	CodeDuplicateUsername:          "Username already exists in this home",
	CodeNegativeXP:                 "XP amount cannot be negative",
	CodeInsufficientGold:           "Insufficient gold balance",
	CodeNegativeAmount:             "Amount cannot be negative",
	CodeQuestAlreadyCompleted:      "Quest is already completed",
	CodeConsumableAlreadyActive:    "Consumable is already active",
	CodeAchievementAlreadyUnlocked: "Achievement already unlocked",
	CodeUnauthorizedAccess:         "You are not authorized to access this resource",
	CodeForbidden:                  "Access forbidden",
	CodeInvalidCredentials:         "Invalid username or password",
	CodeMissingToken:               "Authentication token is missing",
	CodeInvalidToken:               "Authentication token is invalid",
}

var defaultStatus = map[Code]int{
	CodeQuestNotFound:              http.StatusNotFound,
	CodeQuestTemplateNotFound:      http.StatusNotFound,
	CodeUserNotFound:               http.StatusNotFound,
	CodeHomeNotFound:               http.StatusNotFound,
	CodeRewardNotFound:             http.StatusNotFound,
	CodeAchievementNotFound:        http.StatusNotFound,
	CodeBountyNotFound:             http.StatusNotFound,
	CodeSubscriptionNotFound:       http.StatusNotFound,
	CodeInvalidInput:               http.StatusBadRequest,
	CodeInvalidSchedule:            http.StatusBadRequest,
	CodeDuplicateHomeName:          http.StatusBadRequest,
	CodeDuplicateUsername:          http.StatusBadRequest,
	CodeNegativeXP:                 http.StatusBadRequest,
	CodeInsufficientGold:           http.StatusBadRequest,
	CodeNegativeAmount:             http.StatusBadRequest,
	CodeQuestAlreadyCompleted:      http.StatusBadRequest,
	CodeConsumableAlreadyActive:    http.StatusBadRequest,
	CodeAchievementAlreadyUnlocked: http.StatusBadRequest,
	CodeUnauthorizedAccess:         http.StatusForbidden,
	CodeForbidden:                  http.StatusForbidden,
	CodeInvalidCredentials:         http.StatusUnauthorized,
	CodeMissingToken:               http.StatusUnauthorized,
	CodeInvalidToken:               http.StatusUnauthorized,
}

// AppError is a domain error with an HTTP status and structured context.
// Details always carries the ids/amounts/timestamps a client needs to react,
// never just a flag.
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"-"`
	Details map[string]interface{} `json:"details"`
}

func (e *AppError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New creates an AppError with the code's default message and status.
func New(code Code) *AppError {
	msg, ok := defaultMessages[code]
	if !ok {
		msg = "An error occurred"
	}
	status, ok := defaultStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &AppError{Code: code, Message: msg, Status: status, Details: map[string]interface{}{}}
}

// WithMessage overrides the default message.
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithDetails attaches structured context.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}
