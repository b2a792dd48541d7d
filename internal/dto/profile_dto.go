package dto

type UpdateProfileRequest struct {
	FullName    *string `json:"fullName" validate:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=8,max=20"`
}

type SetAvatarRequest struct {
	AvatarURL string `json:"avatarUrl" validate:"required,url,max=500"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type SendPasswordChangeOTPRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
}

type VerifyPasswordChangeOTPRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	OTPCode         string `json:"otpCode" validate:"required,numeric,min=4,max=8"`
	ChallengeToken  string `json:"challengeToken" validate:"omitempty"`
}

type SendEmailUpdateOTPRequest struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

type VerifyEmailUpdateRequest struct {
	NewEmail       string `json:"newEmail" validate:"required,email"`
	OTPCode        string `json:"otpCode" validate:"required,numeric,min=4,max=8"`
	ChallengeToken string `json:"challengeToken" validate:"omitempty"`
}

type SendPhoneUpdateOTPRequest struct {
	NewPhoneNumber string `json:"newPhoneNumber" validate:"required,min=8,max=20"`
}

type VerifyPhoneUpdateRequest struct {
	NewPhoneNumber string `json:"newPhoneNumber" validate:"required,min=8,max=20"`
	OTPCode        string `json:"otpCode" validate:"required,numeric,min=4,max=8"`
	ChallengeToken string `json:"challengeToken" validate:"omitempty"`
}
