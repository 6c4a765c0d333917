package dto

// UserRegisterRequest payload validated together with the emailed OTP.
type UserRegisterRequest struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload shared by user and admin login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest payload for profile edits.
type UserUpdateRequest struct {
	FullName string `json:"fullName"`
	Age      int    `json:"age"`
	Email    string `json:"email"`
}

// OTPRequest asks for a registration code.
type OTPRequest struct {
	Email string `json:"email"`
}

// RegistrationRequest completes registration with the emailed code.
type RegistrationRequest struct {
	User UserRegisterRequest `json:"user"`
	OTP  string              `json:"otp"`
}
