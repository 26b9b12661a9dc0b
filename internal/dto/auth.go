package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Code       string `json:"code"        binding:"required,max=20"`
	Password   string `json:"password"    binding:"required,min=6,max=72"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// [自证通过] internal/dto/auth.go
