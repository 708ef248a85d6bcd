// Package dto defines the request and response shapes of the HTTP API.
package dto

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required" validate:"required,min=3,max=30,username"`
	Email     string `json:"email" binding:"required" validate:"required,email"`
	Password  string `json:"password" binding:"required" validate:"required,min=6,max=64"`
	FirstName string `json:"firstName" validate:"max=60"`
	LastName  string `json:"lastName" validate:"max=60"`
}

// LoginRequest authenticates by username or email.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UpdateProfileRequest changes the caller's own account fields. Empty
// fields are left untouched.
type UpdateProfileRequest struct {
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"firstName" validate:"max=60"`
	LastName  string `json:"lastName" validate:"max=60"`
	Password  string `json:"password" validate:"omitempty,min=6,max=64"`
}

// TestRailConfigRequest carries TestRail credentials and addressing. The
// base URL is optional; the configured default applies when absent.
type TestRailConfigRequest struct {
	Username   string `json:"username"`
	APIKey     string `json:"apikey"`
	TestCaseID string `json:"testCaseId"`
	BaseURL    string `json:"testrailBaseUrl"`
}

// GenerateScriptRequest triggers one generation.
type GenerateScriptRequest struct {
	DataSource      string                 `json:"dataSource"`
	UseDefaultFiles bool                   `json:"useDefaultFiles"`
	Files           map[string]string      `json:"files"`
	TestRailConfig  *TestRailConfigRequest `json:"testrailConfig"`
}

// PreviewExcelRequest previews an already-uploaded or default spreadsheet.
// A fresh multipart upload takes precedence over both fields.
type PreviewExcelRequest struct {
	Filename   string `json:"filename"`
	UseDefault bool   `json:"useDefault"`
}
