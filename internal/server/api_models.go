package server

import (
	"codexswitch/internal/diagnose"
)

// =============================================
// Health Check Models
// =============================================

// HealthCheckResponse represents the health check response
type HealthCheckResponse struct {
	Status  string `json:"status" example:"healthy"`
	Service string `json:"service" example:"codexswitch"`
}

// =============================================
// Common Models
// =============================================

// ErrorDetail carries a machine-readable error in a response envelope
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// =============================================
// Account Models
// =============================================

// AccountRequest represents the request to create or update an account
type AccountRequest struct {
	Name    string `json:"name" binding:"required"`
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
	OrgID   string `json:"org_id"`
	IsTeam  bool   `json:"is_team"`
}

// AccountInfo is one account as returned by the API. The key is truncated so
// listings never leak full credentials.
type AccountInfo struct {
	Name        string `json:"name"`
	BaseURL     string `json:"base_url"`
	KeyPreview  string `json:"key_preview"`
	OrgID       string `json:"org_id,omitempty"`
	AccountType string `json:"account_type"`
	IsTeam      bool   `json:"is_team"`
	Active      bool   `json:"active"`
}

// AccountListResponse represents the account list response
type AccountListResponse struct {
	Success  bool          `json:"success" example:"true"`
	Accounts []AccountInfo `json:"accounts,omitempty"`
	Error    *ErrorDetail  `json:"error,omitempty"`
}

// AccountResponse represents a single-account mutation response
type AccountResponse struct {
	Success bool         `json:"success" example:"true"`
	Account *AccountInfo `json:"account,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// =============================================
// Diagnosis Models
// =============================================

// DiagnoseRequest represents the request to diagnose an endpoint
type DiagnoseRequest struct {
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key"`
	OrgID   string `json:"org_id"`
	Model   string `json:"model"`
	Account string `json:"account"`
}

// DiagnoseResponse represents the diagnosis response
type DiagnoseResponse struct {
	Success bool             `json:"success" example:"true"`
	Report  *diagnose.Report `json:"report,omitempty"`
	Error   *ErrorDetail     `json:"error,omitempty"`
}

// ModelProbeRequest represents the request to probe one model
type ModelProbeRequest struct {
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key"`
	OrgID   string `json:"org_id"`
	Model   string `json:"model" binding:"required"`
	Retries int    `json:"retries"`
}

// ModelProbeResponse represents the model probe response
type ModelProbeResponse struct {
	Success bool                       `json:"success" example:"true"`
	Result  *diagnose.ModelProbeResult `json:"result,omitempty"`
	Error   *ErrorDetail               `json:"error,omitempty"`
}

// =============================================
// History Models
// =============================================

// HistoryResponse represents the diagnosis history response
type HistoryResponse struct {
	Success bool         `json:"success" example:"true"`
	Records any          `json:"records,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}
