package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"codexswitch/internal/config"
	"codexswitch/internal/data/db"
	"codexswitch/internal/diagnose"
)

func errorResponse(message, errType string) *ErrorDetail {
	return &ErrorDetail{Message: message, Type: errType}
}

// keyPreview masks an API key for display.
func keyPreview(key string) string {
	if len(key) <= 10 {
		return "***"
	}
	return key[:6] + "..." + key[len(key)-4:]
}

func (s *Server) accountInfo(account config.Account) AccountInfo {
	active, ok := s.store.Active()
	return AccountInfo{
		Name:        account.Name,
		BaseURL:     account.BaseURL,
		KeyPreview:  keyPreview(account.APIKey),
		OrgID:       account.OrgID,
		AccountType: account.AccountType,
		IsTeam:      account.IsTeam,
		Active:      ok && active.Name == account.Name && active.IsTeam == account.IsTeam,
	}
}

// HandleListAccounts returns all stored accounts
func (s *Server) HandleListAccounts(c *gin.Context) {
	accounts := s.store.Accounts()
	infos := make([]AccountInfo, 0, len(accounts))
	for _, account := range accounts {
		infos = append(infos, s.accountInfo(account))
	}
	c.JSON(http.StatusOK, AccountListResponse{
		Success:  true,
		Accounts: infos,
	})
}

// HandleUpsertAccount creates or replaces an account
func (s *Server) HandleUpsertAccount(c *gin.Context) {
	var req AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, AccountResponse{
			Success: false,
			Error:   errorResponse("Invalid request body: "+err.Error(), "invalid_request_error"),
		})
		return
	}

	profile := config.Profile{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		OrgID:   req.OrgID,
	}
	if err := s.store.Upsert(req.Name, profile, req.IsTeam); err != nil {
		c.JSON(http.StatusInternalServerError, AccountResponse{
			Success: false,
			Error:   errorResponse(err.Error(), "store_error"),
		})
		return
	}

	account, _ := s.store.Get(req.Name)
	info := s.accountInfo(account)
	c.JSON(http.StatusOK, AccountResponse{
		Success: true,
		Account: &info,
	})
}

// HandleDeleteAccount removes an account by name
func (s *Server) HandleDeleteAccount(c *gin.Context) {
	name := c.Param("name")
	account, ok := s.store.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, AccountResponse{
			Success: false,
			Error:   errorResponse("account not found: "+name, "not_found_error"),
		})
		return
	}

	if err := s.store.Delete(account); err != nil {
		c.JSON(http.StatusInternalServerError, AccountResponse{
			Success: false,
			Error:   errorResponse(err.Error(), "store_error"),
		})
		return
	}
	c.JSON(http.StatusOK, AccountResponse{Success: true})
}

// HandleActivateAccount applies an account to the live Codex configuration
func (s *Server) HandleActivateAccount(c *gin.Context) {
	name := c.Param("name")
	account, ok := s.store.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, AccountResponse{
			Success: false,
			Error:   errorResponse("account not found: "+name, "not_found_error"),
		})
		return
	}

	if err := config.Apply(s.store, account); err != nil {
		c.JSON(http.StatusInternalServerError, AccountResponse{
			Success: false,
			Error:   errorResponse(err.Error(), "apply_error"),
		})
		return
	}

	logrus.Infof("switched active account to %s", name)
	info := s.accountInfo(account)
	c.JSON(http.StatusOK, AccountResponse{
		Success: true,
		Account: &info,
	})
}

// resolveCredentials fills credentials from a stored account when the request
// names one.
func (s *Server) resolveCredentials(accountName string, baseURL, apiKey, orgID *string) bool {
	if accountName == "" {
		return true
	}
	account, ok := s.store.Get(accountName)
	if !ok {
		return false
	}
	if *baseURL == "" {
		*baseURL = account.BaseURL
	}
	if *apiKey == "" {
		*apiKey = account.APIKey
	}
	if *orgID == "" && account.IsTeam {
		*orgID = account.OrgID
	}
	return true
}

// HandleDiagnose runs the full endpoint diagnosis
func (s *Server) HandleDiagnose(c *gin.Context) {
	var req DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, DiagnoseResponse{
			Success: false,
			Error:   errorResponse("Invalid request body: "+err.Error(), "invalid_request_error"),
		})
		return
	}
	if !s.resolveCredentials(req.Account, &req.BaseURL, &req.APIKey, &req.OrgID) {
		c.JSON(http.StatusNotFound, DiagnoseResponse{
			Success: false,
			Error:   errorResponse("account not found: "+req.Account, "not_found_error"),
		})
		return
	}

	report, err := s.probe.Run(diagnose.Target{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		OrgID:   req.OrgID,
		Model:   req.Model,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, DiagnoseResponse{
			Success: false,
			Error:   errorResponse(err.Error(), "invalid_request_error"),
		})
		return
	}

	if s.diagLog != nil {
		s.diagLog.Append("diagnose "+report.Host, report.Detail)
	}
	if s.history != nil {
		record := &db.DiagnosisRecord{
			BaseURL:        req.BaseURL,
			Host:           report.Host,
			Model:          req.Model,
			Conclusion:     report.Conclusion,
			ModelSupported: report.Verdict.Supported.String(),
			SupportSource:  report.Verdict.Source,
			SucceededCount: len(report.SucceededLabels),
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.history.Record(record); err != nil {
			logrus.Warnf("failed to record diagnosis history: %v", err)
		}
	}

	c.JSON(http.StatusOK, DiagnoseResponse{
		Success: true,
		Report:  report,
	})
}

// HandleModelProbe tests a single model with retries
func (s *Server) HandleModelProbe(c *gin.Context) {
	var req ModelProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ModelProbeResponse{
			Success: false,
			Error:   errorResponse("Invalid request body: "+err.Error(), "invalid_request_error"),
		})
		return
	}

	result := s.probe.TestModel(diagnose.Target{
		BaseURL: req.BaseURL,
		APIKey:  req.APIKey,
		OrgID:   req.OrgID,
		Model:   req.Model,
	}, req.Retries, 0)

	c.JSON(http.StatusOK, ModelProbeResponse{
		Success: true,
		Result:  &result,
	})
}

// HandleHistory returns recent diagnosis records
func (s *Server) HandleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, HistoryResponse{
			Success: true,
			Records: []db.DiagnosisRecord{},
		})
		return
	}

	records, err := s.history.Recent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HistoryResponse{
			Success: false,
			Error:   errorResponse(err.Error(), "store_error"),
		})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{
		Success: true,
		Records: records,
	})
}
