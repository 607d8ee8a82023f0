package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"marquee/internal/screenly"
	"marquee/internal/workflow"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// respondJSON writes a JSON body, logging encode failures.
func (bs *BridgeServer) respondJSON(w http.ResponseWriter, payload interface{}) {
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		bs.logger.WithError(err).Error("Failed to encode response")
	}
}

// respondWithValidationError sends a structured validation error response
func (bs *BridgeServer) respondWithValidationError(w http.ResponseWriter, r *http.Request, errs []ValidationError) {
	bs.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"errors": errs,
	}).Warn("Validation failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	bs.respondJSON(w, ValidationResult{
		Valid:  false,
		Errors: errs,
	})
}

// respondWithError sends a structured error response
func (bs *BridgeServer) respondWithError(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := bs.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})
	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	bs.respondJSON(w, map[string]interface{}{
		"error":   message,
		"code":    statusCode,
		"success": false,
	})
}

// respondUpstreamError maps a client/orchestrator failure onto an HTTP
// status for the bridge's caller: upstream HTTP statuses pass through,
// input problems are 400, connectivity problems are 502, and an exhausted
// readiness wait is 504.
func (bs *BridgeServer) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *screenly.APIError

	switch {
	case errors.As(err, &apiErr):
		bs.respondWithError(w, r, apiErr.Status, apiErr.Error(), err)
	case errors.Is(err, workflow.ErrPlaylistChoiceRequired),
		errors.Is(err, workflow.ErrConfirmationRequired):
		bs.respondWithError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, screenly.ErrAssetNotReady):
		bs.respondWithError(w, r, http.StatusGatewayTimeout, err.Error(), err)
	case errors.Is(err, screenly.ErrNetwork), errors.Is(err, screenly.ErrEmptyResponse),
		errors.Is(err, screenly.ErrNoData):
		bs.respondWithError(w, r, http.StatusBadGateway, err.Error(), err)
	default:
		bs.respondWithError(w, r, http.StatusInternalServerError, err.Error(), err)
	}
}

// decodeRequest parses a JSON request body into dest.
func (bs *BridgeServer) decodeRequest(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		bs.respondWithError(w, r, http.StatusBadRequest, "Invalid JSON", err)
		return false
	}
	return true
}

// requireMethod rejects requests with the wrong verb.
func (bs *BridgeServer) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		bs.respondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return false
	}
	return true
}

// requireToken resolves the caller credential or writes a 401.
func (bs *BridgeServer) requireToken(w http.ResponseWriter, r *http.Request) (screenly.Token, bool) {
	token, ok := bs.tokenFromRequest(r)
	if !ok {
		bs.respondWithError(w, r, http.StatusUnauthorized, "API key is required", nil)
		return "", false
	}
	return token, true
}

// validateUploadFields collects validation errors for an asset upload.
func validateUploadFields(title, fileURL, fileType string, duration int, durationSet bool) []ValidationError {
	var errs []ValidationError

	if err := workflow.ValidateTitle(title); err != nil {
		errs = append(errs, ValidationError{Field: "title", Message: err.Error(), Code: "INVALID_TITLE"})
	}
	if err := workflow.ValidateFileURL(fileURL); err != nil {
		errs = append(errs, ValidationError{Field: "file", Message: err.Error(), Code: "INVALID_FILE_URL"})
	}
	if fileType != "" {
		if err := workflow.ValidateFileType(fileType); err != nil {
			errs = append(errs, ValidationError{Field: "file_type", Message: err.Error(), Code: "INVALID_FILE_TYPE"})
		}
	}
	if durationSet {
		if err := workflow.ValidateDuration(duration); err != nil {
			errs = append(errs, ValidationError{Field: "duration", Message: err.Error(), Code: "INVALID_DURATION"})
		}
	}

	return errs
}
