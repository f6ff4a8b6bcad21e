package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

// Error codes returned in the "code" field.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeAIError       = "AI_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names so errors match the request body.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func respondError(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code, Details: details})
}

// statusClientClosedRequest marks requests abandoned by the caller.
const statusClientClosedRequest = 499

// writeServiceError maps application errors onto HTTP codes. Unexpected
// errors are logged and reported without internal detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger ports.Logger, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		logger.Debug("client went away", map[string]interface{}{
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		w.WriteHeader(statusClientClosedRequest)
	case errors.As(err, &inputErr):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, inputErr.Error(),
			map[string]interface{}{"field": inputErr.Field})
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error(), nil)
	case errors.Is(err, domain.ErrAllProvidersExhausted):
		logger.Warn("recommendation providers exhausted", map[string]interface{}{
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		details := map[string]interface{}{}
		var exhausted *domain.ExhaustedError
		if errors.As(err, &exhausted) {
			details["lastErrorKind"] = string(exhausted.LastKind)
		}
		respondError(w, http.StatusInternalServerError, CodeAIError,
			"no recommendation provider could answer, please retry later", details)
	default:
		logger.Error("request failed", err, map[string]interface{}{
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		})
		respondError(w, http.StatusInternalServerError, CodeInternalError, "internal error", nil)
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "could not read request body", nil)
		return false
	}
	if len(body) > maxBodyBytes {
		respondError(w, http.StatusRequestEntityTooLarge, CodeInvalidInput, "request body too large", nil)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, "request body must be valid JSON", nil)
		return false
	}
	if err := getValidator().Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, CodeInvalidInput, validationMessage(err), validationDetails(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func validationDetails(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]map[string]interface{}, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, map[string]interface{}{
			"field": jsonFieldPath(fe.Namespace()),
			"tag":   fe.Tag(),
		})
	}
	return map[string]interface{}{"fields": fields}
}

func fieldMessage(fe validator.FieldError) string {
	field := jsonFieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// jsonFieldPath turns "discoverBody.prompt" into "prompt".
func jsonFieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
