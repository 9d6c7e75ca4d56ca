package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	apperrors "todo-api/internal/errors"
	"todo-api/internal/validation"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error  string                  `json:"error"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

// statusFor maps an error to its HTTP status code
func statusFor(err error) int {
	if validation.IsValidationError(err) {
		return http.StatusBadRequest
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation, apperrors.ErrorTypeInvalidInput:
			return http.StatusBadRequest
		case apperrors.ErrorTypeNotFound:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

func writeErrorResp(err error, w http.ResponseWriter, logger *log.Logger) {
	if err == nil {
		return
	}

	status := statusFor(err)
	body := errorBody{Error: apperrors.GetUserMessage(err)}

	if ve, ok := validation.AsValidationError(err); ok {
		body.Error = ve.GetUserFriendlyMessage()
		body.Errors = ve.Errors
	} else if !apperrors.IsAppError(err) {
		body.Error = "An unexpected error occurred. Please try again."
	}

	if status >= http.StatusInternalServerError && apperrors.ShouldLogError(err) {
		logger.Printf("Unexpected error [%s]: %v", apperrors.GetErrorCode(err), err)
	}

	writeResp(body, status, w)
}

func writeResp(resp any, status int, w http.ResponseWriter) {
	if resp == nil {
		w.WriteHeader(status)
		return
	}
	respBytes, err := json.Marshal(resp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respBytes)
}

// maxBodyBytes bounds a request body. The longest valid todo is well below it.
const maxBodyBytes = 64 << 10

func readReq(req any, r *http.Request, w http.ResponseWriter) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(req)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeResp(errorBody{Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}, http.StatusRequestEntityTooLarge, w)
		return err
	}
	writeResp(errorBody{Error: "invalid request body: " + err.Error()}, http.StatusBadRequest, w)
	return err
}
