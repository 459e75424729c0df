// Package errors define los errores HTTP del Hub y su envelope JSON.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/fleethub/internal/observability/logger"
)

// As re-exporta errors.As para no obligar a importar ambos paquetes.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is re-exporta errors.Is.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// errorResponse es el envelope de error: {success:false, code, message, detail?}.
type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe el envelope de error. Los 5xx se loguean con la causa.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Success: false,
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteErrorCtx es WriteError + log con el logger del request.
func WriteErrorCtx(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)
	if appErr.HTTPStatus >= 500 {
		logger.From(r.Context()).Error("request failed",
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}
	WriteError(w, appErr)
}
