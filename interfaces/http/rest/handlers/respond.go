// Package handlers implements the HTTP endpoints of the history-graph
// service.
package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"graphdoc/pkg/common"
	apperrors "graphdoc/pkg/errors"
)

// respondAppError maps the application error taxonomy onto HTTP statuses
// and the error-code JSON shape clients match on. Integrity violations
// carry their constraint metadata.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("Unclassified error", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		common.RespondError(w, http.StatusBadRequest, appErr.Message, nil)
	case apperrors.ErrorTypeNotFound:
		common.RespondError(w, http.StatusNotFound, "not_found", nil)
	case apperrors.ErrorTypeGone:
		common.RespondError(w, http.StatusGone, "gone", nil)
	case apperrors.ErrorTypeConflict:
		common.RespondError(w, http.StatusBadRequest, appErr.Message, map[string]interface{}{
			"constraint": appErr.Constraint,
			"table":      appErr.Table,
			"column":     appErr.Column,
		})
	case apperrors.ErrorTypeUnauthorized:
		common.RespondError(w, http.StatusUnauthorized, "unauthorized", nil)
	default:
		logger.Error("Internal error", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, appErr.Message, nil)
	}
}
