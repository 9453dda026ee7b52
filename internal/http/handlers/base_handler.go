// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farmlink/internal/modules/aiquota"
	"farmlink/internal/modules/dispute"
	"farmlink/internal/modules/pricing"
	"farmlink/internal/types"
)

const roleAdmin = "admin"

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts Firebase UIDs and UUIDs.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinels to status codes; anything unknown is a 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, dispute.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, pricing.ErrNotFound), errors.Is(err, dispute.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, aiquota.ErrQuotaExceeded):
		writeError(c, http.StatusTooManyRequests, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
