package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"daily-worklog/internal/daylog"
	"daily-worklog/internal/storage"
	"daily-worklog/internal/syncer"
)

// saveLogRequest is the POST body: a day key plus zero or more of the six
// entry fields. Field presence is tri-state (see daylog.Patch); a key the
// client omits preserves the stored value, an explicit null clears it.
type saveLogRequest struct {
	DateKey string `json:"dateKey"`
	daylog.Patch
}

func getProvider(c *gin.Context) (storage.Provider, bool) {
	value, ok := c.Get("Storage")
	if !ok {
		AbortWithError(c, ErrStorageNotConfigured)
		return nil, false
	}
	provider, ok := value.(storage.Provider)
	if !ok || provider == nil {
		AbortWithError(c, ErrStorageNotConfigured)
		return nil, false
	}
	return provider, true
}

func getCoordinator(c *gin.Context) (*syncer.Coordinator, bool) {
	value, ok := c.Get("Coordinator")
	if !ok {
		AbortWithError(c, ErrStorageNotConfigured)
		return nil, false
	}
	coord, ok := value.(*syncer.Coordinator)
	if !ok || coord == nil {
		AbortWithError(c, ErrStorageNotConfigured)
		return nil, false
	}
	return coord, true
}

// WorklogAPI mounts the log endpoints on the group.
func WorklogAPI(r *gin.RouterGroup) {
	// Bulk fetch: every persisted record, ordered by day key.
	r.GET("/logs", func(c *gin.Context) {
		provider, ok := getProvider(c)
		if !ok {
			return
		}

		records, err := provider.ListWorklogs(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": records})
	})

	// Save: merge-on-write upsert for one day, then best-effort mirror.
	r.POST("/logs", func(c *gin.Context) {
		coord, ok := getCoordinator(c)
		if !ok {
			return
		}

		var req saveLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, GetErrorMessage(ErrInvalidRequest)))
			return
		}

		day, err := daylog.ParseDayKey(req.DateKey)
		if err != nil {
			AbortWithError(c, ErrInvalidDayKey)
			return
		}

		result, err := coord.Sync(c.Request.Context(), day, req.Patch)
		if err != nil {
			// The primary channel failed; a mirror failure never lands here.
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  result.Status,
		})
	})
}
