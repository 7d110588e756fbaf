package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List Notifications
// @Description  Most recent notification events, newest first
// @Tags         notifications
// @Produce      json
// @Param        limit  query  int  false  "Max events"
// @Success      200  {object}  []notificationdomain.NotificationEvent
// @Router       /v1/notifications [get]
func (s *Server) ListNotifications(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.notificationSvc.ListRecent(c.Request.Context(), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
