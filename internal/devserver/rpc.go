package devserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type memberFeedParams struct {
	MemberID string `json:"p_member_id"`
	Limit    int    `json:"p_limit"`
}

type markReadParams struct {
	NotificationID string `json:"p_notification_id"`
	MemberID       string `json:"p_member_id"`
	Source         string `json:"p_source"`
}

func (s *Server) handleRPC() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		switch fn := c.Param("fn"); fn {
		case "get_member_transaction_notifications":
			var p memberFeedParams
			if err := c.ShouldBindJSON(&p); err != nil {
				badRequest(c, err)
				return
			}
			out, err := s.store.TransactionNotificationsForMember(ctx, p.MemberID, p.Limit)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows(out))

		case "get_global_notifications_with_read_status":
			var p memberFeedParams
			if err := c.ShouldBindJSON(&p); err != nil {
				badRequest(c, err)
				return
			}
			out, err := s.store.GlobalNotificationsWithReadStatus(ctx, p.MemberID)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows(out))

		case "mark_notification_read_privileged":
			var p markReadParams
			if err := c.ShouldBindJSON(&p); err != nil {
				badRequest(c, err)
				return
			}
			res, err := s.store.MarkAsReadPrivileged(ctx, p.NotificationID, p.MemberID, p.Source)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, res)

		default:
			abortWithError(c, http.StatusNotFound, "PGRST202",
				"could not find the function public."+fn, "")
		}
	}
}
