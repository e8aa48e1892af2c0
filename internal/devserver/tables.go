package devserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/store"
)

const readStatusTable = "global_notification_read_status"

var errUnsupportedFilter = errors.New("unsupported filter combination")

// readFlagPatch is the body of a read-flag update.
type readFlagPatch struct {
	IsRead *bool `json:"is_read"`
}

func (p readFlagPatch) value() (bool, error) {
	if p.IsRead == nil {
		return false, errors.New("is_read is required")
	}
	return *p.IsRead, nil
}

// === transactions ===

func (s *Server) handleListTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := parseFilters(c.Request.URL.Query())
		memberID, ok := f.eq("member_id")
		if !ok {
			badRequest(c, fmt.Errorf("member_id filter is required: %w", errUnsupportedFilter))
			return
		}
		ids, err := s.store.MemberTransactionIDs(c.Request.Context(), memberID)
		if err != nil {
			storeError(c, err)
			return
		}
		type idRow struct {
			ID string `json:"id"`
		}
		out := make([]idRow, 0, len(ids))
		for _, id := range ids {
			out = append(out, idRow{ID: id})
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) handleCreateTransaction() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tx model.Transaction
		if err := c.ShouldBindJSON(&tx); err != nil {
			badRequest(c, err)
			return
		}
		created, err := s.store.CreateTransaction(c.Request.Context(), tx)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, []model.Transaction{created})
	}
}

// === transaction_notifications ===

func (s *Server) handleListTransactionNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := parseFilters(c.Request.URL.Query())

		if id, ok := f.eq("id"); ok {
			n, err := s.store.GetTransactionNotification(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, []model.TransactionNotification{})
				return
			}
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, []model.TransactionNotification{*n})
			return
		}

		var filter store.TransactionNotificationFilter
		ids, hasIDs, err := f.in("transaction_id")
		if err != nil {
			badRequest(c, err)
			return
		}
		if hasIDs {
			filter.TransactionIDs = ids
		}
		if category, ok := f.eq("category"); ok {
			cat := model.Category(category)
			filter.Category = &cat
		}
		if filter.Limit, err = f.limit(); err != nil {
			badRequest(c, err)
			return
		}

		out, err := s.store.ListTransactionNotifications(ctx, filter)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows(out))
	}
}

func (s *Server) handleCountTransactionNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := parseFilters(c.Request.URL.Query())
		if !f.isUnreadOnly() {
			badRequest(c, fmt.Errorf("count needs is_read=eq.false: %w", errUnsupportedFilter))
			return
		}
		n, err := s.store.CountUnreadTransactionNotifications(c.Request.Context())
		if err != nil {
			storeError(c, err)
			return
		}
		c.Header("Content-Range", contentRange(int64(n)))
		c.Status(http.StatusOK)
	}
}

func (s *Server) handleCreateTransactionNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		var n model.TransactionNotification
		if err := c.ShouldBindJSON(&n); err != nil {
			badRequest(c, err)
			return
		}
		created, err := s.store.CreateTransactionNotification(c.Request.Context(), n)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, []model.TransactionNotification{created})
	}
}

func (s *Server) handleUpdateTransactionNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := parseFilters(c.Request.URL.Query())

		var patch readFlagPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		isRead, err := patch.value()
		if err != nil {
			badRequest(c, err)
			return
		}

		if id, ok := f.eq("id"); ok {
			err := s.store.UpdateTransactionNotificationRead(ctx, id, isRead)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, []model.TransactionNotification{})
				return
			}
			if err != nil {
				storeError(c, err)
				return
			}
			n, err := s.store.GetTransactionNotification(ctx, id)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, []model.TransactionNotification{*n})
			return
		}

		ids, hasIDs, err := f.in("transaction_id")
		if err != nil {
			badRequest(c, err)
			return
		}
		if !hasIDs || !f.isUnreadOnly() || !isRead {
			badRequest(c, errUnsupportedFilter)
			return
		}
		changed, err := s.store.MarkTransactionNotificationsRead(ctx, ids)
		if err != nil {
			storeError(c, err)
			return
		}
		c.Header("Content-Range", contentRange(changed))
		c.Status(http.StatusNoContent)
	}
}

// === global_notifications ===

type readFlag struct {
	IsRead bool `json:"is_read"`
}

// embeddedGlobal renders a broadcast with its read-status rows embedded.
type embeddedGlobal struct {
	model.GlobalNotification
	ReadStatus []readFlag `json:"global_notification_read_status"`
}

func (s *Server) handleListGlobalNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := parseFilters(c.Request.URL.Query())

		if id, ok := f.eq("id"); ok {
			n, err := s.store.GetGlobalNotification(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, []model.GlobalNotification{})
				return
			}
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, []model.GlobalNotification{*n})
			return
		}

		var filter store.GlobalNotificationFilter
		if category, ok := f.eq("category"); ok {
			cat := model.Category(category)
			filter.Category = &cat
		}
		var err error
		if filter.Limit, err = f.limit(); err != nil {
			badRequest(c, err)
			return
		}

		if !f.embeds(readStatusTable) {
			out, err := s.store.ListGlobalNotifications(ctx, filter)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows(out))
			return
		}

		memberID, ok := f.eq(readStatusTable + ".member_id")
		if !ok {
			badRequest(c, fmt.Errorf("embedded read status needs a member filter: %w", errUnsupportedFilter))
			return
		}
		views, err := s.store.ListGlobalNotificationsJoined(ctx, memberID, filter)
		if err != nil {
			storeError(c, err)
			return
		}
		out := make([]embeddedGlobal, 0, len(views))
		for _, v := range views {
			row := embeddedGlobal{GlobalNotification: v.GlobalNotification, ReadStatus: []readFlag{}}
			if v.IsRead != nil {
				row.ReadStatus = append(row.ReadStatus, readFlag{IsRead: *v.IsRead})
			}
			out = append(out, row)
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) handleCreateGlobalNotification() gin.HandlerFunc {
	return func(c *gin.Context) {
		var n model.GlobalNotification
		if err := c.ShouldBindJSON(&n); err != nil {
			badRequest(c, err)
			return
		}
		created, err := s.store.CreateGlobalNotification(c.Request.Context(), n)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, []model.GlobalNotification{created})
	}
}

// === global_notification_read_status ===

func (s *Server) handleListReadStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := parseFilters(c.Request.URL.Query())

		memberID, ok := f.eq("member_id")
		if !ok {
			badRequest(c, fmt.Errorf("member_id filter is required: %w", errUnsupportedFilter))
			return
		}

		if nid, ok := f.eq("global_notification_id"); ok {
			rs, err := s.store.GetReadStatus(ctx, nid, memberID)
			if err != nil {
				storeError(c, err)
				return
			}
			if rs == nil {
				c.JSON(http.StatusOK, []model.GlobalReadStatus{})
				return
			}
			c.JSON(http.StatusOK, []model.GlobalReadStatus{*rs})
			return
		}

		out, err := s.store.ListReadStatuses(ctx, memberID)
		if err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows(out))
	}
}

func (s *Server) handleCountReadStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := parseFilters(c.Request.URL.Query())
		memberID, ok := f.eq("member_id")
		if !ok || !f.isUnreadOnly() {
			badRequest(c, errUnsupportedFilter)
			return
		}
		n, err := s.store.CountUnreadReadStatuses(c.Request.Context(), memberID)
		if err != nil {
			storeError(c, err)
			return
		}
		c.Header("Content-Range", contentRange(int64(n)))
		c.Status(http.StatusOK)
	}
}

func (s *Server) handleInsertReadStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var rs model.GlobalReadStatus
		if err := c.ShouldBindJSON(&rs); err != nil {
			badRequest(c, err)
			return
		}
		if err := s.store.InsertReadStatus(c.Request.Context(), rs); err != nil {
			storeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, []model.GlobalReadStatus{rs})
	}
}

func (s *Server) handleUpdateReadStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		f := parseFilters(c.Request.URL.Query())

		var patch readFlagPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		isRead, err := patch.value()
		if err != nil {
			badRequest(c, err)
			return
		}

		memberID, ok := f.eq("member_id")
		if !ok {
			badRequest(c, fmt.Errorf("member_id filter is required: %w", errUnsupportedFilter))
			return
		}

		if nid, ok := f.eq("global_notification_id"); ok {
			err := s.store.UpdateReadStatus(ctx, nid, memberID, isRead)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusOK, []model.GlobalReadStatus{})
				return
			}
			if err != nil {
				storeError(c, err)
				return
			}
			rs, err := s.store.GetReadStatus(ctx, nid, memberID)
			if err != nil {
				storeError(c, err)
				return
			}
			c.JSON(http.StatusOK, []model.GlobalReadStatus{*rs})
			return
		}

		if !f.isUnreadOnly() || !isRead {
			badRequest(c, errUnsupportedFilter)
			return
		}
		changed, err := s.store.MarkReadStatusesRead(ctx, memberID)
		if err != nil {
			storeError(c, err)
			return
		}
		c.Header("Content-Range", contentRange(changed))
		c.Status(http.StatusNoContent)
	}
}
