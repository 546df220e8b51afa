package inbound

import (
	"net/http"

	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, enforcer router.Enforcer) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/notification/preference", end.GetPreference)
	r.PUT("/api/v1/notification/preference", end.UpdatePreference)

	r.GET("/api/v1/notification/contact", end.GetContact)
	r.PUT("/api/v1/notification/contact", end.UpdateContact)
	r.POST("/api/v1/notification/device", end.RegisterDevice)
	r.DELETE("/api/v1/notification/device", end.RemoveDevice)

	r.GET("/api/v1/notification/inbox", end.ListInbox)
	r.GET("/api/v1/notification/inbox/unread-count", end.UnreadCount)
	r.PATCH("/api/v1/notification/inbox/:id/read", end.MarkRead)
	r.PUT("/api/v1/notification/inbox/read-all", end.MarkAllRead)
	r.GET("/api/v1/notification/inbox/:id/deliveries", end.ListDeliveries)

	r.GETRaw("/api/v1/notification/stream", http.HandlerFunc(end.StreamNotifications))

	// internal callers and administrators
	r.POST("/api/v1/notification/requests", end.Submit,
		router.RequirePermission(enforcer, usecase.ObjRequest, usecase.ActCreate))
	r.PUT("/api/v1/notification/users/:id/preference", end.UpdateUserPreference)
}
