package inbound

import (
	"github.com/shandysiswandi/hrnotify/internal/notification/usecase"
	"github.com/shandysiswandi/hrnotify/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// GetPreference returns the caller's delivery preferences.
// @Summary Get notification preference
// @Description Returns the channel switches, quiet hours and weekday window of the authenticated user. Users without a stored row get the defaults.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=PreferenceResponse} "Preference"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/preference [get]
func (h *HTTPEndpoint) GetPreference(r *router.Request) (any, error) {
	pref, err := h.uc.GetPreference(r.Context())
	if err != nil {
		return nil, err
	}

	return preferenceResponse(pref), nil
}

// UpdatePreference patches the caller's delivery preferences.
// @Summary Update notification preference
// @Description Applies a partial update. Quiet hours need both bounds; clear_quiet_hours removes them.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdatePreferenceRequest true "Preference patch"
// @Success 200 {object} router.successResponse{data=PreferenceResponse} "Updated preference"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/preference [put]
func (h *HTTPEndpoint) UpdatePreference(r *router.Request) (any, error) {
	var req UpdatePreferenceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	pref, err := h.uc.UpdatePreference(r.Context(), req.input(0))
	if err != nil {
		return nil, err
	}

	return preferenceResponse(pref), nil
}

// UpdateUserPreference patches another user's preferences.
// @Summary Update user notification preference
// @Description Administrator variant of the preference update. Requires notification.preference write permission.
// @Tags Notification Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdatePreferenceRequest true "Preference patch"
// @Success 200 {object} router.successResponse{data=PreferenceResponse} "Updated preference"
// @Failure 400 {object} router.errorResponse "Invalid request"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/users/{id}/preference [put]
func (h *HTTPEndpoint) UpdateUserPreference(r *router.Request) (any, error) {
	userID, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UpdatePreferenceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	pref, err := h.uc.UpdateUserPreference(r.Context(), req.input(userID))
	if err != nil {
		return nil, err
	}

	return preferenceResponse(pref), nil
}

// GetContact returns the addresses notifications are delivered to.
// @Summary Get notification contact
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ContactResponse} "Contact"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/contact [get]
func (h *HTTPEndpoint) GetContact(r *router.Request) (any, error) {
	c, err := h.uc.GetContact(r.Context())
	if err != nil {
		return nil, err
	}

	return contactResponse(c), nil
}

// UpdateContact sets the email address and phone number.
// @Summary Update notification contact
// @Description Phone numbers use E.164 format. An empty string removes the address.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateContactRequest true "Contact payload"
// @Success 200 {object} router.successResponse{data=ContactResponse} "Updated contact"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/contact [put]
func (h *HTTPEndpoint) UpdateContact(r *router.Request) (any, error) {
	var req UpdateContactRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	c, err := h.uc.UpdateContact(r.Context(), usecase.UpdateContactInput{Email: req.Email, Phone: req.Phone})
	if err != nil {
		return nil, err
	}

	return contactResponse(c), nil
}

// RegisterDevice registers a device for push notifications.
// @Summary Register device
// @Description Registers a push token for the authenticated user. Telegram tokens are chat ids.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body RegisterDeviceRequest true "Device registration payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [post]
func (h *HTTPEndpoint) RegisterDevice(r *router.Request) (any, error) {
	var req RegisterDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RegisterDevice(r.Context(), usecase.RegisterDeviceInput{
		Token:    req.DeviceToken,
		Platform: req.Platform,
	})
}

// RemoveDevice removes a device from push notifications.
// @Summary Remove device
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Param request body RemoveDeviceRequest true "Device removal payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Device not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/device [delete]
func (h *HTTPEndpoint) RemoveDevice(r *router.Request) (any, error) {
	var req RemoveDeviceRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.RemoveDevice(r.Context(), req.DeviceToken)
}

// ListInbox returns the most recent in-app notifications.
// @Summary List inbox
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param limit query int false "Maximum items, 1 to 100 (default 20)"
// @Success 200 {object} router.successResponse{data=NotificationsResponse} "Notification list"
// @Failure 400 {object} router.errorResponse "Invalid query parameters"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt("limit", 0)
	if err != nil {
		return nil, err
	}

	items, err := h.uc.ListNotifications(r.Context(), usecase.ListNotificationsInput{
		UnreadOnly: r.GetQueryBool("unread"),
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, NotificationResponse{
			ID:        item.ID,
			Title:     item.Title,
			Message:   item.Message,
			Link:      item.Link,
			Category:  item.Category.String(),
			Priority:  item.Priority.String(),
			Metadata:  item.Metadata,
			IsRead:    item.IsRead,
			ReadAt:    item.ReadAt,
			CreatedAt: item.CreatedAt,
		})
	}

	return NotificationsResponse{Notifications: resp}, nil
}

// UnreadCount returns the number of unread in-app notifications.
// @Summary Unread count
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UnreadCountResponse} "Unread count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/unread-count [get]
func (h *HTTPEndpoint) UnreadCount(r *router.Request) (any, error) {
	n, err := h.uc.UnreadCount(r.Context())
	if err != nil {
		return nil, err
	}

	return UnreadCountResponse{Unread: n}, nil
}

// MarkRead marks a notification as read.
// @Summary Mark inbox read
// @Tags Inbox
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id}/read [patch]
func (h *HTTPEndpoint) MarkRead(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	return nil, h.uc.MarkRead(r.Context(), id)
}

// MarkAllRead marks every unread notification as read.
// @Summary Mark all inbox read
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=MarkAllReadResponse} "Updated count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/read-all [put]
func (h *HTTPEndpoint) MarkAllRead(r *router.Request) (any, error) {
	n, err := h.uc.MarkAllRead(r.Context())
	if err != nil {
		return nil, err
	}

	return MarkAllReadResponse{Updated: n}, nil
}

// ListDeliveries returns the per-channel delivery audit of a notification.
// @Summary List deliveries
// @Description Owners see their own notifications; other callers need notification.delivery read permission.
// @Tags Inbox
// @Security BearerAuth
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} router.successResponse{data=DeliveriesResponse} "Delivery list"
// @Failure 400 {object} router.errorResponse "Invalid notification id"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id}/deliveries [get]
func (h *HTTPEndpoint) ListDeliveries(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	records, err := h.uc.ListDeliveries(r.Context(), id)
	if err != nil {
		return nil, err
	}

	resp := make([]DeliveryResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, DeliveryResponse{
			ID:           rec.ID,
			Channel:      rec.Channel.String(),
			State:        rec.State.String(),
			ScheduledFor: rec.ScheduledFor,
			AttemptCount: rec.AttemptCount,
			LastError:    rec.LastError,
			NextRetryAt:  rec.NextRetryAt,
			SentAt:       rec.SentAt,
			UpdatedAt:    rec.UpdatedAt,
		})
	}

	return DeliveriesResponse{Deliveries: resp}, nil
}

// Submit accepts a notification request from another HR service.
// @Summary Submit notification
// @Description Routes the request to channels and schedules delivery. Returns before any provider is contacted. Requires notification.request create permission.
// @Tags Notification Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Notification request"
// @Success 202 {object} router.successResponse{data=SubmitResponse} "Accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error or no deliverable channel"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/requests [post]
func (h *HTTPEndpoint) Submit(r *router.Request) (any, error) {
	var req SubmitRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.Submit(r.Context(), usecase.SubmitInput{
		RecipientID: req.RecipientID,
		Category:    req.Category,
		Priority:    req.Priority,
		Title:       req.Title,
		Body:        req.Body,
		Link:        req.Link,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	return submitResponse(out), nil
}

func submitResponse(out *usecase.SubmitOutput) SubmitResponse {
	resp := SubmitResponse{
		NotificationID: out.NotificationID,
		Deliveries:     make([]SubmitDeliveryResponse, 0, len(out.Deliveries)),
	}
	for _, d := range out.Deliveries {
		resp.Deliveries = append(resp.Deliveries, SubmitDeliveryResponse{
			ID:           d.DeliveryID,
			Channel:      d.Channel.String(),
			State:        d.State.String(),
			ScheduledFor: d.ScheduledFor,
		})
	}
	return resp
}
