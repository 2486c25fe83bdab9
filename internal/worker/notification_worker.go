package worker

import (
	"github.com/civigo/citizen-portal/internal/service"
)

// StartNotificationWorker registers queue event handlers that feed the
// notification store.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
