package worker

import (
	"github.com/fieldops/field-report-service/internal/service"
)

// StartNotificationWorker registers notification handlers on the dispatcher
// the submission service publishes to.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
