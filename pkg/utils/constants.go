package utils

const (
	MonitorCreated      = "Monitor created successfully"
	MonitorPaused       = "Monitor paused successfully"
	MonitorResumed      = "Monitor resumed successfully"
	MonitorDeleted      = "Monitor deleted successfully"
	NotificationCreated = "Notification created successfully"
	NotificationDeleted = "Notification deleted successfully"
	NotificationTested  = "Notification test sent successfully"
)
