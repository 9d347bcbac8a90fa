package entity

// Notification type constants
const (
	NotificationTypeSMS   = "SMS"
	NotificationTypeEmail = "EMAIL"
	NotificationTypePhone = "PHONE"
	NotificationTypeInApp = "IN_APP"
)

// Notification status constants
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
)

// Currencies accepted for issuing companies
const (
	CurrencyFCFA = "FCFA"
	CurrencyEUR  = "EUR"
	CurrencyUSD  = "USD"
)
