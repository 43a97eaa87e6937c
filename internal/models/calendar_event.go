package models

import "time"

// CalendarEvent links a task to the events created for it in external calendars.
type CalendarEvent struct {
	ID               uint64    `gorm:"primarykey" json:"id"`
	TaskID           uint64    `gorm:"not null;uniqueIndex" json:"task_id"`
	GoogleEventID    *string   `gorm:"type:varchar(255)" json:"google_event_id"`
	MicrosoftEventID *string   `gorm:"type:varchar(255)" json:"microsoft_event_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EventIDs returns the linked external IDs keyed by provider name.
func (e CalendarEvent) EventIDs() map[string]string {
	ids := make(map[string]string, 2)
	if e.GoogleEventID != nil && *e.GoogleEventID != "" {
		ids[CalendarProviderGoogle] = *e.GoogleEventID
	}
	if e.MicrosoftEventID != nil && *e.MicrosoftEventID != "" {
		ids[CalendarProviderMicrosoft] = *e.MicrosoftEventID
	}
	return ids
}

const (
	CalendarProviderGoogle    = "google"
	CalendarProviderMicrosoft = "microsoft"
)
