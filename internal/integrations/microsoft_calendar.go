package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"golang.org/x/oauth2"
)

const microsoftGraphBaseURL = "https://graph.microsoft.com/v1.0"

// graphDateTime is the local-time layout Graph expects alongside a timeZone field.
const graphDateTime = "2006-01-02T15:04:05"

// MicrosoftCalendar talks to the Microsoft Graph events API of the signed-in user.
type MicrosoftCalendar struct {
	rest restClient
}

// NewMicrosoftCalendar authenticates every request with a static bearer token.
func NewMicrosoftCalendar(ctx context.Context, accessToken string) *MicrosoftCalendar {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	return NewMicrosoftCalendarWithClient(client, microsoftGraphBaseURL)
}

func NewMicrosoftCalendarWithClient(client *http.Client, baseURL string) *MicrosoftCalendar {
	return &MicrosoftCalendar{
		rest: restClient{provider: models.CalendarProviderMicrosoft, http: client, baseURL: baseURL},
	}
}

func (m *MicrosoftCalendar) Provider() string {
	return models.CalendarProviderMicrosoft
}

type graphDateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphAttendee struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
	Type         string            `json:"type"`
}

type graphEvent struct {
	ID                         string             `json:"id,omitempty"`
	Subject                    string             `json:"subject,omitempty"`
	Body                       *graphItemBody     `json:"body,omitempty"`
	Start                      *graphDateTimeZone `json:"start,omitempty"`
	End                        *graphDateTimeZone `json:"end,omitempty"`
	Attendees                  []graphAttendee    `json:"attendees,omitempty"`
	IsReminderOn               *bool              `json:"isReminderOn,omitempty"`
	ReminderMinutesBeforeStart *int               `json:"reminderMinutesBeforeStart,omitempty"`
}

func graphTime(t time.Time) *graphDateTimeZone {
	return &graphDateTimeZone{DateTime: t.UTC().Format(graphDateTime), TimeZone: "UTC"}
}

func eventPath(id string) string {
	return "/me/events/" + url.PathEscape(id)
}

func (m *MicrosoftCalendar) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	reminderOn := true
	reminderMinutes := 30
	body := graphEvent{
		Subject:                    event.Title,
		Body:                       &graphItemBody{ContentType: "HTML", Content: event.Description},
		Start:                      graphTime(event.Start),
		End:                        graphTime(event.End),
		IsReminderOn:               &reminderOn,
		ReminderMinutesBeforeStart: &reminderMinutes,
	}
	if event.AttendeeEmail != "" {
		body.Attendees = []graphAttendee{{
			EmailAddress: graphEmailAddress{Address: event.AttendeeEmail},
			Type:         "required",
		}}
	}

	var created graphEvent
	if err := m.rest.do(ctx, http.MethodPost, "/me/events", body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("microsoft graph returned an event without id")
	}
	return created.ID, nil
}

func (m *MicrosoftCalendar) UpdateEvent(ctx context.Context, externalID string, update CalendarEventUpdate) error {
	var body graphEvent
	if update.Title != nil {
		body.Subject = *update.Title
	}
	if update.Description != nil {
		body.Body = &graphItemBody{ContentType: "HTML", Content: *update.Description}
	}
	if update.Start != nil {
		body.Start = graphTime(*update.Start)
	}
	if update.End != nil {
		body.End = graphTime(*update.End)
	}
	return m.rest.do(ctx, http.MethodPatch, eventPath(externalID), body, nil)
}

func (m *MicrosoftCalendar) DeleteEvent(ctx context.Context, externalID string) error {
	err := m.rest.do(ctx, http.MethodDelete, eventPath(externalID), nil, nil)
	if isGone(err) {
		return nil
	}
	return err
}
