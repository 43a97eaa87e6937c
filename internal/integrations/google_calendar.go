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

const (
	googleCalendarBaseURL = "https://www.googleapis.com/calendar/v3"
	googleAuthURL         = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL        = "https://oauth2.googleapis.com/token"
	googleCalendarScope   = "https://www.googleapis.com/auth/calendar.events"
)

// GoogleCalendarConfig holds OAuth2 client credentials and a long-lived
// refresh token for the calendar owner.
type GoogleCalendarConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

func (c GoogleCalendarConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// GoogleCalendar talks to the Google Calendar v3 REST API.
type GoogleCalendar struct {
	rest       restClient
	calendarID string
}

// NewGoogleCalendar builds an adapter whose HTTP client refreshes access
// tokens automatically. ctx scopes token refreshes and should outlive requests.
func NewGoogleCalendar(ctx context.Context, cfg GoogleCalendarConfig) *GoogleCalendar {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
		Scopes: []string{googleCalendarScope},
	}
	client := oauthCfg.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	return NewGoogleCalendarWithClient(client, googleCalendarBaseURL, cfg.CalendarID)
}

// NewGoogleCalendarWithClient uses an already-authorised client against baseURL.
func NewGoogleCalendarWithClient(client *http.Client, baseURL, calendarID string) *GoogleCalendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{
		rest:       restClient{provider: models.CalendarProviderGoogle, http: client, baseURL: baseURL},
		calendarID: calendarID,
	}
}

func (g *GoogleCalendar) Provider() string {
	return models.CalendarProviderGoogle
}

type googleEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type googleAttendee struct {
	Email string `json:"email"`
}

type googleReminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type googleReminders struct {
	UseDefault bool             `json:"useDefault"`
	Overrides  []googleReminder `json:"overrides"`
}

type googleEvent struct {
	ID          string           `json:"id,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Description string           `json:"description,omitempty"`
	Start       *googleEventTime `json:"start,omitempty"`
	End         *googleEventTime `json:"end,omitempty"`
	Attendees   []googleAttendee `json:"attendees,omitempty"`
	Reminders   *googleReminders `json:"reminders,omitempty"`
}

func googleTime(t time.Time) *googleEventTime {
	return &googleEventTime{DateTime: t.UTC().Format(time.RFC3339), TimeZone: "UTC"}
}

func (g *GoogleCalendar) eventsPath(eventID string) string {
	path := "/calendars/" + url.PathEscape(g.calendarID) + "/events"
	if eventID != "" {
		path += "/" + url.PathEscape(eventID)
	}
	return path + "?sendUpdates=all"
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, event CalendarEvent) (string, error) {
	body := googleEvent{
		Summary:     event.Title,
		Description: event.Description,
		Start:       googleTime(event.Start),
		End:         googleTime(event.End),
		Reminders: &googleReminders{
			Overrides: []googleReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 30},
			},
		},
	}
	if event.AttendeeEmail != "" {
		body.Attendees = []googleAttendee{{Email: event.AttendeeEmail}}
	}

	var created googleEvent
	if err := g.rest.do(ctx, http.MethodPost, g.eventsPath(""), body, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("google calendar returned an event without id")
	}
	return created.ID, nil
}

func (g *GoogleCalendar) UpdateEvent(ctx context.Context, externalID string, update CalendarEventUpdate) error {
	var body googleEvent
	if update.Title != nil {
		body.Summary = *update.Title
	}
	if update.Description != nil {
		body.Description = *update.Description
	}
	if update.Start != nil {
		body.Start = googleTime(*update.Start)
	}
	if update.End != nil {
		body.End = googleTime(*update.End)
	}
	return g.rest.do(ctx, http.MethodPatch, g.eventsPath(externalID), body, nil)
}

func (g *GoogleCalendar) DeleteEvent(ctx context.Context, externalID string) error {
	err := g.rest.do(ctx, http.MethodDelete, g.eventsPath(externalID), nil, nil)
	if isGone(err) {
		return nil
	}
	return err
}
