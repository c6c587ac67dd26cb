package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const DefaultTimeZone = "America/Sao_Paulo"

var (
	ErrEventTitle = errors.New("event title is required")
	ErrEventTimes = errors.New("event end must be after start")
	ErrTimeZone   = errors.New("unknown time zone")

	// ErrUpstream wraps failures reported by the Calendar API.
	ErrUpstream = errors.New("google calendar request failed")
)

// EventInput is a calendar event to create.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Validate fills the default time zone and checks the rest.
func (in *EventInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrEventTitle
	}
	if in.Start.IsZero() || !in.End.After(in.Start) {
		return ErrEventTimes
	}
	if in.TimeZone == "" {
		in.TimeZone = DefaultTimeZone
	}
	if _, err := time.LoadLocation(in.TimeZone); err != nil {
		return fmt.Errorf("%w: %s", ErrTimeZone, in.TimeZone)
	}
	return nil
}

// CreatedEvent identifies an event on the user's calendar.
type CreatedEvent struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// EventCreator creates an event with a user's token and returns the token
// in use afterwards, which differs from tok when it was refreshed.
type EventCreator interface {
	CreateEvent(ctx context.Context, tok *oauth2.Token, in EventInput) (CreatedEvent, *oauth2.Token, error)
}

// Calendar creates events on the user's primary calendar.
type Calendar struct {
	cfg        *oauth2.Config
	opts       []option.ClientOption
	calendarID string
}

func NewCalendar(cfg *oauth2.Config, opts ...option.ClientOption) *Calendar {
	return &Calendar{cfg: cfg, opts: opts, calendarID: "primary"}
}

func toCalendarEvent(in EventInput) *calendar.Event {
	return &calendar.Event{
		Summary:     in.Title,
		Description: in.Description,
		Start:       &calendar.EventDateTime{DateTime: in.Start.Format(time.RFC3339), TimeZone: in.TimeZone},
		End:         &calendar.EventDateTime{DateTime: in.End.Format(time.RFC3339), TimeZone: in.TimeZone},
	}
}

func (c *Calendar) CreateEvent(ctx context.Context, tok *oauth2.Token, in EventInput) (CreatedEvent, *oauth2.Token, error) {
	ts := c.cfg.TokenSource(ctx, tok)
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, c.opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return CreatedEvent{}, nil, fmt.Errorf("calendar service: %w", err)
	}
	ev, err := svc.Events.Insert(c.calendarID, toCalendarEvent(in)).Context(ctx).Do()
	if err != nil {
		return CreatedEvent{}, nil, fmt.Errorf("insert calendar event: %w", err)
	}
	current, err := ts.Token()
	if err != nil {
		current = tok
	}
	return CreatedEvent{ID: ev.Id, HTMLLink: ev.HtmlLink}, current, nil
}

// Scheduler creates events for users with their stored tokens.
type Scheduler struct {
	tokens  TokenStore
	creator EventCreator
}

func NewScheduler(tokens TokenStore, creator EventCreator) *Scheduler {
	return &Scheduler{tokens: tokens, creator: creator}
}

// Connected reports whether a token is stored for the user.
func (s *Scheduler) Connected(ctx context.Context, userID string) (bool, error) {
	_, err := s.tokens.Load(ctx, userID)
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	return err == nil, err
}

// Connect stores a freshly exchanged token.
func (s *Scheduler) Connect(ctx context.Context, userID string, tok *oauth2.Token) error {
	if err := s.tokens.Save(ctx, userID, tok); err != nil {
		return fmt.Errorf("save calendar token: %w", err)
	}
	return nil
}

// Disconnect forgets the user's token.
func (s *Scheduler) Disconnect(ctx context.Context, userID string) error {
	return s.tokens.Delete(ctx, userID)
}

// Schedule creates the event and writes back a refreshed token.
func (s *Scheduler) Schedule(ctx context.Context, userID string, in EventInput) (CreatedEvent, error) {
	if err := in.Validate(); err != nil {
		return CreatedEvent{}, err
	}
	tok, err := s.tokens.Load(ctx, userID)
	if err != nil {
		return CreatedEvent{}, err
	}
	ev, current, err := s.creator.CreateEvent(ctx, tok, in)
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if current != nil && current.AccessToken != tok.AccessToken {
		if err := s.tokens.Save(ctx, userID, current); err != nil {
			return ev, fmt.Errorf("persist refreshed token: %w", err)
		}
	}
	return ev, nil
}
