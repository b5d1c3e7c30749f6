package calendar

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"timetable-sync-service/internal/domain/entity"
	"timetable-sync-service/internal/domain/repository"
	"timetable-sync-service/pkg/logger"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleCalendarService implements CalendarRepository against the Google
// Calendar v3 API. Every call is a single attempt under a timeout; the
// HTTP status decides whether a failure is reported transient or permanent.
type GoogleCalendarService struct {
	service     *gcal.Service
	callTimeout time.Duration
	logger      logger.Logger
}

// NewGoogleCalendarService creates a new Google Calendar service
func NewGoogleCalendarService(ctx context.Context, tokenSource oauth2.TokenSource, callTimeout time.Duration, logger logger.Logger) (*GoogleCalendarService, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &GoogleCalendarService{
		service:     service,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// CreateEvent inserts a calendar event and returns its external id
func (s *GoogleCalendarService) CreateEvent(ctx context.Context, calendarID string, event entity.TimetableEvent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	created, err := s.service.Events.Insert(calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", classify("create", err)
	}

	s.logger.Debug("Remote event created", "externalId", created.Id, "summary", created.Summary)
	return created.Id, nil
}

// UpdateEvent overwrites the remote event behind externalEventID
func (s *GoogleCalendarService) UpdateEvent(ctx context.Context, calendarID, externalEventID string, event entity.TimetableEvent) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	_, err := s.service.Events.Update(calendarID, externalEventID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return classify("update", err)
	}
	return nil
}

// DeleteEvent removes the remote event behind externalEventID. A remote
// 404/410 comes back as entity.ErrRemoteNotFound so callers can treat the
// deletion as already done.
func (s *GoogleCalendarService) DeleteEvent(ctx context.Context, calendarID, externalEventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	if err := s.service.Events.Delete(calendarID, externalEventID).Context(ctx).Do(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			return entity.ErrRemoteNotFound
		}
		return classify("delete", err)
	}
	return nil
}

func toGoogleEvent(event entity.TimetableEvent) *gcal.Event {
	tz := event.StartTime.Location().String()
	return &gcal.Event{
		Summary:     event.Subject,
		Location:    event.Room,
		Description: event.RawSourceRow,
		Start: &gcal.EventDateTime{
			DateTime: event.StartTime.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: event.EndTime.Format(time.RFC3339),
			TimeZone: tz,
		},
	}
}

func classify(op string, err error) error {
	transient := false

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		transient = apiErr.Code >= http.StatusInternalServerError ||
			apiErr.Code == http.StatusTooManyRequests ||
			apiErr.Code == http.StatusRequestTimeout
	} else {
		// no structured API error: timeouts and transport trouble
		var netErr net.Error
		transient = errors.Is(err, context.DeadlineExceeded) ||
			(errors.As(err, &netErr) && netErr.Timeout())
	}

	return &entity.RemoteError{Op: op, Err: err, Transient: transient}
}

var _ repository.CalendarRepository = (*GoogleCalendarService)(nil)
