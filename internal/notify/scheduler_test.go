package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFacts serves canned facts per user; unknown users get empty facts.
type stubFacts struct {
	byUser map[string]*models.UserFacts
}

func (s *stubFacts) Facts(ctx context.Context, userID string) (*models.UserFacts, error) {
	if f, ok := s.byUser[userID]; ok {
		return f, nil
	}
	return &models.UserFacts{UserID: userID, IsNewUser: true}, nil
}

// flakySender fails for the user IDs listed in failFor.
type flakySender struct {
	failFor map[string]bool
	sent    []string
}

func (f *flakySender) Send(ctx context.Context, target, title, body string) error {
	if f.failFor[target] {
		return errors.New("provider rejected message")
	}
	f.sent = append(f.sent, target)
	return nil
}

func mondayMorningWindow() models.TimeWindow {
	return models.TimeWindow{
		DaysOfWeek:  []time.Weekday{time.Monday},
		StartMinute: 540, // 09:00
		EndMinute:   540,
	}
}

func TestNextFireTimeSkipsToNextMatchingDay(t *testing.T) {
	// Monday 10:00, an hour past today's slot
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	next := NextFireTime(mondayMorningWindow(), now)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), *next)
}

func TestNextFireTimeSameDayWhenStillAhead(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	next := NextFireTime(mondayMorningWindow(), now)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), *next)
}

func TestNextFireTimeNoMatchingDayReturnsNil(t *testing.T) {
	window := models.TimeWindow{DaysOfWeek: nil, StartMinute: 540, EndMinute: 540}
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	assert.Nil(t, NextFireTime(window, now))
}

func TestScheduleImmediateIsDueAtOnce(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	s := NewScheduler(notifications, users, &stubFacts{}, SenderRegistry{}, nil)

	n, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelInApp,
		Title:   "hi",
	}, mondayMorningWindow(), models.TargetAudienceRule{}, nil, true)
	require.NoError(t, err)
	require.NotNil(t, n.NextSendAt)

	due, err := notifications.GetDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestProcessDueSendsAndReschedules(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", Name: "Ada", IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u2", Name: "Ben", IsActive: true}))

	sender := &flakySender{}
	s := NewScheduler(notifications, users, &stubFacts{}, SenderRegistry{
		models.ChannelInApp: sender,
	}, nil)

	_, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelInApp,
		Title:   "Hello {name}",
		Body:    "Lunch is on",
	}, mondayMorningWindow(), models.TargetAudienceRule{}, nil, true)
	require.NoError(t, err)

	// well past the immediate due time
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	results, err := s.ProcessDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Targeted)
	assert.Equal(t, 2, results[0].Sent)
	assert.Zero(t, results[0].Failed)
	assert.ElementsMatch(t, []string{"u1", "u2"}, sender.sent)

	// rescheduled for the following Monday 09:00
	due, err := notifications.GetDue(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestProcessDuePartialFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &models.User{ID: "u1", IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u2", IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u3", IsActive: true}))

	sender := &flakySender{failFor: map[string]bool{"u2": true}}
	s := NewScheduler(notifications, users, &stubFacts{}, SenderRegistry{
		models.ChannelPush: sender,
	}, nil)

	_, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelPush,
	}, mondayMorningWindow(), models.TargetAudienceRule{}, nil, true)
	require.NoError(t, err)

	results, err := s.ProcessDue(ctx, time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Targeted)
	assert.Equal(t, 2, results[0].Sent)
	assert.Equal(t, 1, results[0].Failed)

	// every user got an attempt row, failures included
	attempts := notifications.Attempts()
	require.Len(t, attempts, 3)
	failed := 0
	for _, a := range attempts {
		if a.Status == models.AttemptFailed {
			failed++
			assert.NotEmpty(t, a.Error)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestProcessDueRespectsMaxSendCount(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, users.Create(ctx, &models.User{ID: id, IsActive: true}))
	}

	sender := &flakySender{}
	s := NewScheduler(notifications, users, &stubFacts{}, SenderRegistry{
		models.ChannelInApp: sender,
	}, nil)

	maxSend := 2
	n, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelInApp,
	}, mondayMorningWindow(), models.TargetAudienceRule{}, &maxSend, true)
	require.NoError(t, err)

	results, err := s.ProcessDue(ctx, time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Targeted)
	assert.Equal(t, 2, results[0].Sent)

	// cap reached: marked sent and never due again
	got, err := notifications.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationSent, got.Status)
	assert.Nil(t, got.NextSendAt)
}

func TestProcessDueFiltersAudience(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	require.NoError(t, users.Create(ctx, &models.User{ID: "loyal", IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "casual", IsActive: true}))

	facts := &stubFacts{byUser: map[string]*models.UserFacts{
		"loyal":  {UserID: "loyal", OrderFrequency: models.FrequencyHigh},
		"casual": {UserID: "casual", OrderFrequency: models.FrequencyLow},
	}}
	sender := &flakySender{}
	s := NewScheduler(notifications, users, facts, SenderRegistry{
		models.ChannelInApp: sender,
	}, nil)

	high := models.FrequencyHigh
	_, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelInApp,
	}, mondayMorningWindow(), models.TargetAudienceRule{UserFrequency: &high}, nil, true)
	require.NoError(t, err)

	results, err := s.ProcessDue(ctx, time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Targeted)
	assert.Equal(t, []string{"loyal"}, sender.sent)
}

func TestCancelStopsFutureSends(t *testing.T) {
	ctx := context.Background()
	notifications := memory.NewNotificationRepository()
	users := memory.NewUserRepository()
	s := NewScheduler(notifications, users, &stubFacts{}, SenderRegistry{}, nil)

	n, err := s.Schedule(ctx, models.NotificationTemplate{
		Channel: models.ChannelInApp,
	}, mondayMorningWindow(), models.TargetAudienceRule{}, nil, true)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(ctx, n.ID))

	due, err := notifications.GetDue(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestPersonalizeSubstitutesPlaceholders(t *testing.T) {
	user := &models.User{Name: "Ada", Email: "ada@example.com", Phone: "+447700900000"}
	got := Personalize("Hi {name}, we mailed {email}", user)
	assert.Equal(t, "Hi Ada, we mailed ada@example.com", got)
	assert.Equal(t, "plain text", Personalize("plain text", user))
}
