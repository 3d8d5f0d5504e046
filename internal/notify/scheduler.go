package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/repositories"
	"github.com/chrisdamba/foodautomat/internal/stream"
	"github.com/lucsky/cuid"
)

// forwardSearchDays bounds the next-fire-time search. A schedule with no
// matching day inside the horizon is left paused (NextSendAt unset), not
// treated as an error.
const forwardSearchDays = 7

// FactsProvider supplies the derived user facts audience rules filter on.
// The personalization engine implements it; the scheduler deliberately
// depends only on this interface.
type FactsProvider interface {
	Facts(ctx context.Context, userID string) (*models.UserFacts, error)
}

// Scheduler owns recurring notifications: computing fire times, selecting
// audiences and driving delivery attempts.
type Scheduler struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	facts         FactsProvider
	senders       SenderRegistry
	producer      *stream.Producer
}

func NewScheduler(
	notifications repositories.NotificationRepository,
	users repositories.UserRepository,
	facts FactsProvider,
	senders SenderRegistry,
	producer *stream.Producer,
) *Scheduler {
	return &Scheduler{
		notifications: notifications,
		users:         users,
		facts:         facts,
		senders:       senders,
		producer:      producer,
	}
}

// Schedule stores a new recurring notification and computes its first fire
// time. SendImmediately makes it due at once regardless of the window.
func (s *Scheduler) Schedule(ctx context.Context, template models.NotificationTemplate, window models.TimeWindow, audience models.TargetAudienceRule, maxSendCount *int, sendImmediately bool) (*models.ScheduledNotification, error) {
	now := time.Now()
	n := &models.ScheduledNotification{
		ID:              cuid.New(),
		Template:        template,
		Schedule:        window,
		SendImmediately: sendImmediately,
		Status:          models.NotificationScheduled,
		Audience:        audience,
		MaxSendCount:    maxSendCount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if sendImmediately {
		n.NextSendAt = &now
	} else {
		n.NextSendAt = NextFireTime(window, now)
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}
	return n, nil
}

// Cancel marks a notification so it is never picked up again.
func (s *Scheduler) Cancel(ctx context.Context, id string) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("notification %s not found", id)
	}
	n.Status = models.NotificationCancelled
	n.NextSendAt = nil
	n.UpdatedAt = time.Now()
	return s.notifications.Update(ctx, n)
}

// ProcessDue dispatches every notification due at now. Each notification,
// and each user within a notification, is an isolated unit of work: one
// failure never aborts its siblings.
func (s *Scheduler) ProcessDue(ctx context.Context, now time.Time) ([]models.SendResult, error) {
	due, err := s.notifications.GetDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due notifications: %w", err)
	}

	var results []models.SendResult
	for _, n := range due {
		result, err := s.dispatch(ctx, n, now)
		if err != nil {
			log.Printf("notification %s dispatch failed: %v", n.ID, err)
			n.Status = models.NotificationFailed
			n.NextSendAt = NextFireTime(n.Schedule, now)
			n.UpdatedAt = now
			if updateErr := s.notifications.Update(ctx, n); updateErr != nil {
				log.Printf("notification %s update failed: %v", n.ID, updateErr)
			}
			result = models.SendResult{NotificationID: n.ID, Paused: n.NextSendAt == nil}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Scheduler) dispatch(ctx context.Context, n *models.ScheduledNotification, now time.Time) (models.SendResult, error) {
	result := models.SendResult{NotificationID: n.ID}

	targets, err := s.resolveAudience(ctx, n.Audience, now)
	if err != nil {
		return result, err
	}
	if n.MaxSendCount != nil {
		remaining := *n.MaxSendCount - n.SentCount
		if remaining < 0 {
			remaining = 0
		}
		if len(targets) > remaining {
			targets = targets[:remaining]
		}
	}
	result.Targeted = len(targets)

	for _, user := range targets {
		if err := s.sendToUser(ctx, n, user); err != nil {
			result.Failed++
		} else {
			result.Sent++
		}
	}

	if result.Sent > 0 {
		if err := s.notifications.AddSent(ctx, n.ID, result.Sent); err != nil {
			log.Printf("notification %s sent_count update failed: %v", n.ID, err)
		}
		n.SentCount += result.Sent
	}
	n.LastSentAt = &now
	n.NextSendAt = NextFireTime(n.Schedule, now)
	if n.MaxSendCount != nil && n.SentCount >= *n.MaxSendCount {
		n.Status = models.NotificationSent
		n.NextSendAt = nil
	}
	result.Paused = n.NextSendAt == nil && n.Status == models.NotificationScheduled
	n.UpdatedAt = now
	if err := s.notifications.Update(ctx, n); err != nil {
		return result, fmt.Errorf("failed to update notification %s: %w", n.ID, err)
	}
	return result, nil
}

// sendToUser is the narrowest unit of work: one user, one attempt, one log
// row. All failures are contained here.
func (s *Scheduler) sendToUser(ctx context.Context, n *models.ScheduledNotification, user *models.User) error {
	attempt := &models.NotificationAttempt{
		ID:             cuid.New(),
		NotificationID: n.ID,
		UserID:         user.ID,
		Channel:        n.Template.Channel,
		AttemptedAt:    time.Now(),
	}

	err := s.deliver(ctx, n, user)
	if err != nil {
		attempt.Status = models.AttemptFailed
		attempt.Error = err.Error()
		log.Printf("notification %s to user %s failed: %v", n.ID, user.ID, err)
	} else {
		attempt.Status = models.AttemptSent
	}

	if recordErr := s.notifications.RecordAttempt(ctx, attempt); recordErr != nil {
		log.Printf("failed to record attempt for notification %s: %v", n.ID, recordErr)
	}
	if publishErr := s.producer.PublishJSON(stream.TopicNotificationAttempts, attempt); publishErr != nil {
		log.Printf("failed to publish attempt for notification %s: %v", n.ID, publishErr)
	}
	return err
}

func (s *Scheduler) deliver(ctx context.Context, n *models.ScheduledNotification, user *models.User) error {
	sender, ok := s.senders[n.Template.Channel]
	if !ok {
		return fmt.Errorf("no sender registered for channel %s", n.Template.Channel)
	}
	title := Personalize(n.Template.Title, user)
	body := Personalize(n.Template.Body, user)
	return sender.Send(ctx, targetFor(n.Template.Channel, user), title, body)
}

func (s *Scheduler) resolveAudience(ctx context.Context, audience models.TargetAudienceRule, now time.Time) ([]*models.User, error) {
	users, err := s.users.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	var targets []*models.User
	for _, user := range users {
		facts, err := s.facts.Facts(ctx, user.ID)
		if err != nil {
			// one user's missing facts must not sink the batch
			log.Printf("facts for user %s unavailable: %v", user.ID, err)
			continue
		}
		if audience.Matches(*facts, now) {
			targets = append(targets, user)
		}
	}
	return targets, nil
}

// Personalize substitutes the {name}, {email} and {phone} placeholders.
// Plain string replacement, no templating language.
func Personalize(text string, user *models.User) string {
	return strings.NewReplacer(
		"{name}", user.Name,
		"{email}", user.Email,
		"{phone}", user.Phone,
	).Replace(text)
}

func targetFor(channel models.NotificationChannel, user *models.User) string {
	switch channel {
	case models.ChannelEmail:
		return user.Email
	case models.ChannelSMS:
		return user.Phone
	default:
		// push and in-app route by user id
		return user.ID
	}
}

// NextFireTime searches forward up to forwardSearchDays calendar days for
// the first day-of-week/time-of-day match strictly after now. Nil means no
// slot exists inside the horizon and the notification is paused.
func NextFireTime(schedule models.TimeWindow, now time.Time) *time.Time {
	for offset := 0; offset <= forwardSearchDays; offset++ {
		day := now.AddDate(0, 0, offset)
		if !schedule.ContainsDay(day.Weekday()) {
			continue
		}
		candidate := time.Date(day.Year(), day.Month(), day.Day(),
			schedule.StartMinute/60, schedule.StartMinute%60, 0, 0, now.Location())
		if candidate.After(now) {
			return &candidate
		}
	}
	return nil
}
