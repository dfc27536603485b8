package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/cyclesense/internal/cycle"
	"github.com/terraincognita07/cyclesense/internal/logging"
	"github.com/terraincognita07/cyclesense/internal/metrics"
	"github.com/terraincognita07/cyclesense/internal/models"
	"go.uber.org/zap"
)

const (
	ReminderKindPeriod        = "period"
	ReminderKindFertileWindow = "fertile_window"

	defaultReminderInterval = 6 * time.Hour
	maxRememberedReminders  = 500
)

type Notifier interface {
	Notify(ctx context.Context, chatID string, message string) error
}

type ReminderUserStore interface {
	ListReminderRecipients(ctx context.Context) ([]models.User, error)
}

type ReminderOptions struct {
	Interval      time.Duration
	DefaultChatID string
	Location      *time.Location
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	Clock         func() time.Time
}

type ReminderService struct {
	users         ReminderUserStore
	notifier      Notifier
	interval      time.Duration
	defaultChatID string
	location      *time.Location
	metrics       *metrics.Metrics
	logger        *zap.Logger
	clock         func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewReminderService(users ReminderUserStore, notifier Notifier, options ReminderOptions) *ReminderService {
	if options.Interval <= 0 {
		options.Interval = defaultReminderInterval
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	return &ReminderService{
		users:         users,
		notifier:      notifier,
		interval:      options.Interval,
		defaultChatID: strings.TrimSpace(options.DefaultChatID),
		location:      options.Location,
		metrics:       options.Metrics,
		logger:        logging.OrNop(options.Logger).Named("reminders"),
		clock:         options.Clock,
		sent:          make(map[string]time.Time),
	}
}

// Start runs a pass immediately and then on every tick until ctx is done.
// The returned channel closes once the loop has exited.
func (service *ReminderService) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(service.interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		service.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				service.RunOnce(ctx)
			}
		}
	}()

	return done
}

// RunOnce evaluates every opted-in user and returns how many reminders went out.
func (service *ReminderService) RunOnce(ctx context.Context) int {
	recipients, err := service.users.ListReminderRecipients(ctx)
	if err != nil {
		service.logger.Error("fetch reminder recipients failed", zap.Error(err))
		return 0
	}

	now := service.clock().In(service.location)
	today := cycle.Day(now)
	delivered := 0

	for _, user := range recipients {
		if ctx.Err() != nil {
			return delivered
		}

		chatID := strings.TrimSpace(user.TelegramChatID)
		if chatID == "" {
			chatID = service.defaultChatID
		}
		if chatID == "" {
			continue
		}

		estimate := cycle.Estimate(user.LastPeriodDate, user.AverageCycleLength, now)
		if !estimate.Known() {
			continue
		}

		for _, reminder := range dueReminders(user, estimate, today) {
			if !service.shouldSend(reminder.kind, user.ID, today) {
				continue
			}
			if err := service.notifier.Notify(ctx, chatID, reminder.message); err != nil {
				service.logger.Warn("send reminder failed",
					zap.String("kind", reminder.kind),
					zap.Uint("user_id", user.ID),
					zap.Error(err),
				)
				service.forget(reminder.kind, user.ID, today)
				continue
			}
			service.metrics.ObserveReminder(reminder.kind)
			delivered++
		}
	}

	return delivered
}

type reminder struct {
	kind    string
	message string
}

func dueReminders(user models.User, estimate cycle.FertilityEstimate, today time.Time) []reminder {
	due := make([]reminder, 0, 2)

	if estimate.DaysUntilPeriod != nil && *estimate.DaysUntilPeriod == user.ReminderDaysBefore {
		due = append(due, reminder{
			kind:    ReminderKindPeriod,
			message: periodReminderMessage(user.ReminderDaysBefore, *estimate.NextPeriodDate),
		})
	}

	if estimate.FertileWindowStart != nil && cycle.SameDay(today, *estimate.FertileWindowStart) {
		due = append(due, reminder{
			kind: ReminderKindFertileWindow,
			message: fmt.Sprintf("CycleSense reminder: your fertile window starts today (%s) and runs through %s.",
				estimate.FertileWindowStart.Format("Jan 2"),
				estimate.FertileWindowEnd.Format("Jan 2"),
			),
		})
	}

	return due
}

func periodReminderMessage(daysBefore int, nextPeriod time.Time) string {
	switch daysBefore {
	case 0:
		return fmt.Sprintf("CycleSense reminder: your period is expected today (%s).", nextPeriod.Format("Jan 2"))
	case 1:
		return fmt.Sprintf("CycleSense reminder: your period is expected tomorrow (%s).", nextPeriod.Format("Jan 2"))
	default:
		return fmt.Sprintf("CycleSense reminder: your period is expected in %d days on %s.", daysBefore, nextPeriod.Format("Jan 2"))
	}
}

func reminderKey(kind string, userID uint, today time.Time) string {
	return fmt.Sprintf("%s:%d:%s", kind, userID, cycle.FormatDay(today))
}

func (service *ReminderService) shouldSend(kind string, userID uint, today time.Time) bool {
	service.mu.Lock()
	defer service.mu.Unlock()

	key := reminderKey(kind, userID, today)
	if _, ok := service.sent[key]; ok {
		return false
	}
	if len(service.sent) >= maxRememberedReminders {
		for existing, day := range service.sent {
			if day.Before(today) {
				delete(service.sent, existing)
			}
		}
	}
	service.sent[key] = today
	return true
}

func (service *ReminderService) forget(kind string, userID uint, today time.Time) {
	service.mu.Lock()
	defer service.mu.Unlock()

	delete(service.sent, reminderKey(kind, userID, today))
}
