package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	authrepo "taskboard/internal/auth/repository"
	"taskboard/internal/task/domain"
	"taskboard/internal/task/repository"
	"taskboard/pkg/fcm"
	"taskboard/pkg/logging"

	"github.com/sirupsen/logrus"
)

// Sender delivers a push notification to device tokens and returns the
// tokens that should be forgotten.
type Sender interface {
	SendToDevices(ctx context.Context, tokens []string, n fcm.Notification) ([]string, error)
}

// TaskReminderScheduler sends push reminders for tasks approaching their due date
type TaskReminderScheduler struct {
	taskRepo   repository.TaskRepository
	deviceRepo authrepo.DeviceTokenRepository
	sender     Sender
	interval   time.Duration
	lead       time.Duration
	now        func() time.Time
	log        *logrus.Entry

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewTaskReminderScheduler creates a scheduler that ticks every interval and
// reminds about tasks due within lead.
func NewTaskReminderScheduler(
	taskRepo repository.TaskRepository,
	deviceRepo authrepo.DeviceTokenRepository,
	sender Sender,
	interval, lead time.Duration,
) *TaskReminderScheduler {
	return &TaskReminderScheduler{
		taskRepo:   taskRepo,
		deviceRepo: deviceRepo,
		sender:     sender,
		interval:   interval,
		lead:       lead,
		now:        func() time.Time { return time.Now().UTC() },
		log:        logging.For("reminders"),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *TaskReminderScheduler) Start(ctx context.Context) {
	if s.sender == nil {
		s.log.Info("push sender not configured, reminders disabled")
		close(s.done)
		return
	}

	s.log.Infof("starting reminder scheduler (interval %s, lead %s)", s.interval, s.lead)

	go func() {
		defer close(s.done)

		// Run immediately on start
		s.CheckAndSendReminders(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.CheckAndSendReminders(ctx)
			case <-ctx.Done():
				return
			case <-s.stopChan:
				s.log.Info("scheduler stopped")
				return
			}
		}
	}()
}

// Stop stops the loop and waits for the current pass to finish
func (s *TaskReminderScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	<-s.done
}

// CheckAndSendReminders runs one pass: every unfinished task due within the
// lead window is reminded once.
func (s *TaskReminderScheduler) CheckAndSendReminders(ctx context.Context) {
	tasks, err := s.taskRepo.FindDueForReminder(ctx, s.now().Add(s.lead))
	if err != nil {
		s.log.Errorf("error finding due tasks: %v", err)
		return
	}
	if len(tasks) == 0 {
		return
	}

	s.log.Debugf("found %d tasks to remind", len(tasks))
	for _, task := range tasks {
		s.remind(ctx, task)
	}
}

func (s *TaskReminderScheduler) remind(ctx context.Context, task *domain.Task) {
	log := s.log.WithFields(logrus.Fields{"task": task.ID, "user": task.CreatedBy})

	tokens, err := s.deviceRepo.GetTokensByUserID(ctx, task.CreatedBy)
	if err != nil {
		log.Errorf("error getting device tokens: %v", err)
		return
	}

	if len(tokens) > 0 {
		tokenStrings := make([]string, 0, len(tokens))
		for _, t := range tokens {
			tokenStrings = append(tokenStrings, t.Token)
		}

		rejected, err := s.sender.SendToDevices(ctx, tokenStrings, buildNotification(task))
		if err != nil {
			log.Errorf("error sending reminder: %v", err)
		} else {
			log.Infof("sent reminder to %d devices", len(tokenStrings)-len(rejected))
		}

		for _, token := range rejected {
			if err := s.deviceRepo.DeleteToken(ctx, token); err != nil {
				log.Warnf("error removing rejected device token: %v", err)
			}
		}
	}

	// Mark as sent even on failure so a broken device does not get spammed
	if err := s.taskRepo.MarkReminderSent(ctx, task.ID); err != nil {
		log.Errorf("error marking reminder as sent: %v", err)
	}
}

func buildNotification(task *domain.Task) fcm.Notification {
	body := task.Description
	if body == "" {
		body = "This task is due soon"
	}
	if task.DueDate != nil {
		body = fmt.Sprintf("%s\nDue: %s", body, task.DueDate.Format("2006-01-02 15:04 MST"))
	}

	title := "Reminder: " + task.Title
	if task.Priority == domain.PriorityHigh {
		title = "[high] " + title
	}

	return fcm.Notification{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":     "task_reminder",
			"task_id":  task.ID,
			"priority": string(task.Priority),
			"status":   string(task.Status),
		},
	}
}
