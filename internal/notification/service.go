package notification

import (
	"context"
	"encoding/json"
	"fmt"

	activitydomain "taskboard/internal/activity/domain"
	"taskboard/pkg/logging"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// ActivityEvent is the JSON payload published for every recorded activity.
type ActivityEvent struct {
	Type     string                   `json:"type"`
	Activity *activitydomain.Activity `json:"activity"`
}

// Service publishes activity events to a Pub/Sub topic.
type Service struct {
	pubsubClient *pubsub.Client
	topic        *pubsub.Topic
	topicName    string
	log          *logrus.Entry
}

func NewService(ctx context.Context, projectID, topicName, credentialsFile string) (*Service, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	s := &Service{
		pubsubClient: client,
		topicName:    topicName,
		log:          logging.For("pubsub"),
	}
	if err := s.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// ensureTopic creates the topic when it does not exist yet
func (s *Service) ensureTopic(ctx context.Context) error {
	topic := s.pubsubClient.Topic(s.topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return fmt.Errorf("checking topic %s: %w", s.topicName, err)
	}
	if !exists {
		topic, err = s.pubsubClient.CreateTopic(ctx, s.topicName)
		if err != nil {
			return fmt.Errorf("creating topic %s: %w", s.topicName, err)
		}
		s.log.Infof("created topic %s", s.topicName)
	}
	s.topic = topic
	return nil
}

// Publish sends one activity and waits for the server acknowledgement.
func (s *Service) Publish(ctx context.Context, activity *activitydomain.Activity) error {
	data, err := json.Marshal(ActivityEvent{Type: string(activity.Action), Activity: activity})
	if err != nil {
		return err
	}
	result := s.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"action": string(activity.Action),
			"taskId": activity.TaskID,
			"userId": activity.UserID,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing activity %s: %w", activity.ID, err)
	}
	s.log.WithFields(logrus.Fields{"message": id, "action": activity.Action}).Debug("activity published")
	return nil
}

// Close flushes pending messages and releases the client.
func (s *Service) Close() error {
	if s.topic != nil {
		s.topic.Stop()
	}
	return s.pubsubClient.Close()
}
