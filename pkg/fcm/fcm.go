package fcm

import (
	"context"
	"fmt"

	"taskboard/pkg/logging"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	logging.For("fcm").Info("client initialized")
	return &Client{messagingClient: messagingClient}, nil
}

// Notification is the content of one push message
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendToDevices sends one notification to many device tokens and returns
// the tokens FCM rejected as unregistered or invalid.
func (c *Client) SendToDevices(ctx context.Context, tokens []string, n Notification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	log := logging.For("fcm")
	log.Debugf("multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	var rejected []string
	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}
		if messaging.IsUnregistered(resp.Error) || messaging.IsInvalidArgument(resp.Error) {
			rejected = append(rejected, tokens[i])
			continue
		}
		log.Warnf("delivery to device failed: %v", resp.Error)
	}
	return rejected, nil
}
