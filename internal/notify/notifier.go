// Package notify sends signup confirmations through AWS SES and SNS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EmailSender is satisfied by the SES client wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Publisher is satisfied by the SNS client wrapper.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// EmailNotifier mails a confirmation to the address that signed up.
type EmailNotifier struct {
	sender EmailSender
	from   string
}

func NewEmailNotifier(sender EmailSender, from string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from}
}

func (n *EmailNotifier) Name() string {
	return "ses-confirmation"
}

// OnSignup skips values that cannot be a mailbox; signup itself accepts any string.
func (n *EmailNotifier) OnSignup(ctx context.Context, event models.SignupEvent) error {
	if !strings.Contains(event.Email, "@") {
		return nil
	}

	subject := fmt.Sprintf("You're signed up for %s", event.ActivityName)
	body := fmt.Sprintf(
		"Hi,\n\nYou are now signed up for %s at Mergington High School.\n\nSignup reference: %s\n",
		event.ActivityName, event.ID,
	)

	_, err := n.sender.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{event.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	return nil
}

// TopicPublisher publishes each signup event as JSON to an SNS topic.
type TopicPublisher struct {
	publisher Publisher
	topicARN  string
}

func NewTopicPublisher(publisher Publisher, topicARN string) *TopicPublisher {
	return &TopicPublisher{publisher: publisher, topicARN: topicARN}
}

func (p *TopicPublisher) Name() string {
	return "sns-signup-event"
}

func (p *TopicPublisher) OnSignup(ctx context.Context, event models.SignupEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode signup event: %w", err)
	}

	_, err = p.publisher.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
		Subject:  aws.String("activity_signup"),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"activity": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.ActivityName),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish signup event: %w", err)
	}
	return nil
}
