// Package events publishes generation lifecycle events to SNS.
package events

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclient "content-creator/internal/common/aws"
	apperrors "content-creator/internal/common/errors"
	"content-creator/internal/models"
)

// Publisher sends ContentGeneratedEvent messages to one topic.
type Publisher struct {
	client   awsclient.SNSPublisher
	topicARN string
}

func NewPublisher(client awsclient.SNSPublisher, topicARN string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN}
}

func (p *Publisher) Publish(ctx context.Context, ev models.ContentGeneratedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return apperrors.NewEventPublishFailedError(ev.Type, err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(ev.Type),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.Type),
			},
			"content_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(ev.ContentType),
			},
		},
	})
	if err != nil {
		return apperrors.NewEventPublishFailedError(ev.Type, err)
	}
	return nil
}
