package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-member-gate/internal/domain"
)

// PendingRepo is the durable pending-challenge store.
// PK: member_id. DynamoDB TTL on expires_at only reclaims space; validity is
// always decided from issued_at when the item is read.
type PendingRepo struct {
	client    API
	tableName string
}

func NewPendingRepo(client API, tableName string) *PendingRepo {
	return &PendingRepo{client: client, tableName: tableName}
}

func (r *PendingRepo) Put(ctx context.Context, p *domain.PendingVerification) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal pending verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put pending verification: %w", err)
	}
	return nil
}

func (r *PendingRepo) Get(ctx context.Context, memberID int64, now time.Time) (*domain.PendingVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            numKey(fieldMemberID, memberID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get pending verification: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("pending verification %d: %w", memberID, domain.ErrNotFound)
	}
	var p domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal pending verification: %w", err)
	}
	if p.Expired(now) {
		if err := r.Delete(ctx, memberID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("could not evict expired challenge", "member_id", memberID, "err", err)
		}
		return nil, fmt.Errorf("issued at %s: %w", p.IssuedAt.Format(time.RFC3339), domain.ErrChallengeExpired)
	}
	return &p, nil
}

// Delete only succeeds if the item still exists, so exactly one consumer wins.
func (r *PendingRepo) Delete(ctx context.Context, memberID int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      numKey(fieldMemberID, memberID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldMemberID},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("pending verification %d: %w", memberID, domain.ErrNotFound)
		}
		return fmt.Errorf("delete pending verification: %w", err)
	}
	return nil
}
