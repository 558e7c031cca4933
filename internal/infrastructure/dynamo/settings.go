package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-member-gate/internal/domain"
)

// SettingsRepo stores the guild settings as one item per scope.
// PK: scope. Every setting key is a string attribute named after the key.
type SettingsRepo struct {
	client    API
	tableName string
	scope     string
	now       func() time.Time
}

func NewSettingsRepo(client API, tableName, scope string) *SettingsRepo {
	return &SettingsRepo{client: client, tableName: tableName, scope: scope, now: time.Now}
}

// GetAll returns a snapshot read with strong consistency, so a Set that
// returned is always visible to the next operation.
func (r *SettingsRepo) GetAll(ctx context.Context) (domain.GuildSettings, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldScope, r.scope),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.GuildSettings{}, fmt.Errorf("get settings: %w", err)
	}
	values := make(map[string]string, len(domain.SettingKeys))
	for _, key := range domain.SettingKeys {
		switch av := out.Item[key].(type) {
		case *types.AttributeValueMemberS:
			values[key] = av.Value
		case *types.AttributeValueMemberN:
			values[key] = av.Value
		}
	}
	return domain.ParseGuildSettings(values)
}

// Set upserts one key and returns once DynamoDB has acknowledged the write.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	if !domain.IsSettingKey(key) {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrBadRequest)
	}
	ue, err := buildUpdateExpr(map[string]any{
		key:            value,
		fieldUpdatedAt: r.now().Unix(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldScope, r.scope),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		return fmt.Errorf("update setting %s: %w", key, err)
	}
	return nil
}
