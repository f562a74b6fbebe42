package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// maxBatchGetAttempts bounds how often UnprocessedKeys are re-requested
const maxBatchGetAttempts = 3

var ErrItemNotFound = errors.New("item not found")

// DynamoAPI is the part of *dynamodb.Client the services use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

type DynamoService struct {
	Client DynamoAPI
	Logger *zap.Logger
}

// LoadAWSConfig loads the shared AWS configuration for region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// InitializeDynamoDBClient initializes the DynamoDB client. A non-empty
// endpoint points the client at a local DynamoDB.
func InitializeDynamoDBClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

func (ds *DynamoService) logger() *zap.Logger {
	if ds.Logger == nil {
		return zap.NewNop()
	}
	return ds.Logger
}

// GetItem retrieves an item from DynamoDB
func (ds *DynamoService) GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	output, err := ds.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from table '%s': %w", tableName, err)
	}

	if output.Item == nil {
		return nil, ErrItemNotFound
	}

	return output.Item, nil
}

func (ds *DynamoService) PutItem(ctx context.Context, tableName string, item interface{}) error {
	marshaledItem, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = ds.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      marshaledItem,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in table '%s': %w", tableName, err)
	}
	ds.logger().Debug("item stored", zap.String("table", tableName))
	return nil
}

// UpdateRequest describes a single UpdateItem call. Condition is optional.
type UpdateRequest struct {
	Key              map[string]types.AttributeValue
	UpdateExpression string
	Condition        string
	Names            map[string]string
	Values           map[string]types.AttributeValue
}

// UpdateItem applies req and returns the item as it is after the update.
// A failed condition is returned as *types.ConditionalCheckFailedException
// wrapped in the error chain.
func (ds *DynamoService) UpdateItem(ctx context.Context, tableName string, req UpdateRequest) (map[string]types.AttributeValue, error) {
	if len(req.Key) == 0 {
		return nil, errors.New("update failed: key cannot be empty")
	}
	if req.UpdateExpression == "" {
		return nil, errors.New("update failed: updateExpression cannot be empty")
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(tableName),
		Key:                       req.Key,
		UpdateExpression:          aws.String(req.UpdateExpression),
		ExpressionAttributeNames:  req.Names,
		ExpressionAttributeValues: req.Values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if req.Condition != "" {
		input.ConditionExpression = aws.String(req.Condition)
	}

	output, err := ds.Client.UpdateItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to update item in table '%s': %w", tableName, err)
	}

	if output.Attributes == nil {
		return map[string]types.AttributeValue{}, nil
	}
	return output.Attributes, nil
}

// ScanAll reads every item of the table, following pagination.
func (ds *DynamoService) ScanAll(ctx context.Context, tableName string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue

	paginator := dynamodb.NewScanPaginator(ds.Client, &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table '%s': %w", tableName, err)
		}
		items = append(items, page.Items...)
	}

	return items, nil
}

// BatchGetItems reads the items whose string key keyName is one of ids in
// a single BatchGetItem request. Keys DynamoDB leaves unprocessed are
// requested again, at most maxBatchGetAttempts times in total. Missing
// items are simply absent from the result.
func (ds *DynamoService) BatchGetItems(ctx context.Context, tableName, keyName string, ids []string) ([]map[string]types.AttributeValue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, map[string]types.AttributeValue{
			keyName: &types.AttributeValueMemberS{Value: id},
		})
	}

	request := map[string]types.KeysAndAttributes{
		tableName: {Keys: keys},
	}

	var items []map[string]types.AttributeValue
	for attempt := 1; attempt <= maxBatchGetAttempts && len(request) > 0; attempt++ {
		output, err := ds.Client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get from table '%s': %w", tableName, err)
		}
		items = append(items, output.Responses[tableName]...)
		request = output.UnprocessedKeys
	}

	if unprocessed, ok := request[tableName]; ok && len(unprocessed.Keys) > 0 {
		ds.logger().Warn("batch get left keys unprocessed",
			zap.String("table", tableName),
			zap.Int("keys", len(unprocessed.Keys)))
	}

	return items, nil
}
