package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"courtmates_server/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo keeps items per table keyed by the string value of the
// table's key attribute. UpdateItem understands the two update
// expressions the services issue.
type fakeDynamo struct {
	mu sync.Mutex

	keys  map[string]string
	items map[string]map[string]map[string]types.AttributeValue

	updates    []*dynamodb.UpdateItemInput
	puts       int
	batchCalls int
	scanErr    error

	// unprocessed leaves that many keys of the first BatchGetItem call
	// unprocessed
	unprocessed int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		keys: map[string]string{
			models.UsersTable:   models.UserKey,
			models.MatchesTable: models.MatchKey,
		},
		items: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (f *fakeDynamo) seed(table string, item map[string]types.AttributeValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeLocked(table, item)
}

func (f *fakeDynamo) item(table, key string) map[string]types.AttributeValue {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[table][key]
}

func (f *fakeDynamo) storeLocked(table string, item map[string]types.AttributeValue) {
	if f.items[table] == nil {
		f.items[table] = map[string]map[string]types.AttributeValue{}
	}
	f.items[table][stringAttr(item[f.keys[table]])] = item
}

func (f *fakeDynamo) keyValue(table string, key map[string]types.AttributeValue) string {
	return stringAttr(key[f.keys[table]])
}

func stringAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table := *in.TableName
	return &dynamodb.GetItemOutput{Item: f.items[table][f.keyValue(table, in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	f.storeLocked(*in.TableName, in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []map[string]types.AttributeValue
	for _, item := range f.items[*in.TableName] {
		out = append(out, item)
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeDynamo) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++

	out := &dynamodb.BatchGetItemOutput{
		Responses:       map[string][]map[string]types.AttributeValue{},
		UnprocessedKeys: map[string]types.KeysAndAttributes{},
	}
	for table, req := range in.RequestItems {
		keys := req.Keys
		if f.unprocessed > 0 && f.batchCalls == 1 && len(keys) > f.unprocessed {
			out.UnprocessedKeys[table] = types.KeysAndAttributes{Keys: keys[len(keys)-f.unprocessed:]}
			keys = keys[:len(keys)-f.unprocessed]
		}
		for _, key := range keys {
			if item, ok := f.items[table][f.keyValue(table, key)]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)

	table := *in.TableName
	keyName := f.keys[table]
	current, exists := f.items[table][f.keyValue(table, in.Key)]

	next := map[string]types.AttributeValue{}
	for k, v := range current {
		next[k] = v
	}
	next[keyName] = in.Key[keyName]
	values := in.ExpressionAttributeValues

	switch expr := *in.UpdateExpression; {
	case strings.Contains(expr, "list_append"):
		uid := stringAttr(values[":uid"])
		if !exists {
			return nil, &types.ConditionalCheckFailedException{Message: strPtr("missing item")}
		}
		var players []types.AttributeValue
		if l, ok := current["players"].(*types.AttributeValueMemberL); ok {
			players = l.Value
		}
		for _, p := range players {
			if stringAttr(p) == uid {
				return nil, &types.ConditionalCheckFailedException{Message: strPtr("already listed")}
			}
		}
		appended := append(append([]types.AttributeValue{}, players...), values[":uidList"].(*types.AttributeValueMemberL).Value...)
		next["players"] = &types.AttributeValueMemberL{Value: appended}
		next["playersCount"] = values[":count"]
	case strings.Contains(expr, "avatar"):
		next["avatar"] = values[":avatar"]
		next["updatedAt"] = values[":now"]
		if _, ok := next["createdAt"]; !ok {
			next["createdAt"] = values[":now"]
		}
	default:
		return nil, errors.New("unsupported update expression")
	}

	f.storeLocked(table, next)
	return &dynamodb.UpdateItemOutput{Attributes: next}, nil
}

func strPtr(s string) *string { return &s }
