/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	appconfig "github.com/suparena/entityregistry/config"
	"github.com/suparena/entityregistry/datastore"
	"github.com/suparena/entityregistry/errors"
	"github.com/suparena/entityregistry/registry"
)

// BackendName is the name this store registers under.
const BackendName = "dynamodb"

// MaxTransactItems is the DynamoDB limit on items per TransactWriteItems call.
const MaxTransactItems = 100

// EntityType is stamped on every item written by this store.
const EntityType = "EntityRegistryState"

func init() {
	registry.RegisterBackend(BackendName, func(ctx context.Context, cfg appconfig.StoreConfig) (datastore.StateStore, error) {
		store, err := NewDynamodbDataStore(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		if cfg.DynamoDB.CreateTable {
			if err := store.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	})
}

// API is the subset of the DynamoDB client used by the store.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *sdk.TransactWriteItemsInput, optFns ...func(*sdk.Options)) (*sdk.TransactWriteItemsOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
}

// tableActiveTimeout bounds how long EnsureTable waits for a new table.
const tableActiveTimeout = 2 * time.Minute

// DynamodbDataStore implements datastore.StateStore on a single DynamoDB table.
type DynamodbDataStore struct {
	client    API
	tableName string
}

var _ datastore.StateStore = (*DynamodbDataStore)(nil)

// keyInput is marshaled and fed to the index map macros.
type keyInput struct {
	Space string `dynamodbav:"Space"`
	ID    string `dynamodbav:"ID"`
}

// stateItem is the stored shape of one state value.
type stateItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	Space      string `dynamodbav:"Space"`
	Value      []byte `dynamodbav:"Value"`
	EntityType string `dynamodbav:"EntityType"`
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

func expandMacros(indexMap map[string]string, keysInput any) (map[string]string, error) {
	// Convert keysInput to a map of attribute values
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		expanded := macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			// macro is something like "{ID}"
			key := strings.Trim(macro, "{}")

			val, ok := av[key]
			if !ok {
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				// binary, sets and NULL have no key representation
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, nil
}

// buildKeyFromExpanded builds a DynamoDB key from the expanded index map.
// It assumes that the expanded map has valid non-empty values for "PK" and "SK".
func buildKeyFromExpanded(expanded map[string]string) (map[string]types.AttributeValue, error) {
	pk, okPK := expanded["PK"]
	sk, okSK := expanded["SK"]

	if !okPK || !okSK || pk == "" || sk == "" {
		return nil, fmt.Errorf("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// expandKey renders PK and SK for key through the space's index map.
func expandKey(key datastore.Key) (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap(key.Space)
	if !ok {
		return nil, fmt.Errorf("no index map found for space %q", key.Space)
	}
	return expandMacros(indexMap, keyInput{Space: string(key.Space), ID: key.HexID()})
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used when
// an access key is configured; otherwise the default AWS credential chain applies.
func NewDynamoDBClient(ctx context.Context, cfg appconfig.DynamoDBConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewDynamodbDataStore constructs a store over the configured table.
func NewDynamodbDataStore(ctx context.Context, cfg appconfig.DynamoDBConfig) (*DynamodbDataStore, error) {
	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewWithClient(client, cfg.Table), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, tableName string) *DynamodbDataStore {
	return &DynamodbDataStore{
		client:    client,
		tableName: tableName,
	}
}

// EnsureTable creates the table with on-demand billing if it does not exist,
// then waits until it is active.
func (d *DynamodbDataStore) EnsureTable(ctx context.Context) error {
	_, err := d.client.CreateTable(ctx, &sdk.CreateTableInput{
		TableName: &d.tableName,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if !stderrors.As(err, &inUse) {
			return fmt.Errorf("CreateTable failed: %w", err)
		}
	}

	waiter := sdk.NewTableExistsWaiter(d.client)
	if err := waiter.Wait(ctx, &sdk.DescribeTableInput{TableName: &d.tableName}, tableActiveTimeout); err != nil {
		return fmt.Errorf("waiting for table %s: %w", d.tableName, err)
	}
	return nil
}

// Get reads one value with a strongly consistent read.
func (d *DynamodbDataStore) Get(ctx context.Context, key datastore.Key) ([]byte, bool, error) {
	expanded, err := expandKey(key)
	if err != nil {
		return nil, false, err
	}
	keyMap, err := buildKeyFromExpanded(expanded)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build key: %w", err)
	}

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      &d.tableName,
		Key:            keyMap,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	var item stateItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item.Value, true, nil
}

// Apply writes the batch with one TransactWriteItems call.
func (d *DynamodbDataStore) Apply(ctx context.Context, writes []datastore.Write) error {
	if len(writes) == 0 {
		return nil
	}
	if len(writes) > MaxTransactItems {
		return errors.NewValidationError("writes", fmt.Sprintf("batch of %d exceeds %d items", len(writes), MaxTransactItems))
	}

	items := make([]types.TransactWriteItem, 0, len(writes))
	for _, w := range writes {
		put, err := d.buildPut(w)
		if err != nil {
			return err
		}
		items = append(items, types.TransactWriteItem{Put: put})
	}

	_, err := d.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if stderrors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if i >= len(writes) {
					break
				}
				switch aws.ToString(reason.Code) {
				case "ConditionalCheckFailed":
					return fmt.Errorf("transaction cancelled: %w",
						errors.NewConditionFailedError("apply", writes[i].Key.String()+" "+writes[i].Condition.String()))
				case "TransactionConflict":
					return fmt.Errorf("transaction cancelled: %w",
						errors.NewConditionFailedError("apply", writes[i].Key.String()+" in concurrent transaction"))
				}
			}
		}
		return fmt.Errorf("TransactWriteItems failed: %w", err)
	}
	return nil
}

func (d *DynamodbDataStore) buildPut(w datastore.Write) (*types.Put, error) {
	expanded, err := expandKey(w.Key)
	if err != nil {
		return nil, err
	}
	if _, err := buildKeyFromExpanded(expanded); err != nil {
		return nil, fmt.Errorf("failed to build key for %s: %w", w.Key, err)
	}

	av, err := attributevalue.MarshalMap(stateItem{
		PK:         expanded["PK"],
		SK:         expanded["SK"],
		Space:      string(w.Key.Space),
		Value:      w.Value,
		EntityType: EntityType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	// Any extra templated attributes (e.g. GSI keys) ride along with the item.
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	put := &types.Put{
		TableName: &d.tableName,
		Item:      av,
	}
	switch w.Condition {
	case datastore.MustNotExist:
		put.ConditionExpression = aws.String("attribute_not_exists(PK)")
	case datastore.MustEqual:
		put.ConditionExpression = aws.String("#v = :prev")
		put.ExpressionAttributeNames = map[string]string{"#v": "Value"}
		put.ExpressionAttributeValues = map[string]types.AttributeValue{
			":prev": &types.AttributeValueMemberB{Value: w.Previous},
		}
	}
	return put, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (d *DynamodbDataStore) Close() error {
	return nil
}
