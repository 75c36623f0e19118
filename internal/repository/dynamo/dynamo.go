// Package dynamo implements repository.Slot as one item in a DynamoDB table.
//
// Each slot is an item keyed by its name (attribute "name", type S) with the
// blob in attribute "data" (type B). Pointing Endpoint at DynamoDB Local gives a
// disposable backend for development.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/sakif/devhost/internal/repository"
)

const (
	keyAttr     = "name"
	dataAttr    = "data"
	updatedAttr = "updated_at"
)

// API is the subset of *dynamodb.Client the slot uses. Tests substitute a fake.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

type Config struct {
	Region   string
	Endpoint string // optional, e.g. http://localhost:8000 for DynamoDB Local
	Table    string
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("dynamo: loading aws config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// EnsureTable creates the table with an on-demand billing mode when it does
// not exist yet.
func EnsureTable(ctx context.Context, api API, table string) error {
	_, err := api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("dynamo: describing table %s: %w", table, err)
	}

	_, err = api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(keyAttr), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(keyAttr), KeyType: types.KeyTypeHash},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("dynamo: creating table %s: %w", table, err)
	}
	return nil
}

var _ repository.Slot = (*Slot)(nil)

type Slot struct {
	api   API
	table string
	name  string
	now   func() time.Time
}

func New(api API, table, name string) *Slot {
	return &Slot{api: api, table: table, name: name, now: time.Now}
}

func (s *Slot) key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: s.name},
	}
}

// Read uses a strongly consistent read so a Write from this process is
// visible to the next Read.
func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("dynamo: reading slot %s: %w", s.name, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}

	attr, ok := out.Item[dataAttr]
	if !ok {
		return nil, false, fmt.Errorf("dynamo: slot %s has no %q attribute", s.name, dataAttr)
	}
	blob, ok := attr.(*types.AttributeValueMemberB)
	if !ok {
		return nil, false, fmt.Errorf("dynamo: slot %s attribute %q is %T, want binary", s.name, dataAttr, attr)
	}
	return blob.Value, true, nil
}

// Write is an unconditional PutItem; the last writer wins.
func (s *Slot) Write(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	item := s.key()
	item[dataAttr] = &types.AttributeValueMemberB{Value: data}
	item[updatedAttr] = &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)}

	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamo: writing slot %s: %w", s.name, err)
	}
	return nil
}
