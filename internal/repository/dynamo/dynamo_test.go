package dynamo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory table keyed by the "name" attribute.
type fakeAPI struct {
	mu      sync.Mutex
	tables  map[string]map[string]map[string]types.AttributeValue
	putErr  error
	created []string
}

func newFakeAPI(tables ...string) *fakeAPI {
	f := &fakeAPI{tables: map[string]map[string]map[string]types.AttributeValue{}}
	for _, t := range tables {
		f.tables[t] = map[string]map[string]types.AttributeValue{}
	}
	return f
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	table, ok := f.tables[aws.ToString(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	name := in.Key[keyAttr].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: table[name]}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	table, ok := f.tables[aws.ToString(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	name := in.Item[keyAttr].(*types.AttributeValueMemberS).Value
	table[name] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[aws.ToString(in.TableName)]; !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("no table")}
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func (f *fakeAPI) CreateTable(_ context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := aws.ToString(in.TableName)
	f.tables[name] = map[string]map[string]types.AttributeValue{}
	f.created = append(f.created, name)
	return &dynamodb.CreateTableOutput{}, nil
}

func TestSlot_ReadAbsent(t *testing.T) {
	s := New(newFakeAPI("devhost_slots"), "devhost_slots", "devhost_snippets")

	_, ok, err := s.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if ok {
		t.Error("Read() ok = true for a missing item")
	}
}

func TestSlot_WriteThenRead(t *testing.T) {
	api := newFakeAPI("devhost_slots")
	s := New(api, "devhost_slots", "devhost_snippets")
	ctx := context.Background()

	if err := s.Write(ctx, []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, ok, err := s.Read(ctx)
	if err != nil || !ok {
		t.Fatalf("Read() = %v, %v", ok, err)
	}
	if string(data) != `[{"id":"1"}]` {
		t.Errorf("Read() = %q", data)
	}

	item := api.tables["devhost_slots"]["devhost_snippets"]
	if _, ok := item[updatedAttr].(*types.AttributeValueMemberS); !ok {
		t.Errorf("item missing %q timestamp: %#v", updatedAttr, item)
	}
}

func TestSlot_ReadWrongAttributeType(t *testing.T) {
	api := newFakeAPI("t")
	api.tables["t"]["s"] = map[string]types.AttributeValue{
		keyAttr:  &types.AttributeValueMemberS{Value: "s"},
		dataAttr: &types.AttributeValueMemberS{Value: "not binary"},
	}

	if _, _, err := New(api, "t", "s").Read(context.Background()); err == nil {
		t.Error("Read() accepted a string data attribute")
	}
}

func TestSlot_WriteError(t *testing.T) {
	api := newFakeAPI("t")
	api.putErr = errors.New("throttled")

	err := New(api, "t", "s").Write(context.Background(), []byte("x"))
	if err == nil || !errors.Is(err, api.putErr) {
		t.Errorf("Write() error = %v, want wrapped %v", err, api.putErr)
	}
}

func TestEnsureTable(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a missing table", func(t *testing.T) {
		api := newFakeAPI()
		if err := EnsureTable(ctx, api, "devhost_slots"); err != nil {
			t.Fatalf("EnsureTable() error = %v", err)
		}
		if len(api.created) != 1 || api.created[0] != "devhost_slots" {
			t.Errorf("created = %v", api.created)
		}
	})

	t.Run("leaves an existing table alone", func(t *testing.T) {
		api := newFakeAPI("devhost_slots")
		if err := EnsureTable(ctx, api, "devhost_slots"); err != nil {
			t.Fatalf("EnsureTable() error = %v", err)
		}
		if len(api.created) != 0 {
			t.Errorf("created = %v, want none", api.created)
		}
	})
}
