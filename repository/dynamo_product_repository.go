package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/models"
)

// dynamoAPI is the subset of the DynamoDB client the catalog needs.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoProductRepository stores products in a table keyed by product_id.
// Prices are written as N attributes holding the exact decimal string.
type DynamoProductRepository struct {
	client dynamoAPI
	table  string
}

func NewDynamoProductRepository(client dynamoAPI, table string) *DynamoProductRepository {
	return &DynamoProductRepository{client: client, table: table}
}

type ddbProduct struct {
	ProductID   string `dynamodbav:"product_id"`
	Name        string `dynamodbav:"name"`
	Img         string `dynamodbav:"img,omitempty"`
	Description string `dynamodbav:"description,omitempty"`
}

const batchGetLimit = 100

func marshalProduct(p *models.Product) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(ddbProduct{
		ProductID:   p.ID,
		Name:        p.Name,
		Img:         p.Img,
		Description: p.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}
	item["price"] = &types.AttributeValueMemberN{Value: p.Price.String()}
	return item, nil
}

func unmarshalProduct(item map[string]types.AttributeValue) (models.Product, error) {
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(item, &dp); err != nil {
		return models.Product{}, fmt.Errorf("unmarshal product: %w", err)
	}
	p := models.Product{
		ID:          dp.ProductID,
		Name:        dp.Name,
		Img:         dp.Img,
		Description: dp.Description,
	}
	if n, ok := item["price"].(*types.AttributeValueMemberN); ok {
		price, err := decimal.NewFromString(n.Value)
		if err != nil {
			return models.Product{}, fmt.Errorf("parse price %q: %w", n.Value, err)
		}
		p.Price = price
	}
	return p, nil
}

func productKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberS{Value: id},
	}
}

func (d *DynamoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &d.table, Key: productKey(id)})
	if err != nil {
		return nil, unavailable("dynamodb GetItem", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	p, err := unmarshalProduct(out.Item)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DynamoProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	found := make(map[string]models.Product, len(ids))
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	for start := 0; start < len(unique); start += batchGetLimit {
		end := start + batchGetLimit
		if end > len(unique) {
			end = len(unique)
		}
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range unique[start:end] {
			keys = append(keys, productKey(id))
		}

		request := map[string]types.KeysAndAttributes{d.table: {Keys: keys}}
		for len(request) > 0 {
			out, err := d.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, unavailable("dynamodb BatchGetItem", err)
			}
			for _, item := range out.Responses[d.table] {
				p, err := unmarshalProduct(item)
				if err != nil {
					return nil, err
				}
				found[p.ID] = p
			}
			request = out.UnprocessedKeys
		}
	}
	return found, nil
}

func (d *DynamoProductRepository) Exists(ctx context.Context, id string) (bool, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            &d.table,
		Key:                  productKey(id),
		ProjectionExpression: aws.String("product_id"),
	})
	if err != nil {
		return false, unavailable("dynamodb GetItem", err)
	}
	return len(out.Item) > 0, nil
}

func (d *DynamoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: &d.table})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, unavailable("dynamodb Scan", err)
		}
		for _, item := range page.Items {
			p, err := unmarshalProduct(item)
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (d *DynamoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = models.NewID()
	}
	item, err := marshalProduct(product)
	if err != nil {
		return err
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &d.table,
		Item:      item,
	})
	if err != nil {
		return unavailable("dynamodb PutItem", err)
	}
	return nil
}
