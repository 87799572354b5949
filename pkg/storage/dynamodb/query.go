package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// queryItems follows LastEvaluatedKey until the result set is exhausted or, when max > 0,
// at least max items were read.
func (s *Store) queryItems(ctx context.Context, input *dynamodb.QueryInput, max int) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	for {
		page, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if max > 0 && len(items) >= max {
			return items[:max], nil
		}
		if len(page.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
}
