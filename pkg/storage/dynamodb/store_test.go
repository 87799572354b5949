package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/storage/dynamodb/mocks"
)

var testTables = Tables{
	Accounts:     "accounts",
	Transactions: "transactions",
	Bets:         "bets",
	Stakes:       "stakes",
	Proofs:       "proofs",
	Resolutions:  "resolutions",
	Reputation:   "reputation",
	ChatMembers:  "chat_members",
	Connections:  "connections",
}

func newTestStore(t *testing.T) (*Store, *mocks.DynamoDBAPI) {
	mockClient := mocks.NewDynamoDBAPI(t)
	return New(mockClient, testTables), mockClient
}

// reason builds a cancellation reason, optionally carrying the item's old image.
func reason(code string, old interface{}) types.CancellationReason {
	r := types.CancellationReason{Code: aws.String(code)}
	if old != nil {
		item, err := attributevalue.MarshalMap(old)
		if err != nil {
			panic(err)
		}
		r.Item = item
	}
	return r
}

func canceled(reasons ...types.CancellationReason) error {
	return &types.TransactionCanceledException{
		Message:             aws.String("Transaction cancelled"),
		CancellationReasons: reasons,
	}
}

func none() types.CancellationReason {
	return reason("None", nil)
}

func marshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}
