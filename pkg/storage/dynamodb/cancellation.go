package dynamodb

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const (
	reasonConditionalCheckFailed = "ConditionalCheckFailed"
	reasonTransactionConflict    = "TransactionConflict"
)

// cancellation holds the per-item reasons of a canceled TransactWriteItems call.
type cancellation struct {
	reasons []types.CancellationReason
}

// asCancellation reports whether err is a TransactionCanceledException.
func asCancellation(err error) (*cancellation, bool) {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil, false
	}
	return &cancellation{reasons: tce.CancellationReasons}, true
}

func (c *cancellation) code(i int) string {
	if i >= len(c.reasons) || c.reasons[i].Code == nil {
		return ""
	}
	return *c.reasons[i].Code
}

// failed reports whether item i failed its condition expression.
func (c *cancellation) failed(i int) bool {
	return c.code(i) == reasonConditionalCheckFailed
}

// conflicted reports whether any item collided with another in-flight transaction.
func (c *cancellation) conflicted() bool {
	for i := range c.reasons {
		if c.code(i) == reasonTransactionConflict {
			return true
		}
	}
	return false
}

// accountFailure explains why the account update at item i failed, using the item DynamoDB
// returned with ReturnValuesOnConditionCheckFailure.
func (c *cancellation) accountFailure(i int, change storage.BalanceChange) error {
	item := c.reasons[i].Item
	if len(item) == 0 {
		return storage.ErrAccountNotFound
	}
	var acct models.Account
	if err := attributevalue.UnmarshalMap(item, &acct); err != nil {
		return storage.ErrVersionConflict
	}
	switch {
	case acct.Version != change.ExpectedVersion:
		return storage.ErrVersionConflict
	case acct.AuraBalance+change.Amount < 0:
		return storage.ErrInsufficientFunds
	case change.BonusDate != "" && acct.LastBonusDate == change.BonusDate:
		return storage.ErrBonusAlreadyClaimed
	}
	return storage.ErrVersionConflict
}

// changeFailure maps the failure of a balance change occupying items at and at+1.
func (c *cancellation) changeFailure(at int, change storage.BalanceChange) error {
	if c.failed(at) {
		return c.accountFailure(at, change)
	}
	if c.failed(at + 1) {
		// The transaction ID already exists. Only daily bonuses use deterministic IDs.
		if change.BonusDate != "" {
			return storage.ErrBonusAlreadyClaimed
		}
		return storage.ErrVersionConflict
	}
	return nil
}
