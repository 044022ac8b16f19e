package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingCustomerTransactionQuery(t *testing.T) {
	query := PendingCustomerTransactionQuery(42, "max.muster@example.com")

	require.NotNil(t, query.Filter)
	assert.Equal(t, FilterAnd, query.Filter.Type)
	require.Len(t, query.Filter.Children, 3)

	byField := make(map[string]EntityQueryFilter)
	for _, child := range query.Filter.Children {
		assert.Equal(t, FilterLeaf, child.Type)
		assert.Equal(t, OperatorEquals, child.Operator)
		byField[child.FieldName] = child
	}

	assert.Equal(t, string(StatePending), byField["state"].Value)
	assert.Equal(t, "42", byField["customerId"].Value)
	assert.Equal(t, "max.muster@example.com", byField["customerEmailAddress"].Value)

	require.Len(t, query.OrderBys, 1)
	assert.Equal(t, "createdOn", query.OrderBys[0].FieldName)
	assert.Equal(t, SortDesc, query.OrderBys[0].Sorting)
	assert.Equal(t, 1, query.NumberOfEntities)
}

func TestLeafFilter(t *testing.T) {
	f := LeafFilter("currency", "CHF")
	assert.Equal(t, FilterLeaf, f.Type)
	assert.Equal(t, "currency", f.FieldName)
	assert.Equal(t, OperatorEquals, f.Operator)
	assert.Equal(t, "CHF", f.Value)
	assert.Empty(t, f.Children)
}

func TestTransactionStateMutable(t *testing.T) {
	assert.True(t, StatePending.Mutable())

	for _, state := range []TransactionState{
		StateCreate, StateConfirmed, StateProcessing, StateFailed,
		StateAuthorized, StateVoided, StateCompleted, StateFulfill, StateDecline,
	} {
		assert.False(t, state.Mutable(), "state %s must not be mutable", state)
	}
}
