package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeKey_Validate(t *testing.T) {
	tests := []struct {
		name    string
		scope   ScopeKey
		wantErr bool
	}{
		{"order scope", OrderScope(42), false},
		{"temporary scope", TemporaryScope("sess-1"), false},
		{"both set", ScopeKey{OrderID: 42, TemporaryID: "sess-1"}, true},
		{"none set", ScopeKey{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_OrderScope(t *testing.T) {
	m, err := New(OrderScope(42), "shop-1", 1001, 55)
	require.NoError(t, err)

	require.NotNil(t, m.OrderID)
	assert.Equal(t, int64(42), *m.OrderID)
	assert.Nil(t, m.TemporaryID)
	assert.Equal(t, int64(1001), m.TransactionID)
	assert.Equal(t, int64(55), m.SpaceID)
	assert.Equal(t, OrderScope(42), m.Scope())
}

func TestNew_TemporaryScope(t *testing.T) {
	m, err := New(TemporaryScope("sess-9"), "shop-1", 1001, 55)
	require.NoError(t, err)

	require.NotNil(t, m.TemporaryID)
	assert.Equal(t, "sess-9", *m.TemporaryID)
	assert.Nil(t, m.OrderID)
	assert.True(t, m.Scope().IsTemporary())
}

func TestNew_RejectsMissingRemoteIDs(t *testing.T) {
	_, err := New(OrderScope(42), "shop-1", 0, 55)
	assert.Error(t, err)

	_, err = New(OrderScope(42), "shop-1", 1001, 0)
	assert.Error(t, err)
}
