package core

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingState_String(t *testing.T) {
	assert.Equal(t, "ACTIVE", ListingActive.String())
	assert.Equal(t, "SOLD", ListingSold.String())
	assert.Equal(t, "CLOSED", ListingClosed.String())
}

func TestListingState_IsTerminal(t *testing.T) {
	assert.False(t, ListingActive.IsTerminal())
	assert.True(t, ListingSold.IsTerminal())
	assert.True(t, ListingClosed.IsTerminal())
}

func TestListingState_JSON(t *testing.T) {
	data, err := sonic.Marshal(ListingSold)
	require.NoError(t, err)
	assert.Equal(t, `"SOLD"`, string(data))

	var state ListingState
	require.NoError(t, sonic.Unmarshal([]byte(`"closed"`), &state))
	assert.Equal(t, ListingClosed, state)
}

func TestCommitment_String(t *testing.T) {
	assert.Equal(t, "processed", CommitmentProcessed.String())
	assert.Equal(t, "confirmed", CommitmentConfirmed.String())
	assert.Equal(t, "finalized", CommitmentFinalized.String())
}

func TestCommitment_JSON(t *testing.T) {
	data, err := sonic.Marshal(CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, `"confirmed"`, string(data))

	var c Commitment
	require.NoError(t, sonic.Unmarshal([]byte(`"finalized"`), &c))
	assert.Equal(t, CommitmentFinalized, c)
}

func TestOperation_String(t *testing.T) {
	assert.Equal(t, "CREATE_LISTING", OpCreateListing.String())
	assert.Equal(t, "ASK", OpAsk.String())
	assert.Equal(t, "BUY", OpBuy.String())
	assert.Equal(t, "CLOSE_LISTING", OpCloseListing.String())
	assert.Equal(t, "SCAN", OpScan.String())
	assert.Equal(t, "PROFILE", OpProfile.String())
	assert.Equal(t, "SUBSCRIBE", OpSubscribe.String())
}
