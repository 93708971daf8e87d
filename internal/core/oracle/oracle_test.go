package oracle

import (
	"errors"
	"testing"
	"time"

	"github.com/LeJamon/coveredcall/internal/core/ledger/entry"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeed = Feed{Publisher: [20]byte{0x50}, ID: [32]byte{0x01}}

func encodeFeed(t *testing.T, publishTime int64) []byte {
	t.Helper()
	data, err := entry.Encode(&entry.PriceFeed{
		Publisher:   testFeed.Publisher,
		FeedID:      testFeed.ID,
		Price:       14_000_000_000,
		Conf:        1_000_000,
		Exponent:    -8,
		PublishTime: publishTime,
	})
	require.NoError(t, err)
	return data
}

func TestLedgerReaderFreshPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	view := NewMockView(ctrl)

	now := time.Unix(1_700_000_100, 0)
	view.EXPECT().Read(testFeed.Keylet()).Return(encodeFeed(t, 1_700_000_000), nil)

	price, err := NewLedgerReader().PriceNoOlderThan(view, testFeed, time.Minute*5, now)
	require.NoError(t, err)
	assert.Equal(t, int64(14_000_000_000), price.Price)
	assert.Equal(t, int32(-8), price.Exponent)
	assert.Equal(t, int64(1_700_000_000), price.PublishTime)
}

func TestLedgerReaderStalePrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	view := NewMockView(ctrl)

	now := time.Unix(1_700_000_100, 0)
	view.EXPECT().Read(gomock.Any()).Return(encodeFeed(t, 1_700_000_000), nil)

	_, err := NewLedgerReader().PriceNoOlderThan(view, testFeed, time.Minute, now)
	require.ErrorIs(t, err, ErrStalePrice)
}

func TestLedgerReaderMissingFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	view := NewMockView(ctrl)
	view.EXPECT().Read(gomock.Any()).Return(nil, nil)

	_, err := NewLedgerReader().PriceNoOlderThan(view, testFeed, time.Hour, time.Now())
	require.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestLedgerReaderStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	view := NewMockView(ctrl)
	boom := errors.New("disk on fire")
	view.EXPECT().Read(gomock.Any()).Return(nil, boom)

	_, err := NewLedgerReader().PriceNoOlderThan(view, testFeed, time.Hour, time.Now())
	require.ErrorIs(t, err, boom)
}
