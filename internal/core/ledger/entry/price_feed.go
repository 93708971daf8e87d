package entry

import "errors"

// PriceFeed is the latest price a publisher posted for one feed id.
type PriceFeed struct {
	Publisher   [20]byte `codec:"publisher"`
	FeedID      [32]byte `codec:"feed_id"`
	Price       int64    `codec:"price"`
	Conf        uint64   `codec:"conf"`
	Exponent    int32    `codec:"exponent"`
	PublishTime int64    `codec:"publish_time"`
	Deposit     uint64   `codec:"deposit"`
}

func (p *PriceFeed) Type() Type {
	return TypePriceFeed
}

func (p *PriceFeed) Validate() error {
	if p.Publisher == [20]byte{} {
		return errors.New("feed publisher is required")
	}
	if p.PublishTime <= 0 {
		return errors.New("feed publish time is required")
	}
	return nil
}
