package entry

import "errors"

// ExpiryMark is the oracle price recorded for one expiry time. It is shared
// by every option contract with that expiry.
type ExpiryMark struct {
	Expiry      int64    `codec:"expiry"`
	Price       int64    `codec:"price"`
	Conf        uint64   `codec:"conf"`
	Exponent    int32    `codec:"exponent"`
	PublishTime int64    `codec:"publish_time"`
	Funder      [20]byte `codec:"funder"`
	Deposit     uint64   `codec:"deposit"`
}

func (m *ExpiryMark) Type() Type {
	return TypeExpiryMark
}

func (m *ExpiryMark) Validate() error {
	if m.Funder == [20]byte{} {
		return errors.New("mark funder is required")
	}
	if m.PublishTime > m.Expiry {
		return errors.New("mark published after expiry")
	}
	return nil
}

// IsMarked reports whether the mark carries a usable price.
func (m *ExpiryMark) IsMarked() bool {
	return m.Price != 0
}
