package broker

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the hedging side for a filled parent order.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType selects the protection shape for an entry submission.
type OrderType string

const (
	// TypeMarket is a single order with no protective legs.
	TypeMarket OrderType = "market"
	// TypeBracket submits entry, take-profit and stop-loss atomically.
	TypeBracket OrderType = "bracket"
	// TypeTrailingStop submits the entry alone; a trailing-stop hedge is
	// attached separately once the entry fills.
	TypeTrailingStop OrderType = "trailing_stop"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	switch t {
	case TypeMarket, TypeBracket, TypeTrailingStop:
		return true
	}
	return false
}

// OrderStatus is the brokerage-reported lifecycle state of an order.
type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusAccepted        OrderStatus = "accepted"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
	StatusRejected        OrderStatus = "rejected"
)

// TimeInForceGTC keeps an order working until explicitly cancelled.
// Every order this system places is GTC, matching the expectation that
// picks span at most a few sessions.
const TimeInForceGTC = "gtc"
