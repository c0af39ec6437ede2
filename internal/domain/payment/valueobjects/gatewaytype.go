package valueobjects

import "fmt"

// GatewayType classifies a gateway as card/wallet style or manual settlement.
type GatewayType string

const (
	GatewayTypeOnline GatewayType = "online-payment"
	GatewayTypeManual GatewayType = "manual-payment"
)

func (t GatewayType) IsValid() bool {
	return t == GatewayTypeOnline || t == GatewayTypeManual
}

func (t GatewayType) String() string {
	return string(t)
}

// GatewayFilter selects gateways in a listing.
type GatewayFilter string

const (
	GatewayFilterAll    GatewayFilter = "all"
	GatewayFilterOnline GatewayFilter = "online"
	GatewayFilterManual GatewayFilter = "manual"
)

func ParseGatewayFilter(s string) (GatewayFilter, error) {
	switch GatewayFilter(s) {
	case "", GatewayFilterAll:
		return GatewayFilterAll, nil
	case GatewayFilterOnline, GatewayFilterManual:
		return GatewayFilter(s), nil
	default:
		return "", fmt.Errorf("unknown gateway filter %q", s)
	}
}

// Matches reports whether a gateway of type t passes the filter.
func (f GatewayFilter) Matches(t GatewayType) bool {
	switch f {
	case GatewayFilterOnline:
		return t == GatewayTypeOnline
	case GatewayFilterManual:
		return t == GatewayTypeManual
	default:
		return true
	}
}
