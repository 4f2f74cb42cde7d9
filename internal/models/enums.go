package models

import "fmt"

// ------------------------------------------------------------------------
// PropertyConfig enumerates the kinds of listings brokers publish.
// ------------------------------------------------------------------------
type PropertyConfig string

const (
	ConfigFlat PropertyConfig = "FLAT"
	ConfigShop PropertyConfig = "SHOP"
	ConfigPlot PropertyConfig = "PLOT"
)

// ParsePropertyConfig converts a raw token to the enum.
func ParsePropertyConfig(s string) (PropertyConfig, error) {
	switch PropertyConfig(s) {
	case ConfigFlat, ConfigShop, ConfigPlot:
		return PropertyConfig(s), nil
	default:
		return "", fmt.Errorf("invalid property configuration: %q", s)
	}
}

// ------------------------------------------------------------------------
// OfferType — a listing is either for sale or for rent.
// ------------------------------------------------------------------------
type OfferType string

const (
	OfferSell OfferType = "SELL"
	OfferRent OfferType = "RENT"
)

func ParseOfferType(s string) (OfferType, error) {
	switch OfferType(s) {
	case OfferSell, OfferRent:
		return OfferType(s), nil
	default:
		return "", fmt.Errorf("invalid offer type: %q", s)
	}
}

// ------------------------------------------------------------------------
// Role is fixed at registration and never changes afterwards.
// ------------------------------------------------------------------------
type Role string

const (
	RoleBroker   Role = "BROKER"
	RoleCustomer Role = "CUSTOMER"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBroker, RoleCustomer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}
