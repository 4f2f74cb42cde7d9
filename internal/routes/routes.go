package routes

const (
	Health = "/health"

	AuthRegisterBroker   = "/api/v1/auth/register/broker"
	AuthRegisterCustomer = "/api/v1/auth/register/customer"
	AuthLogin            = "/api/v1/auth/login"

	Properties       = "/api/v1/properties"
	PropertySearch   = "/api/v1/properties/search"
	Property         = "/api/v1/properties/{propertyID}"
	PropertyComments = "/api/v1/properties/{propertyID}/comments"

	Brokers          = "/api/v1/brokers"
	BrokersTopRated  = "/api/v1/brokers/top-rated"
	BrokerMe         = "/api/v1/brokers/me"
	Broker           = "/api/v1/brokers/{brokerID}"
	BrokerProperties = "/api/v1/brokers/{brokerID}/properties"
	BrokerRatings    = "/api/v1/brokers/{brokerID}/ratings"

	CustomerMe        = "/api/v1/customers/me"
	CustomerFavorites = "/api/v1/customers/me/favorites"
	CustomerFavorite  = "/api/v1/customers/me/favorites/{propertyID}"
	CustomerHoldings  = "/api/v1/customers/me/holdings"

	Deals = "/api/v1/deals"
	Deal  = "/api/v1/deals/{dealID}"
)
