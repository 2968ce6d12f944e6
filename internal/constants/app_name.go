package constants

const (
	AppGearshare           = "gearshare"
	AppAPIService          = "api-service"
	AppUserService         = "user-service"
	AppProductService      = "product-service"
	AppCartService         = "cart-service"
	AppOrderService        = "order-service"
	AppNotificationService = "notification-service"
	AudienceUser           = "audience-user"
)

// Redis pub/sub channels.
const (
	ChannelOrderEvents = "order-events"
)
