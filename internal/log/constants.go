package log

const (
	KeyAppName            = "app"
	KeyAuthToken          = "authToken"
	KeyBody               = "body"
	KeyCacheKey           = "cacheKey"
	KeyCart               = "cart"
	KeyCartLine           = "cartLine"
	KeyCartLineCount      = "cartLineCount"
	KeyChannel            = "channel"
	KeyConfig             = "config"
	KeyDbURL              = "dbUrl"
	KeyEmail              = "email"
	KeyEvent              = "event"
	KeyHeader             = "header"
	KeyJSONCache          = "jsonCache"
	KeyOrder              = "order"
	KeyOrderID            = "orderId"
	KeyOrderItems         = "orderItems"
	KeyOrderNumber        = "orderNumber"
	KeyOrderStatus        = "orderStatus"
	KeyOrders             = "orders"
	KeyPathValues         = "pathValues"
	KeyProcess            = "process"
	KeyProduct            = "product"
	KeyProductID          = "productId"
	KeyProducts           = "products"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHost        = "host"
	KeyRequestID          = "requestId"
	KeyRequestIP          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyRole               = "role"
	KeySpanID             = "spanId"
	KeyTag                = "tag"
	KeyToken              = "token"
	KeyTraceID            = "traceId"
	KeyUserID             = "userId"
	KeyUsers              = "users"
	KeyWebhookURL         = "webhookUrl"
	KeyRequestProcessedAt = "requestProcessedAt"
)
