package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	WebSocket       Category = "WebSocket"
	Rooms           Category = "Rooms"
	Mongo           Category = "Mongo"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Rooms
	Join       SubCategory = "Join"
	Leave      SubCategory = "Leave"
	Expiry     SubCategory = "Expiry"
	Relay      SubCategory = "Relay"
	Connection SubCategory = "Connection"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	RoomID       ExtraKey = "RoomID"
	ConnectionID ExtraKey = "ConnectionID"
	DisplayName  ExtraKey = "DisplayName"
	MemberCount  ExtraKey = "MemberCount"
	EventType    ExtraKey = "EventType"
	ErrorMessage ExtraKey = "ErrorMessage"
)
