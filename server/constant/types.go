package constant

const (
	HeaderCustomUser  = "X-Custom-User"
	HeaderCustomToken = "X-Custom-Token"
)

// 1 ether in wei
const (
	WeiPerEther uint64 = 1_000_000_000_000_000_000
	// DefaultMinimumContribution is 0.001 ether
	DefaultMinimumContribution uint64 = 1_000_000_000_000_000
)

// Event types pushed to subscribers
const (
	EVENT_NEW_PARTICIPATION = iota + 0 // participation accepted
	EVENT_WINNER_PICKED                // winner picked, new round started
	EVENT_STATE                        // state snapshot sent on subscribe
	EVENT_ERROR                        // error message
)

// Redis keys and channels
const (
	RedisEventChannel  = "lottery:events"
	RedisReceivePrefix = "receive:"
)

// Response codes
const (
	Code10000 = 10000 // OK
	Code10001 = 10001 // bad parameter
	Code10002 = 10002 // account exists
	Code10007 = 10007 // login failed
	Code10009 = 10009 // faucet limit
	Code10010 = 10010 // account does not exist
	Code10012 = 10012 // not logged in
	Code10013 = 10013 // balance above faucet limit
	Code20001 = 20001 // contribution below minimum
	Code20002 = 20002 // already registered
	Code20003 = 20003 // not the organizer
	Code20004 = 20004 // index out of range
	Code20005 = 20005 // no participants
	Code20006 = 20006 // insufficient funds
	Code99999 = 99999 // system error
)

// Response messages
const (
	OK              = "OK"
	ParamError      = "Invalid parameter"
	AccountExist    = "Account already exists"
	LoginFailed     = "Login failed, check your credentials"
	PushThanLimit   = "Faucet limit reached"
	AccountNotExist = "Account does not exist"
	UserNotLogin    = "Not logged in"
	BalanceTooHigh  = "Balance too high to receive from the faucet"
	Error           = "System error"
)
