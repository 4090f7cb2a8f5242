package engine

// Slash commands recognized outside a flow.
const (
	CommandImport    = "/import"
	CommandLaunch    = "/launch"
	CommandBuy       = "/buy"
	CommandSell      = "/sell"
	CommandPortfolio = "/portfolio"
	CommandPing      = "/ping"
)

// Numeric menu choices. 1-4 alias launch, buy, portfolio and trending.
const (
	menuChoiceLaunch    = "1"
	menuChoiceBuy       = "2"
	menuChoicePortfolio = "3"
	menuChoiceTrending  = "4"
)

// Keyword and emoji aliases for the menu entries, matched case-insensitively.
var menuKeywords = map[string]string{
	"launch":    menuChoiceLaunch,
	"🚀":        menuChoiceLaunch,
	"buy":       menuChoiceBuy,
	"💰":        menuChoiceBuy,
	"portfolio": menuChoicePortfolio,
	"📊":        menuChoicePortfolio,
	"trending":  menuChoiceTrending,
	"🔥":        menuChoiceTrending,
}

// Confirmation tokens for the launch confirm step.
var (
	acceptTokens = map[string]bool{"confirm": true, "accept": true, "yes": true, "✅": true}
	cancelTokens = map[string]bool{"cancel": true, "no": true, "❌": true}
)
