package telegram

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const HelpText = `Ask me for any stock or crypto price. Try:
- btc
- show apple
- set alert btc above 30000

Commands:
/start - welcome message
/help - show this help
/btc - bitcoin price
/top - top 5 cryptos by market cap
/price <asset> - current price
/alert <asset> [above|below] <price> - notify me once the price crosses
/alerts - list your alerts
/cancel <asset> - cancel an alert

Plain text works too: "show <asset>", "set alert <asset> [above|below] <price>", "list alerts", "cancel alert <asset>".
Direction defaults to above.`

const (
	setAlertUsage    = "⚠️ Usage: set alert <asset> [above|below] <price>\nExample: set alert btc above 30000"
	cancelAlertUsage = "⚠️ Usage: cancel alert <asset>\nExample: cancel alert btc"
	priceUsage       = "⚠️ Usage: /price <asset>\nExample: /price eth"
)

const (
	CommandStart  = "start"
	CommandHelp   = "help"
	CommandBTC    = "btc"
	CommandTop    = "top"
	CommandPrice  = "price"
	CommandAlert  = "alert"
	CommandAlerts = "alerts"
	CommandCancel = "cancel"
)

var ErrInvalidArguments = errors.New("invalid arguments")

type Command struct {
	Name  string
	Args  string
	Slash bool
}

func ParseCommand(text string) Command {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "/") {
		head, args, _ := strings.Cut(text[1:], " ")
		if at := strings.IndexByte(head, '@'); at >= 0 {
			head = head[:at]
		}
		return Command{Name: strings.ToLower(head), Args: strings.TrimSpace(args), Slash: true}
	}

	words := strings.Fields(text)
	lower := strings.Fields(strings.ToLower(text))
	switch {
	case hasWords(lower, "set", "alert"):
		return Command{Name: CommandAlert, Args: strings.Join(words[2:], " ")}
	case hasWords(lower, "cancel", "alert"):
		return Command{Name: CommandCancel, Args: strings.Join(words[2:], " ")}
	case len(lower) == 2 && hasWords(lower, "list", "alerts"):
		return Command{Name: CommandAlerts}
	case len(lower) > 1 && lower[0] == "show":
		return Command{Name: CommandPrice, Args: strings.Join(words[1:], " ")}
	}
	return Command{Name: CommandPrice, Args: strings.Join(words, " ")}
}

func hasWords(words []string, prefix ...string) bool {
	if len(words) < len(prefix) {
		return false
	}
	for i, word := range prefix {
		if words[i] != word {
			return false
		}
	}
	return true
}

// ParseSetAlertArgs splits "<asset> [above|below] <price>". The price is the last token,
// an optional direction word precedes it, the rest names the asset.
func ParseSetAlertArgs(args string) (asset, direction, threshold string, err error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "", "", "", ErrInvalidArguments
	}

	threshold = normalizeNumber(parts[len(parts)-1])
	if _, err := decimal.NewFromString(threshold); err != nil {
		return "", "", "", ErrInvalidArguments
	}
	parts = parts[:len(parts)-1]

	direction = "above"
	if isDirectionWord(parts[len(parts)-1]) {
		direction = strings.ToLower(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return "", "", "", ErrInvalidArguments
	}
	return strings.Join(parts, " "), direction, threshold, nil
}

func ParseAssetArg(args string) (string, error) {
	asset := strings.TrimSpace(args)
	if asset == "" {
		return "", ErrInvalidArguments
	}
	return asset, nil
}

func isDirectionWord(word string) bool {
	switch strings.ToLower(word) {
	case "above", "below", ">", ">=", "<", "<=":
		return true
	}
	return false
}

func normalizeNumber(token string) string {
	token = strings.TrimPrefix(token, "$")
	return strings.ReplaceAll(token, ",", "")
}
