package engine

import (
	stdErrors "errors"
	"strconv"
	"strings"
)

var (
	errSellNoTicker  = stdErrors.New("no ticker token found")
	errSellNoAmount  = stdErrors.New("no amount token found")
	errSellAmbiguous = stdErrors.New("more than one ticker candidate")
	errBadAmount     = stdErrors.New("amount is not a positive number")
)

// parseSellArgs extracts a ticker and a token quantity from a loosely ordered
// argument list. The ticker is the $-marked token when present, otherwise the
// single non-numeric token; the quantity is the last token that parses as a
// non-negative integer. Ambiguous input is rejected rather than guessed at.
func parseSellArgs(args []string) (string, int64, error) {
	tickerIdx := -1

	for i, arg := range args {
		if strings.HasPrefix(arg, "$") {
			if tickerIdx >= 0 {
				return "", 0, errSellAmbiguous
			}
			tickerIdx = i
		}
	}

	if tickerIdx < 0 {
		for i, arg := range args {
			if _, err := parseQuantity(arg); err == nil {
				continue
			}
			if tickerIdx >= 0 {
				return "", 0, errSellAmbiguous
			}
			tickerIdx = i
		}
	}

	if tickerIdx < 0 {
		return "", 0, errSellNoTicker
	}

	quantity := int64(-1)
	for i := len(args) - 1; i >= 0; i-- {
		if i == tickerIdx {
			continue
		}
		if q, err := parseQuantity(args[i]); err == nil {
			quantity = q
			break
		}
	}

	if quantity < 0 {
		return "", 0, errSellNoAmount
	}

	return args[tickerIdx], quantity, nil
}

// parseQuantity parses a non-negative integer token, tolerating thousands
// separators.
func parseQuantity(s string) (int64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "_", "")
	q, err := strconv.ParseInt(s, 10, 64)
	if err != nil || q < 0 {
		return 0, errBadAmount
	}
	return q, nil
}

// parseSolAmount parses a positive fractional SOL amount.
func parseSolAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || amount <= 0 {
		return 0, errBadAmount
	}
	return amount, nil
}

// parseSupply parses a launch supply, tolerating thousands separators. Range
// checking is left to the token registry.
func parseSupply(s string) (int64, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), "_", "")
	return strconv.ParseInt(s, 10, 64)
}
