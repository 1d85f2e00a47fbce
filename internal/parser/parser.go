// Package parser turns one order-line of input into a list of pizzas with
// their quantities. Grounded on original_source's Reception/Parser.cpp:
// same grammar, same semicolon-separated-segment error handling (one bad
// segment fails the whole line), reworked from exceptions into Go's
// error-return idiom.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kcoder/plazza"
)

// orderExp matches one order segment: a pizza type name, a size token,
// and a "xN" quantity, e.g. "regina L x3".
var orderExp = regexp.MustCompile(`^([a-zA-Z]+)\s+(S|M|L|XL|XXL)\s+x([1-9][0-9]*)$`)

// Order is one parsed line segment: a pizza and how many of it to cook.
type Order struct {
	Pizza    plazza.Pizza
	Quantity int
}

// Parse splits line on ';', trims whitespace around each segment, and
// matches each against the order grammar. An empty line yields no
// orders and no error. Any non-empty segment that fails to parse — empty
// segment, malformed grammar, unknown pizza type, or an out-of-range
// quantity — fails the entire line, matching original_source's
// "one bad segment invalidates the whole order" behaviour.
func Parse(line string) ([]Order, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil, nil
	}

	segments := strings.Split(trimmed, ";")
	orders := make([]Order, 0, len(segments))

	for _, raw := range segments {
		segment := strings.TrimSpace(raw)
		if segment == "" {
			return nil, plazza.NewError("parser.Parse", plazza.ErrCodeParse,
				"empty segment found in order list")
		}

		order, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func parseSegment(segment string) (Order, error) {
	match := orderExp.FindStringSubmatch(segment)
	if match == nil {
		return Order{}, plazza.NewError("parser.Parse", plazza.ErrCodeParse,
			"invalid order format for segment: '"+segment+"', expected TYPE SIZE xNUMBER")
	}

	typeStr, sizeStr, numStr := strings.ToLower(match[1]), match[2], match[3]

	typ, ok := plazza.ParsePizzaType(typeStr)
	if !ok {
		return Order{}, plazza.NewError("parser.Parse", plazza.ErrCodeParse,
			"unknown pizza type '"+match[1]+"'")
	}

	size, ok := plazza.ParseSize(sizeStr)
	if !ok {
		return Order{}, plazza.NewError("parser.Parse", plazza.ErrCodeParse,
			"unknown size '"+sizeStr+"'")
	}

	quantity, err := strconv.Atoi(numStr)
	if err != nil || quantity <= 0 {
		return Order{}, plazza.NewError("parser.Parse", plazza.ErrCodeParse,
			"invalid quantity '"+numStr+"'")
	}

	return Order{
		Pizza:    plazza.Pizza{Type: typ, Size: size},
		Quantity: quantity,
	}, nil
}
