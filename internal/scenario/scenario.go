// Package scenario reads the text description of a market's starting
// state and turns it into instruments, accounts and traders.
//
// A scenario has three significant lines; blank lines and anything after a
// '#' are ignored:
//
//	R R S                  trader kinds, R random and S crossover
//	APL:145 MSFT:300       instruments with their opening price
//	100000 APL:5 MSFT:15   starting cash and holdings given to every trader
package scenario

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/strategy"
)

// Listing is an instrument and its opening price.
type Listing struct {
	Symbol string
	Price  int64
}

// Scenario is a parsed market description.
type Scenario struct {
	Traders  []strategy.Kind
	Listings []Listing // in file order
	Cash     int64
	Holdings map[string]int64
}

var traderKinds = map[string]strategy.Kind{
	"R": strategy.KindRandom,
	"S": strategy.KindSMA,
}

// Load parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	sc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Parse reads a scenario. Every problem found is reported, combined into
// one error; each is a *domain.ValidationError naming its line.
func Parse(r io.Reader) (*Scenario, error) {
	sc := &Scenario{Holdings: make(map[string]int64)}
	var errs error
	invalid := func(line int, format string, args ...any) {
		errs = multierr.Append(errs, &domain.ValidationError{
			Message: fmt.Sprintf("line %d: ", line) + fmt.Sprintf(format, args...),
		})
	}

	section := 0
	holdingsLine := 0
	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		fields := strings.Fields(stripComment(scanner.Text()))
		if len(fields) == 0 {
			continue
		}
		switch section {
		case 0:
			for _, f := range fields {
				kind, ok := traderKinds[f]
				if !ok {
					invalid(lineNo, "unknown trader kind %q", f)
					continue
				}
				sc.Traders = append(sc.Traders, kind)
			}
		case 1:
			seen := make(map[string]bool)
			for _, f := range fields {
				symbol, price, err := parsePair(f)
				if err != nil {
					invalid(lineNo, "instrument %q: %v", f, err)
					continue
				}
				if price <= 0 {
					invalid(lineNo, "instrument %s: price must be > 0, got %d", symbol, price)
					continue
				}
				if seen[symbol] {
					invalid(lineNo, "instrument %s listed twice", symbol)
					continue
				}
				seen[symbol] = true
				sc.Listings = append(sc.Listings, Listing{Symbol: symbol, Price: price})
			}
		case 2:
			holdingsLine = lineNo
			cash, err := strconv.ParseInt(fields[0], 10, 64)
			switch {
			case err != nil:
				invalid(lineNo, "cash %q is not an integer", fields[0])
			case cash < 0:
				invalid(lineNo, "cash must be >= 0, got %d", cash)
			default:
				sc.Cash = cash
			}
			for _, f := range fields[1:] {
				symbol, qty, err := parsePair(f)
				if err != nil {
					invalid(lineNo, "holding %q: %v", f, err)
					continue
				}
				if qty < 0 {
					invalid(lineNo, "holding %s: quantity must be >= 0, got %d", symbol, qty)
					continue
				}
				if _, dup := sc.Holdings[symbol]; dup {
					invalid(lineNo, "holding %s listed twice", symbol)
					continue
				}
				sc.Holdings[symbol] = qty
			}
		default:
			invalid(lineNo, "unexpected content after the holdings line")
		}
		section++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	missing := func(what string) {
		errs = multierr.Append(errs, &domain.ValidationError{Message: "missing " + what + " line"})
	}
	if section < 1 {
		missing("trader")
	}
	if section < 2 {
		missing("instrument")
	}
	if section < 3 {
		missing("holdings")
	}

	listed := make(map[string]bool, len(sc.Listings))
	for _, l := range sc.Listings {
		listed[l.Symbol] = true
	}
	if section >= 3 {
		for _, symbol := range slices.Sorted(maps.Keys(sc.Holdings)) {
			if !listed[symbol] {
				invalid(holdingsLine, "holding references unknown instrument %s", symbol)
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return sc, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parsePair splits "SYM:n".
func parsePair(field string) (string, int64, error) {
	symbol, raw, ok := strings.Cut(field, ":")
	if !ok || symbol == "" || raw == "" || strings.Contains(raw, ":") {
		return "", 0, fmt.Errorf("want SYMBOL:NUMBER")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%q is not an integer", raw)
	}
	return symbol, n, nil
}
