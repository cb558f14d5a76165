package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/efreitasn/roundexchange/internal/domain"
	"github.com/efreitasn/roundexchange/internal/service"
)

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r as a sequence of aligned tables.
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "seed %d: %d rounds, %d trades, %d shares traded, %d cancelled, %d expired\n\n",
		r.Seed, r.Summary.Rounds, r.Summary.Trades, r.Summary.Volume, r.Summary.Cancelled, r.Summary.Expired)

	fmt.Fprintln(tw, "SYMBOL\tLAST\tROUND\tSMA5\tSMA10\tVWAP\tTRADES")
	for _, p := range r.Instruments {
		sma5, sma10 := "-", "-"
		if p.SignalsReady {
			sma5, sma10 = p.SMA5.StringFixed(2), p.SMA10.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\t%d\n",
			p.Symbol, p.LastPrice, p.LastTradeRound, sma5, sma10, p.VWAP.StringFixed(2), p.TotalTrades)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "SYMBOL\tBIDS\tASKS\tSPREAD\tRESTING")
	for _, b := range r.Books {
		spread := "-"
		if b.Spread != nil {
			spread = fmt.Sprint(*b.Spread)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\n",
			b.Symbol, levels(b.Bids), levels(b.Asks), spread, b.BidOrders, b.AskOrders)
	}
	fmt.Fprintln(tw)

	if len(r.Statuses) > 0 {
		statuses := make([]string, 0, len(r.Statuses))
		for st := range r.Statuses {
			statuses = append(statuses, string(st))
		}
		sort.Strings(statuses)
		parts := make([]string, len(statuses))
		for i, st := range statuses {
			parts[i] = fmt.Sprintf("%s=%d", st, r.Statuses[domain.OrderStatus(st)])
		}
		fmt.Fprintf(tw, "orders: %s\n\n", strings.Join(parts, " "))
	}

	fmt.Fprintln(tw, "ACCOUNT\tCASH\tOPEN\tHOLDINGS")
	for _, a := range r.Accounts {
		holdings := make([]string, len(a.Holdings))
		for i, h := range a.Holdings {
			holdings[i] = fmt.Sprintf("%s:%d", h.Symbol, h.Quantity)
		}
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", a.AccountID, a.Cash, a.OpenOrders, strings.Join(holdings, " "))
	}
	if r.Totals != nil {
		symbols := make([]string, 0, len(r.Totals.Shares))
		for s := range r.Totals.Shares {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		shares := make([]string, len(symbols))
		for i, s := range symbols {
			shares[i] = fmt.Sprintf("%s:%d", s, r.Totals.Shares[s])
		}
		fmt.Fprintf(tw, "total(%d)\t%d\t\t%s\n", r.Totals.Accounts, r.Totals.Cash, strings.Join(shares, " "))
	}

	if r.Orders != nil {
		fmt.Fprintf(tw, "\naccount %d: %d of %d orders\n", r.Orders.AccountID, len(r.Orders.Orders), r.Orders.Total)
		fmt.Fprintln(tw, "ID\tSYMBOL\tSIDE\tPRICE\tQTY\tFILLED\tEXPIRY\tROUND\tSTATUS")
		for _, o := range r.Orders.Orders {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%s\t%d\t%s\n",
				o.ID, o.Symbol, o.Side, o.Price, o.Quantity, o.Filled, o.Expiry, o.SubmittedRound, o.Status)
		}
	}

	if len(r.Metrics) > 0 {
		fmt.Fprintln(tw, "\nMETRIC\tVALUE")
		for _, s := range r.Metrics {
			fmt.Fprintf(tw, "%s%s\t%g\n", s.Name, labelString(s.Labels), s.Value)
		}
	}

	return tw.Flush()
}

// levels renders price levels as "qty@price" pairs, best first.
func levels(pl []service.BookPriceLevel) string {
	if len(pl) == 0 {
		return "-"
	}
	parts := make([]string, len(pl))
	for i, l := range pl {
		parts[i] = fmt.Sprintf("%d@%d", l.TotalQuantity, l.Price)
	}
	return strings.Join(parts, " ")
}

func labelString(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, labels[k])
	}
	return "{" + strings.Join(parts, ",") + "}"
}
