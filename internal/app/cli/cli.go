// Package cli はウォッチリストクライアントのサブコマンドを実装します。
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"stock_portal/internal/feature/watchlist/domain/entity"
	"stock_portal/internal/feature/watchlist/usecase"
)

// SessionResolver はクライアントのセッションを解決します。
type SessionResolver interface {
	Resolve(ctx context.Context) (usecase.Session, error)
}

// Deps はコマンド実行に必要なコンポーネントです。
type Deps struct {
	Resolver     SessionResolver
	Engine       *usecase.SyncEngine
	Orchestrator *usecase.Orchestrator
}

// ErrUsage はサブコマンドや引数が不正なことを表します。
var ErrUsage = errors.New("usage: watchlist <list|add|remove|toggle|clear|prices|merge-local> [args]")

// Run は args[0] のサブコマンドを実行し、結果を out に書き込みます。
func Run(ctx context.Context, d Deps, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	session, err := d.Resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("identity check failed: %w", err)
	}
	d.Engine.Load(ctx, session)

	switch cmd {
	case "list":
		return list(d, rest, out)
	case "add", "toggle":
		e, err := parseEntry(rest)
		if err != nil {
			return err
		}
		if cmd == "add" {
			added, err := d.Engine.Add(ctx, e)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s added=%t\n", e.Ticker, added)
			return nil
		}
		member, err := d.Engine.Toggle(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s member=%t\n", e.Ticker, member)
		return nil
	case "remove":
		if len(rest) != 1 {
			return ErrUsage
		}
		removed, err := d.Engine.Remove(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s removed=%t\n", rest[0], removed)
		return nil
	case "clear":
		if err := d.Engine.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "cleared")
		return nil
	case "prices":
		return prices(ctx, d, rest, out)
	case "merge-local":
		n, err := d.Engine.MergeLocal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "merged=%d\n", n)
		return nil
	default:
		return ErrUsage
	}
}

func list(d Deps, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	market := fs.String("market", "", "kr|us|jp|hk (empty = all)")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}

	entries := d.Engine.Entries()
	if *market != "" {
		m, err := parseMarket(*market)
		if err != nil {
			return err
		}
		entries = d.Engine.ByMarket(m)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tMARKET\tNAME\tADDED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Ticker, e.Market, e.DisplayName, e.AddedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func prices(ctx context.Context, d Deps, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("prices", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	market := fs.String("market", string(entity.MarketUS), "kr|us|jp|hk")
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	m, err := parseMarket(*market)
	if err != nil {
		return err
	}

	rows, _ := d.Orchestrator.Refresh(ctx, m, d.Engine.ByMarket(m))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tNAME\tPRICE\tCHANGE\tCHANGE%\tVOLUME")
	for _, r := range rows {
		if !r.HasQuote() {
			status := r.Error
			if r.IsLoading {
				status = "loading"
			}
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%s\n", r.Ticker, r.DisplayName, status)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", r.Ticker, r.DisplayName,
			formatFloat(*r.Price), formatFloat(*r.Change), formatFloat(*r.ChangePercent), *r.Volume)
	}
	return tw.Flush()
}

// parseEntry は "TICKER MARKET [NAME...]" を解釈します。
func parseEntry(args []string) (entity.Entry, error) {
	if len(args) < 2 {
		return entity.Entry{}, ErrUsage
	}
	m, err := parseMarket(args[1])
	if err != nil {
		return entity.Entry{}, err
	}
	name := strings.Join(args[2:], " ")
	if name == "" {
		name = args[0]
	}
	return entity.Entry{Ticker: args[0], Market: m, DisplayName: name}, nil
}

func parseMarket(s string) (entity.Market, error) {
	m := entity.Market(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown market %q", s)
	}
	return m, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
