// watchlist はポータルのウォッチリストを操作するクライアントです。
// PORTAL_TOKEN が無い場合は端末ローカルのリストを使います。
//
//	watchlist add AAPL us Apple
//	watchlist prices -market us
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"stock_portal/internal/app/cli"
	"stock_portal/internal/app/di"
	"stock_portal/internal/platform/logger"
)

func main() {
	os.Exit(run())
}

// run は終了コードを返します。defer を確実に実行するため os.Exit は main でのみ呼びます。
func run() int {
	_ = godotenv.Load(".env")

	logCfg := logger.LoadConfigFromEnv()
	if logCfg.Level == "" {
		logCfg.Level = "warn"
	}
	// 標準出力は表の出力に使うためログは標準エラーへ
	logCloser := logger.Setup(logCfg, os.Stderr)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := di.NewClient(di.LoadClientConfig())
	err := cli.Run(ctx, cli.Deps{
		Resolver:     c.Resolver,
		Engine:       c.Engine,
		Orchestrator: c.Orchestrator,
	}, os.Args[1:], os.Stdout)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintln(os.Stderr, err)
		return 2
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
