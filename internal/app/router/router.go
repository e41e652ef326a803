package router

import (
	"github.com/gin-gonic/gin"

	quotehandler "stock_portal/internal/feature/quotes/transport/handler"
	watchlisthandler "stock_portal/internal/feature/watchlist/transport/handler"
	platformhandler "stock_portal/internal/platform/http/handler"
	jwtmw "stock_portal/internal/platform/jwt"
)

func NewRouter(watchlist *watchlisthandler.WatchlistHandler, quotes *quotehandler.QuoteHandler,
	ready map[string]platformhandler.Check) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 認証不要
	// 導通確認用
	r.Any("/healthz", platformhandler.Health)
	r.GET("/readyz", platformhandler.Ready(ready))
	// 気配値プロキシ（未ログインのローカルウォッチリストからも使う）
	r.GET("/quotes/:market/:ticker", quotes.GetQuote)

	// 認証必須のルート
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/me", watchlist.Me)
		auth.GET("/watchlist", watchlist.List)
		auth.POST("/watchlist", watchlist.Add)
		auth.DELETE("/watchlist", watchlist.Clear)
		auth.DELETE("/watchlist/:ticker", watchlist.Remove)
	}

	return r
}
