package entity

// Quote は1銘柄の最新気配値を表すドメインエンティティです。
type Quote struct {
	Ticker        string  // 銘柄コード
	Name          string  // 銘柄名（取得できない場合は空）
	Price         float64 // 現在値
	Change        float64 // 前日比
	ChangePercent float64 // 前日比（%）
	Volume        int64   // 出来高
}
