package backtest

import (
	"fmt"
	"io"
)

// Print 输出人类可读的回测汇总。
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "=== 回测结果 ===")
	fmt.Fprintf(w, "运行ID: %s\n", r.RunID)
	fmt.Fprintf(w, "交易对: %s\n", r.Symbol)
	fmt.Fprintf(w, "时间范围: %s - %s (%d 根)\n",
		r.StartTime.Format("2006-01-02 15:04"), r.EndTime.Format("2006-01-02 15:04"), r.Bars)
	fmt.Fprintf(w, "初始资金: %.2f\n", r.InitialBalance)
	fmt.Fprintf(w, "期末余额: %.2f\n", r.FinalBalance)
	fmt.Fprintf(w, "净盈亏(不含手续费): %.4f\n", r.NetPnL)
	fmt.Fprintf(w, "累计手续费: %.4f\n", r.TotalFees)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "成交笔数: %d (买 %d / 卖 %d)\n", r.TotalTrades, r.BuyTrades, r.SellTrades)
	fmt.Fprintf(w, "暂停报价: %d 根\n", r.HaltedBars)
	fmt.Fprintf(w, "期末持仓: %.8f\n", r.FinalPosition)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "最大回撤: %.4f\n", r.MaxDrawdown)
	fmt.Fprintf(w, "Sharpe-like: %.4f\n", r.SharpeLike)
	fmt.Fprintln(w, "================")
}
