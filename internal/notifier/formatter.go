package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"RSILab/internal/model"
	"RSILab/internal/report"
)

// FormatSweepSummary formats the top lookbacks of both sweep tables.
func FormatSweepSummary(res *model.SweepResult, topN int, runID string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>RSI 阈值扫描</b> | %s\n\n", html.EscapeString(res.Symbol)))
	b.WriteString(fmt.Sprintf("区间: %s ~ %s\n", res.Start.Format("2006-01-02"), res.End.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("持有期: %d 天\n", res.HorizonDays))
	b.WriteString(fmt.Sprintf("网格: %d 个周期 × %d/%d 个阈值\n\n",
		len(res.Upper.Lookbacks()), len(res.Upper.Thresholds()), len(res.Lower.Thresholds())))

	b.WriteString("📉 <b>上穿上限后 (跌幅最大)</b>\n")
	writeRanked(&b, report.TopLookbacks(res.Upper, topN))
	b.WriteString("\n📈 <b>下穿下限后 (涨幅最大)</b>\n")
	writeRanked(&b, report.TopLookbacks(res.Lower, topN))

	if runID != "" {
		b.WriteString(fmt.Sprintf("\n<code>%s</code>", runID))
	}
	return b.String()
}

func writeRanked(b *strings.Builder, ranked []report.RankedLookback) {
	if len(ranked) == 0 {
		b.WriteString("  无穿越事件\n")
		return
	}
	for i, r := range ranked {
		b.WriteString(fmt.Sprintf("  %d. 周期 %d / 阈值 %d: %+.2f%% (%d 次)\n",
			i+1, r.Lookback, r.Threshold, r.Average, r.Events))
	}
}

// FormatSignal formats a crossover strategy signal.
func FormatSignal(sig *model.TradeSignal) string {
	var b strings.Builder

	icon, label := "⏸", "持有"
	switch sig.Action {
	case model.ActionBuy:
		icon, label = "🟢", "买入"
	case model.ActionSell:
		icon, label = "🔴", "卖出"
	}
	b.WriteString(fmt.Sprintf("%s <b>RSI 交叉信号: %s</b> | %s\n\n", icon, label, html.EscapeString(sig.Symbol)))
	b.WriteString(fmt.Sprintf("日期: %s\n", sig.Time.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("收盘价: %.2f\n", sig.Price))
	b.WriteString(fmt.Sprintf("RSI(%d): %.2f → %.2f\n", sig.Params.TimePeriod, sig.PrevRSI, sig.RSI))
	b.WriteString(fmt.Sprintf("区间: 下限 %.0f / 上限 %.0f\n", sig.Params.RSILower, sig.Params.RSIUpper))

	switch sig.Action {
	case model.ActionBuy:
		b.WriteString("\nRSI 跌破下限，超卖")
	case model.ActionSell:
		b.WriteString("\nRSI 突破上限，超买")
	}
	return b.String()
}

var zoneLabels = map[model.RSIZone]string{
	model.ZoneDeepOversold:   "深度超卖",
	model.ZoneOversold:       "超卖",
	model.ZoneNeutral:        "中性",
	model.ZoneOverbought:     "超买",
	model.ZoneDeepOverbought: "深度超买",
}

// FormatRSI formats the most recent RSI readings.
func FormatRSI(symbol string, period int, rows []report.RSIRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📐 <b>RSI(%d)</b> | %s\n\n", period, html.EscapeString(symbol)))
	if len(rows) == 0 {
		b.WriteString("数据不足")
		return b.String()
	}
	b.WriteString("<pre>")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s %10.2f %6.2f %s\n",
			r.Point.Time.Format("01-02"), r.Point.Close, r.RSI, zoneLabels[r.Zone]))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatRecordedSweep formats a stored sweep with the time it was recorded.
func FormatRecordedSweep(runID string, recordedAt time.Time, res *model.SweepResult, topN int) string {
	return fmt.Sprintf("🗂 记录于 %s\n\n%s", recordedAt.Format("2006-01-02 15:04"), FormatSweepSummary(res, topN, runID))
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return strings.Join([]string{
		"<b>RSILab 命令</b>",
		"/signal - 最新 RSI 交叉信号",
		"/rsi [天数] - 最近 RSI 读数",
		"/sweep - 最近一次扫描结果",
		"/sweep run - 立即重新扫描",
		"/help - 帮助",
	}, "\n")
}
