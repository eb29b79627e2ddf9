package model

import "time"

// Action is what the crossover strategy asks for on a given bar.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// TriggerType indicates what produced a signal.
type TriggerType string

const (
	TriggerDaily  TriggerType = "DAILY"
	TriggerWeekly TriggerType = "WEEKLY"
	TriggerManual TriggerType = "MANUAL"
)

// StrategyParams configures the RSI crossover strategy.
type StrategyParams struct {
	TimePeriod int
	RSIUpper   float64
	RSILower   float64
}

// TradeSignal is one actionable bar of the crossover strategy.
type TradeSignal struct {
	Symbol      string
	Time        time.Time
	Action      Action
	Price       float64
	RSI         float64
	PrevRSI     float64
	Params      StrategyParams
	TriggerType TriggerType
}
