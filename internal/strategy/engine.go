package strategy

import (
	"fmt"

	"RSILab/internal/calculator"
	"RSILab/internal/model"
)

// DefaultParams mirrors the classic 14-period RSI with 80/20 bands.
var DefaultParams = model.StrategyParams{TimePeriod: 14, RSIUpper: 80, RSILower: 20}

// ValidateParams checks the strategy bands.
func ValidateParams(p model.StrategyParams) error {
	if p.TimePeriod < 1 {
		return &model.ValidationError{Field: "strategy.timeperiod", Reason: fmt.Sprintf("must be >= 1, got %d", p.TimePeriod)}
	}
	if p.RSILower < 0 || p.RSIUpper > 100 {
		return &model.ValidationError{Field: "strategy", Reason: fmt.Sprintf("bands %.1f/%.1f outside [0,100]", p.RSILower, p.RSIUpper)}
	}
	if p.RSILower >= p.RSIUpper {
		return &model.ValidationError{Field: "strategy", Reason: fmt.Sprintf("rsi_lower %.1f must be below rsi_upper %.1f", p.RSILower, p.RSIUpper)}
	}
	return nil
}

// decide maps one RSI transition to an action. Both crossovers are strict on
// either side: RSI falling through the lower band is oversold (buy), rising
// through the upper band is overbought (sell). Buy wins if both apply.
func decide(prev, cur float64, p model.StrategyParams) model.Action {
	switch {
	case prev > p.RSILower && cur < p.RSILower:
		return model.ActionBuy
	case prev < p.RSIUpper && cur > p.RSIUpper:
		return model.ActionSell
	default:
		return model.ActionHold
	}
}

// Evaluate returns a signal for every bar where the crossover strategy acts,
// in date order.
func Evaluate(series model.PriceSeries, p model.StrategyParams) ([]model.TradeSignal, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	rsi, err := calculator.CalculateRSISeries(series, p.TimePeriod)
	if err != nil {
		return nil, err
	}

	var signals []model.TradeSignal
	for i := p.TimePeriod + 1; i < len(rsi.Points); i++ {
		prev, cur := rsi.Points[i-1], rsi.Points[i]
		action := decide(prev.Value, cur.Value, p)
		if action == model.ActionHold {
			continue
		}
		signals = append(signals, model.TradeSignal{
			Symbol:  series.Symbol,
			Time:    cur.Time,
			Action:  action,
			Price:   series.Points[i].Close,
			RSI:     cur.Value,
			PrevRSI: prev.Value,
			Params:  p,
		})
	}
	return signals, nil
}

// Latest evaluates only the final bar. It returns HOLD when the last
// transition is not a crossover.
func Latest(series model.PriceSeries, p model.StrategyParams) (*model.TradeSignal, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() < p.TimePeriod+2 {
		return nil, fmt.Errorf("not enough data for RSI(%d) crossover: have %d points, need %d",
			p.TimePeriod, series.Len(), p.TimePeriod+2)
	}
	rsi, err := calculator.CalculateRSISeries(series, p.TimePeriod)
	if err != nil {
		return nil, err
	}
	n := len(rsi.Points)
	prev, cur := rsi.Points[n-2], rsi.Points[n-1]
	return &model.TradeSignal{
		Symbol:      series.Symbol,
		Time:        cur.Time,
		Action:      decide(prev.Value, cur.Value, p),
		Price:       series.Points[n-1].Close,
		RSI:         cur.Value,
		PrevRSI:     prev.Value,
		Params:      p,
		TriggerType: model.TriggerManual,
	}, nil
}
