package aggregator

import "pumpfun-api/model"

// SelectPair picks the pair with the highest USD liquidity. On equal liquidity the
// earlier pair in provider order wins. The bool is false for an empty list.
func SelectPair(pairs []model.TradingPair) (model.TradingPair, bool) {
	if len(pairs) == 0 {
		return model.TradingPair{}, false
	}
	best := pairs[0]
	for _, pair := range pairs[1:] {
		if pair.LiquidityUSD > best.LiquidityUSD {
			best = pair
		}
	}
	return best, true
}
