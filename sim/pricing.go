package sim

// CustomPrice maps realized average delivery time onto the custom product's
// unit price: full price while deliveries meet the quoted lead time, linear
// decline to the floor at the maximum lead time, floor beyond it. Late
// delivery therefore depresses custom revenue, which is what couples the
// production backlog to the market.
func CustomPrice(cfg PricingConfig, avgDeliveryDays float64) float64 {
	if avgDeliveryDays <= cfg.QuotedLeadDays {
		return cfg.CustomBasePrice
	}
	if avgDeliveryDays >= cfg.MaxLeadDays {
		return cfg.CustomMinPrice
	}
	frac := (avgDeliveryDays - cfg.QuotedLeadDays) / (cfg.MaxLeadDays - cfg.QuotedLeadDays)
	return cfg.CustomBasePrice - frac*(cfg.CustomBasePrice-cfg.CustomMinPrice)
}
