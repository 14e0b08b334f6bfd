package fusion

// Metrics are the headline figures quoted by the demo.
type Metrics struct {
	HeroImprovementMIoU           float64 `json:"heroImprovementMiou"`
	DashboardImprovementMIoU      float64 `json:"dashboardImprovementMiou"`
	BandwidthReductionPercent     int     `json:"bandwidthReductionPercent"`
	BandwidthReductionApproximate bool    `json:"bandwidthReductionApproximate"`
}

// DemoMetrics returns the published metric constants.
func DemoMetrics() Metrics {
	return Metrics{
		HeroImprovementMIoU:           1.9,
		DashboardImprovementMIoU:      8.42,
		BandwidthReductionPercent:     35,
		BandwidthReductionApproximate: true,
	}
}
