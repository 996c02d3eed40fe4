package models

// MetricAverages holds per-metric means across assets. A nil mean means no
// asset contributed a value for that metric.
type MetricAverages struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	PowerDraw   *float64 `json:"powerDraw"`

	TemperatureSamples int `json:"temperatureSamples"`
	HumiditySamples    int `json:"humiditySamples"`
	PowerDrawSamples   int `json:"powerDrawSamples"`
}

// ActiveAlertCounts summarizes unresolved alerts.
type ActiveAlertCounts struct {
	Total      int               `json:"total"`
	BySeverity map[Severity]int  `json:"bySeverity"`
	ByType     map[AlertType]int `json:"byType"`
}

// HealthOverview is the fleet-wide aggregate.
type HealthOverview struct {
	TotalAssets  int               `json:"totalAssets"`
	AssetsByType map[AssetType]int `json:"assetsByType"`
	Averages     MetricAverages    `json:"averages"`
	ActiveAlerts ActiveAlertCounts `json:"activeAlerts"`
}

// LocationHealth is the aggregate for a single location.
type LocationHealth struct {
	Location string `json:"location"`
	HealthOverview
}

// AssetHealthStatus is the derived health label of an asset.
type AssetHealthStatus string

const (
	AssetHealthy  AssetHealthStatus = "healthy"
	AssetWarning  AssetHealthStatus = "warning"
	AssetCritical AssetHealthStatus = "critical"
)

// AssetHealth is an asset with its latest reading and active alerts.
type AssetHealth struct {
	AssetWithLatest
	Status       AssetHealthStatus `json:"healthStatus"`
	ActiveAlerts []Alert           `json:"activeAlerts"`
}
