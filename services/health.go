package services

import (
	"context"
	"math"
	"sort"

	"bloom-monitor/models"
	"bloom-monitor/repositories/interfaces"
)

// HealthService aggregates the fleet's latest readings and active alerts.
type HealthService struct {
	assetRepo interfaces.AssetRepositoryInterface
	alertRepo interfaces.AlertRepositoryInterface
}

func NewHealthService(assetRepo interfaces.AssetRepositoryInterface, alertRepo interfaces.AlertRepositoryInterface) *HealthService {
	return &HealthService{assetRepo: assetRepo, alertRepo: alertRepo}
}

// Overview summarizes every asset.
func (hs *HealthService) Overview(ctx context.Context) (*models.HealthOverview, error) {
	assets, err := hs.assetRepo.ListWithLatestReading(ctx)
	if err != nil {
		return nil, err
	}
	active, err := hs.alertRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	overview := summarize(assets, active)
	return &overview, nil
}

// ByLocation summarizes assets grouped by location, sorted by location name.
func (hs *HealthService) ByLocation(ctx context.Context) ([]models.LocationHealth, error) {
	assets, err := hs.assetRepo.ListWithLatestReading(ctx)
	if err != nil {
		return nil, err
	}
	active, err := hs.alertRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]models.AssetWithLatest{}
	locationOf := map[string]string{}
	for _, a := range assets {
		grouped[a.Location] = append(grouped[a.Location], a)
		locationOf[a.ID] = a.Location
	}
	alertsAt := map[string][]models.Alert{}
	for _, al := range active {
		if al.DatacenterID == nil {
			continue
		}
		if loc, ok := locationOf[*al.DatacenterID]; ok {
			alertsAt[loc] = append(alertsAt[loc], al)
		}
	}

	locations := make([]string, 0, len(grouped))
	for loc := range grouped {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	result := make([]models.LocationHealth, 0, len(locations))
	for _, loc := range locations {
		result = append(result, models.LocationHealth{
			Location:       loc,
			HealthOverview: summarize(grouped[loc], alertsAt[loc]),
		})
	}
	return result, nil
}

// AssetHealth labels every asset from its active alerts: critical when any is
// critical, warning when any is active, healthy otherwise.
func (hs *HealthService) AssetHealth(ctx context.Context) ([]models.AssetHealth, error) {
	assets, err := hs.assetRepo.ListWithLatestReading(ctx)
	if err != nil {
		return nil, err
	}
	active, err := hs.alertRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byAsset := map[string][]models.Alert{}
	for _, al := range active {
		if al.DatacenterID != nil {
			byAsset[*al.DatacenterID] = append(byAsset[*al.DatacenterID], al)
		}
	}

	result := make([]models.AssetHealth, 0, len(assets))
	for _, a := range assets {
		alerts := byAsset[a.ID]
		if alerts == nil {
			alerts = []models.Alert{}
		}
		result = append(result, models.AssetHealth{
			AssetWithLatest: a,
			Status:          healthStatus(alerts),
			ActiveAlerts:    alerts,
		})
	}
	return result, nil
}

func healthStatus(active []models.Alert) models.AssetHealthStatus {
	status := models.AssetHealthy
	for _, al := range active {
		if al.Severity == models.SeverityCritical {
			return models.AssetCritical
		}
		status = models.AssetWarning
	}
	return status
}

func summarize(assets []models.AssetWithLatest, active []models.Alert) models.HealthOverview {
	overview := models.HealthOverview{
		TotalAssets:  len(assets),
		AssetsByType: map[models.AssetType]int{},
		ActiveAlerts: countAlerts(active),
	}

	var temp, hum, power runningMean
	for _, a := range assets {
		overview.AssetsByType[a.AssetType]++
		if r := a.LatestReading; r != nil {
			temp.add(r.Temperature)
			hum.add(r.Humidity)
			power.add(r.PowerDraw)
		}
	}

	overview.Averages = models.MetricAverages{
		Temperature:        temp.mean(),
		Humidity:           hum.mean(),
		PowerDraw:          power.mean(),
		TemperatureSamples: temp.n,
		HumiditySamples:    hum.n,
		PowerDrawSamples:   power.n,
	}
	return overview
}

func countAlerts(active []models.Alert) models.ActiveAlertCounts {
	counts := models.ActiveAlertCounts{
		Total:      len(active),
		BySeverity: map[models.Severity]int{},
		ByType:     map[models.AlertType]int{},
	}
	for _, al := range active {
		counts.BySeverity[al.Severity]++
		counts.ByType[al.Type]++
	}
	return counts
}

type runningMean struct {
	sum float64
	n   int
}

func (m *runningMean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

// mean is rounded to two decimals; nil when nothing contributed.
func (m *runningMean) mean() *float64 {
	if m.n == 0 {
		return nil
	}
	v := math.Round(m.sum/float64(m.n)*100) / 100
	return &v
}
