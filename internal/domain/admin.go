package domain

// Summary aggregates dashboard totals.
type Summary struct {
	NumberOfUsers  int64   `json:"numberOfUsers"`
	NumberOfMovies int64   `json:"numberOfMovies"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

// ChartData is the loosely shaped series payload of the dashboard charts.
type ChartData map[string]any
