package models

// DistributionItem is one bucket of a categorical breakdown.
type DistributionItem struct {
	Name       string `json:"name"`
	Value      int    `json:"value"`
	Percentage string `json:"percentage"`
	Fill       string `json:"fill"`
}

// TimeSeriesPoint is one calendar day of lead counts. The intent fields are
// only set by the intent-split generator.
type TimeSeriesPoint struct {
	Date         string `json:"date"`
	Leads        int    `json:"leads"`
	HighIntent   *int   `json:"highIntent,omitempty"`
	MediumIntent *int   `json:"mediumIntent,omitempty"`
	LowIntent    *int   `json:"lowIntent,omitempty"`
}

// PeriodSplit partitions leads by calendar month.
type PeriodSplit struct {
	CurrentMonthLeads  []*Lead `json:"currentMonthLeads"`
	PreviousMonthLeads []*Lead `json:"previousMonthLeads"`
}

// OverviewMetrics are the headline dashboard numbers with their
// month-over-month deltas.
type OverviewMetrics struct {
	TotalLeads           int     `json:"totalLeads"`
	HighIntentPercentage int     `json:"highIntentPercentage"`
	AvgLeadScore         float64 `json:"avgLeadScore"`
	TotalLeadsChange     string  `json:"totalLeadsChange"`
	HighIntentChange     string  `json:"highIntentChange"`
	AvgScoreChange       string  `json:"avgScoreChange"`
}

// FunnelMetrics counts leads that reached each pipeline stage.
type FunnelMetrics struct {
	Total         int     `json:"total"`
	Contacted     int     `json:"contacted"`
	Qualified     int     `json:"qualified"`
	Converted     int     `json:"converted"`
	Lost          int     `json:"lost"`
	ContactedRate float64 `json:"contactedRate"`
	QualifiedRate float64 `json:"qualifiedRate"`
	ConvertedRate float64 `json:"convertedRate"`
}

// Distributions groups every categorical breakdown of the dashboard.
type Distributions struct {
	Intent          []DistributionItem `json:"intent"`
	Status          []DistributionItem `json:"status"`
	Source          []DistributionItem `json:"source"`
	Apartment       []DistributionItem `json:"apartment"`
	Income          []DistributionItem `json:"income"`
	Employment      []DistributionItem `json:"employment"`
	Pets            []DistributionItem `json:"pets"`
	ContactMethod   []DistributionItem `json:"contactMethod"`
	OutreachTime    []DistributionItem `json:"outreachTime"`
	Engagement      []DistributionItem `json:"engagement"`
	MoveInTiming    []DistributionItem `json:"moveInTiming"`
	UTMSource       []DistributionItem `json:"utmSource"`
	LeadScoreRanges []DistributionItem `json:"leadScoreRanges"`
}

// DashboardReport holds the computed analytics over one lead collection.
type DashboardReport struct {
	Overview      OverviewMetrics   `json:"overview"`
	Funnel        FunnelMetrics     `json:"funnel"`
	Distributions Distributions     `json:"distributions"`
	TimeSeries    []TimeSeriesPoint `json:"timeSeries"`
	TopLeads      []*Lead           `json:"topLeads"`
	GeneratedAt   string            `json:"generatedAt"`
}
