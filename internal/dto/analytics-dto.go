package dto

// overview | engagement | conversion
type ReportRequestDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=overview engagement conversion"`
	// Период в формате YYYY-MM-DD; пустой = последние 30 дней.
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ReportDTO struct {
	Type        string                 `json:"type"`
	PeriodFrom  string                 `json:"period_from"`
	PeriodTo    string                 `json:"period_to"`
	Totals      map[string]interface{} `json:"totals"`
	Series      []ReportPointDTO       `json:"series"`
	GeneratedAt string                 `json:"generated_at"`
}

type ReportPointDTO struct {
	Date   string           `json:"date"`
	Values map[string]int64 `json:"values"`
}
