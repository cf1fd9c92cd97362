package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// QueryResult - результат одного именованного запроса
type QueryResult struct {
	Query   string            `json:"query"`
	Results []json.RawMessage `json:"results"`
	Error   string            `json:"error,omitempty"`
}

// Snapshot - данные группы, полученные из API школы за один запуск
type Snapshot struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Campus      string    `gorm:"type:varchar(20);not null" json:"campus"`
	GroupCode   string    `gorm:"type:varchar(20);not null;index" json:"group"`
	PeriodCode  string    `gorm:"type:varchar(20)" json:"period_code"`
	PeriodName  string    `json:"period_name"`
	Payload     string    `gorm:"type:text;not null" json:"-"`
	QueryCount  int       `gorm:"not null;default:0" json:"query_count"`
	FailedCount int       `gorm:"not null;default:0" json:"failed_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Snapshot) TableName() string {
	return "snapshots"
}

// SetQueries сериализует результаты запросов в Payload
func (s *Snapshot) SetQueries(queries map[string]QueryResult) error {
	data, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("encode snapshot payload: %w", err)
	}

	s.Payload = string(data)
	s.QueryCount = len(queries)
	s.FailedCount = 0
	for _, q := range queries {
		if q.Error != "" {
			s.FailedCount++
		}
	}
	return nil
}

// Queries разбирает Payload
func (s *Snapshot) Queries() (map[string]QueryResult, error) {
	queries := map[string]QueryResult{}
	if s.Payload == "" {
		return queries, nil
	}
	if err := json.Unmarshal([]byte(s.Payload), &queries); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return queries, nil
}

// Dataset собирает типизированный набор данных из результатов запросов
func (s *Snapshot) Dataset() (Dataset, error) {
	var ds Dataset

	queries, err := s.Queries()
	if err != nil {
		return ds, err
	}

	rows := make(map[string][]json.RawMessage, len(queries))
	for name, q := range queries {
		rows[name] = q.Results
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return ds, fmt.Errorf("encode dataset: %w", err)
	}
	if err := json.Unmarshal(data, &ds); err != nil {
		return ds, fmt.Errorf("decode dataset: %w", err)
	}

	return ds, nil
}

// IsValid проверяет обязательные поля
func (s *Snapshot) IsValid() bool {
	return s.ID != "" && s.GroupCode != "" && s.Campus != ""
}
