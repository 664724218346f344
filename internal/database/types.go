package database

import (
	"encoding/json"
	"time"

	"gamepilot/internal/detector"
)

// EncodeDetections детекции в компактный JSON, пустой список кодируется как []
func EncodeDetections(dets []detector.Detection) (string, error) {
	if dets == nil {
		dets = []detector.Detection{}
	}
	b, err := json.Marshal(dets)
	return string(b), err
}

// SessionRow запись loop_sessions
type SessionRow struct {
	ID        int
	Kind      string
	Game      string
	Cycles    int
	Successes int
	Reason    string
	ErrorText string
	StartedAt time.Time
	StoppedAt time.Time
}

// Duration длительность сессии
func (r SessionRow) Duration() time.Duration {
	return r.StoppedAt.Sub(r.StartedAt).Round(time.Second)
}

// ScanRow запись scan_results без изображения
type ScanRow struct {
	ID          int
	Game        string
	WindowTitle string
	ObjectCount int
	Detections  string
	CreatedAt   time.Time
}

// CommandRow запись command_log
type CommandRow struct {
	ID        int
	Game      string
	Command   string
	Success   bool
	Reason    string
	CreatedAt time.Time
}

// Action удаленная команда из очереди
type Action struct {
	ID        int
	Action    string
	Executed  bool
	Result    string
	CreatedAt time.Time
}

// Status последний статус бота
type Status struct {
	ID            int
	CurrentStatus string
	UpdatedAt     time.Time
}
