package database

import (
	"context"
	"fmt"
)

// Schema таблицы журнала и очереди действий
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS loop_sessions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		kind VARCHAR(64) NOT NULL,
		game VARCHAR(64) NOT NULL,
		cycles INT NOT NULL DEFAULT 0,
		successes INT NOT NULL DEFAULT 0,
		reason VARCHAR(32) NOT NULL,
		error_text TEXT,
		started_at DATETIME NOT NULL,
		stopped_at DATETIME NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS scan_results (
		id INT AUTO_INCREMENT PRIMARY KEY,
		game VARCHAR(64) NOT NULL,
		window_title VARCHAR(255),
		object_count INT NOT NULL DEFAULT 0,
		image_data LONGBLOB,
		detections_json LONGTEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS command_log (
		id INT AUTO_INCREMENT PRIMARY KEY,
		game VARCHAR(64) NOT NULL,
		command VARCHAR(255) NOT NULL,
		success BOOLEAN NOT NULL,
		reason VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		action VARCHAR(255) NOT NULL,
		executed BOOLEAN NOT NULL DEFAULT FALSE,
		result VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		executed_at TIMESTAMP NULL
	)`,
	`CREATE TABLE IF NOT EXISTS status (
		id INT AUTO_INCREMENT PRIMARY KEY,
		current_status VARCHAR(255) NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema создает недостающие таблицы
func (h *DatabaseManager) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка создания таблицы: %w", err)
		}
	}
	return nil
}
