package database

import (
	"context"
	"database/sql"
	"fmt"

	"gamepilot/internal/loop"
	"gamepilot/internal/pipeline"
)

// SaveSession сохраняет итог сессии
func (h *DatabaseManager) SaveSession(ctx context.Context, stats loop.Stats, runErr error) (int64, error) {
	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO loop_sessions (kind, game, cycles, successes, reason, error_text, started_at, stopped_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Kind, stats.Game, stats.Cycles, stats.Successes, stats.Reason, errText, stats.StartedAt, stats.StoppedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка вставки сессии: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID записи: %w", err)
	}
	h.logger.Info("💾 Сессия %s сохранена с ID: %d", stats.Kind, id)
	return id, nil
}

// SaveScanAsync сохраняет скан в фоне. Дождаться можно через WaitForAsyncOperations.
func (h *DatabaseManager) SaveScanAsync(game string, scan *pipeline.Scan, png []byte) {
	detections, err := EncodeDetections(scan.Detections)
	if err != nil {
		h.logger.LogError(err, "Ошибка кодирования детекций")
		return
	}
	title := scan.Frame.Window.Title
	count := len(scan.Detections)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		res, err := h.db.Exec(
			`INSERT INTO scan_results (game, window_title, object_count, image_data, detections_json) VALUES (?, ?, ?, ?, ?)`,
			game, title, count, png, detections)
		if err != nil {
			h.logger.LogError(err, "Ошибка асинхронного сохранения скана")
			return
		}
		id, _ := res.LastInsertId()
		h.logger.Info("✅ Скан сохранен асинхронно с ID: %d (%d объектов)", id, count)
	}()
}

// LogCommand пишет выполненную команду в журнал
func (h *DatabaseManager) LogCommand(ctx context.Context, game, command string, ok bool, reason string) error {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO command_log (game, command, success, reason) VALUES (?, ?, ?, ?)`,
		game, command, ok, reason)
	if err != nil {
		return fmt.Errorf("ошибка записи команды: %w", err)
	}
	return nil
}

// RecentSessions последние сессии
func (h *DatabaseManager) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, kind, game, cycles, successes, reason, COALESCE(error_text, ''), started_at, stopped_at
		 FROM loop_sessions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Kind, &r.Game, &r.Cycles, &r.Successes, &r.Reason, &r.ErrorText, &r.StartedAt, &r.StoppedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentScans последние сканы без изображений
func (h *DatabaseManager) RecentScans(ctx context.Context, limit int) ([]ScanRow, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, game, COALESCE(window_title, ''), object_count, COALESCE(detections_json, ''), created_at
		 FROM scan_results ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScanRow
	for rows.Next() {
		var r ScanRow
		if err := rows.Scan(&r.ID, &r.Game, &r.WindowTitle, &r.ObjectCount, &r.Detections, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ScanImage аннотированный PNG скана
func (h *DatabaseManager) ScanImage(ctx context.Context, id int) ([]byte, error) {
	var data []byte
	err := h.db.QueryRowContext(ctx, `SELECT image_data FROM scan_results WHERE id = ?`, id).Scan(&data)
	return data, err
}

// RecentCommands последние команды журнала
func (h *DatabaseManager) RecentCommands(ctx context.Context, limit int) ([]CommandRow, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, game, command, success, COALESCE(reason, ''), created_at FROM command_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CommandRow
	for rows.Next() {
		var r CommandRow
		if err := rows.Scan(&r.ID, &r.Game, &r.Command, &r.Success, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
