package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetLatestUnexecutedAction самое старое невыполненное действие. id 0 значит очередь пуста.
func (h *DatabaseManager) GetLatestUnexecutedAction(ctx context.Context) (string, int, error) {
	var (
		id     int
		action string
	)
	err := h.db.QueryRowContext(ctx,
		`SELECT id, action FROM actions WHERE executed = FALSE ORDER BY id ASC LIMIT 1`).Scan(&id, &action)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("ошибка чтения действий: %w", err)
	}
	return action, id, nil
}

// MarkActionAsExecuted помечает действие выполненным и сохраняет результат
func (h *DatabaseManager) MarkActionAsExecuted(ctx context.Context, id int, result string) error {
	_, err := h.db.ExecContext(ctx,
		`UPDATE actions SET executed = TRUE, result = ?, executed_at = CURRENT_TIMESTAMP WHERE id = ?`, result, id)
	if err != nil {
		return fmt.Errorf("ошибка пометки действия %d: %w", id, err)
	}
	return nil
}

// AddAction ставит команду в очередь
func (h *DatabaseManager) AddAction(ctx context.Context, action string) (int64, error) {
	res, err := h.db.ExecContext(ctx, `INSERT INTO actions (action) VALUES (?)`, action)
	if err != nil {
		return 0, fmt.Errorf("ошибка добавления действия: %w", err)
	}
	return res.LastInsertId()
}

// RecentActions последние действия очереди
func (h *DatabaseManager) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, action, executed, COALESCE(result, ''), created_at FROM actions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Action, &a.Executed, &a.Result, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus записывает новый статус бота
func (h *DatabaseManager) UpdateStatus(ctx context.Context, status string) error {
	_, err := h.db.ExecContext(ctx, `INSERT INTO status (current_status) VALUES (?)`, status)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса: %w", err)
	}
	return nil
}

// GetStatus последний статус. Пустая таблица дает статус "unknown".
func (h *DatabaseManager) GetStatus(ctx context.Context) (Status, error) {
	var s Status
	err := h.db.QueryRowContext(ctx,
		`SELECT id, current_status, updated_at FROM status ORDER BY id DESC LIMIT 1`).Scan(&s.ID, &s.CurrentStatus, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Status{CurrentStatus: "unknown"}, nil
	}
	return s, err
}
