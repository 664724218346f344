// Package database журнал сессий, сканов и команд в MySQL и очередь удаленных действий.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"gamepilot/internal/config"
	"gamepilot/internal/logger"
)

// DatabaseManager содержит функции для работы с базой данных
type DatabaseManager struct {
	db     *sql.DB
	logger *logger.LoggerManager
	wg     sync.WaitGroup // для ожидания завершения асинхронных операций
}

// NewDatabaseManager создает новый экземпляр DatabaseManager
func NewDatabaseManager(db *sql.DB, loggerManager *logger.LoggerManager) *DatabaseManager {
	return &DatabaseManager{
		db:     db,
		logger: loggerManager,
	}
}

// DSN строка подключения. Без withName подключаемся к серверу без выбора базы.
func DSN(cfg config.DatabaseConfig, withName bool) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if withName {
		mc.DBName = cfg.Name
	}
	return mc.FormatDSN()
}

// Open подключается к базе и проверяет соединение
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", DSN(cfg, true))
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MySQL: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(5)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("MySQL недоступен (%s:%d): %w", cfg.Host, cfg.Port, err)
	}
	return db, nil
}

// DB исходное соединение
func (h *DatabaseManager) DB() *sql.DB {
	return h.db
}

// WaitForAsyncOperations ожидает завершения всех асинхронных операций сохранения
func (h *DatabaseManager) WaitForAsyncOperations() {
	h.logger.Info("⏳ Ожидаем завершения асинхронных операций сохранения...")
	h.wg.Wait()
	h.logger.Info("✅ Все асинхронные операции сохранения завершены")
}
