package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"gamepilot/internal/config"
	"gamepilot/internal/database"
	"gamepilot/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "путь к файлу конфигурации")
	drop := flag.Bool("drop", false, "удалить базу перед созданием")
	flag.Parse()

	c, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}
	name := c.Database.Name
	if name == "" || strings.ContainsAny(name, "`; ") {
		log.Fatalf("Недопустимое имя базы: %q", name)
	}

	// Подключаемся к MySQL без указания базы
	db, err := sql.Open("mysql", database.DSN(c.Database, false))
	if err != nil {
		log.Fatalf("Ошибка подключения к MySQL: %v", err)
	}
	defer db.Close()

	if *drop {
		if _, err := db.Exec("DROP DATABASE IF EXISTS `" + name + "`"); err != nil {
			log.Fatalf("Ошибка удаления базы: %v", err)
		}
		fmt.Printf("База данных %s удалена (если была)\n", name)
	}

	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS `" + name + "` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	if err != nil {
		log.Fatalf("Ошибка создания базы: %v", err)
	}
	fmt.Printf("База данных %s готова\n", name)

	ctx := context.Background()
	conn, err := database.Open(ctx, c.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к новой базе: %v", err)
	}
	defer conn.Close()

	dbManager := database.NewDatabaseManager(conn, logger.NewWriterLogger(log.Writer()))
	if err := dbManager.EnsureSchema(ctx); err != nil {
		log.Fatalf("Ошибка создания таблиц: %v", err)
	}
	fmt.Printf("Создано таблиц: %d\n", len(database.Schema))
	fmt.Println("Инициализация базы завершена!")
}
