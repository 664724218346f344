package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"gamepilot/internal/config"
	"gamepilot/internal/database"
	"gamepilot/internal/logger"
)

func usage() {
	fmt.Println("Использование: status_manager <команда> [аргументы]")
	fmt.Println("Команды:")
	fmt.Println("  status <новый_статус> - обновить статус")
	fmt.Println("  action <команда игры> - поставить команду в очередь бота")
	fmt.Println("  show - показать текущий статус и последние действия")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	c, err := config.InitConfig(os.Getenv("GAMEPILOT_CONFIG"))
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, c.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()
	dbManager := database.NewDatabaseManager(db, logger.NewWriterLogger(os.Stderr))

	command := os.Args[1]
	arg := strings.Join(os.Args[2:], " ")

	switch command {
	case "status":
		if arg == "" {
			fmt.Println("Ошибка: укажите новый статус")
			return
		}
		if err := dbManager.UpdateStatus(ctx, arg); err != nil {
			log.Fatalf("Ошибка обновления статуса: %v", err)
		}
		fmt.Printf("Статус обновлен на: %s\n", arg)

	case "action":
		if arg == "" {
			fmt.Println("Ошибка: укажите действие")
			return
		}
		id, err := dbManager.AddAction(ctx, arg)
		if err != nil {
			log.Fatalf("Ошибка добавления действия: %v", err)
		}
		fmt.Printf("Действие #%d добавлено: %s\n", id, arg)

	case "show":
		status, err := dbManager.GetStatus(ctx)
		if err != nil {
			log.Fatalf("Ошибка получения статуса: %v", err)
		}
		actions, err := dbManager.RecentActions(ctx, 10)
		if err != nil {
			log.Fatalf("Ошибка получения действий: %v", err)
		}
		fmt.Printf("Текущий статус: %s (обновлен: %s)\n", status.CurrentStatus, status.UpdatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println("Последние действия:")
		for _, a := range actions {
			state := "ожидает"
			if a.Executed {
				state = a.Result
			}
			fmt.Printf("  - #%d %s [%s] (%s)\n", a.ID, a.Action, state, a.CreatedAt.Format("2006-01-02 15:04:05"))
		}

	default:
		fmt.Printf("Неизвестная команда: %s\n", command)
		usage()
	}
}
