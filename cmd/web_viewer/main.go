package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"gamepilot/internal/config"
	"gamepilot/internal/database"
	"gamepilot/internal/logger"
)

//go:embed templates/*.html
var templates embed.FS

const pageSize = 50

type PageData struct {
	ActiveTab string
	Status    database.Status
	Sessions  []database.SessionRow
	Scans     []database.ScanRow
	Commands  []database.CommandRow
	Actions   []database.Action
	Error     string
}

var funcs = template.FuncMap{
	"formatDateTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("02.01.2006 15:04:05")
	},
	"formatReason": func(reason string) string {
		switch reason {
		case "stopped":
			return "🛑 Остановлена"
		case "cancel_key":
			return "⌨️ Горячая клавиша"
		case "finished":
			return "🏁 Завершена"
		case "error":
			return "❌ Ошибка"
		default:
			return reason
		}
	},
	"okIcon": func(ok bool) string {
		if ok {
			return "✅"
		}
		return "❌"
	},
}

type viewer struct {
	db   *database.DatabaseManager
	tmpl *template.Template
}

func main() {
	// Получаем порт из переменной окружения
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	host := os.Getenv("HOST")
	if host == "" {
		host = "0.0.0.0"
	}

	c, err := config.InitConfig(os.Getenv("GAMEPILOT_CONFIG"))
	if err != nil {
		log.Fatalf("Ошибка чтения конфигурации: %v", err)
	}

	db, err := database.Open(context.Background(), c.Database)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	tmpl, err := template.New("layout").Funcs(funcs).ParseFS(templates, "templates/*.html")
	if err != nil {
		log.Fatalf("Ошибка шаблонов: %v", err)
	}

	v := &viewer{db: database.NewDatabaseManager(db, logger.NewWriterLogger(os.Stderr)), tmpl: tmpl}
	http.HandleFunc("/", v.index)
	http.HandleFunc("/scan/", v.scanImage)

	fmt.Printf("🚀 GamePilot viewer запущен на порту %s\n", port)
	fmt.Printf("📊 База данных: %s@%s:%d/%s\n", c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name)
	fmt.Printf("🌐 Откройте http://localhost:%s в браузере\n", port)

	srv := &http.Server{Addr: host + ":" + port, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}

func (v *viewer) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	data := PageData{ActiveTab: r.URL.Query().Get("tab")}
	if data.ActiveTab == "" {
		data.ActiveTab = "sessions"
	}

	var err error
	if data.Status, err = v.db.GetStatus(ctx); err != nil {
		data.Error = err.Error()
	}
	switch data.ActiveTab {
	case "scans":
		data.Scans, err = v.db.RecentScans(ctx, pageSize)
	case "commands":
		data.Commands, err = v.db.RecentCommands(ctx, pageSize)
	case "actions":
		data.Actions, err = v.db.RecentActions(ctx, pageSize)
	default:
		data.ActiveTab = "sessions"
		data.Sessions, err = v.db.RecentSessions(ctx, pageSize)
	}
	if err != nil {
		data.Error = err.Error()
	}

	if err := v.tmpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
	}
}

// scanImage отдает размеченный кадр /scan/{id}.png
func (v *viewer) scanImage(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/scan/"), ".png")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	png, err := v.db.ScanImage(r.Context(), id)
	if err != nil || len(png) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=86400")
	w.Write(png)
}
