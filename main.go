package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/helloimabid/compstudy/internal/config"
	"github.com/helloimabid/compstudy/internal/database"
	"github.com/helloimabid/compstudy/internal/excel"
	"github.com/helloimabid/compstudy/internal/notify"
	"github.com/helloimabid/compstudy/internal/scheduler"
)

func main() {
	importPath := flag.String("import", "", "import curriculum topics from an Excel/CSV file and exit")
	importUser := flag.String("import-user", "", "also add imported topics to this user's review list")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.Connect(cfg.DBDriver, cfg.DBDSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if *importPath != "" {
		runImport(*importPath, *importUser)
		return
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	sched := scheduler.New(notifier)
	sched.Start()
	defer sched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Reminder service started. Press Ctrl+C to stop.")
	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		cancel()
	case <-ctx.Done():
	}
	log.Println("Reminder service stopped")
}

func runImport(path, userID string) {
	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = path
	importConfig.AddForUserID = userID

	result, err := excel.ImportTopics(context.Background(), importConfig)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import finished: %d rows processed, %d topics created, %d review items created, %d skipped",
		result.TotalProcessed, result.TopicsCreated, result.ItemsCreated, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("Import warning: %s", e)
	}
}
