package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"growtrack/internal/config"
	"growtrack/internal/database"
	"growtrack/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	output := exportCmd.String("output", "", "backup file to write (default backup_<timestamp>.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	input := importCmd.String("input", "", "backup file to read")
	clearData := importCmd.Bool("clear", false, "delete existing data first")
	skipConfirm := importCmd.Bool("yes", false, "do not ask before clearing")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, *output)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *input == "" {
			fmt.Fprintln(os.Stderr, "import: -input is required")
			importCmd.PrintDefaults()
			os.Exit(2)
		}
		handleImport(backupService, *input, *clearData, *skipConfirm)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting database to: %s", outputPath)
	if err := backupService.Export(outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	if fileInfo, err := os.Stat(outputPath); err == nil {
		log.Printf("Export complete! File size: %.2f KB", float64(fileInfo.Size())/1024)
	}
}

func handleImport(backupService *service.BackupService, inputPath string, clearData, skipConfirm bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if clearData && !skipConfirm {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}
	}

	log.Printf("Importing database from: %s", inputPath)
	if err := backupService.Import(inputPath, clearData); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Println("Import complete!")
}

const usage = `GrowTrack backup tool

Usage:
  backup export [-output file]            write users, children, milestones, calendars and events as JSON
  backup import -input file [-clear] [-yes]  restore a backup, optionally replacing existing data

The database is selected with DB_TYPE, DB_PATH and DATABASE_URL, as for the server.
`

func printUsage() {
	fmt.Fprint(os.Stderr, usage)
}
