package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-importer/internal/api"
	"github.com/insightdelivered/statement-importer/internal/config"
	"github.com/insightdelivered/statement-importer/internal/logger"
	"github.com/insightdelivered/statement-importer/internal/models"
	"github.com/insightdelivered/statement-importer/internal/pipeline"
)

const version = "1.0.0"

func main() {
	serveFlag := flag.Bool("serve", false, "Run the HTTP import API instead of converting files")
	addrFlag := flag.String("addr", "", "Listen address for -serve (defaults to :$PORT)")
	jsonFlag := flag.Bool("json", false, "Print the full parse result as JSON")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Importer
by Insight Delivered

Detects and parses bank/card statement exports (Nubank CSV, Banco Inter CSV,
OFX/QFX, PDF/plain text) into a normalized transaction list.

Usage:
  statement-importer [flags] <statement.csv|statement.ofx|statement.pdf ...>
  statement-importer -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Parse a statement and print a summary
  statement-importer fatura.csv

  # Full JSON output
  statement-importer -json extrato.ofx

  # Run the upload API
  statement-importer -serve
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-importer v%s\n", version)
		os.Exit(0)
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if *serveFlag {
		addr := *addrFlag
		if addr == "" {
			addr = ":" + cfg.Port
		}
		serve(addr, cfg, log)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	importer := pipeline.NewImporter(pipeline.WithMaxFileSize(cfg.MaxUploadSizeBytes))
	ctx := logger.WithContext(context.Background(), log)

	exitCode := 0
	for _, path := range flag.Args() {
		if err := processFile(ctx, importer, path, *jsonFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func processFile(ctx context.Context, importer *pipeline.Importer, path string, asJSON bool) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	file := &models.RawFile{
		Name:    path,
		Size:    int64(len(content)),
		Content: content,
	}

	result := importer.ImportStatement(ctx, file)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Processing: %s\n", path)
	if !result.Success {
		fmt.Println("  Failed:")
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
		return fmt.Errorf("statement could not be imported")
	}

	if result.Metadata != nil {
		if result.Metadata.BankName != "" {
			fmt.Printf("  Bank: %s\n", result.Metadata.BankName)
		}
		if result.Metadata.StatementPeriod != "" {
			fmt.Printf("  Period: %s\n", result.Metadata.StatementPeriod)
		}
		fmt.Printf("  Total: %.2f\n", result.Metadata.TotalAmount)
	}
	fmt.Printf("  Found %d transaction(s)\n", len(result.Transactions))
	for _, w := range result.Errors {
		fmt.Printf("  Warning: %s\n", w)
	}
	fmt.Println("  Done.")
	return nil
}

func serve(addr string, cfg *config.AppConfig, log zerolog.Logger) {
	app := fiber.New(fiber.Config{
		// Leave room for multipart framing around the payload itself.
		BodyLimit:             int(cfg.MaxUploadSizeBytes) + (1 << 20),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	h := &api.Handler{
		Importer: pipeline.NewImporter(pipeline.WithMaxFileSize(cfg.MaxUploadSizeBytes)),
		Log:      log,
	}
	h.Register(app)

	log.Info().Str("addr", addr).Str("version", version).Msg("statement importer API listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
