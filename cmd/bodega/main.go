// cmd/bodega/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/bodegapp/backend-go/internal/cache"
	"github.com/bodegapp/backend-go/internal/config"
	"github.com/bodegapp/backend-go/internal/domain"
	"github.com/bodegapp/backend-go/internal/service"
	"github.com/bodegapp/backend-go/internal/store/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "bodega-db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Usage:    "Path of the file to import",
		Required: true,
	}
}

func initStore(c *cli.Context) error {
	cfg := config.Load()
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeStore(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func storeFrom(c *cli.Context) *postgres.Store {
	db := c.Context.Value(dbKey).(*postgres.DB)
	return postgres.NewStore(db)
}

func printImportResult(result domain.ImportResult) {
	fmt.Printf("imported: %d\n", result.ImportedCount)
	if result.SkippedCount > 0 {
		fmt.Printf("skipped: %d\n", result.SkippedCount)
	}
	if result.Label != "" {
		fmt.Printf("label: %s\n", result.Label)
	}
	if result.Hint != "" {
		fmt.Printf("hint: %s\n", result.Hint)
	}
}

func runMigrate(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := postgres.Migrate(c.Context, db); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}

func runImportInventory(c *cli.Context) error {
	path := c.String("file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	svc := service.NewInventoryService(storeFrom(c), cache.NewNoopForecastCache())
	result, err := svc.ImportFile(c.Context, path, c.String("type"), content)
	if err != nil {
		return err
	}
	printImportResult(result)
	return nil
}

func runImportCatalog(c *cli.Context) error {
	path := c.String("file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	svc := service.NewCatalogService(storeFrom(c), cache.NewNoopForecastCache())
	result, err := svc.ImportCSV(c.Context, path, content)
	if err != nil {
		return err
	}
	printImportResult(result)
	return nil
}

func runImportMonthly(c *cli.Context) error {
	path := c.String("file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	svc := service.NewMonthlyService(storeFrom(c), cache.NewNoopForecastCache())
	result, err := svc.ImportCSV(c.Context, path, content)
	if err != nil {
		return err
	}
	printImportResult(result)
	return nil
}

func runImportPackaging(c *cli.Context) error {
	path := c.String("file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	svc := service.NewPackagingService(storeFrom(c))
	result, err := svc.ImportXLSX(c.Context, path, content)
	if err != nil {
		return err
	}
	printImportResult(result)
	return nil
}

func runImportCategories(c *cli.Context) error {
	path := c.String("file")
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", path, err)
	}

	svc := service.NewCategoriesService(storeFrom(c))
	result, err := svc.ImportXLSX(c.Context, path, content)
	if err != nil {
		return err
	}
	printImportResult(result)
	return nil
}

func runForecast(c *cli.Context) error {
	svc := service.NewForecastService(storeFrom(c), cache.NewNoopForecastCache())
	filter := domain.ForecastFilter{
		Months:   c.Int("months"),
		Search:   c.String("search"),
		HideZero: c.Bool("hide-zero"),
	}

	rows, labels, err := svc.Rows(c.Context, filter)
	if err != nil {
		return err
	}

	fmt.Printf("months: %v\n", labels)
	fmt.Printf("%-14s %-40s %10s %10s %10s %10s\n",
		"CODIGO", "MEDICAMENTO", "PROMEDIO", "CONSUMO", "INV TOTAL", "PEDIDO")
	for _, row := range rows {
		fmt.Printf("%-14s %-40.40s %10.2f %10.2f %10.2f %10.2f\n",
			row.SigesCode, row.MedicationName, row.Avg, row.ConsumoTotal, row.InvTotal, row.Pedido)
	}
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "bodega",
		Usage: "Pharmacy warehouse feed imports and order forecasts",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
			{
				Name:  "import-inventory",
				Usage: "Import a 771 XML or 772 CSV inventory snapshot",
				Flags: []cli.Flag{
					newFileFlag(),
					&cli.StringFlag{
						Name:  "type",
						Usage: "Inventory type (771 or 772)",
						Value: domain.InventoryType772,
					},
				},
				Before: initStore,
				After:  closeStore,
				Action: runImportInventory,
			},
			{
				Name:   "import-catalog",
				Usage:  "Replace the medication master list from a CSV",
				Flags:  []cli.Flag{newFileFlag()},
				Before: initStore,
				After:  closeStore,
				Action: runImportCatalog,
			},
			{
				Name:   "import-monthly",
				Usage:  "Import a monthly consumption CSV",
				Flags:  []cli.Flag{newFileFlag()},
				Before: initStore,
				After:  closeStore,
				Action: runImportMonthly,
			},
			{
				Name:   "import-packaging",
				Usage:  "Import a tertiary packaging XLSX",
				Flags:  []cli.Flag{newFileFlag()},
				Before: initStore,
				After:  closeStore,
				Action: runImportPackaging,
			},
			{
				Name:   "import-categories",
				Usage:  "Import a medication categories XLSX",
				Flags:  []cli.Flag{newFileFlag()},
				Before: initStore,
				After:  closeStore,
				Action: runImportCategories,
			},
			{
				Name:  "forecast",
				Usage: "Print the order forecast",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "months", Usage: "Months of coverage to order", Value: 3},
					&cli.StringFlag{Name: "search", Usage: "Filter by code or name"},
					&cli.BoolFlag{Name: "hide-zero", Usage: "Hide rows with nothing to order"},
				},
				Before: initStore,
				After:  closeStore,
				Action: runForecast,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
