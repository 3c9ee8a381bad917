package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// Department IDs matching the category_id column. There is no categories
// table yet; these are the well-known ids the storefront uses.
const (
	DeptProduce      int64 = 1
	DeptDairy        int64 = 2
	DeptBakery       int64 = 3
	DeptBeverages    int64 = 4
	DeptSnacks       int64 = 5
	DeptPantry       int64 = 6
	DeptFrozen       int64 = 7
	DeptHousehold    int64 = 8
	DeptPersonalCare int64 = 9
)

// CatalogProduct is one row bound for the products table.
type CatalogProduct struct {
	Barcode      string
	Name         string
	Price        int64 // minor units
	CostPrice    int64 // minor units
	Stock        int
	ReorderLevel int
	SupplierID   int64
	CategoryID   int64 // 0 means uncategorized (NULL)
}

// DepartmentClassifier assigns a department from the product name.
type DepartmentClassifier struct {
	keywords map[int64][]string
}

func NewDepartmentClassifier() *DepartmentClassifier {
	return &DepartmentClassifier{
		keywords: map[int64][]string{
			DeptProduce: {"apple", "banana", "tomato", "lettuce", "onion", "potato",
				"carrot", "pepper", "avocado", "lemon", "lime", "grape", "berry"},
			DeptDairy: {"milk", "cheese", "yogurt", "butter", "cream", "egg"},
			DeptBakery: {"bread", "roll", "bagel", "croissant", "baguette", "muffin",
				"cake", "tortilla"},
			DeptBeverages: {"water", "juice", "soda", "cola", "coffee", "tea",
				"beer", "wine", "energy drink", "kombucha"},
			DeptSnacks: {"chips", "crisps", "cookie", "biscuit", "chocolate", "candy",
				"popcorn", "pretzel", "granola bar", "nuts"},
			DeptPantry: {"rice", "pasta", "flour", "sugar", "salt", "oil", "vinegar",
				"sauce", "beans", "cereal", "oats", "canned", "spice", "honey"},
			DeptFrozen: {"frozen", "ice cream", "pizza", "fries"},
			DeptHousehold: {"detergent", "cleaner", "bleach", "sponge", "paper towel",
				"toilet paper", "trash bag", "foil", "dish soap"},
			DeptPersonalCare: {"shampoo", "soap", "toothpaste", "toothbrush", "deodorant",
				"razor", "lotion", "tissue"},
		},
	}
}

func (c *DepartmentClassifier) Classify(name string) int64 {
	nameLower := strings.ToLower(name)

	best := int64(0)
	maxScore := 0
	for dept, keywords := range c.keywords {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(nameLower, kw) {
				score++
			}
		}
		if score > maxScore {
			best = dept
			maxScore = score
		}
	}
	return best
}

// CatalogLoader reads supplier catalog workbooks and persists products.
type CatalogLoader struct {
	classifier *DepartmentClassifier
	logger     *slog.Logger
	db         *pgxpool.Pool
}

func NewCatalogLoader(db *pgxpool.Pool, logger *slog.Logger) *CatalogLoader {
	return &CatalogLoader{
		classifier: NewDepartmentClassifier(),
		logger:     logger,
		db:         db,
	}
}

// LoadWorkbook extracts products from one catalog file. Expected columns:
// barcode, name, cost, price, stock, reorder_level, supplier_id.
func (l *CatalogLoader) LoadWorkbook(path string) ([]CatalogProduct, error) {
	l.logger.Info("Processing catalog workbook", slog.String("file", path))

	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	sheet := file.Sheets[0]

	var products []CatalogProduct
	rowIdx := 0
	err = sheet.ForEachRow(func(r *xlsx.Row) error {
		// Skip header
		if rowIdx == 0 {
			rowIdx++
			return nil
		}
		rowIdx++

		get := func(i int) string {
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			if s, err := c.FormattedValue(); err == nil {
				return strings.TrimSpace(s)
			}
			return strings.TrimSpace(c.String())
		}

		barcode := cleanBarcode(get(0))
		name := strings.TrimSpace(get(1))
		if barcode == "" || name == "" {
			return nil
		}

		cost := parseMoney(get(2))
		price := parseMoney(get(3))
		if price == 0 && cost > 0 {
			// Default retail markup when the supplier omits a sale price
			price = decimal.NewFromInt(cost).Mul(decimal.NewFromFloat(1.5)).Round(0).IntPart()
		}

		stock, _ := strconv.Atoi(get(4))
		reorder, _ := strconv.Atoi(get(5))
		supplierID, _ := strconv.ParseInt(get(6), 10, 64)

		products = append(products, CatalogProduct{
			Barcode:      barcode,
			Name:         name,
			Price:        price,
			CostPrice:    cost,
			Stock:        stock,
			ReorderLevel: reorder,
			SupplierID:   supplierID,
			CategoryID:   l.classifier.Classify(name),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	l.logger.Info("Extracted products from workbook",
		slog.String("file", path),
		slog.Int("count", len(products)))

	return products, nil
}

// SaveProducts persists catalog products to the database in one transaction.
// Existing barcodes are left untouched so reseeding is safe.
func (l *CatalogLoader) SaveProducts(ctx context.Context, products []CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}

	for _, p := range products {
		var supplierID, categoryID any
		if p.SupplierID > 0 {
			supplierID = p.SupplierID
		}
		if p.CategoryID > 0 {
			categoryID = p.CategoryID
		}

		batch.Queue(`
			INSERT INTO products (
				name, barcode, price, cost_price, stock,
				reorder_level, supplier_id, category_id
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8
			) ON CONFLICT (barcode) DO NOTHING`,
			p.Name, p.Barcode, p.Price, p.CostPrice, p.Stock,
			p.ReorderLevel, supplierID, categoryID,
		)
	}

	br := tx.SendBatch(ctx, batch)

	for range products {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert product: %w", err)
		}
	}

	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	l.logger.Info("Saved products to database", slog.Int("count", len(products)))
	return nil
}

// Helper functions
func parseMoney(val string) int64 {
	cleaned := strings.ReplaceAll(val, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

var nonDigitRe = regexp.MustCompile(`\D`)

func cleanBarcode(val string) string {
	digits := nonDigitRe.ReplaceAllString(val, "")
	if len(digits) < 8 || len(digits) > 14 {
		return ""
	}
	return digits
}

// sampleProducts is the built-in starter catalog used when no workbook is
// supplied, enough to exercise sales and low stock alerts locally.
func sampleProducts() []CatalogProduct {
	classifier := NewDepartmentClassifier()
	rows := []struct {
		barcode string
		name    string
		cost    int64
		price   int64
		stock   int
		reorder int
	}{
		{"7501031311309", "Espresso Beans 1kg", 950, 1499, 40, 10},
		{"4006381333931", "Oat Milk 1L", 125, 219, 60, 15},
		{"5000112637922", "Sparkling Water 500ml", 35, 99, 120, 24},
		{"8712100849084", "Whole Wheat Bread", 110, 249, 25, 8},
		{"3017620422003", "Hazelnut Spread 400g", 280, 449, 30, 6},
		{"5010029000115", "Basmati Rice 2kg", 320, 599, 45, 10},
		{"4011200296908", "Bananas 1kg", 60, 129, 80, 20},
		{"8718906535217", "Greek Yogurt 500g", 95, 189, 35, 10},
		{"5449000000996", "Cola 330ml", 28, 89, 200, 48},
		{"8001505005707", "Olive Oil 750ml", 410, 699, 20, 5},
		{"7622210449283", "Dark Chocolate 100g", 85, 179, 55, 12},
		{"4002971025606", "Dish Soap 500ml", 75, 159, 40, 8},
		{"3600541358003", "Shampoo 400ml", 160, 329, 30, 6},
		{"8690637704375", "Paper Towels 4pk", 140, 279, 50, 12},
		{"5900951027451", "Frozen Pizza 450g", 210, 399, 25, 6},
	}

	products := make([]CatalogProduct, 0, len(rows))
	for _, r := range rows {
		products = append(products, CatalogProduct{
			Barcode:      r.barcode,
			Name:         r.name,
			Price:        r.price,
			CostPrice:    r.cost,
			Stock:        r.stock,
			ReorderLevel: r.reorder,
			CategoryID:   classifier.Classify(r.name),
		})
	}
	return products
}

func main() {
	// Parse flags
	var (
		catalogDir = flag.String("catalogs", "./catalogs", "Directory containing catalog workbooks (*.xlsx)")
		stateFile  = flag.String("state", "./.seed_state.json", "State file for tracking progress")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun     = flag.Bool("dry-run", false, "Preview changes without modifying database")
		force      = flag.Bool("force", false, "Reprocess all workbooks")
		sample     = flag.Bool("sample", false, "Seed the built-in sample catalog instead of workbooks")
	)
	flag.Parse()

	// Setup logging
	var slogLevel slog.Level
	switch *logLevel {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	// Database connection
	dbURL := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "posledger"),
		getEnv("DB_PASSWORD", "posledger_dev_2026"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "posledger"),
		getEnv("DB_SSL_MODE", "disable"),
	)

	ctx := context.Background()

	var db *pgxpool.Pool
	var err error

	if !*dryRun {
		db, err = pgxpool.New(ctx, dbURL)
		if err != nil {
			logger.Error("Failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer db.Close()
	}

	loader := NewCatalogLoader(db, logger)

	// Built-in sample catalog
	if *sample {
		products := sampleProducts()
		if *dryRun {
			for _, p := range products {
				fmt.Printf("WOULD SEED: %s %s price=%d cost=%d stock=%d\n",
					p.Barcode, p.Name, p.Price, p.CostPrice, p.Stock)
			}
			fmt.Println("\n[DRY RUN] No changes were made to the database")
			return
		}
		if err := loader.SaveProducts(ctx, products); err != nil {
			logger.Error("Failed to seed sample catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("SUCCESS: Seeded %d sample products\n", len(products))
		return
	}

	// Load state
	type SeederState struct {
		ProcessedFiles []string  `json:"processed_files"`
		ProcessedCount int       `json:"processed_count"`
		LastUpdate     time.Time `json:"last_update"`
	}

	var state SeederState
	if !*force {
		if stateData, err := os.ReadFile(*stateFile); err == nil {
			json.Unmarshal(stateData, &state)
		}
	}

	// Process workbooks
	files, err := filepath.Glob(filepath.Join(*catalogDir, "*.xlsx"))
	if err != nil {
		logger.Error("Failed to find catalog files", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("No catalog workbooks found, nothing to do",
			slog.String("dir", *catalogDir))
		return
	}

	totalProcessed := 0
	totalProducts := 0
	failedFiles := []string{}
	successDetails := map[string]int{}

	for i, file := range files {
		name := filepath.Base(file)

		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(files), name)

		if !*force {
			processed := false
			for _, pf := range state.ProcessedFiles {
				if pf == name {
					processed = true
					break
				}
			}
			if processed {
				logger.Info("Skipping already processed workbook", slog.String("file", name))
				continue
			}
		}

		products, err := loader.LoadWorkbook(file)
		if err != nil {
			logger.Error("Failed to load workbook",
				slog.String("file", name),
				slog.String("error", err.Error()))
			failedFiles = append(failedFiles, name)
			fmt.Printf("ERROR: Failed to process %s - %v\n", name, err)
			continue
		}

		if len(products) == 0 {
			logger.Warn("No products extracted", slog.String("file", name))
			fmt.Printf("WARNING: No products found in %s\n", name)
			failedFiles = append(failedFiles, fmt.Sprintf("%s (0 products)", name))
			continue
		}

		if !*dryRun {
			if err := loader.SaveProducts(ctx, products); err != nil {
				logger.Error("Failed to save products",
					slog.String("file", name),
					slog.String("error", err.Error()))
				failedFiles = append(failedFiles, name)
				fmt.Printf("ERROR: Failed to save %s - %v\n", name, err)
				continue
			}
		}

		fmt.Printf("SUCCESS: Processed %s - %d products\n", name, len(products))
		successDetails[name] = len(products)

		totalProcessed++
		totalProducts += len(products)

		// Update state
		state.ProcessedFiles = append(state.ProcessedFiles, name)
		state.ProcessedCount = len(state.ProcessedFiles)
		state.LastUpdate = time.Now()

		// Save state periodically
		if !*dryRun && i%10 == 0 {
			stateData, _ := json.MarshalIndent(state, "", "  ")
			os.WriteFile(*stateFile, stateData, 0644)
		}
	}

	// Save final state
	if !*dryRun {
		stateData, _ := json.MarshalIndent(state, "", "  ")
		os.WriteFile(*stateFile, stateData, 0644)
	}

	// Summary
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("CATALOG SEEDING SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total Workbooks Processed: %d\n", totalProcessed)
	fmt.Printf("Total Products Loaded: %d\n", totalProducts)

	if len(successDetails) > 0 {
		fmt.Printf("\nSuccessfully Processed (%d workbooks):\n", len(successDetails))
		for f, count := range successDetails {
			fmt.Printf("  - %s: %d products\n", f, count)
		}
	}

	if len(failedFiles) > 0 {
		fmt.Printf("\nFailed/Empty Workbooks (%d):\n", len(failedFiles))
		for _, f := range failedFiles {
			fmt.Printf("  - %s\n", f)
		}
	}

	logger.Info("Seed operation completed",
		slog.Int("workbooks_processed", totalProcessed),
		slog.Int("products_created", totalProducts),
		slog.Int("failed_workbooks", len(failedFiles)))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
