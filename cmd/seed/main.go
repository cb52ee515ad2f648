package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	"github.com/gsaan/gsaan-backend/internal/db"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/gsaan/gsaan-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

const usage = `Usage:
  go run ./cmd/seed import <products.xlsx>
  go run ./cmd/seed create-admin <email> <password> [display name]`

// Spreadsheet columns. Rows sharing a product name become variants of one
// product, in sheet order.
const (
	colName = iota
	colNameInTamil
	colCategory
	colShortDescription
	colDescription
	colImages
	colTags
	colVariant
	colWeight
	colPrice
	colMRP
	colSKU
	colFeatured
	colBestSeller
	minColumns = colMRP + 1
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	switch os.Args[1] {
	case "import":
		if len(os.Args) < 3 {
			log.Fatal(usage)
		}
		importProducts(os.Args[2])
	case "create-admin":
		if len(os.Args) < 4 {
			log.Fatal(usage)
		}
		name := ""
		if len(os.Args) > 4 {
			name = strings.Join(os.Args[4:], " ")
		}
		createAdmin(cfg, os.Args[2], os.Args[3], name)
	default:
		log.Fatal(usage)
	}
}

func importProducts(filePath string) {
	if err := db.SeedCategories(db.GetDB()); err != nil {
		log.Fatal("Failed to seed categories:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, err := readProductsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	for i := range products {
		slug, err := freeSlug(productRepo, util.Slugify(products[i].Name))
		if err != nil {
			log.Fatal("Failed to check slug:", err)
		}
		products[i].Slug = slug
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	n, err := productRepo.BulkCreate(products, 100)
	if err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", n)
}

func createAdmin(cfg *config.Config, email, password, displayName string) {
	authService := service.NewAuthService(
		repository.NewAdminUserRepository(db.GetDB()),
		repository.NewAdminProfileRepository(db.GetDB()),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		service.SignInLimits{},
	)

	user, err := authService.CreateAdmin(email, password, displayName)
	if err != nil {
		log.Fatal("Failed to create admin:", err)
	}
	fmt.Printf("Admin account created: %s (id %d)\n", user.Email, user.ID)
}

func freeSlug(repo repository.ProductRepository, base string) (string, error) {
	if base == "" {
		base = "product"
	}
	slug := base
	for n := 2; ; n++ {
		taken, err := repo.SlugExists(slug, "")
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func readProductsFromXLSX(filePath string) ([]model.Product, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var products []model.Product
	index := make(map[string]int)
	skippedCount := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < minColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[colName])
		category := model.ProductCategory(strings.TrimSpace(row[colCategory]))
		variantName := strings.TrimSpace(row[colVariant])
		price, errPrice := strconv.ParseInt(strings.TrimSpace(row[colPrice]), 10, 64)
		mrp, errMRP := strconv.ParseInt(strings.TrimSpace(row[colMRP]), 10, 64)

		if name == "" || variantName == "" || !category.Valid() || errPrice != nil || price <= 0 {
			fmt.Printf("Skipping row %d: %v\n", i+1, row)
			skippedCount++
			continue
		}
		if errMRP != nil || mrp < price {
			mrp = price
		}

		variant := model.ProductVariant{
			Name:    variantName,
			Weight:  strings.TrimSpace(row[colWeight]),
			Price:   price,
			MRP:     mrp,
			InStock: true,
		}
		if len(row) > colSKU {
			variant.SKU = strings.TrimSpace(row[colSKU])
		}

		key := strings.ToLower(name)
		if at, ok := index[key]; ok {
			p := &products[at]
			variant.SortOrder = len(p.Variants)
			p.Variants = append(p.Variants, variant)
			continue
		}

		p := model.Product{
			Name:             name,
			NameInTamil:      strings.TrimSpace(row[colNameInTamil]),
			Category:         category,
			ShortDescription: strings.TrimSpace(row[colShortDescription]),
			Description:      strings.TrimSpace(row[colDescription]),
			Images:           splitList(row[colImages]),
			Tags:             splitList(row[colTags]),
			InStock:          true,
			IsFeatured:       cellBool(row, colFeatured),
			IsBestSeller:     cellBool(row, colBestSeller),
			Variants:         []model.ProductVariant{variant},
		}
		index[key] = len(products)
		products = append(products, p)
	}

	for i := range products {
		products[i].DerivePricing()
	}

	fmt.Printf("Skipped rows: %d\n", skippedCount)
	return products, nil
}

func splitList(cell string) model.StringList {
	list := model.StringList{}
	for _, part := range strings.Split(cell, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

func cellBool(row []string, col int) bool {
	if len(row) <= col {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(row[col])) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}
