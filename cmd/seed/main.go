package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/umichkisa/pocha-backend/config"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/internal/db"
)

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <pocha_id> <menus.xlsx>")
	}

	pochaID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil || pochaID == 0 {
		log.Fatal("Invalid pocha id:", os.Args[1])
	}
	filePath := os.Args[2]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	pochaRepo := repository.NewPochaRepository(db.GetDB())
	menuRepo := repository.NewMenuRepository(db.GetDB())

	pocha, err := pochaRepo.FindByID(uint(pochaID))
	if err != nil {
		log.Fatal("Pocha not found:", err)
	}

	// XLSX 파일 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	menus, skipped, err := readMenusFromXLSX(filePath, pocha.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Pocha: %s (#%d)\n", pocha.Title, pocha.ID)
	fmt.Printf("Menus to import: %d (skipped rows: %d)\n", len(menus), skipped)
	for _, m := range menus {
		fmt.Printf("  - [%s] %s / %s  $%.2f  stock=%d\n", m.Category, m.NameKor, m.NameEng, m.Price, m.Stock)
	}

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := menuRepo.CreateBatch(menus); err != nil {
		log.Fatal("Failed to import menus:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total menus imported: %d\n", len(menus))
}
