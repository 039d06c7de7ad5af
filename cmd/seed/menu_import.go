package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// 헤더: nameKor, nameEng, category, price, stock, isImmediatePrep, ageCheckRequired
var menuColumns = []string{"nameKor", "nameEng", "category", "price", "stock", "isImmediatePrep", "ageCheckRequired"}

func readMenusFromXLSX(filePath string, pochaID uint) ([]model.Menu, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	// 첫 번째 시트 이름 가져오기
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	return parseMenuRows(rows, pochaID)
}

// parseMenuRows maps columns by header name so column order does not matter.
// Rows with missing or invalid values are skipped and counted.
func parseMenuRows(rows [][]string, pochaID uint) ([]model.Menu, int, error) {
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range menuColumns {
		if _, ok := index[col]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var menus []model.Menu
	seen := make(map[string]bool)
	skipped := 0
	for _, row := range rows[1:] {
		nameKor := cell(row, "nameKor")
		nameEng := cell(row, "nameEng")
		category := cell(row, "category")
		if nameKor == "" || nameEng == "" || category == "" || seen[nameKor] {
			skipped++
			continue
		}

		price, errPrice := strconv.ParseFloat(cell(row, "price"), 64)
		stock, errStock := strconv.Atoi(cell(row, "stock"))
		immediate, errImmediate := parseFlag(cell(row, "isImmediatePrep"))
		ageCheck, errAge := parseFlag(cell(row, "ageCheckRequired"))
		if errPrice != nil || errStock != nil || errImmediate != nil || errAge != nil || price < 0 || stock < 0 {
			skipped++
			continue
		}

		seen[nameKor] = true
		menus = append(menus, model.Menu{
			PochaID:          pochaID,
			NameKor:          nameKor,
			NameEng:          nameEng,
			Category:         category,
			Price:            price,
			Stock:            stock,
			IsImmediatePrep:  immediate,
			AgeCheckRequired: ageCheck,
		})
	}
	return menus, skipped, nil
}

// parseFlag 빈 칸은 false
func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "n", "no", "false":
		return false, nil
	case "1", "y", "yes", "true":
		return true, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}
