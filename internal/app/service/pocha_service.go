package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrInvalidPocha = errors.New("invalid pocha input")

const maxTitleLength = 32

// PochaValidationError names the offending field
type PochaValidationError struct {
	Field  string
	Reason string
}

func (e *PochaValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *PochaValidationError) Unwrap() error {
	return ErrInvalidPocha
}

// ImageStore removes menu images from object storage
type ImageStore interface {
	DeleteByURL(ctx context.Context, url string) error
}

type MenuInput struct {
	NameKor          string   `json:"nameKor"`
	NameEng          string   `json:"nameEng"`
	Category         string   `json:"category"`
	Price            *float64 `json:"price"`
	Stock            *int     `json:"stock"`
	IsImmediatePrep  *bool    `json:"isImmediatePrep"`
	AgeCheckRequired bool     `json:"ageCheckRequired"`
	ImageURL         string   `json:"imageURL"`
}

type PochaInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	StartDate   *time.Time  `json:"startDate"`
	EndDate     *time.Time  `json:"endDate"`
	Menus       []MenuInput `json:"menus"`
}

// PochaStatus 최신 포차 + 진행 여부
type PochaStatus struct {
	model.Pocha
	Ongoing bool `json:"ongoing"`
}

type MenuCategory struct {
	Category  string       `json:"category"`
	MenusList []model.Menu `json:"menusList"`
}

type PochaService interface {
	GetStatusInfo(now time.Time) (*PochaStatus, error)
	CreatePocha(input PochaInput) (*model.Pocha, error)
	UpdatePocha(ctx context.Context, pochaID uint, input PochaInput) (*model.Pocha, error)
	GetMenu(pochaID uint) ([]MenuCategory, error)
}

type pochaService struct {
	pochaRepo  repository.PochaRepository
	menuRepo   repository.MenuRepository
	imageStore ImageStore
	db         *gorm.DB
}

func NewPochaService(
	pochaRepo repository.PochaRepository,
	menuRepo repository.MenuRepository,
	imageStore ImageStore,
	db *gorm.DB,
) PochaService {
	return &pochaService{
		pochaRepo:  pochaRepo,
		menuRepo:   menuRepo,
		imageStore: imageStore,
		db:         db,
	}
}

// GetStatusInfo returns nil when there is no pocha or the latest one has ended
func (s *pochaService) GetStatusInfo(now time.Time) (*PochaStatus, error) {
	pocha, err := s.pochaRepo.FindLatest()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pocha.HasEnded(now) {
		return nil, nil
	}
	return &PochaStatus{Pocha: *pocha, Ongoing: pocha.IsOngoing(now)}, nil
}

func validatePochaInput(input PochaInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return &PochaValidationError{Field: "title", Reason: "is required"}
	}
	if len([]rune(input.Title)) > maxTitleLength {
		return &PochaValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	if strings.TrimSpace(input.Description) == "" {
		return &PochaValidationError{Field: "description", Reason: "is required"}
	}
	if input.StartDate == nil || input.EndDate == nil {
		return &PochaValidationError{Field: "startDate/endDate", Reason: "are required"}
	}
	if !input.StartDate.Before(*input.EndDate) {
		return &PochaValidationError{Field: "startDate", Reason: "must be before endDate"}
	}
	if len(input.Menus) == 0 {
		return &PochaValidationError{Field: "menus", Reason: "must contain at least one item"}
	}

	seen := make(map[string]bool, len(input.Menus))
	for i, m := range input.Menus {
		field := fmt.Sprintf("menus[%d]", i)
		if m.NameKor == "" || m.NameEng == "" || m.Category == "" || m.Price == nil || m.Stock == nil || m.IsImmediatePrep == nil {
			return &PochaValidationError{Field: field, Reason: "is missing required fields"}
		}
		if *m.Price < 0 || *m.Stock < 0 {
			return &PochaValidationError{Field: field, Reason: "price and stock must not be negative"}
		}
		// nameKor 는 메뉴 병합 키
		if seen[m.NameKor] {
			return &PochaValidationError{Field: field, Reason: "duplicates nameKor " + m.NameKor}
		}
		seen[m.NameKor] = true
	}
	return nil
}

func applyMenuInput(menu *model.Menu, in MenuInput) {
	menu.NameKor = in.NameKor
	menu.NameEng = in.NameEng
	menu.Category = in.Category
	menu.Price = *in.Price
	menu.Stock = *in.Stock
	menu.IsImmediatePrep = *in.IsImmediatePrep
	menu.AgeCheckRequired = in.AgeCheckRequired
	if in.ImageURL != "" {
		menu.ImageURL = in.ImageURL
	}
}

func (s *pochaService) CreatePocha(input PochaInput) (*model.Pocha, error) {
	if err := validatePochaInput(input); err != nil {
		return nil, err
	}

	pocha := &model.Pocha{
		Title:       input.Title,
		Description: input.Description,
		StartDate:   *input.StartDate,
		EndDate:     *input.EndDate,
	}
	for _, in := range input.Menus {
		var menu model.Menu
		applyMenuInput(&menu, in)
		pocha.Menus = append(pocha.Menus, menu)
	}

	if err := s.pochaRepo.Create(pocha); err != nil {
		return nil, err
	}

	logger.Info("Pocha created", map[string]interface{}{
		"pocha_id": pocha.ID,
		"title":    pocha.Title,
		"menus":    len(pocha.Menus),
	})
	return pocha, nil
}

// UpdatePocha rewrites the pocha row and merges menus by nameKor:
// matching menus are updated, new ones inserted, missing ones removed.
func (s *pochaService) UpdatePocha(ctx context.Context, pochaID uint, input PochaInput) (*model.Pocha, error) {
	if err := validatePochaInput(input); err != nil {
		return nil, err
	}

	var (
		pocha         *model.Pocha
		removedImages []string
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		pochas := s.pochaRepo.WithTx(tx)
		menus := s.menuRepo.WithTx(tx)

		var err error
		pocha, err = pochas.FindByID(pochaID)
		if err != nil {
			return orNotFound(err, ErrPochaNotFound)
		}
		pocha.Title = input.Title
		pocha.Description = input.Description
		pocha.StartDate = *input.StartDate
		pocha.EndDate = *input.EndDate
		if err := pochas.Update(pocha); err != nil {
			return err
		}

		existing, err := menus.FindByPochaID(pochaID)
		if err != nil {
			return err
		}
		byName := make(map[string]*model.Menu, len(existing))
		for i := range existing {
			byName[existing[i].NameKor] = &existing[i]
		}

		pocha.Menus = make([]model.Menu, 0, len(input.Menus))
		for _, in := range input.Menus {
			if menu, ok := byName[in.NameKor]; ok {
				applyMenuInput(menu, in)
				if err := menus.Update(menu); err != nil {
					return err
				}
				delete(byName, in.NameKor)
				pocha.Menus = append(pocha.Menus, *menu)
				continue
			}

			menu := model.Menu{PochaID: pochaID}
			applyMenuInput(&menu, in)
			if err := menus.Create(&menu); err != nil {
				return err
			}
			pocha.Menus = append(pocha.Menus, menu)
		}

		for _, stale := range byName {
			if err := menus.Delete(stale.ID); err != nil {
				return err
			}
			if stale.ImageURL != "" {
				removedImages = append(removedImages, stale.ImageURL)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteImages(ctx, removedImages)

	logger.Info("Pocha updated", map[string]interface{}{
		"pocha_id":       pochaID,
		"menus":          len(pocha.Menus),
		"removed_images": len(removedImages),
	})
	return pocha, nil
}

// deleteImages is best effort; the menus are already gone
func (s *pochaService) deleteImages(ctx context.Context, urls []string) {
	if s.imageStore == nil {
		return
	}
	for _, url := range urls {
		if err := s.imageStore.DeleteByURL(ctx, url); err != nil {
			logger.Warn("Failed to delete menu image", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
}

// GetMenu groups the pocha's menus by category, categories in first-seen order
func (s *pochaService) GetMenu(pochaID uint) ([]MenuCategory, error) {
	if _, err := s.pochaRepo.FindByID(pochaID); err != nil {
		return nil, orNotFound(err, ErrPochaNotFound)
	}
	menus, err := s.menuRepo.FindByPochaID(pochaID)
	if err != nil {
		return nil, err
	}

	result := []MenuCategory{}
	index := make(map[string]int)
	for _, menu := range menus {
		i, ok := index[menu.Category]
		if !ok {
			i = len(result)
			index[menu.Category] = i
			result = append(result, MenuCategory{Category: menu.Category})
		}
		result[i].MenusList = append(result[i].MenusList, menu)
	}
	return result, nil
}
