package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/itbpos/restaurant-backend/pkg/db/models"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

// Service resolves template items into sellable variants and looks up rates.
type Service interface {
	AttributesForItem(ctx context.Context, itemCode string) ([]AttributeOption, error)
	ResolveVariant(ctx context.Context, input ResolveInput) (*ResolvedVariant, error)
	PriceFor(ctx context.Context, itemCode string) (*PriceResult, error)
	EnsureSellable(ctx context.Context, itemCode string) (*models.Item, error)
}

type service struct {
	repo      Repository
	logg      *logger.Logger
	priceList string
}

// NewService builds a variants service with the required dependencies.
func NewService(repo Repository, logg *logger.Logger, priceList string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variants repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(priceList) == "" {
		return nil, fmt.Errorf("price list required")
	}
	return &service{
		repo:      repo,
		logg:      logg,
		priceList: priceList,
	}, nil
}

// AttributesForItem returns the selectable attributes of a template with the
// allowed values from the attribute masters.
func (s *service) AttributesForItem(ctx context.Context, itemCode string) ([]AttributeOption, error) {
	item, err := s.findItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	if !item.HasVariants {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item has no variants").
			WithDetails(map[string]any{"item_code": itemCode})
	}

	rows, err := s.repo.ListVariantAttributes(ctx, []string{item.Code})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading template attributes")
	}

	options := make([]AttributeOption, 0, len(rows))
	for _, row := range rows {
		values, err := s.repo.ListAttributeValues(ctx, row.Attribute)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading attribute values")
		}
		options = append(options, AttributeOption{
			Attribute: row.Attribute,
			Values:    values,
		})
	}
	return options, nil
}

// ResolveVariant finds the unique variant whose attribute values match the
// selection. Every template attribute must be selected.
func (s *service) ResolveVariant(ctx context.Context, input ResolveInput) (*ResolvedVariant, error) {
	template, err := s.findItem(ctx, input.TemplateCode)
	if err != nil {
		return nil, err
	}
	if !template.HasVariants {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is not a variant template").
			WithDetails(map[string]any{"item_code": input.TemplateCode})
	}

	required, err := s.repo.ListVariantAttributes(ctx, []string{template.Code})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading template attributes")
	}
	missing := make([]string, 0)
	for _, attr := range required {
		if strings.TrimSpace(input.Attributes[attr.Attribute]) == "" {
			missing = append(missing, attr.Attribute)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "all attributes must be selected").
			WithDetails(map[string]any{"missing": missing})
	}

	candidates, err := s.repo.ListVariantsOf(ctx, template.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing variants")
	}
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no variants exist for this item")
	}

	codes := make([]string, 0, len(candidates))
	byCode := make(map[string]models.Item, len(candidates))
	for _, candidate := range candidates {
		codes = append(codes, candidate.Code)
		byCode[candidate.Code] = candidate
	}
	attrRows, err := s.repo.ListVariantAttributes(ctx, codes)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variant attributes")
	}
	attrsByCode := make(map[string]map[string]string, len(candidates))
	for _, row := range attrRows {
		if attrsByCode[row.ItemCode] == nil {
			attrsByCode[row.ItemCode] = make(map[string]string)
		}
		attrsByCode[row.ItemCode][row.Attribute] = row.Value
	}

	for _, code := range codes {
		if !attributesMatch(attrsByCode[code], input.Attributes, required) {
			continue
		}
		variant := byCode[code]
		price, err := s.PriceFor(ctx, variant.Code)
		if err != nil {
			return nil, err
		}
		return &ResolvedVariant{
			ItemCode:    variant.Code,
			ItemName:    variant.Name,
			Rate:        price.Rate,
			PriceWarned: price.Warned,
		}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no variant matches the selected attributes").
		WithDetails(map[string]any{"item_code": template.Code, "attributes": input.Attributes})
}

// PriceFor looks up the configured price list rate, falling back to the item's
// standard rate, then to zero with a warning.
func (s *service) PriceFor(ctx context.Context, itemCode string) (*PriceResult, error) {
	item, err := s.findItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}

	result := &PriceResult{
		ItemCode:  item.Code,
		PriceList: s.priceList,
	}

	price, err := s.repo.FindPrice(ctx, item.Code, s.priceList)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up item price")
	}
	if price != nil {
		result.Rate = price.Rate
		return result, nil
	}

	if item.StandardRate.GreaterThan(decimal.Zero) {
		result.Rate = item.StandardRate
		return result, nil
	}

	result.Rate = decimal.Zero
	result.Warned = true
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"item_code":  item.Code,
		"price_list": s.priceList,
	})
	s.logg.Warn(logCtx, "no rate found for item; defaulting to 0")
	return result, nil
}

// EnsureSellable loads the item and rejects templates and disabled items.
func (s *service) EnsureSellable(ctx context.Context, itemCode string) (*models.Item, error) {
	item, err := s.findItem(ctx, itemCode)
	if err != nil {
		return nil, err
	}
	if item.HasVariants {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item has variants; resolve a variant before adding").
			WithDetails(map[string]any{"item_code": item.Code})
	}
	if item.Disabled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is disabled").
			WithDetails(map[string]any{"item_code": item.Code})
	}
	return item, nil
}

func (s *service) findItem(ctx context.Context, code string) (*models.Item, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	item, err := s.repo.FindItemByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
				WithDetails(map[string]any{"item_code": code})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading item")
	}
	return item, nil
}

func attributesMatch(variantAttrs map[string]string, selection map[string]string, required []models.ItemVariantAttribute) bool {
	if len(variantAttrs) == 0 {
		return false
	}
	for _, attr := range required {
		if variantAttrs[attr.Attribute] != selection[attr.Attribute] {
			return false
		}
	}
	return true
}
