package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

// Service exposes listing management for farmers and public reads.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, ownerID, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]ProductDTO, error)
	Storefront(ctx context.Context, slug string) (*StorefrontDTO, error)
	UploadImage(ctx context.Context, ownerID, productID uuid.UUID, input UploadImageInput) (*ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
}

// UploadImageInput carries one image upload for a listing.
type UploadImageInput struct {
	ContentType string
	Filename    string
	Body        io.Reader
}

type farmerLoader interface {
	FindFarmerBySlug(ctx context.Context, slug string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// orphanSellerName stands in for the seller on listings whose owner
// account was deleted.
const orphanSellerName = "Azienda non disponibile"

type objectStore interface {
	UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error)
	DeleteObject(ctx context.Context, object string) error
}

type service struct {
	repo    *Repository
	farmers farmerLoader
	storage objectStore
}

// NewService constructs a products service. Storage may be nil when object
// storage is not configured; image uploads then fail with a dependency error.
func NewService(repo *Repository, farmers farmerLoader, storage objectStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if farmers == nil {
		return nil, fmt.Errorf("farmers repository required")
	}
	return &service{repo: repo, farmers: farmers, storage: storage}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	unit := enums.ProductUnitPiece
	if strings.TrimSpace(input.Unit) != "" {
		parsed, err := enums.ParseProductUnit(input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		unit = parsed
	}

	product := &models.Product{
		UserID:      ownerID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price.Round(2),
		Unit:        unit,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(product), nil
}

func (s *service) Update(ctx context.Context, ownerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadOwned(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		product.Price = input.Price.Round(2)
	}
	if input.Unit != nil {
		parsed, err := enums.ParseProductUnit(*input.Unit)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit")
		}
		product.Unit = parsed
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
	}
	return FromModel(product), nil
}

func (s *service) Delete(ctx context.Context, ownerID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	// image cleanup is best effort; an orphan object is harmless
	if s.storage != nil && product.ImageURL != nil {
		_ = s.storage.DeleteObject(ctx, imageObjectName(product))
	}
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	dto := FromModel(product)
	dto.SellerName = s.sellerName(ctx, product.UserID)
	return dto, nil
}

// sellerName resolves the owner's public name, falling back to a
// placeholder when the account no longer exists.
func (s *service) sellerName(ctx context.Context, ownerID uuid.UUID) string {
	owner, err := s.farmers.FindByID(ctx, ownerID)
	if err != nil {
		return orphanSellerName
	}
	if owner.CompanyName != "" {
		return owner.CompanyName
	}
	if owner.DisplayName != "" {
		return owner.DisplayName
	}
	return orphanSellerName
}

func (s *service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]ProductDTO, error) {
	items, err := s.repo.ListByUserID(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return FromModels(items), nil
}

func (s *service) Storefront(ctx context.Context, slug string) (*StorefrontDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	farmer, err := s.farmers.FindFarmerBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer")
	}
	items, err := s.repo.ListByUserID(ctx, farmer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return &StorefrontDTO{
		Farmer:   users.FarmerFromModel(farmer),
		Products: FromModels(items),
	}, nil
}

func (s *service) UploadImage(ctx context.Context, ownerID, productID uuid.UUID, input UploadImageInput) (*ProductDTO, error) {
	if s.storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object storage not configured")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image body is required")
	}

	product, err := s.loadOwned(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	object := fmt.Sprintf("products/%s%s", product.ID, imageExtension(input))
	url, err := s.storage.UploadObject(ctx, object, input.ContentType, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	product.ImageURL = &url
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
	}
	return FromModel(product), nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.UserID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your product")
	}
	return product, nil
}

func imageExtension(input UploadImageInput) string {
	if ext := path.Ext(input.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	switch input.ContentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func imageObjectName(product *models.Product) string {
	if product.ImageURL == nil {
		return ""
	}
	url := *product.ImageURL
	if idx := strings.Index(url, "/products/"); idx >= 0 {
		return url[idx+1:]
	}
	return ""
}
