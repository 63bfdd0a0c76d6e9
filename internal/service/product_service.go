package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shopverse/internal/catalog"
	"shopverse/internal/domain"
	"shopverse/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotProductOwner = errors.New("product belongs to another seller")
)

// ProductInput carries the caller-supplied product attributes. Identity,
// seller stamp, and timestamps are assigned by the service.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Category    string
	ImageURL    string
	Featured    bool
	Inventory   int
}

// ProductPageQuery selects one page of the catalog for the management
// dashboards. A non-empty Query switches to name/description search;
// the other knobs only apply to the unsearched listing.
type ProductPageQuery struct {
	Query      string
	CategoryID *uuid.UUID
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  repository.SortOrder
}

// ProductPage is one page of products plus the unpaged match count.
type ProductPage struct {
	Products []*domain.Product
	Total    int
	Page     int
	PageSize int
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	// Browse returns the filtered, sorted storefront view of the full
	// catalog snapshot.
	Browse(ctx context.Context, cfg catalog.FilterConfig) ([]domain.Product, error)
	// ListProductsPage serves the admin product table, which pages and
	// sorts in SQL instead of going through the in-memory pipeline.
	ListProductsPage(ctx context.Context, q ProductPageQuery) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, seller *domain.User, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, actor *domain.User, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, actor *domain.User, id uuid.UUID) error
	ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, name, description, imageURL string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Browse loads the catalog snapshot and runs it through the filter
// pipeline. The pipeline itself is pure; this method is the single place
// the snapshot is fetched.
func (s *productService) Browse(ctx context.Context, cfg catalog.FilterConfig) ([]domain.Product, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return catalog.Apply(products, cfg), nil
}

// ListProductsPage pages through the catalog in SQL. Out-of-range
// paging knobs fall back to the first page of twenty.
func (s *productService) ListProductsPage(ctx context.Context, q ProductPageQuery) (*ProductPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var (
		products []*domain.Product
		total    int
		err      error
	)
	if q.Query != "" {
		products, total, err = s.productRepo.Search(ctx, q.Query, page, pageSize)
	} else {
		products, total, err = s.productRepo.List(ctx, q.CategoryID, page, pageSize, q.SortBy, q.SortOrder)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to page products: %w", err)
	}

	return &ProductPage{
		Products: products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// GetProduct retrieves a single product
func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct creates a product stamped with the seller's identity.
// The category is resolved by name so the product carries both the
// foreign key and the denormalized name the filter layer matches on.
func (s *productService) CreateProduct(ctx context.Context, seller *domain.User, input ProductInput) (*domain.Product, error) {
	category, err := s.categoryRepo.FindByName(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  category.ID,
		Category:    category.Name,
		ImageURL:    input.ImageURL,
		SellerID:    seller.ID,
		Seller:      seller.Name,
		Featured:    input.Featured,
		Inventory:   input.Inventory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct replaces a product's attributes. Sellers may only touch
// their own products; admins may touch any.
func (s *productService) UpdateProduct(ctx context.Context, actor *domain.User, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(actor, product); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByName(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = category.ID
	product.Category = category.Name
	product.ImageURL = input.ImageURL
	product.Featured = input.Featured
	product.Inventory = input.Inventory
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product, subject to the same ownership rule
// as UpdateProduct.
func (s *productService) DeleteProduct(ctx context.Context, actor *domain.User, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authorize(actor, product); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// ListSellerProducts retrieves the seller's own products
func (s *productService) ListSellerProducts(ctx context.Context, sellerID uuid.UUID) ([]domain.Product, error) {
	products, err := s.productRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seller products: %w", err)
	}
	return products, nil
}

// ListCategories retrieves all categories
func (s *productService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory retrieves a single category
func (s *productService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// CreateCategory creates a new category
func (s *productService) CreateCategory(ctx context.Context, name, description, imageURL string) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category
func (s *productService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *productService) authorize(actor *domain.User, product *domain.Product) error {
	if actor.Role == domain.RoleAdmin {
		return nil
	}
	if product.SellerID != actor.ID {
		return ErrNotProductOwner
	}
	return nil
}
