package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-api/apperr"
	"ecommerce-api/database"
	"ecommerce-api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// NamedService manages one kind of name-keyed reference entity.
type NamedService[T models.Named[T]] struct {
	store NamedStore[T]
	kind  string
	build func(name string) T
}

func NewBrandService(store NamedStore[models.Brand]) *NamedService[models.Brand] {
	return &NamedService[models.Brand]{store: store, kind: "brand", build: models.NewBrand}
}

func NewCategoryService(store NamedStore[models.Category]) *NamedService[models.Category] {
	return &NamedService[models.Category]{store: store, kind: "category", build: models.NewCategory}
}

func (s *NamedService[T]) op(method string) string {
	return fmt.Sprintf("NamedService[%s].%s", s.kind, method)
}

func (s *NamedService[T]) Create(ctx context.Context, name string) (T, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, apperr.BadRequest("name is required")
	}

	doc := s.build(name)
	if err := s.store.Create(ctx, doc); err != nil {
		return zero, s.err(s.op("Create"), err)
	}
	return doc, nil
}

func (s *NamedService[T]) List(ctx context.Context) ([]T, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, s.err(s.op("List"), err)
	}
	return docs, nil
}

func (s *NamedService[T]) Rename(ctx context.Context, id primitive.ObjectID, name string) (T, error) {
	var zero T
	name = strings.TrimSpace(name)
	if name == "" {
		return zero, apperr.BadRequest("name is required")
	}

	doc, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return zero, s.err(s.op("Rename"), err)
	}
	return doc, nil
}

func (s *NamedService[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.err(s.op("Delete"), s.store.Delete(ctx, id))
}

func (s *NamedService[T]) err(op string, err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return apperr.Conflict(s.kind + " already exists")
	}
	return storeErr(op, err, s.kind+" not found")
}

type ProductService struct {
	products   ProductStore
	brands     NamedStore[models.Brand]
	categories NamedStore[models.Category]
	now        func() time.Time
}

func NewProductService(products ProductStore, brands NamedStore[models.Brand], categories NamedStore[models.Category]) *ProductService {
	return &ProductService{products: products, brands: brands, categories: categories, now: time.Now}
}

type ProductInput struct {
	Name        string
	Description string
	Image       string
	Price       float64
	Quantity    int
	Brand       *primitive.ObjectID
	Category    *primitive.ObjectID
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return apperr.BadRequest("name is required")
	case strings.TrimSpace(in.Description) == "":
		return apperr.BadRequest("description is required")
	case strings.TrimSpace(in.Image) == "":
		return apperr.BadRequest("image is required")
	case in.Price <= 0:
		return apperr.BadRequest("price must be greater than 0")
	case in.Quantity < 0:
		return apperr.BadRequest("quantity must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.ProductView, error) {
	const op = "ProductService.Create"

	if err := in.validate(); err != nil {
		return models.ProductView{}, err
	}
	if err := s.checkRefs(ctx, op, in.Brand, in.Category); err != nil {
		return models.ProductView{}, err
	}

	now := s.now().UTC()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Image:       strings.TrimSpace(in.Image),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Brand:       in.Brand,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return models.ProductView{}, storeErr(op, err, "product not found")
	}

	views, err := s.resolve(ctx, op, []models.Product{p})
	if err != nil {
		return models.ProductView{}, err
	}
	return views[0], nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (models.ProductView, error) {
	const op = "ProductService.Get"

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return models.ProductView{}, storeErr(op, err, "product not found")
	}
	views, err := s.resolve(ctx, op, []models.Product{p})
	if err != nil {
		return models.ProductView{}, err
	}
	return views[0], nil
}

func (s *ProductService) List(ctx context.Context, f models.ProductFilter) (Paged[models.ProductView], error) {
	const op = "ProductService.List"

	f.Search = strings.TrimSpace(f.Search)
	products, total, err := s.products.List(ctx, f)
	if err != nil {
		return Paged[models.ProductView]{}, storeErr(op, err, "")
	}
	views, err := s.resolve(ctx, op, products)
	if err != nil {
		return Paged[models.ProductView]{}, err
	}
	return newPaged(views, total, f.Page), nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, u models.ProductUpdate) (models.ProductView, error) {
	const op = "ProductService.Update"

	switch {
	case u.Name != nil && strings.TrimSpace(*u.Name) == "":
		return models.ProductView{}, apperr.BadRequest("name must not be empty")
	case u.Price != nil && *u.Price <= 0:
		return models.ProductView{}, apperr.BadRequest("price must be greater than 0")
	case u.Quantity != nil && *u.Quantity < 0:
		return models.ProductView{}, apperr.BadRequest("quantity must not be negative")
	}
	if err := s.checkRefs(ctx, op, u.Brand, u.Category); err != nil {
		return models.ProductView{}, err
	}

	p, err := s.products.Update(ctx, id, u)
	if err != nil {
		return models.ProductView{}, storeErr(op, err, "product not found")
	}
	views, err := s.resolve(ctx, op, []models.Product{p})
	if err != nil {
		return models.ProductView{}, err
	}
	return views[0], nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	const op = "ProductService.Delete"
	return storeErr(op, s.products.Delete(ctx, id), "product not found")
}

func (s *ProductService) checkRefs(ctx context.Context, op string, brand, category *primitive.ObjectID) error {
	if brand != nil {
		if _, err := s.brands.FindByID(ctx, *brand); err != nil {
			return refErr(op, err, "brand not found")
		}
	}
	if category != nil {
		if _, err := s.categories.FindByID(ctx, *category); err != nil {
			return refErr(op, err, "category not found")
		}
	}
	return nil
}

// refErr reports a dangling reference in the request body as a bad request.
func refErr(op string, err error, msg string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.BadRequest(msg)
	}
	return storeErr(op, err, msg)
}

// resolve loads the brands and categories referenced by products in two
// concurrent queries and attaches their names.
func (s *ProductService) resolve(ctx context.Context, op string, products []models.Product) ([]models.ProductView, error) {
	var brandIDs, categoryIDs []primitive.ObjectID
	for _, p := range products {
		if p.Brand != nil {
			brandIDs = append(brandIDs, *p.Brand)
		}
		if p.Category != nil {
			categoryIDs = append(categoryIDs, *p.Category)
		}
	}

	var brands []models.Brand
	var categories []models.Category
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brands, err = s.brands.FindByIDs(gctx, brandIDs)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categories.FindByIDs(gctx, categoryIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(op, err, "")
	}

	brandRefs := refsByID(brands)
	categoryRefs := refsByID(categories)

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		v := models.ProductView{Product: p}
		if p.Brand != nil {
			v.Brand = brandRefs[*p.Brand]
		}
		if p.Category != nil {
			v.Category = categoryRefs[*p.Category]
		}
		views = append(views, v)
	}
	return views, nil
}

func refsByID[T models.Named[T]](docs []T) map[primitive.ObjectID]*models.NamedRef {
	out := make(map[primitive.ObjectID]*models.NamedRef, len(docs))
	for _, d := range docs {
		ref := d.Ref()
		out[ref.ID] = &ref
	}
	return out
}
