package services

import (
	"context"
	"sync"
	"testing"

	"ecommerce-api/auth"
	"ecommerce-api/database/inmemory"
	"ecommerce-api/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type sentMail struct {
	to, name, link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, name, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, link: link})
	return nil
}

type testEnv struct {
	users      *inmemory.UserRepository
	products   *inmemory.ProductRepository
	brands     *inmemory.NamedRepository[models.Brand]
	categories *inmemory.NamedRepository[models.Category]
	orders     *inmemory.OrderRepository
	tokens     *auth.TokenService
	mailer     *fakeMailer
	hasher     auth.BcryptHasher

	userSvc    *UserService
	cartSvc    *CartService
	orderSvc   *OrderService
	productSvc *ProductService
	brandSvc   *NamedService[models.Brand]
}

func newTestEnv(t *testing.T, orderCfg OrderServiceConfig) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{AccessSecret: "access", RefreshSecret: "refresh"})
	require.NoError(t, err)

	env := &testEnv{
		users:      inmemory.NewUserRepository(),
		products:   inmemory.NewProductRepository(),
		brands:     inmemory.NewBrandRepository(),
		categories: inmemory.NewCategoryRepository(),
		orders:     inmemory.NewOrderRepository(),
		tokens:     tokens,
		mailer:     &fakeMailer{},
		hasher:     auth.BcryptHasher{Cost: bcrypt.MinCost},
	}
	env.userSvc = NewUserService(env.users, tokens, env.hasher, env.mailer, UserServiceConfig{
		FrontendURL: "http://shop.test",
	})
	env.cartSvc = NewCartService(env.users, env.products)
	env.orderSvc = NewOrderService(env.users, env.products, env.orders, orderCfg)
	env.productSvc = NewProductService(env.products, env.brands, env.categories)
	env.brandSvc = NewBrandService(env.brands)
	return env
}

func (e *testEnv) register(t *testing.T, email, mobile, role string) models.User {
	t.Helper()
	u, err := e.userSvc.Register(context.Background(), RegisterInput{
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Email:     email,
		Mobile:    mobile,
		Address:   "12 Analytical Way",
		Password:  "12345678",
		Role:      role,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) product(t *testing.T, name string, price float64, quantity int) models.Product {
	t.Helper()
	v, err := e.productSvc.Create(context.Background(), ProductInput{
		Name:        name,
		Description: name + " description",
		Image:       "https://img.test/" + name + ".png",
		Price:       price,
		Quantity:    quantity,
	})
	require.NoError(t, err)
	return v.Product
}

func ptr[T any](v T) *T { return &v }

var missingID = primitive.NewObjectID()
