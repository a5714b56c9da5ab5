package commerce

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opticalmarket/storefront/internal/domain"
)

// MockAPI is a test implementation of API. Each method delegates to its
// Func field when set and otherwise records into the in-memory maps, so
// tests only override the calls they care about. CallLog tracks method
// calls for assertions on sequencing and counts.
type MockAPI struct {
	CreateOrderFunc       func(ctx context.Context, params CreateOrderParams) (*domain.Order, error)
	GetOrderFunc          func(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersFunc        func(ctx context.Context) ([]domain.Order, error)
	ListSellerOrdersFunc  func(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID, status string) (*domain.Order, error)
	PushOrderToBlingFunc  func(ctx context.Context, orderID string) (*BlingSyncResult, error)

	CreatePaymentFunc func(ctx context.Context, params CreatePaymentParams) (*domain.PaymentResult, error)
	PaymentStatusFunc func(ctx context.Context, orderID string) (string, error)

	ListAddressesFunc func(ctx context.Context) ([]domain.Address, error)
	CreateAddressFunc func(ctx context.Context, params CreateAddressParams) (*domain.Address, error)

	ListProductsFunc   func(ctx context.Context, params ListProductsParams) ([]Product, error)
	GetProductFunc     func(ctx context.Context, productID string) (*Product, error)
	CreateProductFunc  func(ctx context.Context, params ProductParams) (*Product, error)
	UpdateProductFunc  func(ctx context.Context, productID string, params ProductParams) (*Product, error)
	DeleteProductFunc  func(ctx context.Context, productID string) error
	ListCategoriesFunc func(ctx context.Context) ([]Category, error)
	CreateCategoryFunc func(ctx context.Context, params CategoryParams) (*Category, error)
	UpdateCategoryFunc func(ctx context.Context, categoryID string, params CategoryParams) (*Category, error)
	DeleteCategoryFunc func(ctx context.Context, categoryID string) error

	BlingStatusFunc          func(ctx context.Context) (*BlingStatus, error)
	SyncBlingProductsFunc    func(ctx context.Context) (*BlingSyncResult, error)
	SaveBlingCredentialsFunc func(ctx context.Context, params BlingCredentialsParams) error

	LoginFunc    func(ctx context.Context, params LoginParams) (*AuthResult, error)
	RegisterFunc func(ctx context.Context, params RegisterParams) (*AuthResult, error)
	ProfileFunc  func(ctx context.Context) (*domain.User, error)

	// Orders stores created orders for retrieval by ID.
	Orders map[string]*domain.Order

	// Statuses stores per-order payment statuses returned by PaymentStatus.
	Statuses map[string]string

	// Products stores created products for retrieval by ID.
	Products map[string]*Product

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockAPI creates a new mock backend client.
func NewMockAPI() *MockAPI {
	return &MockAPI{
		Orders:   make(map[string]*domain.Order),
		Statuses: make(map[string]string),
		Products: make(map[string]*Product),
		CallLog:  []string{},
	}
}

// Calls returns how many logged calls start with the given method name.
func (m *MockAPI) Calls(method string) int {
	n := 0
	for _, entry := range m.CallLog {
		if len(entry) >= len(method) && entry[:len(method)] == method {
			n++
		}
	}
	return n
}

func (m *MockAPI) CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateOrder(%s, %s)", params.AddressID, params.PaymentMethod))

	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, params)
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: string(params.PaymentMethod),
		Address:       domain.Address{ID: params.AddressID},
	}
	for _, item := range params.Items {
		order.Items = append(order.Items, domain.OrderItem{
			Product:  domain.OrderProduct{ID: item.ProductID},
			Quantity: item.Quantity,
		})
	}

	m.Orders[order.ID] = order
	return order, nil
}

func (m *MockAPI) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetOrder(%s)", orderID))

	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID)
	}

	order, ok := m.Orders[orderID]
	if !ok {
		return nil, domain.NotFound("commerce.GetOrder", "order", orderID)
	}
	return order, nil
}

func (m *MockAPI) ListOrders(ctx context.Context) ([]domain.Order, error) {
	m.CallLog = append(m.CallLog, "ListOrders")

	if m.ListOrdersFunc != nil {
		return m.ListOrdersFunc(ctx)
	}

	orders := make([]domain.Order, 0, len(m.Orders))
	for _, order := range m.Orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (m *MockAPI) ListSellerOrders(ctx context.Context) ([]domain.Order, error) {
	m.CallLog = append(m.CallLog, "ListSellerOrders")

	if m.ListSellerOrdersFunc != nil {
		return m.ListSellerOrdersFunc(ctx)
	}
	return m.ListOrders(ctx)
}

func (m *MockAPI) UpdateOrderStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("UpdateOrderStatus(%s, %s)", orderID, status))

	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, orderID, status)
	}

	order, ok := m.Orders[orderID]
	if !ok {
		return nil, domain.NotFound("commerce.UpdateOrderStatus", "order", orderID)
	}
	order.Status = status
	return order, nil
}

func (m *MockAPI) PushOrderToBling(ctx context.Context, orderID string) (*BlingSyncResult, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("PushOrderToBling(%s)", orderID))

	if m.PushOrderToBlingFunc != nil {
		return m.PushOrderToBlingFunc(ctx, orderID)
	}
	return &BlingSyncResult{Success: true, Synced: 1}, nil
}

func (m *MockAPI) CreatePayment(ctx context.Context, params CreatePaymentParams) (*domain.PaymentResult, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePayment(%s, %s)", params.OrderID, params.PaymentMethod))

	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, params)
	}

	return &domain.PaymentResult{
		PaymentID: "pay_" + uuid.New().String()[:8],
		Status:    domain.PaymentStatusPending,
	}, nil
}

func (m *MockAPI) PaymentStatus(ctx context.Context, orderID string) (string, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("PaymentStatus(%s)", orderID))

	if m.PaymentStatusFunc != nil {
		return m.PaymentStatusFunc(ctx, orderID)
	}

	if status, ok := m.Statuses[orderID]; ok {
		return status, nil
	}
	return domain.PaymentStatusPending, nil
}

func (m *MockAPI) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	m.CallLog = append(m.CallLog, "ListAddresses")

	if m.ListAddressesFunc != nil {
		return m.ListAddressesFunc(ctx)
	}
	return nil, nil
}

func (m *MockAPI) CreateAddress(ctx context.Context, params CreateAddressParams) (*domain.Address, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateAddress(%s)", params.ZipCode))

	if m.CreateAddressFunc != nil {
		return m.CreateAddressFunc(ctx, params)
	}

	return &domain.Address{
		ID:           uuid.New().String(),
		Street:       params.Street,
		Number:       params.Number,
		Complement:   params.Complement,
		Neighborhood: params.Neighborhood,
		City:         params.City,
		State:        params.State,
		ZipCode:      params.ZipCode,
		IsDefault:    params.IsDefault,
	}, nil
}

func (m *MockAPI) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	m.CallLog = append(m.CallLog, "ListProducts")

	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx, params)
	}

	products := make([]Product, 0, len(m.Products))
	for _, product := range m.Products {
		products = append(products, *product)
	}
	return products, nil
}

func (m *MockAPI) GetProduct(ctx context.Context, productID string) (*Product, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetProduct(%s)", productID))

	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, productID)
	}

	product, ok := m.Products[productID]
	if !ok {
		return nil, domain.NotFound("commerce.GetProduct", "product", productID)
	}
	return product, nil
}

func (m *MockAPI) CreateProduct(ctx context.Context, params ProductParams) (*Product, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateProduct(%s)", params.Name))

	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, params)
	}

	product := &Product{
		ID:          uuid.New().String(),
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Stock:       params.Stock,
		Images:      params.Images,
		CategoryID:  params.CategoryID,
		SKU:         params.SKU,
	}
	m.Products[product.ID] = product
	return product, nil
}

func (m *MockAPI) UpdateProduct(ctx context.Context, productID string, params ProductParams) (*Product, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("UpdateProduct(%s)", productID))

	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, productID, params)
	}

	product, ok := m.Products[productID]
	if !ok {
		return nil, domain.NotFound("commerce.UpdateProduct", "product", productID)
	}
	product.Name = params.Name
	product.Description = params.Description
	product.Price = params.Price
	product.Stock = params.Stock
	product.Images = params.Images
	product.CategoryID = params.CategoryID
	product.SKU = params.SKU
	return product, nil
}

func (m *MockAPI) DeleteProduct(ctx context.Context, productID string) error {
	m.CallLog = append(m.CallLog, fmt.Sprintf("DeleteProduct(%s)", productID))

	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, productID)
	}

	delete(m.Products, productID)
	return nil
}

func (m *MockAPI) ListCategories(ctx context.Context) ([]Category, error) {
	m.CallLog = append(m.CallLog, "ListCategories")

	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, nil
}

func (m *MockAPI) CreateCategory(ctx context.Context, params CategoryParams) (*Category, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCategory(%s)", params.Name))

	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, params)
	}
	return &Category{ID: uuid.New().String(), Name: params.Name, Description: params.Description}, nil
}

func (m *MockAPI) UpdateCategory(ctx context.Context, categoryID string, params CategoryParams) (*Category, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("UpdateCategory(%s)", categoryID))

	if m.UpdateCategoryFunc != nil {
		return m.UpdateCategoryFunc(ctx, categoryID, params)
	}
	return &Category{ID: categoryID, Name: params.Name, Description: params.Description}, nil
}

func (m *MockAPI) DeleteCategory(ctx context.Context, categoryID string) error {
	m.CallLog = append(m.CallLog, fmt.Sprintf("DeleteCategory(%s)", categoryID))

	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(ctx, categoryID)
	}
	return nil
}

func (m *MockAPI) BlingStatus(ctx context.Context) (*BlingStatus, error) {
	m.CallLog = append(m.CallLog, "BlingStatus")

	if m.BlingStatusFunc != nil {
		return m.BlingStatusFunc(ctx)
	}
	return &BlingStatus{Connected: true}, nil
}

func (m *MockAPI) SyncBlingProducts(ctx context.Context) (*BlingSyncResult, error) {
	m.CallLog = append(m.CallLog, "SyncBlingProducts")

	if m.SyncBlingProductsFunc != nil {
		return m.SyncBlingProductsFunc(ctx)
	}
	return &BlingSyncResult{Success: true}, nil
}

func (m *MockAPI) SaveBlingCredentials(ctx context.Context, params BlingCredentialsParams) error {
	m.CallLog = append(m.CallLog, "SaveBlingCredentials")

	if m.SaveBlingCredentialsFunc != nil {
		return m.SaveBlingCredentialsFunc(ctx, params)
	}
	return nil
}

func (m *MockAPI) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("Login(%s)", params.Email))

	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, params)
	}

	return &AuthResult{
		Token: "tok_" + uuid.New().String()[:8],
		User:  domain.User{ID: uuid.New().String(), Email: params.Email, Role: domain.RoleCustomer},
	}, nil
}

func (m *MockAPI) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("Register(%s)", params.Email))

	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, params)
	}

	return &AuthResult{
		Token: "tok_" + uuid.New().String()[:8],
		User:  domain.User{ID: uuid.New().String(), Name: params.Name, Email: params.Email, Role: domain.RoleCustomer},
	}, nil
}

func (m *MockAPI) Profile(ctx context.Context) (*domain.User, error) {
	m.CallLog = append(m.CallLog, "Profile")

	if m.ProfileFunc != nil {
		return m.ProfileFunc(ctx)
	}

	if user := domain.UserFromContext(ctx); user != nil {
		return user, nil
	}
	return nil, domain.Unauthorized("commerce.Profile", "not authenticated")
}
