package services_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"bichritech/internal/models"
	"bichritech/internal/repositories"
	"bichritech/internal/services"
	"bichritech/internal/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItems(items []models.OrderItem) error {
	args := m.Called(items)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id uint) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByOrderNumber(orderNumber string) (*models.Order, error) {
	args := m.Called(orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdatePaymentStatus(id uint, paymentStatus models.PaymentStatus, status models.OrderStatus) error {
	args := m.Called(id, paymentStatus, status)
	return args.Error(0)
}

// MockPayments is a mock implementation of services.Payments
type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) ProcessPayment(ctx context.Context, req models.PaymentRequest) models.PaymentResult {
	args := m.Called(ctx, req)
	return args.Get(0).(models.PaymentResult)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, body string) sms.Result {
	args := m.Called(ctx, to, body)
	return args.Get(0).(sms.Result)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishOrderEvent(event string, payload map[string]interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

var orderNumberPattern = regexp.MustCompile(`^BT\d{6}-[A-Z0-9]{6}$`)

func validCreateOrderRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Items: []models.CartItem{
			{ProductID: 1, ProductName: "Laptop HP", ProductBrand: "HP", Quantity: 2, UnitPrice: 100000, Subtotal: 200000},
			{ProductID: 2, ProductName: "Souris Logitech", ProductBrand: "Logitech", Quantity: 1, UnitPrice: 50000, Subtotal: 50000},
		},
		Subtotal:          250000,
		DeliveryFee:       5000,
		TotalAmount:       255000,
		PaymentMethod:     models.PaymentMethodCashOnDelivery,
		DeliveryFirstName: "Awa",
		DeliveryLastName:  "Diop",
		DeliveryPhone:     "77 123 45 67",
		DeliveryAddress:   "Rue 10, Médina",
		DeliveryCity:      "Dakar",
	}
}

func TestOrderService_CreateOrder_CashOnDelivery(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	mockPublisher := new(MockEventPublisher)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, mockPublisher)

	var createdOrder *models.Order
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		createdOrder = args.Get(0).(*models.Order)
		createdOrder.ID = 42
	}).Return(nil).Once()

	mockRepo.On("CreateItems", mock.MatchedBy(func(items []models.OrderItem) bool {
		return len(items) == 2 && items[0].OrderID == 42 && items[0].TotalPrice == 200000 && items[1].TotalPrice == 50000
	})).Return(nil).Once()

	mockPayments.On("ProcessPayment", mock.Anything, mock.MatchedBy(func(req models.PaymentRequest) bool {
		return req.OrderID == 42 && req.Amount == 255000 && req.PaymentMethod == models.PaymentMethodCashOnDelivery
	})).Return(models.PaymentResult{
		Success:       true,
		TransactionID: "COD_1735689600000",
		Status:        models.PaymentStatusPending,
		Message:       "Commande confirmée - Paiement à la livraison",
	}).Once()

	mockRepo.On("GetByID", uint(42)).Return(&models.Order{
		ID:            42,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: models.PaymentStatusPending,
	}, nil).Once()

	mockNotifier.On("Send", mock.Anything, "77 123 45 67", mock.AnythingOfType("string")).
		Return(sms.Result{Success: true, MessageID: "SIM_1"}).Once()
	mockPublisher.On("PublishOrderEvent", "order.created", mock.Anything).Return(nil).Once()

	resp, err := service.CreateOrder(context.Background(), nil, validCreateOrderRequest())

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, uint(42), resp.Order.ID)
	assert.Regexp(t, orderNumberPattern, resp.Order.OrderNumber)
	assert.Equal(t, models.OrderStatusConfirmed, resp.Order.Status)
	assert.Equal(t, 255000.0, resp.Order.TotalAmount)
	assert.Equal(t, models.PaymentStatusPending, resp.Payment.Status)
	assert.Empty(t, resp.Payment.PaymentURL, "cash on delivery never redirects")
	assert.Equal(t, models.OrderStatusPending, createdOrder.Status, "order is inserted PENDING; confirmation happens after payment")
	mockRepo.AssertExpectations(t)
	mockPayments.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, nil)

	// Zero quantity
	req := validCreateOrderRequest()
	req.Items[0].Quantity = 0
	_, err := service.CreateOrder(context.Background(), nil, req)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Item subtotal does not match quantity * unit price
	req = validCreateOrderRequest()
	req.Items[0].Subtotal = 199999
	_, err = service.CreateOrder(context.Background(), nil, req)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Total does not match subtotal + delivery fee
	req = validCreateOrderRequest()
	req.TotalAmount = 260000
	_, err = service.CreateOrder(context.Background(), nil, req)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Unknown payment method
	req = validCreateOrderRequest()
	req.PaymentMethod = "PAYPAL"
	_, err = service.CreateOrder(context.Background(), nil, req)
	assert.ErrorIs(t, err, services.ErrValidation)

	// Validation failures must not write anything.
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestOrderService_CreateOrder_RetriesOnDuplicateOrderNumber(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, nil)

	var firstNumber, secondNumber string
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		firstNumber = args.Get(0).(*models.Order).OrderNumber
	}).Return(fmt.Errorf("order number: %w", repositories.ErrDuplicateOrderNumber)).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		order := args.Get(0).(*models.Order)
		secondNumber = order.OrderNumber
		order.ID = 7
	}).Return(nil).Once()

	mockRepo.On("CreateItems", mock.Anything).Return(nil).Once()
	mockPayments.On("ProcessPayment", mock.Anything, mock.Anything).
		Return(models.PaymentResult{Success: true, Status: models.PaymentStatusPending}).Once()
	mockRepo.On("GetByID", uint(7)).Return(&models.Order{ID: 7, Status: models.OrderStatusConfirmed}, nil).Once()
	mockNotifier.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(sms.Result{Success: true}).Once()

	resp, err := service.CreateOrder(context.Background(), nil, validCreateOrderRequest())

	assert.NoError(t, err)
	assert.Regexp(t, orderNumberPattern, firstNumber)
	assert.Regexp(t, orderNumberPattern, secondNumber)
	assert.NotEqual(t, firstNumber, secondNumber, "a fresh number must be generated after a collision")
	assert.Equal(t, secondNumber, resp.Order.OrderNumber)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_CreateOrder_CompensatingDeleteOnItemFailure(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = 42
	}).Return(nil).Once()
	mockRepo.On("CreateItems", mock.Anything).Return(fmt.Errorf("disk full")).Once()
	mockRepo.On("Delete", uint(42)).Return(nil).Once()

	_, err := service.CreateOrder(context.Background(), nil, validCreateOrderRequest())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order items")
	mockRepo.AssertExpectations(t)
	mockPayments.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_PaymentFailureDoesNotRollBack(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = 42
	}).Return(nil).Once()
	mockRepo.On("CreateItems", mock.Anything).Return(nil).Once()
	mockPayments.On("ProcessPayment", mock.Anything, mock.Anything).Return(models.PaymentResult{
		Success: false,
		Status:  models.PaymentStatusFailed,
		Message: "Erreur Wave: connexion impossible",
	}).Once()
	mockRepo.On("GetByID", uint(42)).Return(&models.Order{
		ID:            42,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}, nil).Once()
	mockNotifier.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(sms.Result{Success: true}).Once()

	req := validCreateOrderRequest()
	req.PaymentMethod = models.PaymentMethodWave
	resp, err := service.CreateOrder(context.Background(), nil, req)

	assert.NoError(t, err, "a failed payment is reported in the response, not as an error")
	assert.True(t, resp.Success)
	assert.False(t, resp.Payment.Success)
	assert.Equal(t, models.OrderStatusPending, resp.Order.Status)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestOrderService_CreateOrder_NotificationFailureIsSwallowed(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPayments := new(MockPayments)
	mockNotifier := new(MockNotifier)
	mockPublisher := new(MockEventPublisher)
	service := services.NewOrderService(mockRepo, mockPayments, mockNotifier, mockPublisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.Order")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Order).ID = 42
	}).Return(nil).Once()
	mockRepo.On("CreateItems", mock.Anything).Return(nil).Once()
	mockPayments.On("ProcessPayment", mock.Anything, mock.Anything).
		Return(models.PaymentResult{Success: true, Status: models.PaymentStatusPending}).Once()
	mockRepo.On("GetByID", uint(42)).Return(&models.Order{ID: 42, Status: models.OrderStatusConfirmed}, nil).Once()
	mockNotifier.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(sms.Result{Success: false, Message: "tous les fournisseurs ont échoué"}).Once()
	// Broker publish failure must be swallowed too.
	mockPublisher.On("PublishOrderEvent", "order.created", mock.Anything).
		Return(fmt.Errorf("broker unavailable")).Once()

	resp, err := service.CreateOrder(context.Background(), nil, validCreateOrderRequest())

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	mockNotifier.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
