package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cartbuilder/internal/cartlock"
	"cartbuilder/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service runs request-sized units of work against carts. Every call that
// touches a stored cart holds that cart's lock, adopts it in a fresh Builder
// and saves at most once.
type Service struct {
	carts     CartRepository
	stores    StoreLookup
	customers CustomerLookup
	products  productRepo
	locker    cartlock.Locker
	logger    *zap.Logger
}

type productRepo interface {
	GetByID(ctx context.Context, storeID, id string) (*domain.Product, error)
}

func New(carts CartRepository, stores StoreLookup, customers CustomerLookup, products productRepo, locker cartlock.Locker, logger *zap.Logger) *Service {
	if locker == nil {
		locker = cartlock.NewLocal()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:     carts,
		stores:    stores,
		customers: customers,
		products:  products,
		locker:    locker,
		logger:    logger,
	}
}

type GetOrCreateInput struct {
	CustomerID  string `json:"customerId"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	CultureName string `json:"cultureName,omitempty"`
}

type UpdateInput struct {
	Actions []UpdateAction `json:"actions"`
}

type UpdateAction struct {
	Action     string           `json:"action"`
	ProductID  string           `json:"productId,omitempty"`
	LineItemID string           `json:"lineItemId,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	Code       string           `json:"code,omitempty"`
	ShipmentID string           `json:"shipmentId,omitempty"`
	Shipment   *domain.Shipment `json:"shipment,omitempty"`
	Payment    *domain.Payment  `json:"payment,omitempty"`
}

func (s *Service) newBuilder() *Builder {
	return NewBuilder(s.carts, s.stores, s.customers, s.logger)
}

func (s *Service) GetOrCreate(ctx context.Context, storeID string, in GetOrCreateInput) (*domain.Cart, error) {
	key := strings.Join([]string{"owner", storeID, in.CustomerID, in.Name, in.Currency}, ":")
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.newBuilder().GetOrCreateCart(ctx, storeID, in.CustomerID, in.Name, in.Currency, in.CultureName)
	if err != nil {
		return nil, err
	}
	return b.Cart(), nil
}

func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.load(ctx, cartID)
}

// Update applies actions in order and saves once. The first failing action
// aborts the request and nothing is written.
func (s *Service) Update(ctx context.Context, cartID string, in UpdateInput) (*domain.Cart, error) {
	if len(in.Actions) == 0 {
		return nil, domain.InvalidArgument("actions required")
	}
	unlock, err := s.locker.Lock(ctx, cartID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	b, err := s.newBuilder().TakeCart(cart)
	if err != nil {
		return nil, err
	}
	for _, action := range in.Actions {
		if err := s.apply(ctx, b, action); err != nil {
			return nil, err
		}
	}
	if err := b.Save(ctx); err != nil {
		return nil, err
	}
	return s.load(ctx, cartID)
}

func (s *Service) apply(ctx context.Context, b *Builder, action UpdateAction) error {
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "addlineitem":
		item, err := s.lineItemFor(ctx, b.Cart(), action)
		if err != nil {
			return err
		}
		b.AddItem(item)
	case "changelineitemquantity":
		if strings.TrimSpace(action.LineItemID) == "" {
			return domain.InvalidArgument("lineItemId required")
		}
		b.ChangeItemQuantity(action.LineItemID, action.Quantity)
	case "removelineitem":
		if strings.TrimSpace(action.LineItemID) == "" {
			return domain.InvalidArgument("lineItemId required")
		}
		b.RemoveItem(action.LineItemID)
	case "clearlineitems":
		b.Clear()
	case "addcoupon":
		code := strings.TrimSpace(action.Code)
		if code == "" {
			return domain.InvalidArgument("code required")
		}
		b.AddCoupon(code)
	case "removecoupon":
		b.RemoveCoupon()
	case "addshipment":
		if action.Shipment == nil {
			return domain.InvalidArgument("shipment required")
		}
		shipment := *action.Shipment
		if !hasShipment(b.Cart(), shipment.ID) {
			shipment.ID = ""
		}
		if _, err := b.AddOrUpdateShipment(ctx, shipment); err != nil {
			return err
		}
	case "removeshipment":
		if strings.TrimSpace(action.ShipmentID) == "" {
			return domain.InvalidArgument("shipmentId required")
		}
		b.RemoveShipment(action.ShipmentID)
	case "addpayment":
		if action.Payment == nil {
			return domain.InvalidArgument("payment required")
		}
		payment := *action.Payment
		if !hasPayment(b.Cart(), payment.ID) {
			payment.ID = ""
		}
		if _, err := b.AddOrUpdatePayment(ctx, payment); err != nil {
			return err
		}
	default:
		return domain.InvalidArgument(fmt.Sprintf("unsupported action %q", action.Action))
	}
	return nil
}

// Ids from a request only replace entries already on the cart; anything else
// is added as new so a foreign id never reaches Save.
func hasShipment(cart *domain.Cart, id string) bool {
	if id == "" {
		return false
	}
	for _, sh := range cart.Shipments {
		if sh.ID == id {
			return true
		}
	}
	return false
}

func hasPayment(cart *domain.Cart, id string) bool {
	if id == "" {
		return false
	}
	for _, p := range cart.Payments {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Service) lineItemFor(ctx context.Context, cart *domain.Cart, action UpdateAction) (domain.LineItem, error) {
	productID := strings.TrimSpace(action.ProductID)
	if productID == "" {
		return domain.LineItem{}, domain.InvalidArgument("productId required")
	}
	if action.Quantity <= 0 {
		return domain.LineItem{}, domain.InvalidArgument("quantity must be positive")
	}
	item := domain.LineItem{ProductID: productID, Quantity: action.Quantity, Currency: cart.Currency}
	if s.products == nil {
		return item, nil
	}
	product, err := s.products.GetByID(ctx, cart.StoreID, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.LineItem{}, domain.InvalidArgument("product not found")
		}
		return domain.LineItem{}, err
	}
	item.SKU = product.SKU
	item.Name = product.Name
	item.ListPrice = decimal.New(product.PriceCents, -2)
	return item, nil
}

// Merge folds the cart otherCartID into cartID and deletes it. Both carts are
// locked, in a fixed order so that concurrent opposite merges cannot deadlock.
func (s *Service) Merge(ctx context.Context, cartID, otherCartID string) (*domain.Cart, error) {
	otherCartID = strings.TrimSpace(otherCartID)
	if otherCartID == "" {
		return nil, domain.InvalidArgument("cartId to merge required")
	}
	if otherCartID == cartID {
		return nil, domain.InvalidArgument("cannot merge a cart into itself")
	}

	first, second := cartID, otherCartID
	if second < first {
		first, second = second, first
	}
	unlockFirst, err := s.locker.Lock(ctx, first)
	if err != nil {
		return nil, err
	}
	defer unlockFirst()
	unlockSecond, err := s.locker.Lock(ctx, second)
	if err != nil {
		return nil, err
	}
	defer unlockSecond()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	other, err := s.load(ctx, otherCartID)
	if err != nil {
		return nil, err
	}
	b, err := s.newBuilder().TakeCart(cart)
	if err != nil {
		return nil, err
	}
	if _, err := b.MergeWithCart(ctx, other); err != nil {
		return nil, err
	}
	if err := b.Save(ctx); err != nil {
		return nil, err
	}
	return s.load(ctx, cartID)
}

func (s *Service) Delete(ctx context.Context, cartID string) error {
	unlock, err := s.locker.Lock(ctx, cartID)
	if err != nil {
		return err
	}
	defer unlock()

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return err
	}
	b, err := s.newBuilder().TakeCart(cart)
	if err != nil {
		return err
	}
	return b.RemoveCart(ctx)
}

func (s *Service) ShippingRates(ctx context.Context, cartID string) ([]domain.ShippingRate, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	b, err := s.newBuilder().TakeCart(cart)
	if err != nil {
		return nil, err
	}
	return b.GetAvailableShippingRates(ctx)
}

func (s *Service) PaymentMethods(ctx context.Context, cartID string) ([]domain.PaymentMethod, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	b, err := s.newBuilder().TakeCart(cart)
	if err != nil {
		return nil, err
	}
	return b.GetAvailablePaymentMethods(ctx)
}

func (s *Service) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	if strings.TrimSpace(cartID) == "" {
		return nil, domain.InvalidArgument("cart id required")
	}
	carts, err := s.carts.GetByIDs(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(carts) == 0 {
		return nil, domain.ErrNotFound
	}
	return &carts[0], nil
}
