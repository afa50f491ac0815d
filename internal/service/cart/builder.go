package cart

import (
	"context"
	"strings"

	"cartbuilder/internal/domain"
	"go.uber.org/zap"
)

const anonymousCustomerName = "Anonymous"

// ErrNoCart is returned by operations that need a cart before one was taken
// or created.
var ErrNoCart = domain.InvalidArgument("builder holds no cart")

// CartRepository finds, loads, saves and deletes whole cart aggregates.
type CartRepository interface {
	Search(ctx context.Context, criteria domain.CartCriteria) ([]domain.Cart, error)
	GetByIDs(ctx context.Context, ids ...string) ([]domain.Cart, error)
	Save(ctx context.Context, carts ...*domain.Cart) error
	Delete(ctx context.Context, ids ...string) error
}

// StoreLookup resolves store configuration by id.
type StoreLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}

// CustomerLookup resolves registered customers. Unknown ids are simply absent
// from the result.
type CustomerLookup interface {
	GetByIDs(ctx context.Context, ids ...string) ([]domain.Customer, error)
}

// Builder holds one cart and applies mutations to it in memory. Nothing is
// written until Save, RemoveCart or MergeWithCart is called.
//
// The store of the held cart is loaded on first use and kept for the
// builder's lifetime; changes to store configuration made meanwhile are not
// observed. A Builder is not safe for concurrent use.
type Builder struct {
	carts     CartRepository
	stores    StoreLookup
	customers CustomerLookup
	logger    *zap.Logger

	cart  *domain.Cart
	store *domain.Store
}

// NewBuilder returns a Builder with no cart; a logger of nil is replaced by a no-op.
func NewBuilder(carts CartRepository, stores StoreLookup, customers CustomerLookup, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		carts:     carts,
		stores:    stores,
		customers: customers,
		logger:    logger,
	}
}

// Cart returns the held cart, or nil if none was acquired.
func (b *Builder) Cart() *domain.Cart {
	return b.cart
}

// TakeCart makes cart the held cart without touching the repository.
func (b *Builder) TakeCart(cart *domain.Cart) (*Builder, error) {
	if cart == nil {
		return b, domain.InvalidArgument("cart is required")
	}
	if b.cart != cart {
		b.store = nil
	}
	b.cart = cart
	return b, nil
}

// GetOrCreateCart takes the first stored cart matching the customer, store,
// name and currency. When none exists a new cart is saved and read back so
// that repository-assigned fields are present.
func (b *Builder) GetOrCreateCart(ctx context.Context, storeID, customerID, cartName, currency, cultureName string) (*Builder, error) {
	if strings.TrimSpace(storeID) == "" {
		return b, domain.InvalidArgument("store id is required")
	}
	if strings.TrimSpace(currency) == "" {
		return b, domain.InvalidArgument("currency is required")
	}

	criteria := domain.CartCriteria{
		CustomerID: customerID,
		StoreID:    storeID,
		Name:       cartName,
		Currency:   currency,
	}
	found, err := b.carts.Search(ctx, criteria)
	if err != nil {
		return b, err
	}
	if len(found) > 0 {
		return b.TakeCart(&found[0])
	}

	customerName, anonymous, err := b.resolveCustomerName(ctx, customerID)
	if err != nil {
		return b, err
	}

	cart := &domain.Cart{
		StoreID:      storeID,
		CustomerID:   customerID,
		CustomerName: customerName,
		IsAnonymous:  anonymous,
		Name:         cartName,
		Currency:     currency,
		LanguageCode: cultureName,
	}
	if err := b.carts.Save(ctx, cart); err != nil {
		return b, err
	}
	stored, err := b.carts.GetByIDs(ctx, cart.ID)
	if err != nil {
		return b, err
	}
	if len(stored) == 0 {
		return b, domain.ErrNotFound
	}
	b.logger.Info("cart created",
		zap.String("cart_id", stored[0].ID),
		zap.String("store_id", storeID),
		zap.Bool("anonymous", anonymous),
	)
	return b.TakeCart(&stored[0])
}

func (b *Builder) resolveCustomerName(ctx context.Context, customerID string) (string, bool, error) {
	if customerID == "" || b.customers == nil {
		return anonymousCustomerName, true, nil
	}
	customers, err := b.customers.GetByIDs(ctx, customerID)
	if err != nil {
		return "", false, err
	}
	for _, c := range customers {
		if c.ID == customerID {
			return c.FullName(), false, nil
		}
	}
	return anonymousCustomerName, true, nil
}

// AddItem merges item into the cart by product id: an existing line for the
// same product gets its quantity increased, otherwise item is appended as a
// new line. A line whose quantity drops to zero or below is removed, and a new
// line with a non-positive quantity is not added.
func (b *Builder) AddItem(item domain.LineItem) *Builder {
	if b.cart == nil {
		return b
	}
	for i := range b.cart.Items {
		if b.cart.Items[i].ProductID != item.ProductID {
			continue
		}
		b.cart.Items[i].Quantity += item.Quantity
		if b.cart.Items[i].Quantity <= 0 {
			b.cart.Items = append(b.cart.Items[:i], b.cart.Items[i+1:]...)
		}
		return b
	}
	if item.Quantity <= 0 {
		return b
	}
	item.ID = ""
	b.cart.Items = append(b.cart.Items, item)
	return b
}

// ChangeItemQuantity sets the quantity of an existing line. Unlike AddItem
// the value is absolute; zero or below removes the line.
func (b *Builder) ChangeItemQuantity(lineItemID string, quantity int) *Builder {
	if b.cart == nil {
		return b
	}
	idx := indexOfItem(b.cart.Items, lineItemID)
	if idx < 0 {
		return b
	}
	if quantity > 0 {
		b.cart.Items[idx].Quantity = quantity
		return b
	}
	b.cart.Items = append(b.cart.Items[:idx], b.cart.Items[idx+1:]...)
	return b
}

// RemoveItem drops the line item with lineItemID, if present.
func (b *Builder) RemoveItem(lineItemID string) *Builder {
	if b.cart == nil {
		return b
	}
	if idx := indexOfItem(b.cart.Items, lineItemID); idx >= 0 {
		b.cart.Items = append(b.cart.Items[:idx], b.cart.Items[idx+1:]...)
	}
	return b
}

// Clear removes every line item from the held cart.
func (b *Builder) Clear() *Builder {
	if b.cart == nil {
		return b
	}
	b.cart.Items = []domain.LineItem{}
	return b
}

// AddCoupon sets the cart coupon, replacing any previous one.
func (b *Builder) AddCoupon(code string) *Builder {
	if b.cart == nil {
		return b
	}
	b.cart.Coupon = &code
	return b
}

// RemoveCoupon clears the cart coupon.
func (b *Builder) RemoveCoupon() *Builder {
	if b.cart == nil {
		return b
	}
	b.cart.Coupon = nil
	return b
}

// AddOrUpdateShipment replaces any shipment with the same id and appends
// shipment stamped with the cart currency. A method code is then resolved
// against the available rates, and the matched rate's price, discount, tax
// type and canonical codes are copied onto the attached shipment.
//
// A shipment whose method cannot be resolved stays attached; the returned
// *domain.UnknownShippingMethodError only reports it.
func (b *Builder) AddOrUpdateShipment(ctx context.Context, shipment domain.Shipment) (*Builder, error) {
	if b.cart == nil {
		return b, ErrNoCart
	}
	if !shipment.IsTransient() {
		b.cart.Shipments = removeShipment(b.cart.Shipments, shipment.ID)
	}
	shipment.Currency = b.cart.Currency
	b.cart.Shipments = append(b.cart.Shipments, shipment)

	if shipment.ShipmentMethodCode == "" {
		return b, nil
	}
	rates, err := b.GetAvailableShippingRates(ctx)
	if err != nil {
		return b, err
	}
	rate, ok := matchRate(rates, shipment.ShipmentMethodCode, shipment.ShipmentMethodOption)
	if !ok {
		return b, &domain.UnknownShippingMethodError{
			Code:   shipment.ShipmentMethodCode,
			Option: shipment.ShipmentMethodOption,
		}
	}

	attached := &b.cart.Shipments[len(b.cart.Shipments)-1]
	attached.ShipmentMethodCode = rate.ShippingMethod.Code
	attached.ShipmentMethodOption = rate.OptionName
	attached.Price = rate.Rate
	attached.DiscountAmount = rate.DiscountAmount
	attached.TaxType = rate.ShippingMethod.TaxType
	return b, nil
}

// RemoveShipment drops the shipment with shipmentID, if present.
func (b *Builder) RemoveShipment(shipmentID string) *Builder {
	if b.cart == nil {
		return b
	}
	b.cart.Shipments = removeShipment(b.cart.Shipments, shipmentID)
	return b
}

// AddOrUpdatePayment replaces any payment with the same id and appends
// payment. A gateway code must name an active payment method of the store;
// as with shipments, an unknown code is reported after the payment is
// attached.
func (b *Builder) AddOrUpdatePayment(ctx context.Context, payment domain.Payment) (*Builder, error) {
	if b.cart == nil {
		return b, ErrNoCart
	}
	if !payment.IsTransient() {
		b.cart.Payments = removePayment(b.cart.Payments, payment.ID)
	}
	b.cart.Payments = append(b.cart.Payments, payment)

	if payment.PaymentGatewayCode == "" {
		return b, nil
	}
	methods, err := b.GetAvailablePaymentMethods(ctx)
	if err != nil {
		return b, err
	}
	for _, m := range methods {
		if strings.EqualFold(m.Code, payment.PaymentGatewayCode) {
			return b, nil
		}
	}
	return b, &domain.UnknownPaymentMethodError{Code: payment.PaymentGatewayCode}
}

// MergeWithCart folds other into the held cart and deletes other from the
// repository. Items are combined by product id; coupon, shipments and
// payments are taken from other as they are.
func (b *Builder) MergeWithCart(ctx context.Context, other *domain.Cart) (*Builder, error) {
	if other == nil {
		return b, domain.InvalidArgument("cart to merge is required")
	}
	if b.cart == nil {
		return b, ErrNoCart
	}
	if other == b.cart || (other.ID != "" && other.ID == b.cart.ID) {
		return b, domain.InvalidArgument("cannot merge a cart into itself")
	}

	for _, item := range other.Items {
		b.AddItem(item)
	}
	b.cart.Coupon = nil
	if other.Coupon != nil {
		code := *other.Coupon
		b.cart.Coupon = &code
	}
	b.cart.Shipments = append([]domain.Shipment{}, other.Shipments...)
	b.cart.Payments = append([]domain.Payment{}, other.Payments...)

	if other.IsTransient() {
		return b, nil
	}
	if err := b.carts.Delete(ctx, other.ID); err != nil {
		return b, err
	}
	b.logger.Info("cart merged",
		zap.String("cart_id", b.cart.ID),
		zap.String("merged_cart_id", other.ID),
	)
	return b, nil
}

// RemoveCart deletes the held cart from the repository. The builder keeps
// holding it.
func (b *Builder) RemoveCart(ctx context.Context) error {
	if b.cart == nil {
		return ErrNoCart
	}
	if err := b.carts.Delete(ctx, b.cart.ID); err != nil {
		return err
	}
	b.logger.Info("cart removed", zap.String("cart_id", b.cart.ID))
	return nil
}

// GetAvailableShippingRates asks every active shipping method of the store
// for rates on the cart as it is now. Rates bound to an inactive method are
// dropped; rates without a method are kept. The result is computed on every
// call.
func (b *Builder) GetAvailableShippingRates(ctx context.Context) ([]domain.ShippingRate, error) {
	if b.cart == nil {
		return nil, ErrNoCart
	}
	store, err := b.getStore(ctx)
	if err != nil {
		return nil, err
	}

	evalCtx := domain.ShippingEvaluationContext{Cart: b.cart}
	var rates []domain.ShippingRate
	for i := range store.ShippingMethods {
		method := &store.ShippingMethods[i]
		if !method.IsActive || method.Calculator == nil {
			continue
		}
		calculated, err := method.Calculator.CalculateRates(ctx, evalCtx)
		if err != nil {
			return nil, err
		}
		rates = append(rates, calculated...)
	}

	available := make([]domain.ShippingRate, 0, len(rates))
	for _, rate := range rates {
		if rate.ShippingMethod == nil || rate.ShippingMethod.IsActive {
			available = append(available, rate)
		}
	}
	return available, nil
}

// GetAvailablePaymentMethods lists the active payment methods of the cart's
// store. The store is loaded once per held cart and reused afterwards.
func (b *Builder) GetAvailablePaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	if b.cart == nil {
		return nil, ErrNoCart
	}
	store, err := b.getStore(ctx)
	if err != nil {
		return nil, err
	}
	methods := make([]domain.PaymentMethod, 0, len(store.PaymentMethods))
	for _, m := range store.PaymentMethods {
		if m.IsActive {
			methods = append(methods, m)
		}
	}
	return methods, nil
}

// Save writes the whole held cart in one repository call.
func (b *Builder) Save(ctx context.Context) error {
	if b.cart == nil {
		return ErrNoCart
	}
	return b.carts.Save(ctx, b.cart)
}

func (b *Builder) getStore(ctx context.Context) (*domain.Store, error) {
	if b.store != nil {
		return b.store, nil
	}
	store, err := b.stores.GetByID(ctx, b.cart.StoreID)
	if err != nil {
		return nil, err
	}
	b.store = store
	return store, nil
}

// matchRate finds the rate whose method code and option equal code and
// option ignoring case. Rates without a method never match.
func matchRate(rates []domain.ShippingRate, code, option string) (domain.ShippingRate, bool) {
	for _, rate := range rates {
		if rate.ShippingMethod == nil {
			continue
		}
		if strings.EqualFold(rate.ShippingMethod.Code, code) && strings.EqualFold(rate.OptionName, option) {
			return rate, true
		}
	}
	return domain.ShippingRate{}, false
}

func indexOfItem(items []domain.LineItem, id string) int {
	if id == "" {
		return -1
	}
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func removeShipment(shipments []domain.Shipment, id string) []domain.Shipment {
	if id == "" {
		return shipments
	}
	out := make([]domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func removePayment(payments []domain.Payment, id string) []domain.Payment {
	if id == "" {
		return payments
	}
	out := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
