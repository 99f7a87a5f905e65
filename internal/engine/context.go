package engine

import (
	"log/slog"

	"github.com/joseph-ayodele/order-extractor/internal/entity"
)

// parseContext is the mutable state of one scan. It is created per document and never
// shared, so independent scans can run concurrently on one Engine.
type parseContext struct {
	profile *Profile
	logger  *slog.Logger

	order     *entity.Order
	product   *entity.ProductLine
	inSection bool

	orders   []entity.Order
	products []entity.ProductLine
}

func newParseContext(p *Profile, logger *slog.Logger) *parseContext {
	return &parseContext{profile: p, logger: logger}
}

// startOrder opens an order for number unless it is the one already open, in which case
// the line is a repeated header (page break) and nothing changes.
func (pc *parseContext) startOrder(number string) {
	if pc.order != nil && pc.order.Number == number {
		return
	}
	if pc.order != nil {
		pc.sealProduct(false)
		pc.sealOrder()
	}
	pc.order = entity.NewOrder(number)
	pc.inSection = false
	pc.logger.Debug("engine.order.opened", "profile", pc.profile.Name, "order", number)
}

func (pc *parseContext) sealOrder() {
	if pc.order == nil {
		return
	}
	pc.orders = append(pc.orders, *pc.order)
	pc.logger.Debug("engine.order.sealed", "profile", pc.profile.Name, "order", pc.order.Number)
	pc.order = nil
}

// openProduct seals whatever product is open and makes p the open one.
func (pc *parseContext) openProduct(p *entity.ProductLine) {
	pc.sealProduct(true)
	pc.product = p
}

// sealProduct appends the open product. displaced is true when a new row pushes it out;
// otherwise the profile's SealRequiresCode policy applies.
func (pc *parseContext) sealProduct(displaced bool) {
	if pc.product == nil {
		return
	}
	p := pc.product
	pc.product = nil
	if !displaced && pc.profile.SealRequiresCode && p.SupplierCode == "" {
		pc.logger.Debug("engine.product.dropped", "profile", pc.profile.Name, "order", p.OrderNumber, "reason", "no supplier code")
		return
	}
	pc.products = append(pc.products, *p)
}

func (pc *parseContext) closeSection() {
	pc.sealProduct(false)
	pc.inSection = false
}

// finish seals the open product and order at end of stream.
func (pc *parseContext) finish() {
	pc.sealProduct(false)
	pc.sealOrder()
}
