package service

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/datamodels/address"
	"github.com/example/goshop/internal/datamodels/cart"
	"github.com/example/goshop/internal/datamodels/order"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/datamodels/user"
	"github.com/example/goshop/internal/repository"
)

// 内存版仓储实现，行为对齐 mysql 实现的语义（含未找到错误与库存守卫），
// 供服务层测试使用。

type memProductRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*product.Product
	// decrementErr 让指定商品的下一次扣减强制失败，
	// 模拟预检之后库存被并发结账抢走
	decrementErr map[int64]error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		items:        map[int64]*product.Product{},
		decrementErr: map[int64]error{},
	}
}

func (r *memProductRepo) add(p *product.Product) *product.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.items[p.ID] = &cp
	return p
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetBySlug(_ context.Context, slug string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProductRepo) List(_ context.Context, f product.ListFilter) ([]*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*product.Product
	for _, p := range r.items {
		if f.OnlineOnly && p.Status != product.StatusOnline {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProductRepo) Create(_ context.Context, p *product.Product) error {
	r.add(p)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memProductRepo) DecrementStock(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.decrementErr[id]; ok {
		delete(r.decrementErr, id)
		return err
	}
	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < qty {
		return product.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *memProductRepo) RestoreStock(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += qty
	return nil
}

func (r *memProductRepo) SetStock(_ context.Context, id, qty int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock = qty
	return nil
}

func (r *memProductRepo) AddImage(_ context.Context, img *product.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[img.ProductID]
	if !ok {
		return repository.ErrNotFound
	}
	img.ID = int64(len(p.Images) + 1)
	p.Images = append(p.Images, *img)
	return nil
}

func (r *memProductRepo) snapshot() (int64, map[int64]*product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make(map[int64]*product.Product, len(r.items))
	for id, p := range r.items {
		cp := *p
		items[id] = &cp
	}
	return r.nextID, items
}

func (r *memProductRepo) restore(nextID int64, items map[int64]*product.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = nextID
	r.items = items
}

func (r *memProductRepo) RemoveImage(_ context.Context, productID, imageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[productID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, img := range p.Images {
		if img.ID == imageID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memCartRepo struct {
	mu       sync.Mutex
	nextID   int64
	carts    map[int64]*cart.Cart // cartID -> cart
	lines    map[int64]*cart.Line // lineID -> line
	products *memProductRepo      // 模拟预加载 Product
}

func newMemCartRepo(products *memProductRepo) *memCartRepo {
	return &memCartRepo{
		carts:    map[int64]*cart.Cart{},
		lines:    map[int64]*cart.Line{},
		products: products,
	}
}

func (r *memCartRepo) snapshot() (int64, map[int64]*cart.Cart, map[int64]*cart.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	carts := make(map[int64]*cart.Cart, len(r.carts))
	for id, c := range r.carts {
		cp := *c
		carts[id] = &cp
	}
	lines := make(map[int64]*cart.Line, len(r.lines))
	for id, l := range r.lines {
		cp := *l
		lines[id] = &cp
	}
	return r.nextID, carts, lines
}

func (r *memCartRepo) restore(nextID int64, carts map[int64]*cart.Cart, lines map[int64]*cart.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = nextID
	r.carts = carts
	r.lines = lines
}

func (r *memCartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			return r.loadLocked(ctx, c), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCartRepo) loadLocked(ctx context.Context, c *cart.Cart) *cart.Cart {
	cp := *c
	cp.Lines = nil
	var ids []int64
	for id, l := range r.lines {
		if l.CartID == c.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		l := *r.lines[id]
		if p, ok := r.products.items[l.ProductID]; ok {
			pc := *p
			l.Product = &pc
		}
		cp.Lines = append(cp.Lines, l)
	}
	return &cp
}

func (r *memCartRepo) Create(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.carts[c.ID] = &cp
	return nil
}

func (r *memCartRepo) GetLine(_ context.Context, cartID, productID int64) (*cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.CartID == cartID && l.ProductID == productID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCartRepo) GetLineByID(_ context.Context, cartID, lineID int64) (*cart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.CartID != cartID {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memCartRepo) SaveLine(_ context.Context, l *cart.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == 0 {
		r.nextID++
		l.ID = r.nextID
	}
	cp := *l
	cp.Product = nil
	r.lines[l.ID] = &cp
	return nil
}

func (r *memCartRepo) DeleteLine(_ context.Context, cartID, lineID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.lines[lineID]
	if !ok || l.CartID != cartID {
		return repository.ErrNotFound
	}
	delete(r.lines, lineID)
	return nil
}

func (r *memCartRepo) ClearLines(_ context.Context, cartID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, l := range r.lines {
		if l.CartID == cartID {
			delete(r.lines, id)
		}
	}
	return nil
}

type memOrderRepo struct {
	mu       sync.Mutex
	nextID   int64
	orders   map[int64]*order.Order
	lines    map[int64]*order.Line
	products *memProductRepo
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{
		orders:   map[int64]*order.Order{},
		lines:    map[int64]*order.Line{},
		products: products,
	}
}

func (r *memOrderRepo) snapshot() (int64, map[int64]*order.Order, map[int64]*order.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make(map[int64]*order.Order, len(r.orders))
	for id, o := range r.orders {
		cp := *o
		orders[id] = &cp
	}
	lines := make(map[int64]*order.Line, len(r.lines))
	for id, l := range r.lines {
		cp := *l
		lines[id] = &cp
	}
	return r.nextID, orders, lines
}

func (r *memOrderRepo) restore(nextID int64, orders map[int64]*order.Order, lines map[int64]*order.Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID = nextID
	r.orders = orders
	r.lines = lines
}

func (r *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	cp := *o
	cp.Lines = nil
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) CreateLine(_ context.Context, l *order.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[l.OrderID]; !ok {
		return repository.ErrNotFound
	}
	r.nextID++
	l.ID = r.nextID
	cp := *l
	cp.Product = nil
	r.lines[l.ID] = &cp
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.loadLocked(o), nil
}

func (r *memOrderRepo) loadLocked(o *order.Order) *order.Order {
	cp := *o
	cp.Lines = nil
	var ids []int64
	for id, l := range r.lines {
		if l.OrderID == o.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		l := *r.lines[id]
		if p, ok := r.products.items[l.ProductID]; ok {
			pc := *p
			l.Product = &pc
		}
		cp.Lines = append(cp.Lines, l)
	}
	return &cp
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID int64) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, r.loadLocked(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		out = append(out, r.loadLocked(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

type memAddressRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*address.Address
	orders *memOrderRepo // Delete 时把引用订单的 address_id 置 NULL
}

func newMemAddressRepo(orders *memOrderRepo) *memAddressRepo {
	return &memAddressRepo{items: map[int64]*address.Address{}, orders: orders}
}

func (r *memAddressRepo) GetByID(_ context.Context, id int64) (*address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAddressRepo) ListByUser(_ context.Context, userID int64) ([]*address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*address.Address
	for _, a := range r.items {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAddressRepo) Create(_ context.Context, a *address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memAddressRepo) Update(_ context.Context, a *address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memAddressRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	if r.orders != nil {
		r.orders.mu.Lock()
		for _, o := range r.orders.orders {
			if o.AddressID != nil && *o.AddressID == id {
				o.AddressID = nil
			}
		}
		r.orders.mu.Unlock()
	}
	return nil
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{items: map[int64]*user.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*user.User
	for _, u := range r.items {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memTxManager 对齐 mysql 实现的事务语义：进入时对涉事仓储做快照，
// 回调失败则整体还原，等价于回滚
type memTxManager struct {
	products *memProductRepo
	carts    *memCartRepo
	orders   *memOrderRepo
}

func (m *memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	pNext, pItems := m.products.snapshot()
	cNext, carts, cartLines := m.carts.snapshot()
	oNext, orders, orderLines := m.orders.snapshot()
	if err := fn(ctx); err != nil {
		m.products.restore(pNext, pItems)
		m.carts.restore(cNext, carts, cartLines)
		m.orders.restore(oNext, orders, orderLines)
		return err
	}
	return nil
}

// captureEvents 记录发出的订单事件
type captureEvents struct {
	mu     sync.Mutex
	events []*OrderEvent
	err    error
}

func (c *captureEvents) PublishOrderEvent(_ context.Context, evt *OrderEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *captureEvents) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture 一套接好线的服务与仓储，每个测试一份
type fixture struct {
	products  *memProductRepo
	carts     *memCartRepo
	orders    *memOrderRepo
	addresses *memAddressRepo
	users     *memUserRepo
	events    *captureEvents

	cartSvc      *CartService
	inventorySvc *InventoryService
	orderSvc     *OrderService
	addressSvc   *AddressService
}

func newFixture() *fixture {
	products := newMemProductRepo()
	carts := newMemCartRepo(products)
	orders := newMemOrderRepo(products)
	addresses := newMemAddressRepo(orders)
	users := newMemUserRepo()
	events := &captureEvents{}

	cartSvc := NewCartService(carts, products)
	inventorySvc := NewInventoryService(products)
	txManager := &memTxManager{products: products, carts: carts, orders: orders}
	orderSvc := NewOrderService(orders, addresses, cartSvc, inventorySvc, txManager, events)
	addressSvc := NewAddressService(addresses)

	return &fixture{
		products:     products,
		carts:        carts,
		orders:       orders,
		addresses:    addresses,
		users:        users,
		events:       events,
		cartSvc:      cartSvc,
		inventorySvc: inventorySvc,
		orderSvc:     orderSvc,
		addressSvc:   addressSvc,
	}
}

func (f *fixture) addProduct(name string, price string, stock int64) *product.Product {
	p := &product.Product{
		CategoryID: 1,
		Name:       name,
		Slug:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Status:     product.StatusOnline,
	}
	return f.products.add(p)
}

// failNextDecrement 让某商品的下一次库存扣减失败
func (f *fixture) failNextDecrement(productID int64, err error) {
	f.products.mu.Lock()
	defer f.products.mu.Unlock()
	f.products.decrementErr[productID] = err
}

func (f *fixture) addAddress(userID int64) *address.Address {
	a := &address.Address{
		UserID:   userID,
		FullName: "Test User",
		Line1:    "1 Main St",
		City:     "Springfield",
		Country:  "US",
	}
	_ = f.addresses.Create(context.Background(), a)
	return a
}
