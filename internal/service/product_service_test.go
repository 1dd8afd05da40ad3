package service

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/goshop/internal/datamodels/category"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/repository"
)

type memCategoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*category.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{items: map[int64]*category.Category{}}
}

func (r *memCategoryRepo) GetByID(_ context.Context, id int64) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) GetBySlug(_ context.Context, slug string) (*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCategoryRepo) ListAll(_ context.Context) ([]*category.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*category.Category
	for _, c := range r.items {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCategoryRepo) Create(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *category.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func newProductServiceForTest() (*ProductService, *memProductRepo, *memCategoryRepo) {
	products := newMemProductRepo()
	categories := newMemCategoryRepo()
	svc := NewProductService(products, categories, nil, 60)
	return svc, products, categories
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"iPhone 15 Pro":     "iphone-15-pro",
		"Home & Garden":     "home-garden",
		"  spaced  out  ":   "spaced-out",
		"already-a-slug":    "already-a-slug",
		"Ünïcode Mix 2024!": "n-code-mix-2024",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestProductCreateRequiresCategory(t *testing.T) {
	svc, _, categories := newProductServiceForTest()
	ctx := context.Background()

	p := &product.Product{CategoryID: 99, Name: "Widget", Stock: 1}
	err := svc.Create(ctx, p)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Category", nf.Entity)

	c := &category.Category{Name: "Gadgets", Slug: "gadgets"}
	require.NoError(t, categories.Create(ctx, c))
	p.CategoryID = c.ID
	require.NoError(t, svc.Create(ctx, p))
	assert.Equal(t, "widget", p.Slug) // slug 缺省时从名称生成
}

func TestProductCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _, categories := newProductServiceForTest()
	ctx := context.Background()

	c := &category.Category{Name: "Gadgets", Slug: "gadgets"}
	require.NoError(t, categories.Create(ctx, c))

	first := &product.Product{CategoryID: c.ID, Name: "Widget"}
	require.NoError(t, svc.Create(ctx, first))

	dup := &product.Product{CategoryID: c.ID, Name: "Widget"}
	var invalid *ValidationError
	assert.ErrorAs(t, svc.Create(ctx, dup), &invalid)
}

func TestProductGetBySlug(t *testing.T) {
	svc, _, categories := newProductServiceForTest()
	ctx := context.Background()

	c := &category.Category{Name: "Gadgets", Slug: "gadgets"}
	require.NoError(t, categories.Create(ctx, c))
	p := &product.Product{CategoryID: c.ID, Name: "Widget"}
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.GetBySlug(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.GetBySlug(ctx, "missing")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Key)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestListOnlineFiltersOfflineProducts(t *testing.T) {
	svc, products, categories := newProductServiceForTest()
	ctx := context.Background()

	c := &category.Category{Name: "Gadgets", Slug: "gadgets"}
	require.NoError(t, categories.Create(ctx, c))

	online := &product.Product{CategoryID: c.ID, Name: "Online", Slug: "online", Status: product.StatusOnline}
	offline := &product.Product{CategoryID: c.ID, Name: "Offline", Slug: "offline", Status: product.StatusOffline}
	products.add(online)
	products.add(offline)

	list, err := svc.ListOnline(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "online", list[0].Slug)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductImages(t *testing.T) {
	svc, products, categories := newProductServiceForTest()
	ctx := context.Background()

	c := &category.Category{Name: "Gadgets", Slug: "gadgets"}
	require.NoError(t, categories.Create(ctx, c))
	p := &product.Product{CategoryID: c.ID, Name: "Widget"}
	require.NoError(t, svc.Create(ctx, p))

	img := &product.Image{URL: "https://example.com/widget.jpg", Alt: "Widget"}
	require.NoError(t, svc.AddImage(ctx, p.ID, img))
	assert.Equal(t, p.ID, img.ProductID)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)

	require.NoError(t, svc.RemoveImage(ctx, p.ID, img.ID))
	got, err = products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)

	err = svc.RemoveImage(ctx, p.ID, 999)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Image", nf.Entity)

	err = svc.AddImage(ctx, 999, &product.Image{URL: "x"})
	assert.ErrorAs(t, err, &nf)
}
