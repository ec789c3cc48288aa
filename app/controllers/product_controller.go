package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperror"
	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

const maxImageBytes = 10 << 20

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Index GET /api/products?page=&limit=
func (pc *ProductController) Index(c *ctx.Context) {
	products, p, err := pc.service.List(c.Context(), c.QueryInt("page", 1), c.QueryInt("limit", orm.DefaultLimit))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Paginated(products, p)
}

// Show GET /api/products/{id}
func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	product, err := pc.service.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// Store POST /api/products
func (pc *ProductController) Store(c *ctx.Context) {
	var input services.ProductInput
	if !c.BindJSON(&input) {
		return
	}
	product, err := pc.service.Create(c.Context(), c.Principal(), input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(product)
}

// Update PUT /api/products/{id}
func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var input services.ProductInput
	if !c.BindJSON(&input) {
		return
	}
	product, err := pc.service.Update(c.Context(), c.Principal(), id, input)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(product)
}

// Destroy DELETE /api/products/{id}
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := pc.service.Delete(c.Context(), c.Principal(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product deleted", nil)
}

// Image POST /api/products/{id}/image (multipart field "image")
func (pc *ProductController) Image(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, maxImageBytes)
	if err := c.R.ParseMultipartForm(maxImageBytes); err != nil {
		c.Fail(apperror.Invalid("image", "The image must be a multipart upload of at most 10MB."))
		return
	}
	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Fail(apperror.Invalid("image", "The image field is required."))
		return
	}
	defer file.Close()

	product, url, err := pc.service.SetImage(c.Context(), c.Principal(), id, header.Filename, file)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"product": product, "url": url})
}

// Search GET /api/products/search?name=
func (pc *ProductController) Search(c *ctx.Context) {
	products, err := pc.service.SearchByName(c.Context(), c.Query("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// PriceRange GET /api/products/price-range?min=&max=
func (pc *ProductController) PriceRange(c *ctx.Context) {
	min, ok := c.QueryFloat("min")
	if !ok {
		return
	}
	max, ok := c.QueryFloat("max")
	if !ok {
		return
	}
	products, err := pc.service.PriceRange(c.Context(), min, max)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// LowStock GET /api/products/low-stock?below=
func (pc *ProductController) LowStock(c *ctx.Context) {
	products, err := pc.service.LowStock(c.Context(), c.QueryInt("below", 5))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// Sorted GET /api/products/sorted?by=price|name
func (pc *ProductController) Sorted(c *ctx.Context) {
	products, err := pc.service.Sorted(c.Context(), c.DefaultQuery("by", "name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}

// BestSellers GET /api/products/best-sellers
func (pc *ProductController) BestSellers(c *ctx.Context) {
	rows, err := pc.service.BestSellers(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

// BestSellersLastMonth GET /api/products/best-sellers/last-month
func (pc *ProductController) BestSellersLastMonth(c *ctx.Context) {
	rows, err := pc.service.BestSellersSince(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

// MostExpensivePurchased GET /api/products/most-expensive-purchased
func (pc *ProductController) MostExpensivePurchased(c *ctx.Context) {
	products, err := pc.service.MostExpensivePurchased(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(products)
}
