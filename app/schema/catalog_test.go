package schema_test

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/schema"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/internal/testdb"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/event"
)

func TestCatalogQueries(t *testing.T) {
	db := testdb.Open(t)
	products := services.NewProductService(db, cache.NewMemoryStore(), nil, event.New())
	admin := auth.Principal{Username: "root", Roles: []string{auth.RoleUser, auth.RoleAdmin}}

	price, stock := 9.5, 4
	widget, err := products.Create(context.Background(), admin, services.ProductInput{Name: "Widget", Price: &price, Stock: &stock})
	require.NoError(t, err)

	s, err := schema.Catalog(products)
	require.NoError(t, err)

	res := graphql.Do(graphql.Params{
		Schema:         s,
		Context:        context.Background(),
		RequestString:  `query($id: Int!) { product(id: $id) { id name price stock } search(name: "widg") { name } }`,
		VariableValues: map[string]interface{}{"id": int(widget.ID)},
	})
	require.Empty(t, res.Errors)

	data := res.Data.(map[string]interface{})
	product := data["product"].(map[string]interface{})
	assert.Equal(t, "Widget", product["name"])
	assert.Equal(t, 9.5, product["price"])
	assert.Equal(t, 4, product["stock"])
	assert.Len(t, data["search"], 1)

	res = graphql.Do(graphql.Params{Schema: s, Context: context.Background(), RequestString: `{ product(id: 999) { id } }`})
	assert.NotEmpty(t, res.Errors)
}
