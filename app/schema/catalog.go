// Package schema holds the read-only GraphQL catalog served on /graphql.
package schema

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// Catalog builds the schema over the product service.
func Catalog(products *services.ProductService) (graphql.Schema, error) {
	productType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.String},
			"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"stock":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"imageUrl": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					product, ok := p.Source.(productNode)
					if !ok || product.ImagePath == "" {
						return nil, nil
					}
					return products.ImageURL(product.ImagePath), nil
				},
			},
		},
	})

	bestSellerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BestSeller",
		Fields: graphql.Fields{
			"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"units":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					if id <= 0 {
						return nil, nil
					}
					product, err := products.Get(p.Context, uint(id))
					if err != nil {
						return nil, err
					}
					return toNode(product), nil
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"page":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: orm.DefaultLimit},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					page, _ := p.Args["page"].(int)
					limit, _ := p.Args["limit"].(int)
					list, _, err := products.List(p.Context, page, limit)
					if err != nil {
						return nil, err
					}
					return toNodes(list), nil
				},
			},
			"search": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					list, err := products.SearchByName(p.Context, name)
					if err != nil {
						return nil, err
					}
					return toNodes(list), nil
				},
			},
			"bestSellers": &graphql.Field{
				Type: graphql.NewList(bestSellerType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, err := products.BestSellers(p.Context)
					if err != nil {
						return nil, err
					}
					return toSellers(rows), nil
				},
			},
		},
	})

	return gql.NewSchema(query)
}

// productNode is what resolvers hand to graphql-go; the default resolver
// matches field names against json tags and map keys.
type productNode struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImagePath   string  `json:"-"`
}

func toNode(p models.Product) productNode {
	return productNode{
		ID:          int(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImagePath:   p.ImagePath,
	}
}

func toNodes(list []models.Product) []productNode {
	out := make([]productNode, 0, len(list))
	for _, p := range list {
		out = append(out, toNode(p))
	}
	return out
}

type sellerNode struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Units     int    `json:"units"`
}

func toSellers(rows []repositories.BestSeller) []sellerNode {
	out := make([]sellerNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, sellerNode{ProductID: int(r.ProductID), Name: r.Name, Units: int(r.Units)})
	}
	return out
}
