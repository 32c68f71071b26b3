package domain

import "time"

type Product struct {
	ProductID          string      `json:"id" dynamodbav:"product_id"`
	Name               string      `json:"name" dynamodbav:"name"`
	Description        string      `json:"description" dynamodbav:"description"`
	Images             []string    `json:"images" dynamodbav:"images"`
	Sizes              []string    `json:"sizes" dynamodbav:"sizes"`
	Colors             []string    `json:"colors" dynamodbav:"colors"`
	Price              float64     `json:"price" dynamodbav:"price"`
	ProductInfo        ProductInfo `json:"productInfo" dynamodbav:"product_info"`
	ShippingAndReturns string      `json:"shippingAndReturns,omitempty" dynamodbav:"shipping_and_returns"`
	CreatedAt          time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}

type ProductInfo struct {
	Material        string `json:"material" dynamodbav:"material" validate:"required"`
	Weight          string `json:"weight" dynamodbav:"weight" validate:"required"`
	CountryOfOrigin string `json:"countryOfOrigin" dynamodbav:"country_of_origin" validate:"required"`
	Dimensions      string `json:"dimensions" dynamodbav:"dimensions" validate:"required"`
	Type            string `json:"type" dynamodbav:"type" validate:"required"`
}

// CreateProductRequest is the decoded multipart form of a new product.
// Sizes, Colors and ProductInfo arrive as JSON-encoded form fields.
type CreateProductRequest struct {
	Name               string   `validate:"required"`
	Description        string   `validate:"required"`
	Sizes              []string
	Colors             []string
	Price              *float64 `validate:"required,gte=0"`
	ProductInfo        ProductInfo
	ShippingAndReturns string
}

// UpdateProductRequest carries only the fields present in the form.
type UpdateProductRequest struct {
	Name               *string
	Description        *string
	Sizes              *[]string
	Colors             *[]string
	Price              *float64 `validate:"omitempty,gte=0"`
	ProductInfo        *ProductInfo
	ShippingAndReturns *string
}
