package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSchemaVersion is written to every product so stored records can be
// migrated when the shape changes.
const ProductSchemaVersion = 1

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SchemaVersion int                `bson:"schemaVersion" json:"schemaVersion"`
	Title         string             `bson:"title" json:"title" validate:"required,max=200"`
	Price         float64            `bson:"price" json:"price" validate:"gte=0"`
	DiscountPrice *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty" validate:"omitempty,gte=0"`
	Description   string             `bson:"description" json:"description"`
	InStock       bool               `bson:"inStock" json:"inStock"`
	Featured      bool               `bson:"featured" json:"featured"`
	HotDeals      bool               `bson:"hotDeals" json:"hotDeals"`
	NewProduct    bool               `bson:"newProduct" json:"newProduct"`
	Category      string             `bson:"category" json:"category" validate:"required"`
	CoverImage    string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Images        []string           `bson:"images" json:"images"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePrice is what a customer pays: the discount price when one is set.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductPatch holds the fields of a partial update. Nil means unchanged.
type ProductPatch struct {
	Title         *string   `json:"title"`
	Price         *float64  `json:"price"`
	DiscountPrice *float64  `json:"discountPrice"`
	Description   *string   `json:"description"`
	InStock       *bool     `json:"inStock"`
	Featured      *bool     `json:"featured"`
	HotDeals      *bool     `json:"hotDeals"`
	NewProduct    *bool     `json:"newProduct"`
	Category      *string   `json:"category"`
	CoverImage    *string   `json:"coverImage"`
	Images        *[]string `json:"images"`
	// ClearDiscount removes the discount price.
	ClearDiscount bool `json:"clearDiscount"`
}

// Apply merges the patch into p.
func (pp *ProductPatch) Apply(p *Product) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.ClearDiscount {
		p.DiscountPrice = nil
	} else if pp.DiscountPrice != nil {
		d := *pp.DiscountPrice
		p.DiscountPrice = &d
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.InStock != nil {
		p.InStock = *pp.InStock
	}
	if pp.Featured != nil {
		p.Featured = *pp.Featured
	}
	if pp.HotDeals != nil {
		p.HotDeals = *pp.HotDeals
	}
	if pp.NewProduct != nil {
		p.NewProduct = *pp.NewProduct
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.CoverImage != nil {
		p.CoverImage = *pp.CoverImage
	}
	if pp.Images != nil {
		p.Images = append([]string(nil), (*pp.Images)...)
	}
}

// Update returns the mongo update document for the patch.
func (pp *ProductPatch) Update(now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if pp.Title != nil {
		set["title"] = *pp.Title
	}
	if pp.Price != nil {
		set["price"] = *pp.Price
	}
	if !pp.ClearDiscount && pp.DiscountPrice != nil {
		set["discountPrice"] = *pp.DiscountPrice
	}
	if pp.Description != nil {
		set["description"] = *pp.Description
	}
	if pp.InStock != nil {
		set["inStock"] = *pp.InStock
	}
	if pp.Featured != nil {
		set["featured"] = *pp.Featured
	}
	if pp.HotDeals != nil {
		set["hotDeals"] = *pp.HotDeals
	}
	if pp.NewProduct != nil {
		set["newProduct"] = *pp.NewProduct
	}
	if pp.Category != nil {
		set["category"] = *pp.Category
	}
	if pp.CoverImage != nil {
		set["coverImage"] = *pp.CoverImage
	}
	if pp.Images != nil {
		set["images"] = *pp.Images
	}

	update := bson.M{"$set": set}
	if pp.ClearDiscount {
		update["$unset"] = bson.M{"discountPrice": ""}
	}
	return update
}

// ProductFilter narrows catalog reads. Zero value matches everything.
type ProductFilter struct {
	Category    string
	Search      string
	Featured    bool
	HotDeals    bool
	NewestFirst bool
}
