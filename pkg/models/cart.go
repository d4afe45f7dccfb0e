package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartEntry is a weak reference to a product. The snapshot fields are captured
// when the entry is created so a line can still be described after the product
// is gone, but carts only ever show entries that resolve against the catalog.
type CartEntry struct {
	Product       primitive.ObjectID `bson:"product" json:"product"`
	Quantity      int                `bson:"quantity" json:"quantity"`
	AddedAt       time.Time          `bson:"addedAt" json:"addedAt"`
	Title         string             `bson:"title,omitempty" json:"title,omitempty"`
	Price         float64            `bson:"price,omitempty" json:"price,omitempty"`
	DiscountPrice *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	CoverImage    string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
}

// CartItem is a cart entry joined with its live product.
type CartItem struct {
	Quantity int      `json:"quantity"`
	Product  *Product `json:"product"`
}

func snapshotEntry(p *Product, quantity int, now time.Time) CartEntry {
	e := CartEntry{
		Product:    p.ID,
		Quantity:   quantity,
		AddedAt:    now,
		Title:      p.Title,
		Price:      p.Price,
		CoverImage: p.CoverImage,
	}
	if p.DiscountPrice != nil {
		d := *p.DiscountPrice
		e.DiscountPrice = &d
	}
	return e
}

// AddToCart increments the entry for p or appends a new one. It reports false,
// leaving the cart untouched, when the merged quantity would overflow an int.
func (u *User) AddToCart(p *Product, quantity int, now time.Time) bool {
	for i := range u.Cart {
		if u.Cart[i].Product == p.ID {
			if u.Cart[i].Quantity > math.MaxInt-quantity {
				return false
			}
			u.Cart[i].Quantity += quantity
			return true
		}
	}
	u.Cart = append(u.Cart, snapshotEntry(p, quantity, now))
	return true
}

// SetCartQuantity overwrites the quantity of the entry for productID and
// reports whether such an entry exists.
func (u *User) SetCartQuantity(productID primitive.ObjectID, quantity int) bool {
	for i := range u.Cart {
		if u.Cart[i].Product == productID {
			u.Cart[i].Quantity = quantity
			return true
		}
	}
	return false
}

// RemoveFromCart drops every entry for productID and reports whether anything changed.
func (u *User) RemoveFromCart(productID primitive.ObjectID) bool {
	kept := u.Cart[:0]
	for _, e := range u.Cart {
		if e.Product != productID {
			kept = append(kept, e)
		}
	}
	changed := len(kept) != len(u.Cart)
	u.Cart = kept
	return changed
}

// CartProductIDs returns the distinct product ids referenced by the cart, in order.
func (u *User) CartProductIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(u.Cart))
	seen := make(map[primitive.ObjectID]struct{}, len(u.Cart))
	for _, e := range u.Cart {
		if _, ok := seen[e.Product]; ok {
			continue
		}
		seen[e.Product] = struct{}{}
		ids = append(ids, e.Product)
	}
	return ids
}

// ResolveCart joins the cart with products. Entries whose product is missing
// from the map are dangling and are left out.
func (u *User) ResolveCart(products map[primitive.ObjectID]*Product) []CartItem {
	items := make([]CartItem, 0, len(u.Cart))
	for _, e := range u.Cart {
		p, ok := products[e.Product]
		if !ok {
			continue
		}
		items = append(items, CartItem{Quantity: e.Quantity, Product: p})
	}
	return items
}
