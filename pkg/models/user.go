package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	Cart            []CartEntry        `bson:"cart" json:"cart"`
	PendingOrders   []Order            `bson:"pendingOrders" json:"pendingOrders"`
	DeliveredOrders []Order            `bson:"deliveredOrders" json:"deliveredOrders"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Version is bumped by every store write and checked on replace.
	Version int64 `bson:"version" json:"-"`
}

// PublicUser is the part of a user returned by signup and login.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Clone returns a copy that shares no slices with u.
func (u *User) Clone() *User {
	c := *u
	c.Cart = append([]CartEntry(nil), u.Cart...)
	c.PendingOrders = cloneOrders(u.PendingOrders)
	c.DeliveredOrders = cloneOrders(u.DeliveredOrders)
	return &c
}

func cloneOrders(orders []Order) []Order {
	if orders == nil {
		return nil
	}
	out := make([]Order, len(orders))
	for i, o := range orders {
		o.Items = append([]OrderItem(nil), o.Items...)
		out[i] = o
	}
	return out
}
