package models

import "strings"

// DealerKey is the natural key of a dealer.
type DealerKey struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
}

// String joins the key parts with a unit separator, for use as a map key.
func (k DealerKey) String() string {
	return strings.Join([]string{k.Name, k.Street, k.City, k.State, k.Zip}, "\x1f")
}

// Dealer is a selling dealership.
type Dealer struct {
	ID int64
	DealerKey
}

// VehicleModelKey is the natural key of a vehicle model.
type VehicleModelKey struct {
	Make  string
	Model string
}

func (k VehicleModelKey) String() string {
	return k.Make + "\x1f" + k.Model
}

// VehicleModel is a make/model pair.
type VehicleModel struct {
	ID int64
	VehicleModelKey
}

// DealerWebsite is the one-to-one website of a dealer.
type DealerWebsite struct {
	DealerID int64
	URL      string
}
