package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FieldCount is the number of pipe-delimited columns in a feed line.
const FieldCount = 25

// Column positions within a feed line.
const (
	ColVIN = iota
	ColYear
	ColMake
	ColModel
	ColTrim
	ColDealerName
	ColDealerStreet
	ColDealerCity
	ColDealerState
	ColDealerZip
	ColPrice
	ColMileage
	ColUsed
	ColCertified
	ColStyle
	ColDrivenWheels
	ColEngine
	ColFuelType
	ColExteriorColor
	ColInteriorColor
	ColWebsite
	ColFirstSeen
	ColLastSeen
	ColVDPLastSeen
	ColStatus
)

// RawRecord holds the unvalidated fields of one feed line, in column order.
type RawRecord struct {
	Line   int
	Fields [FieldCount]string
}

// Record is a normalized feed line ready for resolution and upsert.
// Optional text fields are nil when the feed carried an empty string.
type Record struct {
	Line int

	Dealer  DealerKey
	Vehicle VehicleModelKey
	Website *string

	// ModelID and DealerID are left zero until the record is resolved.
	Listing Listing
}

// Listing is the fact row keyed by VIN.
type Listing struct {
	VIN       string
	Year      int
	ModelID   int64
	DealerID  int64
	Trim      *string
	Price     decimal.NullDecimal
	Mileage   *int
	Used      bool
	Certified bool

	Style         *string
	DrivenWheels  *string
	Engine        *string
	FuelType      *string
	ExteriorColor *string
	InteriorColor *string

	FirstSeen   time.Time
	LastSeen    time.Time
	VDPLastSeen *time.Time
	Status      *string

	// Populated on reads that join the dimension tables.
	Make        string
	Model       string
	DealerName  string
	DealerCity  string
	DealerState string
}
