package model

import (
	"fmt"
	"strings"
)

// Retailer identifies a supported source website with a known page layout.
type Retailer string

const (
	RetailerAmazon  Retailer = "AMZ"
	RetailerBestBuy Retailer = "BBY"
)

// Retailers returns the supported retailer values in a stable order.
func Retailers() []Retailer {
	return []Retailer{RetailerAmazon, RetailerBestBuy}
}

// ParseRetailer resolves a user-supplied retailer name. Matching is
// case-insensitive. Unknown values wrap ErrUnknownRetailer and list the
// supported names.
func ParseRetailer(s string) (Retailer, error) {
	r := Retailer(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Retailers() {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownRetailer, s, joinRetailers())
}

func joinRetailers() string {
	names := make([]string, 0, len(Retailers()))
	for _, r := range Retailers() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// StorageType identifies a destination a scraped record is written to.
type StorageType string

const (
	StorageS3       StorageType = "S3"
	StoragePostgres StorageType = "POSTGRES"
	StorageSQLite   StorageType = "SQLITE"
	StorageFS       StorageType = "FS"
)

// StorageTypes returns the supported storage type values in a stable order.
func StorageTypes() []StorageType {
	return []StorageType{StorageS3, StoragePostgres, StorageSQLite, StorageFS}
}

// ParseStorageType resolves a user-supplied storage type name, matching
// case-insensitively. Unknown values wrap ErrUnknownStorageType.
func ParseStorageType(s string) (StorageType, error) {
	st := StorageType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range StorageTypes() {
		if st == known {
			return st, nil
		}
	}
	names := make([]string, 0, len(StorageTypes()))
	for _, t := range StorageTypes() {
		names = append(names, string(t))
	}
	return "", fmt.Errorf("%w: %q (supported: %s)", ErrUnknownStorageType, s, strings.Join(names, ", "))
}
