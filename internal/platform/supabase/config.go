// Package supabase provides a client for the Supabase REST surface used as the data store:
// PostgREST under /rest/v1, the GoTrue admin API under /auth/v1 and public Storage URLs.
package supabase

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for the Supabase client.
type Config struct {
	URL          string        // Project URL (e.g., "https://xyz.supabase.co"), trailing "/" trimmed
	APIKey       string        // Service role key, sent as apikey and bearer token
	AvatarBucket string        // Public bucket holding profile avatars
	Timeout      time.Duration // HTTP request timeout
	Tables       Tables
}

// Tables names the PostgREST tables and key columns the service reads and writes.
// Deployments have renamed these over time, so every name is configurable.
type Tables struct {
	Products           string
	ProductIDField     string
	Transactions       string
	TransactionIDField string
	// ProductRelation is the embedded relationship from a transaction to its product.
	// Empty means the PostgREST default foreign key name.
	ProductRelation string

	Clothing        string
	ClothingIDField string
	Decor           string
	DecorIDField    string
	Tickets         string
	TicketsIDField  string

	Reports       string
	ReportIDField string
}

// DefaultTables returns the table layout of the production schema.
func DefaultTables() Tables {
	return Tables{
		Products:           "Product",
		ProductIDField:     "prod_id",
		Transactions:       "Transactions",
		TransactionIDField: "id",
		Clothing:           "Clothing",
		ClothingIDField:    "clothing_id",
		Decor:              "Decor",
		DecorIDField:       "decor_id",
		Tickets:            "Tickets",
		TicketsIDField:     "tickets_id",
		Reports:            "user_reports",
		ReportIDField:      "id",
	}
}

// ProductRelationship returns the relationship hint used to embed a product in a transaction.
func (t Tables) ProductRelationship() string {
	if t.ProductRelation != "" {
		return t.ProductRelation
	}
	return fmt.Sprintf("%s!Transactions_%s_fkey", t.Products, t.ProductIDField)
}

// ListingSelect embeds every category side table next to the product columns.
func (t Tables) ListingSelect() string {
	parts := []string{"*"}
	for _, table := range []string{t.Clothing, t.Decor, t.Tickets} {
		if table == "" {
			continue
		}
		parts = append(parts, table+"(*)")
	}
	return strings.Join(parts, ",")
}

// OrderSelect embeds the product (with its details) under the "product" key.
// inner turns the embed into an inner join so that filters on product columns drop rows.
func (t Tables) OrderSelect(inner bool) string {
	rel := t.ProductRelationship()
	if inner {
		rel += "!inner"
	}
	return fmt.Sprintf("*,product:%s(%s)", rel, t.ListingSelect())
}
