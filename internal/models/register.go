package models

import "vinoteca/internal/schema"

// Register declares every entity with the registry. This is the one place
// the entity set of the application is enumerated; adding a field or an
// entity here propagates to migration, validation, sorting and import.
func Register(reg *schema.Registry) {
	reg.MustRegister(Wine{},
		schema.WithPatch(WinePatch{}),
		schema.WithSortFields("name", "sku", "winery", "vintage", "price", "stock", "created_at"),
		schema.WithServerManaged("label_path"),
	)
	reg.MustRegister(Supplier{},
		schema.WithPatch(SupplierPatch{}),
		schema.WithSortFields("name", "created_at"),
	)
}
