package models

// All lists every entity managed by the schema migration
func All() []interface{} {
	return []interface{}{
		&User{},
		&Settings{},
		&MenuItem{},
		&Customization{},
		&Table{},
		&Customer{},
		&Order{},
		&OrderItem{},
		&CallRequest{},
	}
}
