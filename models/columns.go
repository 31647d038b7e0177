package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func init() {
	// clients expect prices as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

func columnValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanColumn(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("failed to scan JSON column: unsupported type %T", value)
	}
}

type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	return scanColumn(value, (*[]string)(a))
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return columnValue([]string(a))
}

func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

type Translations map[string]string

func (t *Translations) Scan(value interface{}) error {
	return scanColumn(value, (*map[string]string)(t))
}

func (t Translations) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	return columnValue(map[string]string(t))
}

type ItemCustomizations []ItemCustomization

func (c *ItemCustomizations) Scan(value interface{}) error {
	return scanColumn(value, (*[]ItemCustomization)(c))
}

func (c ItemCustomizations) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return columnValue([]ItemCustomization(c))
}

type Occupants []Occupant

func (o *Occupants) Scan(value interface{}) error {
	return scanColumn(value, (*[]Occupant)(o))
}

func (o Occupants) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return columnValue([]Occupant(o))
}

type CustomizationOptions []CustomizationOption

func (c *CustomizationOptions) Scan(value interface{}) error {
	return scanColumn(value, (*[]CustomizationOption)(c))
}

func (c CustomizationOptions) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return columnValue([]CustomizationOption(c))
}

func (n *NutritionalInfo) Scan(value interface{}) error {
	return scanColumn(value, n)
}

func (n NutritionalInfo) Value() (driver.Value, error) {
	return columnValue(n)
}

type CrossSellRules map[string][]string

func (r *CrossSellRules) Scan(value interface{}) error {
	return scanColumn(value, (*map[string][]string)(r))
}

func (r CrossSellRules) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return columnValue(map[string][]string(r))
}
