// Package seed reads catalog seed files.
//
// A seed file is YAML:
//
//	products:
//	  - name: Laptop
//	    description: 14 inch
//	    price: 999.99
//	    stock: 10
//	    category: electronics
package seed

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
)

type file struct {
	Products []entry `yaml:"products"`
}

type entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Category    string `yaml:"category"`
}

func Load(r io.Reader) ([]domain.NewProduct, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]domain.NewProduct, 0, len(f.Products))
	for i, e := range f.Products {
		price, err := decimal.NewFromString(e.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d (%q): invalid price %q: %w", i, e.Name, e.Price, err)
		}
		out = append(out, domain.NewProduct{
			Name:        e.Name,
			Description: e.Description,
			Price:       price,
			Stock:       e.Stock,
			Category:    e.Category,
		})
	}
	return out, nil
}

func LoadFile(path string) ([]domain.NewProduct, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
