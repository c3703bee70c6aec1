package memory_test

import (
	"testing"

	"github.com/dwikikusuma/shopdemo/internal/storage/memory"
	"github.com/dwikikusuma/shopdemo/internal/storage/storagetest"
)

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Repos {
		s := memory.New()
		return storagetest.Repos{Products: s.Products(), Carts: s.Carts(), Orders: s.Orders()}
	})
}
