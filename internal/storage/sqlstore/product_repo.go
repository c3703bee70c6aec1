package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/shopdemo/internal/catalog/domain"
	"github.com/dwikikusuma/shopdemo/pkg/apperr"
)

type productRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Category    string          `db:"category"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

const productColumns = `id, name, description, price, stock, category, created_at`

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.CreatedAt.UTC(),
	)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	return r.get(ctx, r.s.db, id)
}

func (r *ProductRepo) get(ctx context.Context, q sqlx.QueryerContext, id string) (domain.Product, error) {
	var row productRow
	err := sqlx.GetContext(ctx, q, &row, r.s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("Product not found", apperr.Fields{"productId": id})
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return row.toDomain(), nil
}

func (r *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	err := r.s.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM products ORDER BY `+r.s.insertionOrder())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// DecrementStock subtracts quantity and returns the updated product. Stock is
// not floored at zero.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, quantity int) (domain.Product, error) {
	var updated domain.Product

	err := r.s.execTX(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products SET stock = stock - ? WHERE id = ?`), quantity, id)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("Product not found", apperr.Fields{"productId": id})
		}

		updated, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}
