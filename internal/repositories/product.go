package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"stagepass/internal/models"
)

// ProductRepository handles product data operations, including the purchaser set
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, price, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := scanner.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	return product, nil
}

// Create creates a new product
func (r *ProductRepository) Create(req *models.ProductCreateRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO products (name, description, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING ` + productColumns

	return scanProduct(r.db.QueryRow(query, req.Name, req.Description, req.Price, time.Now()))
}

// GetByID retrieves a product by id
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	return scanProduct(r.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// AddPurchaser adds a user to the product's purchaser set; re-adding an
// existing member is a no-op. The returned bool reports a new insertion.
func (r *ProductRepository) AddPurchaser(productID, userID int) (bool, error) {
	result, err := r.db.Exec(
		`INSERT INTO product_purchasers (product_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		productID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to add product purchaser: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// HasPurchaser reports whether the user already holds this entitlement
func (r *ProductRepository) HasPurchaser(productID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM product_purchasers WHERE product_id = $1 AND user_id = $2)`,
		productID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product purchaser: %w", err)
	}
	return exists, nil
}

// GetPurchasedByUser returns all products the user holds entitlements to
func (r *ProductRepository) GetPurchasedByUser(userID int) ([]*models.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.created_at, p.updated_at
		FROM products p
		JOIN product_purchasers pp ON pp.product_id = p.id
		WHERE pp.user_id = $1
		ORDER BY p.name`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchased products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
