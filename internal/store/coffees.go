package store

import (
	"database/sql"

	"github.com/maridalenbrenneri/mb-backoffice2-sub000/internal/models"
)

func (s *Store) CreateCoffee(c *models.Coffee) error {
	res, err := s.DB.Exec(`
		INSERT INTO coffees (product_code, name, status, image_url, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, c.ProductCode, c.Name, c.Status, c.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (s *Store) GetAllCoffees() ([]models.Coffee, error) {
	query := `SELECT id, product_code, name, COALESCE(status, 'in_stock') as status, image_url, created_at
		FROM coffees ORDER BY product_code ASC`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coffees []models.Coffee
	for rows.Next() {
		var c models.Coffee
		if err := rows.Scan(&c.ID, &c.ProductCode, &c.Name, &c.Status, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		coffees = append(coffees, c)
	}
	return coffees, rows.Err()
}

func (s *Store) GetCoffeeByID(id int64) (*models.Coffee, error) {
	query := `SELECT id, product_code, name, COALESCE(status, 'in_stock') as status, image_url, created_at
		FROM coffees WHERE id = ?`
	var c models.Coffee
	err := s.DB.QueryRow(query, id).Scan(&c.ID, &c.ProductCode, &c.Name, &c.Status, &c.ImageURL, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCoffee(c *models.Coffee) error {
	query := `UPDATE coffees SET product_code = ?, name = ?, status = ? WHERE id = ?`
	_, err := s.DB.Exec(query, c.ProductCode, c.Name, c.Status, c.ID)
	return err
}

func (s *Store) UpdateCoffeeImage(id int64, imageURL string) error {
	query := `UPDATE coffees SET image_url = ? WHERE id = ?`
	_, err := s.DB.Exec(query, imageURL, id)
	return err
}

func (s *Store) DeleteCoffee(id int64) error {
	query := `DELETE FROM coffees WHERE id = ?`
	_, err := s.DB.Exec(query, id)
	return err
}
