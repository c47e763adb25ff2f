package services

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/ekuzmina/foodgram-go/internal/models"
)

// ListTags returns the full tag set ordered by name. The catalog is small
// and unpaginated.
func ListTags(db *gorm.DB) ([]models.Tag, error) {
	var tags []models.Tag
	if err := db.Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetTag fetches a tag by id.
func GetTag(db *gorm.DB, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// ListIngredients returns catalog entries ordered by name, optionally
// narrowed by a case-insensitive starts-with filter on the name.
func ListIngredients(db *gorm.DB, namePrefix string) ([]models.Ingredient, error) {
	query := db.Model(&models.Ingredient{})
	if namePrefix != "" {
		// USE INDEX is MySQL syntax only
		if db.Dialector.Name() == "mysql" {
			query = query.Clauses(hints.UseIndex("idx_ingredients_name"))
		}
		query = query.Where("LOWER(name) LIKE ?", strings.ToLower(namePrefix)+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Order("name").Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

// GetIngredient fetches a catalog entry by id.
func GetIngredient(db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := db.First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ingredient, nil
}

// IngredientRecord is one catalog entry in a load file.
type IngredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// LoadIngredientsJSON reads a JSON array of catalog entries and upserts each
// by (name, unit). Returns the number of records processed.
func LoadIngredientsJSON(db *gorm.DB, r io.Reader) (int, error) {
	var records []IngredientRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, err
	}
	return loadIngredients(db, records)
}

// LoadIngredientsCSV reads "name,unit" rows and upserts each pair.
func LoadIngredientsCSV(db *gorm.DB, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var records []IngredientRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		records = append(records, IngredientRecord{
			Name:            row[0],
			MeasurementUnit: row[1],
		})
	}
	return loadIngredients(db, records)
}

// loadIngredients is get-or-create per (name, unit) so reloading the same
// file is idempotent.
func loadIngredients(db *gorm.DB, records []IngredientRecord) (int, error) {
	count := 0
	for _, record := range records {
		ingredient := models.Ingredient{
			Name:            record.Name,
			MeasurementUnit: record.MeasurementUnit,
		}
		if err := db.Where("name = ? AND measurement_unit = ?", record.Name, record.MeasurementUnit).
			FirstOrCreate(&ingredient).Error; err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
