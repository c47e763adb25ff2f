package services_test

import (
	"strings"
	"testing"

	"github.com/ekuzmina/foodgram-go/internal/services"
)

func TestListIngredientsPrefixFilter(t *testing.T) {
	db := setupTestDB(t)
	createTestIngredient(t, db, "Salt", "g")
	createTestIngredient(t, db, "salmon", "g")
	createTestIngredient(t, db, "pepper", "g")

	ingredients, err := services.ListIngredients(db, "sal")
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}

	// prefix match is case-insensitive and excludes non-matches
	if len(ingredients) != 2 {
		t.Fatalf("Expected 2 matches for 'sal', got %d: %v", len(ingredients), ingredients)
	}
	for _, i := range ingredients {
		if !strings.HasPrefix(strings.ToLower(i.Name), "sal") {
			t.Errorf("Unexpected match %q", i.Name)
		}
	}

	// no filter returns the whole catalog
	all, err := services.ListIngredients(db, "")
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected the full catalog, got %d", len(all))
	}
}

func TestLoadIngredientsJSONIdempotent(t *testing.T) {
	db := setupTestDB(t)

	payload := `[
		{"name": "salt", "measurement_unit": "g"},
		{"name": "salt", "measurement_unit": "kg"},
		{"name": "pepper", "measurement_unit": "g"}
	]`

	count, err := services.LoadIngredientsJSON(db, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadIngredientsJSON failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 records processed, got %d", count)
	}

	// loading the same file again must not duplicate rows
	if _, err := services.LoadIngredientsJSON(db, strings.NewReader(payload)); err != nil {
		t.Fatalf("Second LoadIngredientsJSON failed: %v", err)
	}

	all, err := services.ListIngredients(db, "")
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 catalog rows after reload, got %d", len(all))
	}
}

func TestLoadIngredientsCSV(t *testing.T) {
	db := setupTestDB(t)

	payload := "salt,g\npepper,g\n"
	count, err := services.LoadIngredientsCSV(db, strings.NewReader(payload))
	if err != nil {
		t.Fatalf("LoadIngredientsCSV failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records processed, got %d", count)
	}

	ingredients, err := services.ListIngredients(db, "salt")
	if err != nil {
		t.Fatalf("ListIngredients failed: %v", err)
	}
	if len(ingredients) != 1 || ingredients[0].MeasurementUnit != "g" {
		t.Errorf("Expected salt in grams, got %v", ingredients)
	}
}
