package handlers_test

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ekuzmina/foodgram-go/internal/services"
)

func TestRecipeListAnonymousBooleans(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")

	// even with a favorite row present, anonymous viewers see false
	other := createTestUser(t, db, "oleg")
	if err := services.AddFavorite(db, other.ID, recipe.ID); err != nil {
		t.Fatalf("AddFavorite failed: %v", err)
	}

	status, body := request(t, app, "GET", "/api/recipes/", nil, "")
	if status != 200 {
		t.Fatalf("Expected 200, got %d: %v", status, body)
	}

	results, _ := body["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("Expected 1 recipe, got %d", len(results))
	}
	view, _ := results[0].(map[string]interface{})
	if favorited, _ := view["is_favorited"].(bool); favorited {
		t.Error("Expected is_favorited false for an anonymous viewer")
	}
	if inCart, _ := view["is_in_shopping_cart"].(bool); inCart {
		t.Error("Expected is_in_shopping_cart false for an anonymous viewer")
	}
	if author, _ := view["author"].(map[string]interface{}); author["is_subscribed"] != false {
		t.Error("Expected is_subscribed false for an anonymous viewer")
	}
}

func TestRecipeCreateEndpoint(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	seed := createTestRecipe(t, db, cfg, author, "Seed")
	auth := authHeader(t, cfg, author)

	payload := map[string]interface{}{
		"name":         "Soup",
		"image":        testImageURI,
		"text":         "Boil it",
		"cooking_time": "25", // numbers-as-strings are accepted on the wire
		"ingredients": []map[string]interface{}{
			{"id": seed.RecipeIngredients[0].IngredientID, "amount": 5},
		},
		"tags": []uint{seed.Tags[0].ID},
	}

	status, body := request(t, app, "POST", "/api/recipes/", payload, auth)
	if status != 201 {
		t.Fatalf("Expected 201, got %d: %v", status, body)
	}
	if body["name"] != "Soup" {
		t.Errorf("Expected the created recipe view, got %v", body)
	}
	if ct, _ := body["cooking_time"].(float64); ct != 25 {
		t.Errorf("Expected cooking_time 25, got %v", body["cooking_time"])
	}
	ingredients, _ := body["ingredients"].([]interface{})
	if len(ingredients) != 1 {
		t.Errorf("Expected 1 ingredient line, got %v", body["ingredients"])
	}
}

func TestRecipeCreateRequiresAuth(t *testing.T) {
	app, _, _ := setupTestApp(t)

	status, _ := request(t, app, "POST", "/api/recipes/", map[string]string{"name": "Soup"}, "")
	if status != 401 {
		t.Errorf("Expected 401 without a token, got %d", status)
	}
}

func TestRecipeUpdateAuthorOnly(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	stranger := createTestUser(t, db, "oleg")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")

	target := fmt.Sprintf("/api/recipes/%d", recipe.ID)
	payload := map[string]interface{}{
		"name":         "Stolen soup",
		"text":         "Mine now",
		"cooking_time": 5,
		"ingredients": []map[string]interface{}{
			{"id": recipe.RecipeIngredients[0].IngredientID, "amount": 5},
		},
		"tags": []uint{recipe.Tags[0].ID},
	}

	status, _ := request(t, app, "PATCH", target, payload, authHeader(t, cfg, stranger))
	if status != 403 {
		t.Errorf("Expected 403 for a non-author, got %d", status)
	}

	status, body := request(t, app, "PATCH", target, payload, authHeader(t, cfg, author))
	if status != 200 {
		t.Fatalf("Expected 200 for the author, got %d: %v", status, body)
	}
	if body["name"] != "Stolen soup" {
		t.Errorf("Expected the updated view, got %v", body)
	}
}

func TestRecipeDeleteAuthorOnly(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	stranger := createTestUser(t, db, "oleg")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")

	target := fmt.Sprintf("/api/recipes/%d", recipe.ID)

	status, _ := request(t, app, "DELETE", target, nil, authHeader(t, cfg, stranger))
	if status != 403 {
		t.Errorf("Expected 403 for a non-author, got %d", status)
	}

	status, _ = request(t, app, "DELETE", target, nil, authHeader(t, cfg, author))
	if status != 204 {
		t.Errorf("Expected 204 for the author, got %d", status)
	}

	status, _ = request(t, app, "GET", target, nil, "")
	if status != 404 {
		t.Errorf("Expected 404 after delete, got %d", status)
	}
}

func TestFavoriteEndpoint(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	user := createTestUser(t, db, "oleg")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")
	auth := authHeader(t, cfg, user)

	target := fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID)

	status, body := request(t, app, "POST", target, nil, auth)
	if status != 201 {
		t.Fatalf("Expected 201, got %d: %v", status, body)
	}
	// toggle responses carry the compact shape
	if body["name"] != "Soup" || body["cooking_time"] == nil {
		t.Errorf("Expected the short recipe view, got %v", body)
	}
	if _, full := body["ingredients"]; full {
		t.Errorf("Expected the short view without ingredients, got %v", body)
	}

	status, body = request(t, app, "POST", target, nil, auth)
	if status != 400 {
		t.Errorf("Expected 400 on a duplicate favorite, got %d", status)
	}
	if body["errors"] == nil {
		t.Errorf("Expected an errors body, got %v", body)
	}

	status, _ = request(t, app, "DELETE", target, nil, auth)
	if status != 204 {
		t.Errorf("Expected 204 on unfavorite, got %d", status)
	}
	status, _ = request(t, app, "DELETE", target, nil, auth)
	if status != 400 {
		t.Errorf("Expected 400 when the favorite is gone, got %d", status)
	}
}

func TestDownloadShoppingCart(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	user := createTestUser(t, db, "oleg")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")
	auth := authHeader(t, cfg, user)

	// empty cart first
	status, _ := request(t, app, "GET", "/api/recipes/download_shopping_cart", nil, auth)
	if status != 400 {
		t.Errorf("Expected 400 for an empty cart, got %d", status)
	}

	status, _ = request(t, app, "POST",
		fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), nil, auth)
	if status != 201 {
		t.Fatalf("Expected 201 adding to cart, got %d", status)
	}

	req := httptest.NewRequest("GET", "/api/recipes/download_shopping_cart", nil)
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain, got %q", ct)
	}

	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)
	if !strings.HasPrefix(text, "Shopping list:") {
		t.Errorf("Expected the shopping list header, got %q", text)
	}
	if !strings.Contains(text, "Soup-ingredient") {
		t.Errorf("Expected the cart ingredient in the body, got %q", text)
	}
}

func TestGetLinkAndRedirect(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	recipe := createTestRecipe(t, db, cfg, author, "Soup")

	status, body := request(t, app, "GET",
		fmt.Sprintf("/api/recipes/%d/get-link", recipe.ID), nil, "")
	if status != 200 {
		t.Fatalf("Expected 200, got %d: %v", status, body)
	}

	link, _ := body["short-link"].(string)
	if !strings.Contains(link, "/s/"+recipe.ShortCode) {
		t.Fatalf("Expected the short link, got %q", link)
	}

	req := httptest.NewRequest("GET", "/s/"+recipe.ShortCode, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Errorf("Expected 302, got %d", resp.StatusCode)
	}
	expected := fmt.Sprintf("/recipes/%d", recipe.ID)
	if loc := resp.Header.Get("Location"); loc != expected {
		t.Errorf("Expected redirect to %q, got %q", expected, loc)
	}

	req = httptest.NewRequest("GET", "/s/missing123", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("Expected 404 for an unknown code, got %d", resp.StatusCode)
	}
}

func TestIngredientFilterEndpoint(t *testing.T) {
	app, db, _ := setupTestApp(t)

	for _, name := range []string{"Salt", "salmon", "pepper"} {
		if err := db.Exec(
			"INSERT INTO ingredients (name, measurement_unit) VALUES (?, ?)", name, "g",
		).Error; err != nil {
			t.Fatalf("Failed to seed ingredient: %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/api/ingredients?name=sal", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	body := string(raw)
	if !strings.Contains(body, "Salt") || !strings.Contains(body, "salmon") {
		t.Errorf("Expected both sal* matches, got %s", body)
	}
	if strings.Contains(body, "pepper") {
		t.Errorf("Expected pepper to be filtered out, got %s", body)
	}
}

func TestRecipeTagFilterEndpoint(t *testing.T) {
	app, db, cfg := setupTestApp(t)
	author := createTestUser(t, db, "vera")
	createTestRecipe(t, db, cfg, author, "Soup")
	createTestRecipe(t, db, cfg, author, "Cake")

	status, body := request(t, app, "GET", "/api/recipes/?tags=Cake-tag", nil, "")
	if status != 200 {
		t.Fatalf("Expected 200, got %d", status)
	}
	if count, _ := body["count"].(float64); count != 1 {
		t.Errorf("Expected 1 recipe for the tag filter, got %v", body["count"])
	}
	results, _ := body["results"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if view, _ := results[0].(map[string]interface{}); view["name"] != "Cake" {
		t.Errorf("Expected the Cake recipe, got %v", results[0])
	}
}
