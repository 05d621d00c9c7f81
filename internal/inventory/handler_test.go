package inventory

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"sklad-backend/internal/httputil"
	"sklad-backend/internal/ledger"
	"sklad-backend/internal/models"
	"sklad-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	materials := NewMaterialRepository(db)
	stocks := NewStockRepository(db)
	svc := ledger.NewService(db, nil)
	loc := time.UTC

	app := fiber.New(fiber.Config{ErrorHandler: httputil.ErrorHandler})
	api := app.Group("/api")
	api.Get("/materials", ListMaterialsHandler(materials))
	api.Post("/add-materials", AddMaterialHandler(materials))
	api.Get("/materials/by_stock/:stock_id", MaterialsByStockHandler(svc))
	api.Put("/materials/:id", UpdateMaterialHandler(materials))
	api.Delete("/materials/:id/delete", DeleteMaterialHandler(materials))
	api.Get("/stock", ListStocksHandler(stocks))
	api.Post("/stock", CreateStockHandler(stocks))
	api.Delete("/stock/:id/delete", DeleteStockHandler(stocks))
	api.Post("/coming", CreateComingHandler(svc, loc))
	api.Post("/expenses", CreateExpenseHandler(svc, loc))
	api.Get("/stock_materials/:stock_id/:material_id", StockMaterialQuantityHandler(svc))
	api.Get("/stockmaterials", ListStockMaterialsHandler(svc))
	api.Post("/stockmaterials", UpsertStockMaterialHandler(svc))
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode error body %s: %v", data, err)
	}
	return m["error"]
}

func TestMaterialLifecycle(t *testing.T) {
	app, _ := setupApp(t)

	resp, data := doJSON(t, app, "POST", "/api/add-materials", map[string]string{"name": " Cement ", "unit": "kg"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	var created MaterialResponse
	json.Unmarshal(data, &created)
	if created.ID == 0 || created.Name != "Cement" || created.Unit != "kg" {
		t.Fatalf("unexpected material %+v", created)
	}

	resp, data = doJSON(t, app, "PUT", "/api/materials/"+itoa(created.ID), map[string]string{"unit": "t"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}
	var updated MaterialResponse
	json.Unmarshal(data, &updated)
	if updated.Name != "Cement" || updated.Unit != "t" {
		t.Fatalf("unexpected update result %+v", updated)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/materials/"+itoa(created.ID)+"/delete", nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, data = doJSON(t, app, "GET", "/api/materials", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []MaterialResponse
	json.Unmarshal(data, &list)
	if len(list) != 0 {
		t.Fatalf("deleted material still listed: %+v", list)
	}
}

func TestAddMaterialValidation(t *testing.T) {
	app, _ := setupApp(t)
	resp, data := doJSON(t, app, "POST", "/api/add-materials", map[string]string{"name": "Cement"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if errorMessage(t, data) == "" {
		t.Fatal("expected validation message")
	}
}

func TestDeleteMissingMaterial(t *testing.T) {
	app, _ := setupApp(t)
	resp, data := doJSON(t, app, "DELETE", "/api/materials/999/delete", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, data); msg != msgMaterialNotFound {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDeleteReferencedRecordsConflict(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	cement := testutil.CreateMaterial(t, db, "Cement", "kg")

	resp, data := doJSON(t, app, "POST", "/api/coming", map[string]any{
		"stock": stock.ID, "material": cement.ID, "quantity": "10", "price": "5000",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}

	for _, path := range []string{
		"/api/materials/" + itoa(cement.ID) + "/delete",
		"/api/stock/" + itoa(stock.ID) + "/delete",
	} {
		resp, data := doJSON(t, app, "DELETE", path, nil)
		if resp.StatusCode != fiber.StatusConflict {
			t.Fatalf("%s: expected 409, got %d: %s", path, resp.StatusCode, data)
		}
	}

	var n int64
	db.Model(&models.Material{}).Where("id = ?", cement.ID).Count(&n)
	if n != 1 {
		t.Fatal("referenced material must survive the rejected delete")
	}
}

func TestStockCreateListDelete(t *testing.T) {
	app, _ := setupApp(t)

	resp, data := doJSON(t, app, "POST", "/api/stock", map[string]string{"name": "Main"})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	var s StockResponse
	json.Unmarshal(data, &s)

	_, data = doJSON(t, app, "GET", "/api/stock", nil)
	var list []StockResponse
	json.Unmarshal(data, &list)
	if len(list) != 1 || list[0].Name != "Main" {
		t.Fatalf("unexpected stocks %+v", list)
	}

	resp, _ = doJSON(t, app, "DELETE", "/api/stock/"+itoa(s.ID)+"/delete", nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "DELETE", "/api/stock/"+itoa(s.ID)+"/delete", nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestComingThenExpenseFlow(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	cement := testutil.CreateMaterial(t, db, "Cement", "kg")

	resp, data := doJSON(t, app, "POST", "/api/coming", map[string]any{
		"stock": stock.ID, "material": cement.ID,
		"quantity": "10", "price": "5000",
		"arrival_date": "2024-03-01T09:30:00",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	var coming ComingResponse
	json.Unmarshal(data, &coming)
	if coming.StockName != "Main" || coming.MaterialName != "Cement" || coming.MaterialUnit != "kg" {
		t.Fatalf("unexpected coming %+v", coming)
	}
	if coming.ArrivalDate != "2024-03-01T09:30:00Z" {
		t.Fatalf("unexpected arrival date %q", coming.ArrivalDate)
	}

	resp, data = doJSON(t, app, "GET", "/api/stock_materials/"+itoa(stock.ID)+"/"+itoa(cement.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}
	var qty struct {
		Quantity string `json:"quantity"`
	}
	json.Unmarshal(data, &qty)
	if !testutil.Dec(qty.Quantity).Equal(testutil.Dec("10")) {
		t.Fatalf("expected quantity 10, got %s", qty.Quantity)
	}

	resp, data = doJSON(t, app, "POST", "/api/expenses", map[string]any{
		"stock": stock.ID, "material": cement.ID,
		"quantity": 4, "price": 6000,
		"on_credit": true, "debtor_name": "Karim",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	var expense ExpenseResponse
	json.Unmarshal(data, &expense)
	if !expense.OnCredit || expense.DebtorName != "Karim" {
		t.Fatalf("unexpected expense %+v", expense)
	}

	resp, data = doJSON(t, app, "POST", "/api/expenses", map[string]any{
		"stock": stock.ID, "material": cement.ID, "quantity": 7, "price": 6000,
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, data); msg != msgInsufficientStock {
		t.Fatalf("unexpected message %q", msg)
	}

	var sm models.StockMaterial
	db.Where("stock_id = ? AND material_id = ?", stock.ID, cement.ID).First(&sm)
	if !sm.Quantity.Equal(testutil.Dec("6")) {
		t.Fatalf("balance should stay at 6 after rejected expense, got %s", sm.Quantity)
	}
}

func TestExpenseWithoutBalance(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	sand := testutil.CreateMaterial(t, db, "Sand", "t")

	resp, data := doJSON(t, app, "POST", "/api/expenses", map[string]any{
		"stock": stock.ID, "material": sand.ID, "quantity": 1, "price": 1,
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if msg := errorMessage(t, data); msg != msgBalanceNotFound {
		t.Fatalf("unexpected message %q", msg)
	}

	resp, _ = doJSON(t, app, "GET", "/api/stock_materials/"+itoa(stock.ID)+"/"+itoa(sand.ID), nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for missing balance, got %d", resp.StatusCode)
	}
}

func TestComingRejectsNonPositiveQuantity(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	cement := testutil.CreateMaterial(t, db, "Cement", "kg")

	resp, _ := doJSON(t, app, "POST", "/api/coming", map[string]any{
		"stock": stock.ID, "material": cement.ID, "quantity": 0, "price": 10,
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMaterialsByStockListsPositiveBalances(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	cement := testutil.CreateMaterial(t, db, "Cement", "kg")
	sand := testutil.CreateMaterial(t, db, "Sand", "t")
	testutil.CreateBalance(t, db, stock.ID, cement.ID, "3", "100")
	testutil.CreateBalance(t, db, stock.ID, sand.ID, "0", "100")

	resp, data := doJSON(t, app, "GET", "/api/materials/by_stock/"+itoa(stock.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list []MaterialResponse
	json.Unmarshal(data, &list)
	if len(list) != 1 || list[0].ID != cement.ID {
		t.Fatalf("expected only cement, got %+v", list)
	}
}

func TestUpsertStockMaterial(t *testing.T) {
	app, db := setupApp(t)
	stock := testutil.CreateStock(t, db, "Main")
	cement := testutil.CreateMaterial(t, db, "Cement", "kg")

	body := map[string]any{"stock": stock.ID, "material": cement.ID, "quantity": "5", "avg_price": "100"}
	resp, data := doJSON(t, app, "POST", "/api/stockmaterials", body)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}

	body["quantity"] = "8"
	resp, data = doJSON(t, app, "POST", "/api/stockmaterials", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}

	resp, data = doJSON(t, app, "GET", "/api/stockmaterials?stock_id="+itoa(stock.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var rows []StockMaterialResponse
	json.Unmarshal(data, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %d", len(rows))
	}
	if rows[0].StockName != "Main" || rows[0].MaterialName != "Cement" || !rows[0].Quantity.Equal(testutil.Dec("8")) {
		t.Fatalf("unexpected row %+v", rows[0])
	}

	resp, _ = doJSON(t, app, "GET", "/api/stockmaterials?stock_id=abc", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for bad stock_id, got %d", resp.StatusCode)
	}
}

func TestParseMovementTime(t *testing.T) {
	loc := time.FixedZone("UZT", 5*3600)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"", time.Time{}},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, loc)},
		{"2024-03-01T10:15", time.Date(2024, 3, 1, 10, 15, 0, 0, loc)},
		{"2024-03-01 10:15:30", time.Date(2024, 3, 1, 10, 15, 30, 0, loc)},
		{"2024-03-01T10:15:30Z", time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := parseMovementTime(tc.in, loc)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := parseMovementTime("01/03/2024", loc); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
