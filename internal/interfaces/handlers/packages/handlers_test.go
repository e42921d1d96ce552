package packages

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	pkgsvc "mortgage-dashboard/internal/application/packages"
	"mortgage-dashboard/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPackagesTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.MortgagePackage{}))
	store := &pkgsvc.GormStore{DB: db}
	svc := &pkgsvc.Service{
		Store:    store,
		Editor:   &pkgsvc.Editor{Store: store, Now: func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }},
		PageSize: 2,
	}
	h := &Handlers{Service: svc}

	app := fiber.New()
	app.Get("/packages", h.List)
	app.Get("/packages/options", h.Options)
	app.Get("/packages/:id", h.Get)
	app.Post("/packages", h.Create)
	app.Put("/packages/:id", h.Update)
	app.Delete("/packages/:id", h.Delete)
	return app, db
}

func seed(t *testing.T, db *gorm.DB, bank string, minLoan float64) domain.MortgagePackage {
	d, err := domain.ParseDate("2025-01-01")
	require.NoError(t, err)
	p := domain.MortgagePackage{
		Bank:         bank,
		PropertyType: "HDB",
		Category:     domain.CategoryFixed,
		MinLoanSize:  minLoan,
		PackageName:  bank + " 2Y Fixed",
		LockinPeriod: "2 Years",
		Rates:        "Year 1: 2% <br> Year 2: 2.2%",
		LastUpdated:  d,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return resp.StatusCode, result
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"bank":          "OCBC",
		"property_type": "Private",
		"category":      "BUC",
		"min_loan_size": 750000,
		"package_name":  "OCBC BUC",
		"lockin_period": "3 Years",
		"rates":         "Year 1: 2.5%",
		"features":      "Exclusive for premier clients",
		"last_updated":  "2025-03-01",
	}
}

func TestList_ClientLoanFilter(t *testing.T) {
	app, db := setupPackagesTest(t)
	seed(t, db, "DBS", 500000)
	seed(t, db, "UOB", 300000)

	code, result := doJSON(t, app, "GET", "/packages?client_loan=400000", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", result["status"])
	data := result["data"].([]interface{})
	require.Len(t, data, 1)
	card := data[0].(map[string]interface{})
	assert.Equal(t, "UOB", card["bank"])
	assert.Equal(t, true, card["most_relevant"])
	assert.Equal(t, "S$300,000", card["min_loan_display"])

	meta := result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["total"])
	assert.Equal(t, float64(2), meta["total_all"])
	assert.Equal(t, float64(400000), meta["client_loan"])
	assert.NotEmpty(t, meta["filter_key"])
	facets := meta["facets"].(map[string]interface{})
	assert.Len(t, facets["banks"], 2)
}

func TestList_PageResetsWhenFiltersChange(t *testing.T) {
	app, db := setupPackagesTest(t)
	for _, b := range []string{"DBS", "UOB", "OCBC", "HSBC", "Maybank"} {
		seed(t, db, b, 100000)
	}

	code, result := doJSON(t, app, "GET", "/packages?page=3", nil)
	require.Equal(t, 200, code)
	meta := result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["page"])
	assert.Equal(t, float64(3), meta["total_pages"])
	key := meta["filter_key"].(string)

	_, result = doJSON(t, app, "GET", "/packages?page=2&filter_key="+key, nil)
	assert.Equal(t, float64(2), result["metadata"].(map[string]interface{})["page"])

	_, result = doJSON(t, app, "GET", "/packages?page=2&search=dbs&filter_key="+key, nil)
	meta = result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["page"])
	assert.Equal(t, float64(1), meta["total"])
}

func TestOptions(t *testing.T) {
	app, _ := setupPackagesTest(t)
	code, result := doJSON(t, app, "GET", "/packages/options", nil)
	assert.Equal(t, 200, code)
	data := result["data"].(map[string]interface{})
	assert.Contains(t, data["categories"], "Floating (Completed)")
}

func TestCreate_ValidationFailureWritesNothing(t *testing.T) {
	app, db := setupPackagesTest(t)
	body := validBody()
	body["min_loan_size"] = 0
	body["bank"] = ""

	code, result := doJSON(t, app, "POST", "/packages", body)
	assert.Equal(t, 400, code)
	errObj := result["error"].(map[string]interface{})
	assert.Equal(t, "Validation failed", errObj["message"])
	fields := errObj["details"].(map[string]interface{})["fields"].(map[string]interface{})
	assert.Equal(t, "Minimum loan size must be greater than 0", fields["min_loan_size"])
	assert.Equal(t, "Bank is required", fields["bank"])

	var n int64
	db.Model(&domain.MortgagePackage{}).Count(&n)
	assert.Equal(t, int64(0), n)
}

func TestCreate_Success(t *testing.T) {
	app, db := setupPackagesTest(t)
	code, result := doJSON(t, app, "POST", "/packages", validBody())
	assert.Equal(t, 201, code)
	assert.Equal(t, "Mortgage package created successfully", result["message"])
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "Exclusive", data["primary_badge"])
	assert.Equal(t, []interface{}{"exclusive"}, data["tags"])

	var stored domain.MortgagePackage
	require.NoError(t, db.First(&stored).Error)
	assert.Equal(t, "OCBC BUC", stored.PackageName)
	assert.Nil(t, stored.Remarks)
}

func TestCreate_InvalidBody(t *testing.T) {
	app, _ := setupPackagesTest(t)
	req := httptest.NewRequest("POST", "/packages", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetAndUpdate(t *testing.T) {
	app, db := setupPackagesTest(t)
	p := seed(t, db, "DBS", 500000)

	code, result := doJSON(t, app, "GET", "/packages/"+p.ID.String(), nil)
	assert.Equal(t, 200, code)
	form := result["data"].(map[string]interface{})["form"].(map[string]interface{})
	assert.Equal(t, "2025-01-01", form["last_updated"])
	stored := result["data"].(map[string]interface{})["package"].(map[string]interface{})
	assert.NotEmpty(t, stored["created_at"])

	body := validBody()
	body["package_name"] = "Renamed"
	code, result = doJSON(t, app, "PUT", "/packages/"+p.ID.String(), body)
	assert.Equal(t, 200, code)
	assert.Equal(t, "Mortgage package updated successfully", result["message"])
	updated := result["data"].(map[string]interface{})
	assert.Equal(t, "Renamed", updated["package_name"])
	_, hasCreatedAt := updated["created_at"]
	assert.False(t, hasCreatedAt)

	var row domain.MortgagePackage
	require.NoError(t, db.First(&row, "id = ?", p.ID).Error)
	assert.Equal(t, "Renamed", row.PackageName)
	require.NotNil(t, row.CreatedAt)
}

func TestList_SearchIsNotTrimmed(t *testing.T) {
	app, db := setupPackagesTest(t)
	seed(t, db, "DBS", 500000)

	code, result := doJSON(t, app, "GET", "/packages?search=DBS", nil)
	assert.Equal(t, 200, code)
	assert.Len(t, result["data"], 1)

	code, result = doJSON(t, app, "GET", "/packages?search=%20DBS", nil)
	assert.Equal(t, 200, code)
	assert.Len(t, result["data"], 0)
}

func TestGetUpdate_NotFoundAndBadID(t *testing.T) {
	app, _ := setupPackagesTest(t)
	missing := uuid.NewString()

	code, result := doJSON(t, app, "GET", "/packages/"+missing, nil)
	assert.Equal(t, 404, code)
	assert.Equal(t, "Mortgage package not found", result["error"].(map[string]interface{})["message"])

	code, _ = doJSON(t, app, "PUT", "/packages/"+missing, validBody())
	assert.Equal(t, 404, code)

	code, _ = doJSON(t, app, "GET", "/packages/not-a-uuid", nil)
	assert.Equal(t, 400, code)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	app, db := setupPackagesTest(t)
	p := seed(t, db, "DBS", 500000)

	code, result := doJSON(t, app, "DELETE", "/packages/"+p.ID.String(), nil)
	assert.Equal(t, 409, code)
	assert.Equal(t, "Deletion not confirmed", result["error"].(map[string]interface{})["message"])

	var n int64
	db.Model(&domain.MortgagePackage{}).Count(&n)
	assert.Equal(t, int64(1), n)

	code, result = doJSON(t, app, "DELETE", "/packages/"+p.ID.String()+"?confirm=true", nil)
	assert.Equal(t, 200, code)
	assert.Equal(t, "Mortgage package deleted successfully", result["message"])
	db.Model(&domain.MortgagePackage{}).Count(&n)
	assert.Equal(t, int64(0), n)

	code, _ = doJSON(t, app, "DELETE", "/packages/"+p.ID.String()+"?confirm=true", nil)
	assert.Equal(t, 404, code)
}
