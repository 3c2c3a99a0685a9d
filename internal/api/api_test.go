package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/nitpy-cse/assetreg/internal/auth"
	"github.com/nitpy-cse/assetreg/internal/db"
	"github.com/nitpy-cse/assetreg/internal/model"
	"github.com/nitpy-cse/assetreg/internal/store"
)

const (
	testJWTSecret = "test-secret"
	hodEmail      = "hod-csedept@nitpy.ac.in"
	hodPassword   = "NITPY123"
)

func setupTestServer(t *testing.T) (*httptest.Server, string, *db.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create HOD user.
	createTestUser(t, database, "HOD CSE", hodEmail, hodPassword, model.RoleHOD)

	return server, login(t, server, hodEmail, hodPassword), database
}

func createTestUser(t *testing.T, database *db.DB, name, email, password, role string) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user, err := store.CreateUser(context.Background(), database, name, email, string(hash), role)
	if err != nil {
		t.Fatalf("creating user %s: %v", email, err)
	}
	return user
}

func login(t *testing.T, server *httptest.Server, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends an authenticated request and decodes the JSON response into out
// when out is non-nil.
func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func sampleAsset() map[string]any {
	return map[string]any{
		"year_of_purchase":  2022,
		"item_name":         "Laptop",
		"quantity":          25,
		"inventory_number":  "CS-002",
		"room_number":       "105",
		"floor_number":      "1",
		"building_block":    "Computer Science Block",
		"remarks":           "Faculty laptops",
		"department_origin": "own",
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _, database := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"email": hodEmail, "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Missing fields.
	body, _ = json.Marshal(map[string]string{"email": hodEmail})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Valid login returns the user and opens a login log.
	body, _ = json.Marshal(map[string]string{"email": hodEmail, "password": hodPassword})
	resp, _ = http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	resp.Body.Close()
	if loginResp.User == nil || loginResp.User.Email != hodEmail || loginResp.User.Role != model.RoleHOD {
		t.Errorf("unexpected user in login response: %+v", loginResp.User)
	}

	claims, err := auth.ValidateToken(testJWTSecret, loginResp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	entry, _ := store.GetLoginLog(context.Background(), database, claims.LogID)
	if entry == nil || !entry.Active() {
		t.Errorf("expected an active login log for log_id %d, got %+v", claims.LogID, entry)
	}
}

func TestLogoutRevokesTokenAndClosesLog(t *testing.T) {
	server, token, database := setupTestServer(t)

	claims, _ := auth.ValidateToken(testJWTSecret, token)

	if status := do(t, "POST", server.URL+"/api/auth/logout", token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}

	if status := do(t, "GET", server.URL+"/api/assets", token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}

	entry, _ := store.GetLoginLog(context.Background(), database, claims.LogID)
	if entry == nil {
		t.Fatal("expected login log to exist")
	}
	if entry.Status() != model.SessionCompleted {
		t.Errorf("expected completed session, got %s", entry.Status())
	}
	if entry.DurationMinutes == nil {
		t.Error("expected duration_minutes to be set")
	}
}

func TestMeAndChangePassword(t *testing.T) {
	server, token, _ := setupTestServer(t)

	var me model.User
	if status := do(t, "GET", server.URL+"/api/auth/me", token, nil, &me); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if me.Email != hodEmail {
		t.Errorf("expected %s, got %s", hodEmail, me.Email)
	}

	status := do(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "wrong-password",
		"new_password":     "new-password-1",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", status)
	}

	status = do(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": hodPassword,
		"new_password":     "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", status)
	}

	status = do(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": hodPassword,
		"new_password":     "new-password-1",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	login(t, server, hodEmail, "new-password-1")
}

func TestAssetsAPIFlow(t *testing.T) {
	server, token, _ := setupTestServer(t)

	// Create asset.
	var created createdResponse
	if status := do(t, "POST", server.URL+"/api/assets", token, sampleAsset(), &created); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.ID <= 0 {
		t.Fatalf("expected generated id, got %d", created.ID)
	}

	// List assets.
	var assets []model.Asset
	if status := do(t, "GET", server.URL+"/api/assets", token, nil, &assets); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(assets) != 1 || assets[0].InventoryNumber != "CS-002" || assets[0].Quantity != 25 {
		t.Fatalf("unexpected listing: %+v", assets)
	}

	// Update quantity only.
	var affected affectedResponse
	url := server.URL + "/api/assets/" + itoa(created.ID)
	if status := do(t, "PUT", url, token, map[string]any{"quantity": 30}, &affected); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if affected.AffectedRows != 1 {
		t.Errorf("expected 1 affected row, got %d", affected.AffectedRows)
	}

	var got model.Asset
	do(t, "GET", url, token, nil, &got)
	if got.Quantity != 30 || got.ItemName != "Laptop" || got.RoomNumber != "105" {
		t.Errorf("unexpected asset after update: %+v", got)
	}

	// Update on a missing id is not an error.
	affected = affectedResponse{}
	status := do(t, "PUT", server.URL+"/api/assets/9999", token, map[string]any{"remarks": "x"}, &affected)
	if status != http.StatusOK || affected.AffectedRows != 0 {
		t.Errorf("expected 200 with 0 affected rows, got %d/%d", status, affected.AffectedRows)
	}

	// Delete, twice.
	affected = affectedResponse{}
	do(t, "DELETE", url, token, nil, &affected)
	if affected.AffectedRows != 1 {
		t.Errorf("expected 1 affected row, got %d", affected.AffectedRows)
	}
	affected = affectedResponse{AffectedRows: -1}
	if status := do(t, "DELETE", url, token, nil, &affected); status != http.StatusOK {
		t.Errorf("expected 200 deleting a missing asset, got %d", status)
	}
	if affected.AffectedRows != 0 {
		t.Errorf("expected 0 affected rows, got %d", affected.AffectedRows)
	}

	if status := do(t, "GET", url, token, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestAssetsQueryParameters(t *testing.T) {
	server, token, _ := setupTestServer(t)

	for _, name := range []string{"Printer", "Desktop Computer", "Projector"} {
		a := sampleAsset()
		a["item_name"] = name
		do(t, "POST", server.URL+"/api/assets", token, a, nil)
	}

	var assets []model.Asset
	do(t, "GET", server.URL+"/api/assets?filter_column=item_name&filter_value=Projector", token, nil, &assets)
	if len(assets) != 1 || assets[0].ItemName != "Projector" {
		t.Errorf("expected only Projector, got %+v", assets)
	}

	assets = nil
	do(t, "GET", server.URL+"/api/assets?sort=item_name&order=desc&limit=2", token, nil, &assets)
	if len(assets) != 2 || assets[0].ItemName != "Projector" || assets[1].ItemName != "Printer" {
		t.Errorf("unexpected sorted page: %+v", assets)
	}

	assets = nil
	do(t, "GET", server.URL+"/api/assets?sort=item_name&limit=2&offset=2", token, nil, &assets)
	if len(assets) != 1 || assets[0].ItemName != "Projector" {
		t.Errorf("unexpected offset page: %+v", assets)
	}
}

func TestAssetsRejectUnknownColumns(t *testing.T) {
	server, token, _ := setupTestServer(t)

	var created createdResponse
	do(t, "POST", server.URL+"/api/assets", token, sampleAsset(), &created)
	url := server.URL + "/api/assets/" + itoa(created.ID)

	tests := []struct {
		name   string
		method string
		url    string
		body   any
	}{
		{"filter injection", "GET", server.URL + "/api/assets?filter_column=1%3D1%20OR%20id&filter_value=x", nil},
		{"sort injection", "GET", server.URL + "/api/assets?sort=(SELECT%201)", nil},
		{"bad limit", "GET", server.URL + "/api/assets?limit=abc", nil},
		{"negative offset", "GET", server.URL + "/api/assets?offset=-1", nil},
		{"update id", "PUT", url, map[string]any{"id": 77}},
		{"update unknown", "PUT", url, map[string]any{"quantity = 0; --": 1}},
		{"update empty", "PUT", url, map[string]any{}},
		{"update nested", "PUT", url, map[string]any{"remarks": map[string]string{"a": "b"}}},
		{"bad id", "DELETE", server.URL + "/api/assets/abc", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := do(t, tt.method, tt.url, token, tt.body, nil); status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
		})
	}

	var got model.Asset
	do(t, "GET", url, token, nil, &got)
	if got.ID != created.ID || got.Quantity != 25 {
		t.Errorf("asset changed by rejected requests: %+v", got)
	}
}

func TestCreateAssetDatabaseError(t *testing.T) {
	server, token, _ := setupTestServer(t)

	a := sampleAsset()
	a["department_origin"] = "borrowed"

	var body map[string]string
	if status := do(t, "POST", server.URL+"/api/assets", token, a, &body); status != http.StatusInternalServerError {
		t.Fatalf("expected 500 for CHECK violation, got %d", status)
	}
	if body["error"] == "" {
		t.Error("expected the database error message in the response")
	}
}

func TestUpdateAssetWrongTypeKeepsListReadable(t *testing.T) {
	server, token, _ := setupTestServer(t)

	var created map[string]int64
	if status := do(t, "POST", server.URL+"/api/assets", token, sampleAsset(), &created); status != http.StatusCreated {
		t.Fatalf("create asset: got %d", status)
	}
	assetURL := server.URL + "/api/assets/" + itoa(created["id"])

	bad := []map[string]any{
		{"quantity": "lots"},
		{"year_of_purchase": 2020.5},
	}
	for _, fields := range bad {
		var body map[string]string
		if status := do(t, "PUT", assetURL, token, fields, &body); status != http.StatusInternalServerError {
			t.Errorf("PUT %v: expected 500, got %d", fields, status)
		}
		if body["error"] == "" {
			t.Errorf("PUT %v: expected the database error message", fields)
		}
	}

	var assets []model.Asset
	if status := do(t, "GET", server.URL+"/api/assets", token, nil, &assets); status != http.StatusOK {
		t.Fatalf("list after rejected updates: got %d", status)
	}
	if len(assets) != 1 || assets[0].Quantity != 25 || assets[0].YearOfPurchase != 2022 {
		t.Errorf("expected the asset unchanged, got %+v", assets)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	for _, path := range []string{"/api/assets", "/api/users", "/api/logs", "/api/auth/me"} {
		resp, _ := http.Get(server.URL + path)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 for unauthenticated %s, got %d", path, resp.StatusCode)
		}
		resp.Body.Close()
	}

	if status := do(t, "GET", server.URL+"/api/assets", "garbage", nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", status)
	}
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create an employee.
	employee := createTestUser(t, database, "John Doe", "john.doe@nitpy.ac.in", "password123", model.RoleEmployee)
	userToken, _ := auth.GenerateToken(testJWTSecret, employee, 0)

	// Employees manage assets.
	if status := do(t, "POST", server.URL+"/api/assets", userToken, sampleAsset(), nil); status != http.StatusCreated {
		t.Errorf("expected 201 for employee creating asset, got %d", status)
	}
	if status := do(t, "GET", server.URL+"/api/assets", userToken, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 for employee listing assets, got %d", status)
	}

	// Employees should not access users or logs.
	for _, path := range []string{"/api/users", "/api/logs"} {
		if status := do(t, "GET", server.URL+path, userToken, nil, nil); status != http.StatusForbidden {
			t.Errorf("expected 403 for employee accessing %s, got %d", path, status)
		}
	}

	// Unknown roles fail closed.
	ghost := &model.User{ID: employee.ID, Email: "ghost@nitpy.ac.in", Role: "admin"}
	ghostToken, _ := auth.GenerateToken(testJWTSecret, ghost, 0)
	if status := do(t, "GET", server.URL+"/api/users", ghostToken, nil, nil); status != http.StatusForbidden {
		t.Errorf("expected 403 for unknown role, got %d", status)
	}
}

func TestUsersAPIFlow(t *testing.T) {
	server, token, _ := setupTestServer(t)

	newUser := map[string]string{
		"name":     "Jane Smith",
		"email":    "jane.smith@nitpy.ac.in",
		"password": "password123",
		"role":     model.RoleEmployee,
	}

	var created model.User
	if status := do(t, "POST", server.URL+"/api/users", token, newUser, &created); status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if created.Email != newUser["email"] || created.Role != model.RoleEmployee {
		t.Errorf("unexpected created user: %+v", created)
	}

	if status := do(t, "POST", server.URL+"/api/users", token, newUser, nil); status != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", status)
	}

	bad := map[string]string{"name": "X", "email": "x@nitpy.ac.in", "password": "password123", "role": "admin"}
	if status := do(t, "POST", server.URL+"/api/users", token, bad, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid role, got %d", status)
	}

	var users []model.User
	do(t, "GET", server.URL+"/api/users", token, nil, &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	userURL := server.URL + "/api/users/" + itoa(created.ID)

	if status := do(t, "PUT", userURL+"/reset-password", token, map[string]string{"password": "changed-pass"}, nil); status != http.StatusOK {
		t.Errorf("expected 200 for password reset, got %d", status)
	}
	login(t, server, "jane.smith@nitpy.ac.in", "changed-pass")

	var updated model.User
	if status := do(t, "PUT", userURL, token, map[string]string{"role": model.RoleHOD}, &updated); status != http.StatusOK {
		t.Errorf("expected 200 for role update, got %d", status)
	}
	if updated.Role != model.RoleHOD {
		t.Errorf("expected role hod, got %s", updated.Role)
	}

	if status := do(t, "DELETE", userURL, token, nil, nil); status != http.StatusOK {
		t.Errorf("expected 200 for delete, got %d", status)
	}
	if status := do(t, "GET", userURL, token, nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", status)
	}
}

func TestUserCannotDeleteOrDemoteSelf(t *testing.T) {
	server, token, _ := setupTestServer(t)

	claims, _ := auth.ValidateToken(testJWTSecret, token)
	selfURL := server.URL + "/api/users/" + itoa(claims.UserID)

	if status := do(t, "DELETE", selfURL, token, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for self-deletion, got %d", status)
	}
	if status := do(t, "PUT", selfURL, token, map[string]string{"role": model.RoleEmployee}, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for self-demotion, got %d", status)
	}
}

func TestLogsEndpoint(t *testing.T) {
	server, token, database := setupTestServer(t)

	createTestUser(t, database, "John Doe", "john.doe@nitpy.ac.in", "password123", model.RoleEmployee)
	employeeToken := login(t, server, "john.doe@nitpy.ac.in", "password123")
	do(t, "POST", server.URL+"/api/auth/logout", employeeToken, nil, nil)

	var logs []model.LoginLog
	if status := do(t, "GET", server.URL+"/api/logs", token, nil, &logs); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 login logs, got %d", len(logs))
	}

	statuses := map[string]string{}
	for _, l := range logs {
		statuses[l.UserEmail] = l.Status()
	}
	if statuses[hodEmail] != model.SessionActive {
		t.Errorf("expected HOD session active, got %q", statuses[hodEmail])
	}
	if statuses["john.doe@nitpy.ac.in"] != model.SessionCompleted {
		t.Errorf("expected employee session completed, got %q", statuses["john.doe@nitpy.ac.in"])
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/assets", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("expected JSON error envelope, got %q", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("OPTIONS", "/api/assets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
