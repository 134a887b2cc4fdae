package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	apiURL           = getEnv("API_URL", "http://localhost:8080")
	runID            = time.Now().UnixNano()
	testUsername     = fmt.Sprintf("it_user_%d", runID)
	testUserEmail    = fmt.Sprintf("it-%d@example.com", runID)
	testUserPassword = "Integration1!"
	authToken        string
	expenseID        string
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		fmt.Println("Skipping integration tests. Set INTEGRATION_TEST=true to run.")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func doJSON(t *testing.T, method, path string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, apiURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	return resp, data
}

func TestHealthCheck(t *testing.T) {
	resp, _ := doJSON(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestUserRegistration(t *testing.T) {
	resp, body := doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": testUsername,
		"email":    testUserEmail,
		"password": testUserPassword,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.StatusCode, body)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	resp, _ := doJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": testUsername,
		"email":    "other-" + testUserEmail,
		"password": testUserPassword,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected status 409, got %d", resp.StatusCode)
	}
}

func TestUserLogin(t *testing.T) {
	resp, body := doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"username": testUsername,
		"password": testUserPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected token in login response")
	}
	authToken = result.Token
}

func TestCreateExpense(t *testing.T) {
	if authToken == "" {
		t.Skip("no auth token from login")
	}

	resp, body := doJSON(t, http.MethodPost, "/api/expenses", map[string]interface{}{
		"amount":      10.005,
		"description": "Integration lunch",
		"category":    "GROCERIES",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.StatusCode, body)
	}

	var expense map[string]interface{}
	if err := json.Unmarshal(body, &expense); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if expense["amount"] != "10.01" {
		t.Errorf("expected amount 10.01, got %v", expense["amount"])
	}
	expenseID, _ = expense["id"].(string)
}

func TestListExpenses(t *testing.T) {
	if expenseID == "" {
		t.Skip("no expense created")
	}

	resp, body := doJSON(t, http.MethodGet, "/api/expenses?category=groceries", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var expenses []map[string]interface{}
	if err := json.Unmarshal(body, &expenses); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(expenses) == 0 || expenses[0]["id"] != expenseID {
		t.Errorf("expected newest expense %s first, got %v", expenseID, expenses)
	}
}

func TestUpdateExpense(t *testing.T) {
	if expenseID == "" {
		t.Skip("no expense created")
	}

	resp, body := doJSON(t, http.MethodPut, "/api/expenses/"+expenseID, map[string]string{"description": "Integration dinner"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, body)
	}
}

func TestUnauthorizedAccess(t *testing.T) {
	saved := authToken
	authToken = ""
	defer func() { authToken = saved }()

	resp, _ := doJSON(t, http.MethodGet, "/api/expenses", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", resp.StatusCode)
	}
}

func TestDeleteExpenseTwice(t *testing.T) {
	if expenseID == "" {
		t.Skip("no expense created")
	}

	resp, _ := doJSON(t, http.MethodDelete, "/api/expenses/"+expenseID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, "/api/expenses/"+expenseID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404 on second delete, got %d", resp.StatusCode)
	}
}
