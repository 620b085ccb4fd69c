package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestPatients_CreateListGet(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(http.MethodPost, "/patients", `{"name":`)
	expectStatus(t, w, http.StatusBadRequest)
	if er := decodeError(t, w); er.Code != ErrCodeBadRequest {
		t.Fatalf("code = %q", er.Code)
	}

	w = env.do(http.MethodPost, "/patients", map[string]string{"name": "   "})
	expectStatus(t, w, http.StatusUnprocessableEntity)
	if er := decodeError(t, w); er.Code != ErrCodeValidation {
		t.Fatalf("code = %q", er.Code)
	}

	id := env.createPatient(t, "  Maria   Oliveira ")
	env.createPatient(t, "João Silva")

	w = env.do(http.MethodGet, "/patients/"+id, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decodeMap(t, w)["name"]; got != "Maria Oliveira" {
		t.Fatalf("name = %v", got)
	}

	w = env.do(http.MethodGet, "/patients?page=1&page_size=1", nil)
	expectStatus(t, w, http.StatusOK)
	body := decodeMap(t, w)
	pg := body["pagination"].(map[string]any)
	if len(body["patients"].([]any)) != 1 || pg["total"].(float64) != 2 || pg["total_pages"].(float64) != 2 || pg["has_next"] != true {
		t.Fatalf("unexpected page: %v", body)
	}

	expectStatus(t, env.do(http.MethodGet, "/patients/not-a-uuid", nil), http.StatusBadRequest)
	w = env.do(http.MethodGet, "/patients/"+uuid.NewString(), nil)
	expectStatus(t, w, http.StatusNotFound)
	if er := decodeError(t, w); er.Code != ErrCodeNotFound {
		t.Fatalf("code = %q", er.Code)
	}
}

func TestPatients_CreateWithRoomAndCondition(t *testing.T) {
	env := newEnv(t, nil)

	w := env.do(http.MethodPost, "/patients", map[string]string{"name": "Ana", "room": "12B", "condition": "ATTENTION"})
	expectStatus(t, w, http.StatusCreated)
	if p := decodeMap(t, w); p["room"] != "12B" || p["condition"] != "ATTENTION" {
		t.Fatalf("unexpected patient: %v", p)
	}

	w = env.do(http.MethodPost, "/patients", map[string]string{"name": "Ana"})
	expectStatus(t, w, http.StatusCreated)
	if got := decodeMap(t, w)["condition"]; got != "STABLE" {
		t.Fatalf("default condition = %v", got)
	}

	w = env.do(http.MethodPost, "/patients", map[string]string{"name": "Ana", "condition": "ok"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestPatients_UpdateDelete(t *testing.T) {
	env := newEnv(t, nil)
	id := env.createPatient(t, "Maria")
	medID := env.createMedication(t, id, 1)

	w := env.do(http.MethodPut, "/patients/"+id, map[string]string{
		"name": "Maria  Oliveira", "notes": "fall risk", "room": "3", "condition": "CRITICAL",
	})
	expectStatus(t, w, http.StatusOK)
	p := decodeMap(t, w)
	if p["name"] != "Maria Oliveira" || p["notes"] != "fall risk" || p["room"] != "3" || p["condition"] != "CRITICAL" {
		t.Fatalf("update not applied: %v", p)
	}

	expectStatus(t, env.do(http.MethodPut, "/patients/"+id, map[string]string{"notes": "x"}), http.StatusBadRequest)
	expectStatus(t, env.do(http.MethodPut, "/patients/"+id, map[string]string{"name": " "}), http.StatusUnprocessableEntity)
	expectStatus(t, env.do(http.MethodPut, "/patients/"+uuid.NewString(), map[string]string{"name": "x"}), http.StatusNotFound)

	w = env.do(http.MethodDelete, "/patients/"+id, nil)
	expectStatus(t, w, http.StatusNoContent)

	expectStatus(t, env.do(http.MethodGet, "/patients/"+id, nil), http.StatusNotFound)
	expectStatus(t, env.do(http.MethodGet, "/medications/"+medID, nil), http.StatusNotFound)
	w = env.do(http.MethodGet, "/patients", nil)
	expectStatus(t, w, http.StatusOK)
	if pg := decodeMap(t, w)["pagination"].(map[string]any); pg["total"].(float64) != 0 {
		t.Fatalf("deleted patient still listed: %v", pg)
	}

	expectStatus(t, env.do(http.MethodDelete, "/patients/"+id, nil), http.StatusNotFound)
	expectStatus(t, env.do(http.MethodDelete, "/patients/nope", nil), http.StatusBadRequest)
}
