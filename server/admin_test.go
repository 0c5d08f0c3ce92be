package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newAdminServer(t *testing.T) (*Handler, *httptest.Server) {
	t.Helper()
	h := newTestHandler()
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return h, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestAdminConfigGetAndUpdate(t *testing.T) {
	h, srv := newAdminServer(t)
	room := mustJoin(t, h.registry, "r1", "u1", &fakeConn{})

	var got map[string]any
	if code := getJSON(t, srv.URL+"/admin/config?room=r1", &got); code != http.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	if got["maxEnemies"] != float64(room.Tuning().MaxEnemies) {
		t.Fatalf("maxEnemies = %v", got["maxEnemies"])
	}

	resp, err := http.Post(srv.URL+"/admin/config?room=r1", "application/json", strings.NewReader(`{"maxEnemies":5,"finalWave":3}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d", resp.StatusCode)
	}
	tun := room.Tuning()
	if tun.MaxEnemies != 5 || tun.FinalWave != 3 {
		t.Fatalf("tuning not updated: %+v", tun)
	}
	// 未出现的字段保持原值
	if tun.PlayerSpeed != quietTuning().PlayerSpeed {
		t.Fatalf("player speed changed to %v", tun.PlayerSpeed)
	}
}

func TestAdminConfigRejectsInvalid(t *testing.T) {
	h, srv := newAdminServer(t)
	room := mustJoin(t, h.registry, "r1", "u1", &fakeConn{})
	before := room.Tuning()

	for _, body := range []string{`{"worldWidth":-1}`, `{"spawnIntervalMul":2}`, `{`} {
		resp, err := http.Post(srv.URL+"/admin/config?room=r1", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, resp.StatusCode)
		}
	}
	if room.Tuning() != before {
		t.Fatal("invalid update applied")
	}
}

func TestAdminUnknownRoom(t *testing.T) {
	_, srv := newAdminServer(t)
	for _, path := range []string{"/admin/config?room=nope", "/metrics?room=nope", "/rooms/nope"} {
		if code := getJSON(t, srv.URL+path, nil); code != http.StatusNotFound {
			t.Fatalf("%s: status = %d", path, code)
		}
	}
}

func TestRoomsAndMetrics(t *testing.T) {
	h, srv := newAdminServer(t)
	mustJoin(t, h.registry, "r2", "b", &fakeConn{})
	mustJoin(t, h.registry, "r1", "a", &fakeConn{})
	mustJoin(t, h.registry, "r1", "c", &fakeConn{})

	var rooms []RoomInfo
	if code := getJSON(t, srv.URL+"/rooms", &rooms); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(rooms) != 2 || rooms[0].ID != "r1" || rooms[0].Players != 2 || rooms[1].Wave != 1 {
		t.Fatalf("rooms = %+v", rooms)
	}

	var one RoomInfo
	if code := getJSON(t, srv.URL+"/rooms/r2", &one); code != http.StatusOK || one.Players != 1 {
		t.Fatalf("room = %+v (status %d)", one, code)
	}

	var m struct {
		Players int            `json:"players"`
		Metrics map[string]any `json:"metrics"`
	}
	if code := getJSON(t, srv.URL+"/metrics?room=r1", &m); code != http.StatusOK || m.Players != 2 {
		t.Fatalf("metrics = %+v (status %d)", m, code)
	}
	if _, ok := m.Metrics["tick_count"]; !ok {
		t.Fatalf("metrics missing tick_count: %v", m.Metrics)
	}

	var lobby struct {
		Rooms int `json:"rooms"`
	}
	if code := getJSON(t, srv.URL+"/metrics", &lobby); code != http.StatusOK || lobby.Rooms != 2 {
		t.Fatalf("lobby = %+v (status %d)", lobby, code)
	}
}

func TestSchemaAndHealth(t *testing.T) {
	_, srv := newAdminServer(t)

	var schema map[string]any
	if code := getJSON(t, srv.URL+"/schema", &schema); code != http.StatusOK {
		t.Fatalf("schema status = %d", code)
	}
	raw, _ := json.Marshal(schema)
	for _, want := range []string{"deltaTime", "chestId", "roomId"} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("schema missing %q", want)
		}
	}

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("healthz = %q", body)
	}
}
