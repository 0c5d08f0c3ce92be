package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"hordearena/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleAdminConfig 提供房间数值的读取与更新（热更新）
// GET /admin/config?room=R1   返回当前 Tuning
// POST /admin/config?room=R1  以 JSON 载荷覆盖部分字段
func (h *Handler) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	room, ok := h.registry.Get(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, room.Tuning())
	case http.MethodPost:
		// 在当前值上解码，未出现的字段保持不变
		t := room.Tuning()
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := t.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		room.SetTuning(t)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		Log.Infow("tuning updated", "room", roomID, "maxEnemies", t.MaxEnemies,
			"spawnInterval", t.SpawnInterval, "waveDuration", t.WaveDuration, "finalWave", t.FinalWave)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定房间的运行指标；不带 room 时输出未入房连接的指标
// GET /metrics?room=R1
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"rooms": len(h.registry.Rooms()),
			"lobby": h.lobby.Snapshot(),
		})
		return
	}
	room, ok := h.registry.Get(roomID)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    roomID,
		"players": room.PlayerCount(),
		"metrics": room.metrics.Snapshot(),
	})
}

// RoomInfo 房间列表条目
type RoomInfo struct {
	ID         string `json:"id"`
	Players    int    `json:"players"`
	Wave       int    `json:"wave"`
	IsGameOver bool   `json:"isGameOver"`
}

func roomInfo(room *Room) RoomInfo {
	info := RoomInfo{ID: room.ID}
	room.withState(func(g *game.GameState) {
		info.Players = len(g.Players)
		info.Wave = g.Wave
		info.IsGameOver = g.IsGameOver
	})
	return info
}

// HandleRooms GET /rooms
func (h *Handler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	rooms := h.registry.Rooms()
	out := make([]RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomInfo(room))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleRoom GET /rooms/{room}
func (h *Handler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	room, ok := h.registry.Get(mux.Vars(r)["room"])
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, roomInfo(room))
}
