package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter 注册 WebSocket、管理与监控路由；其余路径映射到静态资源目录
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", h.HandleWS)
	r.HandleFunc("/admin/config", h.HandleAdminConfig).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/metrics", h.HandleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/rooms", h.HandleRooms).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}", h.HandleRoom).Methods(http.MethodGet)
	r.HandleFunc("/schema", HandleSchema).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if h.cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(h.cfg.StaticDir)))
	}
	return r
}
