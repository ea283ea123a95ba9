package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/cors"
)

// NewHTTPHandler WebSocket 接入与只读管理接口
//
//	GET /ws       WebSocket 接入（玩家或观战）
//	GET /state    当前对局状态
//	GET /metrics  运行指标
//	GET /healthz  存活检查
func NewHTTPHandler(r *Room) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", r.HandleWS)
	mux.HandleFunc("/state", r.HandleState)
	mux.HandleFunc("/metrics", r.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	// 浏览器观战页面跨域读取状态
	return cors.Default().Handler(mux)
}

// HandleState 输出当前对局状态快照
func (r *Room) HandleState(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, r.Snapshot())
}

// HandleMetrics 输出对局运行指标
func (r *Room) HandleMetrics(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	finished, winner := r.game.Outcome()
	payload := map[string]any{
		"connections": r.Connections(),
		"finished":    finished,
		"winner":      winner,
		"metrics":     r.metrics.Snapshot(),
	}
	writeJSON(w, payload)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
